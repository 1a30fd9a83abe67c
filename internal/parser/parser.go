// Package parser is the Go front end: it finds interfaces annotated with
// //mapgen::mapper and describes them for the generation pipeline.
package parser

import (
	"bytes"
	"context"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/importer"
	"go/parser"
	"go/printer"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/mapgen/internal/annotations"
	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/models"
)

// Parser extracts annotated mapping interfaces from Go sources
type Parser struct {
	fileSet     *token.FileSet
	annotations *annotations.ParticipleParser
}

// NewParser creates a new front end using the built-in annotation schemas
func NewParser() *Parser {
	return &Parser{
		fileSet:     token.NewFileSet(),
		annotations: annotations.NewParticipleParser(annotations.DefaultRegistry()),
	}
}

// FileSet returns the file set positions are reported against
func (p *Parser) FileSet() *token.FileSet {
	return p.fileSet
}

// ParseSource parses a single file from memory. Type information is
// best-effort: the file is checked against standard library sources and
// methods keep their types.Func only when checking gets that far.
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, errors.WrapParseError(filename, err)
	}

	metadata := &models.PackageMetadata{
		PackageName: file.Name.Name,
		PackagePath: filepath.Dir(filename),
	}

	info := &types.Info{
		Defs: make(map[*ast.Ident]types.Object),
		Uses: make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{
		Importer: importer.ForCompiler(p.fileSet, "source", nil),
		Error: func(err error) {
			metadata.TypeErrors = append(metadata.TypeErrors, err.Error())
		},
	}
	_, _ = conf.Check(file.Name.Name, p.fileSet, []*ast.File{file}, info)

	decls, err := p.ExtractDeclarations(file, filename, info)
	if err != nil {
		return nil, err
	}
	metadata.Declarations = decls
	recordSourceFile(metadata, file, filename)
	return metadata, nil
}

// LoadDirectory loads the packages matching patterns (relative to dir) with
// full type information. Previously generated mapper files are masked so a
// stale implementation cannot break loading.
func (p *Parser) LoadDirectory(ctx context.Context, dir string, patterns ...string) ([]*models.PackageMetadata, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", dir, err)
	}

	overlay := maskGenerated(absDir)
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     absDir,
		Fset:    p.fileSet,
		Overlay: overlay,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.WrapWithOperation("load", strings.Join(patterns, " "), err)
	}

	result := make([]*models.PackageMetadata, 0, len(pkgs))
	for _, pkg := range pkgs {
		metadata := &models.PackageMetadata{
			PackageName: pkg.Name,
			ImportPath:  pkg.PkgPath,
		}
		if len(pkg.GoFiles) > 0 {
			metadata.PackagePath = filepath.Dir(pkg.GoFiles[0])
		}

		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError {
				metadata.TypeErrors = append(metadata.TypeErrors, e.Error())
				continue
			}
			return nil, errors.WrapParseError(pkg.PkgPath, e)
		}

		for i, file := range pkg.Syntax {
			filename := p.fileSet.Position(file.Pos()).Filename
			if i < len(pkg.CompiledGoFiles) && filename == "" {
				filename = pkg.CompiledGoFiles[i]
			}
			if _, masked := overlay[filename]; masked {
				continue
			}
			decls, err := p.ExtractDeclarations(file, filename, pkg.TypesInfo)
			if err != nil {
				return nil, err
			}
			metadata.Declarations = append(metadata.Declarations, decls...)
			recordSourceFile(metadata, file, filename)
		}
		result = append(result, metadata)
	}
	return result, nil
}

// ExtractDeclarations finds the annotated interfaces of one file. info may be
// nil; when present it attaches type information to the methods.
func (p *Parser) ExtractDeclarations(file *ast.File, fileName string, info *types.Info) ([]*models.AnnotatedDeclaration, error) {
	if ast.IsGenerated(file) {
		return nil, nil
	}

	namespace := models.Ancestor{
		Kind:    models.AncestorNamespace,
		Name:    file.Name.Name,
		Imports: fileImports(file),
	}

	var (
		decls []*models.AnnotatedDeclaration
		errs  = errors.NewMultipleErrors()
	)
	collect := func(gen *ast.GenDecl, ancestors []models.Ancestor) {
		found, err := p.fromGenDecl(gen, fileName, ancestors, info)
		decls = append(decls, found...)
		if multi, ok := err.(*errors.MultipleErrors); ok {
			for _, e := range multi.Errors {
				errs.Add(e)
			}
		} else if err != nil {
			errs.Add(err)
		}
	}

	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.GenDecl:
			collect(decl, []models.Ancestor{namespace})
		case *ast.FuncDecl:
			if decl.Body == nil {
				continue
			}
			// Types declared in function bodies have a scope no generated type can join
			scope := models.Ancestor{Kind: models.AncestorOther, Name: funcName(decl)}
			ast.Inspect(decl.Body, func(n ast.Node) bool {
				if stmt, ok := n.(*ast.DeclStmt); ok {
					if gen, ok := stmt.Decl.(*ast.GenDecl); ok {
						collect(gen, []models.Ancestor{scope, namespace})
					}
				}
				return true
			})
		}
	}

	return decls, errs.ErrorOrNil()
}

func (p *Parser) fromGenDecl(gen *ast.GenDecl, fileName string, ancestors []models.Ancestor, info *types.Info) ([]*models.AnnotatedDeclaration, error) {
	if gen.Tok != token.TYPE {
		return nil, nil
	}

	var (
		decls []*models.AnnotatedDeclaration
		errs  = errors.NewMultipleErrors()
	)
	for _, spec := range gen.Specs {
		typeSpec := spec.(*ast.TypeSpec)
		doc := typeSpec.Doc
		if doc == nil && len(gen.Specs) == 1 {
			doc = gen.Doc
		}

		parsed, err := p.annotationFor(doc, fileName)
		if err != nil {
			errs.Add(err)
			continue
		}
		if parsed == nil {
			continue
		}

		loc := p.location(fileName, typeSpec.Name.Pos())
		iface, ok := typeSpec.Type.(*ast.InterfaceType)
		if !ok {
			errs.Add(errors.NewValidationError(typeSpec.Name.Name, "interface type", "non-interface type").
				WithLocation(loc).
				WithSuggestion("Only interface declarations can carry //mapgen::mapper"))
			continue
		}

		decl := &models.AnnotatedDeclaration{
			Name:       typeSpec.Name.Name,
			TypeParams: p.typeParams(typeSpec.TypeParams),
			Ancestors:  scopedAncestors(ancestors, typeSpec, info),
			Options:    parsed.DeclarationOptions(),
			Location:   loc,
		}
		decl.Members = p.members(iface, methodTypes(info, typeSpec.Name))
		decls = append(decls, decl)
	}
	return decls, errs.ErrorOrNil()
}

// annotationFor returns the mapper annotation of a doc comment, or nil
func (p *Parser) annotationFor(doc *ast.CommentGroup, fileName string) (*annotations.ParsedAnnotation, error) {
	if doc == nil {
		return nil, nil
	}

	var found *annotations.ParsedAnnotation
	for _, c := range doc.List {
		if !annotations.IsAnnotation(c.Text) {
			continue
		}
		loc := p.location(fileName, c.Slash)
		if found != nil {
			return nil, errors.NewValidationError("annotation", "one //mapgen::mapper per interface", "duplicate annotation").WithLocation(loc)
		}
		parsed, err := p.annotations.ParseAnnotation(c.Text, loc)
		if err != nil {
			return nil, err
		}
		found = parsed
	}
	return found, nil
}

func (p *Parser) members(iface *ast.InterfaceType, funcs map[string]*types.Func) []models.Member {
	var members []models.Member
	for _, field := range iface.Methods.List {
		fn, isMethod := field.Type.(*ast.FuncType)
		if !isMethod || len(field.Names) == 0 {
			members = append(members, models.Member{Kind: models.MemberEmbedded, Source: p.expr(field.Type)})
			continue
		}
		for _, name := range field.Names {
			m := &models.MethodSignature{
				Name:       name.Name,
				TypeParams: p.typeParams(fn.TypeParams),
				Func:       funcs[name.Name],
			}
			m.Params, m.Variadic = p.fields(fn.Params)
			m.Results, _ = p.fields(fn.Results)
			members = append(members, models.Member{Kind: models.MemberMethod, Method: m})
		}
	}
	return members
}

func (p *Parser) fields(list *ast.FieldList) ([]models.Parameter, bool) {
	if list == nil {
		return nil, false
	}
	var (
		params   []models.Parameter
		variadic bool
	)
	for _, field := range list.List {
		typ := p.expr(field.Type)
		_, variadic = field.Type.(*ast.Ellipsis)
		if len(field.Names) == 0 {
			params = append(params, models.Parameter{Type: typ})
			continue
		}
		for _, name := range field.Names {
			params = append(params, models.Parameter{Name: name.Name, Type: typ})
		}
	}
	return params, variadic
}

func (p *Parser) typeParams(list *ast.FieldList) []models.TypeParam {
	if list == nil {
		return nil
	}
	var params []models.TypeParam
	for _, field := range list.List {
		constraint := p.expr(field.Type)
		for _, name := range field.Names {
			params = append(params, models.TypeParam{Name: name.Name, Constraint: constraint})
		}
	}
	return params
}

func (p *Parser) expr(node ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, p.fileSet, node); err != nil {
		return types.ExprString(node)
	}
	return buf.String()
}

func (p *Parser) location(fileName string, pos token.Pos) errors.SourceLocation {
	position := p.fileSet.Position(pos)
	if position.Filename == "" {
		position.Filename = fileName
	}
	return errors.SourceLocation{File: position.Filename, Line: position.Line, Column: position.Column}
}

func funcName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	recv := fn.Recv.List[0].Type
	if star, ok := recv.(*ast.StarExpr); ok {
		recv = star.X
	}
	switch r := recv.(type) {
	case *ast.IndexExpr:
		recv = r.X
	case *ast.IndexListExpr:
		recv = r.X
	}
	if ident, ok := recv.(*ast.Ident); ok {
		return ident.Name + "." + fn.Name.Name
	}
	return fn.Name.Name
}

// fileImports returns the file's imports without comments or blank imports
func fileImports(file *ast.File) []models.ImportDirective {
	var imports []models.ImportDirective
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		directive := models.ImportDirective{Path: path}
		if spec.Name != nil {
			if spec.Name.Name == "_" {
				continue
			}
			directive.Alias = spec.Name.Name
		}
		imports = append(imports, directive)
	}
	return imports
}

// scopedAncestors copies ancestors for one declaration, keeping only the dot
// imports its own declaration refers to. A dot import the generated code does
// not use would not compile.
func scopedAncestors(ancestors []models.Ancestor, spec *ast.TypeSpec, info *types.Info) []models.Ancestor {
	scoped := append([]models.Ancestor(nil), ancestors...)
	for i, a := range scoped {
		if a.Kind == models.AncestorNamespace {
			scoped[i].Imports = usedDotImports(a.Imports, spec, info)
		}
	}
	return scoped
}

// usedDotImports drops the dot imports node does not reference. Without type
// information every dot import is kept.
func usedDotImports(imports []models.ImportDirective, node ast.Node, info *types.Info) []models.ImportDirective {
	if info == nil {
		return imports
	}

	used := make(map[string]bool)
	ast.Inspect(node, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			if obj := info.Uses[id]; obj != nil && obj.Pkg() != nil {
				used[obj.Pkg().Path()] = true
			}
		}
		return true
	})

	kept := make([]models.ImportDirective, 0, len(imports))
	for _, imp := range imports {
		if imp.Alias == "." && !used[imp.Path] {
			continue
		}
		kept = append(kept, imp)
	}
	return kept
}

// recordSourceFile notes a loaded source file and its //go:build line
func recordSourceFile(metadata *models.PackageMetadata, file *ast.File, filename string) {
	if ast.IsGenerated(file) {
		return
	}
	metadata.SourceFiles = append(metadata.SourceFiles, filename)
	if line := buildConstraint(file); line != "" {
		if metadata.BuildConstraints == nil {
			metadata.BuildConstraints = make(map[string]string)
		}
		metadata.BuildConstraints[filename] = line
	}
}

// buildConstraint returns the //go:build line of file, or ""
func buildConstraint(file *ast.File) string {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if constraint.IsGoBuild(c.Text) {
				return strings.TrimSpace(c.Text)
			}
		}
	}
	return ""
}

// methodTypes maps method names of the interface named by ident to their type information
func methodTypes(info *types.Info, ident *ast.Ident) map[string]*types.Func {
	if info == nil {
		return nil
	}
	obj, ok := info.Defs[ident].(*types.TypeName)
	if !ok || obj == nil {
		return nil
	}
	iface, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		return nil
	}
	funcs := make(map[string]*types.Func, iface.NumExplicitMethods())
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		fn := iface.ExplicitMethod(i)
		funcs[fn.Name()] = fn
	}
	return funcs
}

// maskGenerated overlays every generated mapper file under dir with an empty
// file of the same package. The //go:build line is kept so the mask belongs
// to the same builds as the file it hides.
func maskGenerated(dir string) map[string][]byte {
	overlay := make(map[string][]byte)
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !models.IsGeneratedFileName(d.Name()) {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.PackageClauseOnly|parser.ParseComments)
		if err != nil || !ast.IsGenerated(file) {
			return nil
		}
		mask := fmt.Sprintf("package %s\n", file.Name.Name)
		if line := buildConstraint(file); line != "" {
			mask = line + "\n\n" + mask
		}
		overlay[path] = []byte(mask)
		return nil
	})
	return overlay
}

// FileContext is the semantic context of a declaration: the imports of the
// file that declares it
type FileContext []models.ImportDirective

// Imports returns the file's import directives
func (c FileContext) Imports() []models.ImportDirective {
	return c
}

// ContextFor returns the semantic context of a parsed declaration
func ContextFor(decl *models.AnnotatedDeclaration) FileContext {
	if ns, ok := decl.Namespace(); ok {
		return FileContext(ns.Imports)
	}
	return nil
}
