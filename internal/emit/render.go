// Package emit renders generation results into Go source files.
package emit

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/utils"
)

// DirectivePrefix marks generated types so tooling can recognise them
const DirectivePrefix = "//mapgen:generated"

// Header returns the generated-file header line
func Header(identity models.GeneratorIdentity) string {
	return fmt.Sprintf("// Code generated by %s. DO NOT EDIT.", identity)
}

// Renderer accumulates the generation results of one source file
type Renderer struct {
	pkg         string
	identity    models.GeneratorIdentity
	constraint  string
	imports     *ImportManager
	body        strings.Builder
	names       map[string]bool
	types       []string
	unsupported int
}

// scope is the lexical position while walking a fragment
type scope struct {
	namespaced bool
	prefix     string
	typeParams []models.TypeParam
}

// NewRenderer creates a renderer for the named package
func NewRenderer(pkg string, identity models.GeneratorIdentity) *Renderer {
	return &Renderer{
		pkg:      pkg,
		identity: identity,
		imports:  NewImportManager(),
		names:    make(map[string]bool),
	}
}

// Add renders every declaration of a generation result into the file
func (r *Renderer) Add(result *models.GenerationResult) error {
	if result == nil {
		return nil
	}
	r.imports.Add(result.Imports...)
	for _, decl := range result.Members {
		if err := r.walk(decl, scope{}); err != nil {
			return err
		}
	}
	return nil
}

// SetBuildConstraint copies a //go:build line into the rendered file
func (r *Renderer) SetBuildConstraint(line string) {
	r.constraint = strings.TrimSpace(line)
}

// Types returns the rendered type names in order
func (r *Renderer) Types() []string {
	return append([]string(nil), r.types...)
}

// Render assembles and formats the file. Unused imports are dropped.
func (r *Renderer) Render(filename string) (*models.GeneratedFile, error) {
	var src strings.Builder
	src.WriteString(Header(r.identity))
	src.WriteString("\n\n")
	if r.constraint != "" {
		src.WriteString(r.constraint)
		src.WriteString("\n\n")
	}
	fmt.Fprintf(&src, "package %s\n\n", r.pkg)
	if imports := r.imports.GenerateImports(); imports != "" {
		src.WriteString(imports)
		src.WriteString("\n")
	}
	src.WriteString(r.body.String())

	formatted, err := utils.FormatGoCode(filename, []byte(src.String()))
	if err != nil {
		return nil, errors.WrapGenerateError("format", filename, err)
	}

	return &models.GeneratedFile{
		PackageName: r.pkg,
		FilePath:    filename,
		Content:     string(formatted),
		Types:       r.Types(),
		Unsupported: r.unsupported,
	}, nil
}

func (r *Renderer) walk(decl models.Declaration, s scope) error {
	switch d := decl.(type) {
	case *models.Container:
		return r.walkContainer(d, s)
	case *models.SynthesizedType:
		return r.renderType(d, s)
	default:
		return errors.NewGenerationError(fmt.Sprintf("unexpected declaration %T", decl)).WithStage("emit")
	}
}

func (r *Renderer) walkContainer(c *models.Container, s scope) error {
	switch c.Kind {
	case models.AncestorNamespace:
		if s.namespaced {
			return errors.NewGenerationError(fmt.Sprintf("package %s cannot be nested", c.Name)).WithStage("emit")
		}
		if c.Name != r.pkg {
			return errors.NewGenerationError(fmt.Sprintf("fragment belongs to package %s, not %s", c.Name, r.pkg)).WithStage("emit")
		}
		r.imports.Add(c.Imports...)
		s.namespaced = true
	case models.AncestorClass, models.AncestorStruct:
		s.prefix += c.Name + "_"
		s.typeParams = append(append([]models.TypeParam(nil), s.typeParams...), c.TypeParams...)
	default:
		return errors.NewGenerationError(fmt.Sprintf("cannot render %s container %s", c.Kind, c.Name)).WithStage("emit")
	}

	for _, member := range c.Members {
		if err := r.walk(member, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderType(t *models.SynthesizedType, s scope) error {
	name := s.prefix + t.Name
	if !token.IsIdentifier(name) {
		return errors.NewGenerationError(fmt.Sprintf("invalid type name %q", name)).WithStage("emit")
	}
	if r.names[name] {
		return errors.NewGenerationError(fmt.Sprintf("type %s generated twice", name)).WithStage("emit")
	}
	for _, m := range t.Methods {
		if len(m.Signature.TypeParams) > 0 {
			return errors.NewGenerationError(
				fmt.Sprintf("method %s.%s declares type parameters, which Go methods cannot have", t.Interface.Name, m.Signature.Name),
			).WithStage("emit")
		}
	}

	typeParams := append(append([]models.TypeParam(nil), s.typeParams...), t.TypeParams...)
	self := name + models.FormatTypeArgs(typeParams)
	iface := models.TypeRef{
		Name:     s.prefix + t.Interface.Name,
		TypeArgs: append(typeArgs(s.typeParams), t.Interface.TypeArgs...),
	}

	b := &r.body
	fmt.Fprintf(b, "// %s implements %s.\n//\n", name, iface.Name)
	fmt.Fprintf(b, "%s name=%s version=%s\n", DirectivePrefix, t.Generator.Name, t.Generator.Version)
	fmt.Fprintf(b, "type %s%s struct", name, models.FormatTypeParams(typeParams))
	if len(t.Embedded) == 0 {
		b.WriteString("{}\n\n")
	} else {
		b.WriteString(" {\n")
		for _, e := range t.Embedded {
			fmt.Fprintf(b, "\t%s\n", e.Source)
		}
		b.WriteString("}\n\n")
	}

	if len(typeParams) == 0 {
		fmt.Fprintf(b, "var _ %s = (*%s)(nil)\n\n", iface, self)
	} else {
		fmt.Fprintf(b, "func _%s() {\n\tvar _ %s = (*%s)(nil)\n}\n\n", models.FormatTypeParams(typeParams), iface, self)
	}

	for _, m := range t.Methods {
		sig := m.Signature
		fmt.Fprintf(b, "func (*%s) %s {\n", self, sig.String())
		for _, stmt := range m.Body {
			b.WriteString(string(stmt))
			b.WriteString("\n")
		}
		b.WriteString("}\n\n")
		if !m.Supported {
			r.unsupported++
		}
	}

	r.names[name] = true
	r.types = append(r.types, name)
	return nil
}

func typeArgs(params []models.TypeParam) []string {
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = p.Name
	}
	return args
}
