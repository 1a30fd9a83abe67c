package mapping

import (
	"go/types"
	"strings"

	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/syntax"
)

// FieldDecider implements struct-to-struct mapping methods by copying fields
// whose names match after normalisation. It only handles methods that carry
// type information.
type FieldDecider struct{}

// NewFieldDecider creates the built-in field-matching decider
func NewFieldDecider() *FieldDecider {
	return &FieldDecider{}
}

type assignKind int

const (
	assignDirect assignKind = iota
	assignConvert
	assignCloneSlice
	assignCloneMap
)

type fieldAssign struct {
	dst  string
	src  string
	kind assignKind
	conv string // target type expression for assignConvert
}

type fieldPlan struct {
	source     string
	sourcePtr  bool
	resultType string // result type expression without the pointer star
	resultPtr  bool
	withError  bool
	local      string
	fields     []fieldAssign
}

// CanHandle reports whether the method maps one struct to another with at
// least one matching field
func (d *FieldDecider) CanHandle(method *models.MethodSignature) bool {
	_, ok := d.plan(method)
	return ok
}

// Synthesize builds the field copy body
func (d *FieldDecider) Synthesize(method *models.MethodSignature, b *syntax.Builder) []models.Statement {
	p, ok := d.plan(method)
	if !ok {
		return nil
	}

	zero := p.local
	if p.resultPtr {
		zero = "nil"
	}
	returns := func(v string) models.Statement {
		if p.withError {
			return b.Return(v, "nil")
		}
		return b.Return(v)
	}

	var stmts []models.Statement
	if !p.resultPtr {
		stmts = append(stmts, b.Declare(p.local, p.resultType))
	}
	if p.sourcePtr {
		stmts = append(stmts, b.If(p.source+" == nil", returns(zero)))
	}
	if p.resultPtr {
		stmts = append(stmts, b.Define(p.local, "&"+p.resultType+"{}"))
	}

	for _, f := range p.fields {
		from := p.source + "." + f.src
		switch f.kind {
		case assignConvert:
			from = f.conv + "(" + from + ")"
		case assignCloneSlice:
			from = b.Call("slices", "Clone", from)
		case assignCloneMap:
			from = b.Call("maps", "Clone", from)
		}
		stmts = append(stmts, b.Assign(p.local+"."+f.dst, from))
	}

	return append(stmts, returns(p.local))
}

func (d *FieldDecider) plan(m *models.MethodSignature) (*fieldPlan, bool) {
	if m == nil || m.Func == nil || m.Variadic || len(m.TypeParams) > 0 {
		return nil, false
	}
	sig, ok := m.Func.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 1 || len(m.Params) != 1 {
		return nil, false
	}
	if name := m.Params[0].Name; name == "" || name == "_" {
		return nil, false
	}

	results := sig.Results()
	switch {
	case results.Len() == 1:
	case results.Len() == 2 && isError(results.At(1).Type()):
	default:
		return nil, false
	}
	if len(m.Results) != results.Len() {
		return nil, false
	}

	src, srcPtr, ok := structOf(sig.Params().At(0).Type())
	if !ok {
		return nil, false
	}
	dst, dstPtr, ok := structOf(results.At(0).Type())
	if !ok {
		return nil, false
	}

	resultType := m.Results[0].Type
	if dstPtr {
		if !strings.HasPrefix(resultType, "*") {
			return nil, false
		}
		resultType = strings.TrimPrefix(resultType, "*")
	}

	pkg := m.Func.Pkg()
	p := &fieldPlan{
		source:     m.Params[0].Name,
		sourcePtr:  srcPtr,
		resultType: resultType,
		resultPtr:  dstPtr,
		withError:  results.Len() == 2,
		local:      localName(m),
	}

	for i := 0; i < dst.NumFields(); i++ {
		df := dst.Field(i)
		if !accessible(df, pkg) {
			continue
		}
		sf := findField(src, df.Name(), pkg)
		if sf == nil {
			continue
		}
		if a, ok := classify(sf, df, pkg); ok {
			p.fields = append(p.fields, a)
		}
	}

	if len(p.fields) == 0 {
		return nil, false
	}
	return p, true
}

func classify(src, dst *types.Var, pkg *types.Package) (fieldAssign, bool) {
	a := fieldAssign{dst: dst.Name(), src: src.Name(), kind: assignDirect}
	st, dt := src.Type(), dst.Type()

	if types.Identical(st, dt) {
		switch types.Unalias(dt).(type) {
		case *types.Slice:
			a.kind = assignCloneSlice
		case *types.Map:
			a.kind = assignCloneMap
		}
		return a, true
	}
	if types.AssignableTo(st, dt) {
		return a, true
	}

	sb, sok := st.Underlying().(*types.Basic)
	db, dok := dt.Underlying().(*types.Basic)
	if !sok || !dok || !types.ConvertibleTo(st, dt) {
		return a, false
	}
	// string(int) yields a rune, not digits
	if db.Info()&types.IsString != 0 && sb.Info()&types.IsInteger != 0 {
		return a, false
	}
	conv, ok := typeExpr(dt, pkg)
	if !ok {
		return a, false
	}
	a.kind = assignConvert
	a.conv = conv
	return a, true
}

// typeExpr renders types that need no import: basic types and named types of pkg
func typeExpr(t types.Type, pkg *types.Package) (string, bool) {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		return t.Name(), true
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == pkg && t.TypeArgs().Len() == 0 {
			return obj.Name(), true
		}
	}
	return "", false
}

// findField prefers an exact name match, then a normalised one
func findField(st *types.Struct, name string, pkg *types.Package) *types.Var {
	want := normalizeIdent(name)
	var fuzzy *types.Var
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !accessible(f, pkg) {
			continue
		}
		if f.Name() == name {
			return f
		}
		if fuzzy == nil && normalizeIdent(f.Name()) == want {
			fuzzy = f
		}
	}
	return fuzzy
}

func accessible(f *types.Var, pkg *types.Package) bool {
	return f.Name() != "_" && (f.Exported() || f.Pkg() == pkg)
}

func structOf(t types.Type) (*types.Struct, bool, bool) {
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		st, ok := p.Elem().Underlying().(*types.Struct)
		return st, true, ok
	}
	st, ok := t.Underlying().(*types.Struct)
	return st, false, ok
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func localName(m *models.MethodSignature) string {
	used := make(map[string]bool)
	for _, p := range m.Params {
		used[p.Name] = true
	}
	for _, r := range m.Results {
		used[r.Name] = true
	}
	for _, candidate := range []string{"result", "mapped", "out"} {
		if !used[candidate] {
			return candidate
		}
	}
	return "result_"
}
