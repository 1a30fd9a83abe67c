package models

import (
	"go/types"
	"strings"

	"github.com/toyz/mapgen/internal/errors"
)

// AnnotatedDeclaration represents a mapping interface marked for generation.
// It is owned by the host front end and only read by the pipeline.
type AnnotatedDeclaration struct {
	Name       string                // interface identifier, e.g. IUserMapper
	TypeParams []TypeParam           // interface type parameters
	Members    []Member              // declared members in source order
	Ancestors  []Ancestor            // enclosing containers, innermost first
	Options    DeclarationOptions    // options from the annotation
	Location   errors.SourceLocation // where the interface is declared
}

// DeclarationOptions holds per-declaration annotation parameters
type DeclarationOptions struct {
	Name    string // explicit output type name; bypasses the naming policy
	Lenient bool   // drop unsupported ancestors instead of failing
}

// Methods returns the method members in declaration order
func (d *AnnotatedDeclaration) Methods() []*MethodSignature {
	var methods []*MethodSignature
	for i := range d.Members {
		if d.Members[i].Kind == MemberMethod {
			methods = append(methods, d.Members[i].Method)
		}
	}
	return methods
}

// Namespace returns the outermost namespace ancestor, if any
func (d *AnnotatedDeclaration) Namespace() (Ancestor, bool) {
	for i := len(d.Ancestors) - 1; i >= 0; i-- {
		if d.Ancestors[i].Kind == AncestorNamespace {
			return d.Ancestors[i], true
		}
	}
	return Ancestor{}, false
}

// MemberKind distinguishes interface members
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberEmbedded
)

// Member is one element of an interface body
type Member struct {
	Kind   MemberKind
	Method *MethodSignature // set for MemberMethod
	Source string           // element source text for MemberEmbedded, e.g. io.Closer
}

// MethodSignature describes one method of a mapping interface
type MethodSignature struct {
	Name       string
	Params     []Parameter
	TypeParams []TypeParam
	Results    []Parameter
	Variadic   bool

	// Func carries type information when the front end type-checked the package
	Func *types.Func
}

// Clone returns a copy that shares no slices with the receiver
func (m *MethodSignature) Clone() MethodSignature {
	clone := *m
	clone.Params = append([]Parameter(nil), m.Params...)
	clone.TypeParams = append([]TypeParam(nil), m.TypeParams...)
	clone.Results = append([]Parameter(nil), m.Results...)
	return clone
}

// String renders the signature without the func keyword, e.g. Map(source UserDto) User
func (m *MethodSignature) String() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteString(FormatTypeParams(m.TypeParams))
	b.WriteString("(")
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")

	switch {
	case len(m.Results) == 0:
	case len(m.Results) == 1 && m.Results[0].Name == "":
		b.WriteString(" ")
		b.WriteString(m.Results[0].Type)
	default:
		b.WriteString(" (")
		for i, r := range m.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.String())
		}
		b.WriteString(")")
	}
	return b.String()
}

// Ancestor is one lexical container around an annotated declaration
type Ancestor struct {
	Kind       AncestorKind
	Name       string
	Imports    []ImportDirective // namespace imports, comments stripped
	Modifiers  []Modifier        // class/struct modifiers
	TypeParams []TypeParam       // class/struct generic parameters
}
