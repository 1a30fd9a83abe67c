package models

import "strings"

// Statement is a single Go statement in source form
type Statement string

// GeneratorIdentity names the generator that produced a type
type GeneratorIdentity struct {
	Name    string
	Version string
}

// String returns "name version"
func (g GeneratorIdentity) String() string {
	if g.Version == "" {
		return g.Name
	}
	return g.Name + " " + g.Version
}

// TypeRef references a named type, optionally instantiated
type TypeRef struct {
	Name     string
	TypeArgs []string
}

// String renders the reference, e.g. IMapper[T]
func (r TypeRef) String() string {
	if len(r.TypeArgs) == 0 {
		return r.Name
	}
	return r.Name + "[" + strings.Join(r.TypeArgs, ", ") + "]"
}

// Declaration is a node of a generated fragment: a Container or a SynthesizedType
type Declaration interface {
	DeclarationName() string
	declaration()
}

// SynthesizedMethod is one generated method of a SynthesizedType
type SynthesizedMethod struct {
	Signature MethodSignature
	Body      []Statement
	Supported bool // false when the body is the unsupported marker
}

// SynthesizedType is the concrete implementation generated for an AnnotatedDeclaration
type SynthesizedType struct {
	Name       string
	Interface  TypeRef
	TypeParams []TypeParam
	Modifiers  []Modifier
	Methods    []SynthesizedMethod
	Embedded   []Member // pass-through members copied from the interface
	Generator  GeneratorIdentity
}

// DeclarationName returns the type name
func (t *SynthesizedType) DeclarationName() string { return t.Name }

func (*SynthesizedType) declaration() {}

// HasModifier reports whether the type carries the given modifier
func (t *SynthesizedType) HasModifier(m Modifier) bool {
	for _, existing := range t.Modifiers {
		if existing == m {
			return true
		}
	}
	return false
}

// Container is a reconstructed ancestor shell owning the next inner declarations
type Container struct {
	Kind       AncestorKind
	Name       string
	Imports    []ImportDirective
	Modifiers  []Modifier
	TypeParams []TypeParam
	Members    []Declaration
}

// DeclarationName returns the container name
func (c *Container) DeclarationName() string { return c.Name }

func (*Container) declaration() {}

// GenerationResult is the fragment returned to the host for one generation pass
type GenerationResult struct {
	Members  []Declaration     // top-level declarations to merge into the compilation
	Imports  []ImportDirective // additional imports required by generated code
	Warnings []string          // degraded-mode notices, e.g. missing baseline references
}

// Types returns every synthesized type in the fragment, depth first
func (r *GenerationResult) Types() []*SynthesizedType {
	var found []*SynthesizedType
	var walk func([]Declaration)
	walk = func(decls []Declaration) {
		for _, decl := range decls {
			switch d := decl.(type) {
			case *SynthesizedType:
				found = append(found, d)
			case *Container:
				walk(d.Members)
			}
		}
	}
	walk(r.Members)
	return found
}
