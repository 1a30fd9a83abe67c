package models

import (
	"fmt"
	"strings"
)

// AncestorKind identifies the lexical container enclosing an annotated declaration
type AncestorKind int

const (
	AncestorNamespace AncestorKind = iota
	AncestorClass
	AncestorStruct
	AncestorOther
)

// String returns the string representation of the ancestor kind
func (k AncestorKind) String() string {
	switch k {
	case AncestorNamespace:
		return "namespace"
	case AncestorClass:
		return "class"
	case AncestorStruct:
		return "struct"
	default:
		return "other"
	}
}

// Modifier is a declaration modifier carried onto reconstructed shells and synthesized types
type Modifier string

const (
	ModifierPublic  Modifier = "public"
	ModifierPartial Modifier = "partial"
)

// TypeParam represents a generic type parameter
type TypeParam struct {
	Name       string // parameter name, e.g. T
	Constraint string // constraint source text, e.g. any
}

// Parameter represents a named (or unnamed) parameter or result
type Parameter struct {
	Name string // may be empty for unnamed parameters
	Type string // type expression source text
}

// String renders the parameter as it appears in a Go signature
func (p Parameter) String() string {
	if p.Name == "" {
		return p.Type
	}
	return p.Name + " " + p.Type
}

// ImportDirective represents one import of a generated file
type ImportDirective struct {
	Alias string // optional import name
	Path  string // import path
}

// String renders the directive as an import spec
func (d ImportDirective) String() string {
	if d.Alias == "" {
		return fmt.Sprintf("%q", d.Path)
	}
	return fmt.Sprintf("%s %q", d.Alias, d.Path)
}

// FormatTypeParams renders a type parameter list, including brackets, or "" when empty
func FormatTypeParams(params []TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		constraint := p.Constraint
		if constraint == "" {
			constraint = "any"
		}
		parts[i] = p.Name + " " + constraint
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatTypeArgs renders type parameters as instantiation arguments, e.g. [K, V]
func FormatTypeArgs(params []TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}
