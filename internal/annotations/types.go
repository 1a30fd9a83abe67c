package annotations

import (
	"fmt"
	"strconv"

	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/models"
)

// Prefix starts every mapgen annotation
const Prefix = "//mapgen::"

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	MapperAnnotation AnnotationType = iota
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case MapperAnnotation:
		return "mapper"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "mapper":
		return MapperAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// ParsedAnnotation represents a fully parsed annotation with typed parameters
type ParsedAnnotation struct {
	Type       AnnotationType
	Parameters map[string]interface{}
	Location   errors.SourceLocation
	Raw        string
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// DeclarationOptions maps a mapper annotation onto declaration options
func (p *ParsedAnnotation) DeclarationOptions() models.DeclarationOptions {
	return models.DeclarationOptions{
		Name:    p.GetString(ParamName),
		Lenient: p.GetBool(ParamLenient),
	}
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	default:
		return "unknown"
	}
}

// convert turns a raw annotation value into the parameter's type
func (p ParameterType) convert(raw string) (interface{}, error) {
	switch p {
	case StringType:
		return raw, nil
	case BoolType:
		return strconv.ParseBool(raw)
	default:
		return nil, fmt.Errorf("unsupported parameter type %d", p)
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType
	Required     bool
	DefaultValue interface{} // value used when the flag is given without =value
	Description  string
	Validator    func(interface{}) error
}

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType
	Description string
	Parameters  map[string]ParameterSpec
	Examples    []string
}
