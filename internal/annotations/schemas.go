package annotations

import (
	"github.com/toyz/mapgen/internal/naming"
)

// Mapper annotation parameters
const (
	ParamName    = "Name"
	ParamLenient = "Lenient"
)

// MapperAnnotationSchema defines the schema for //mapgen::mapper annotations
var MapperAnnotationSchema = AnnotationSchema{
	Type:        MapperAnnotation,
	Description: "Marks an interface as a mapping interface to generate an implementation for",
	Parameters: map[string]ParameterSpec{
		ParamName: {
			Type:        StringType,
			Description: "Explicit name of the generated type, bypassing the naming policy",
			Validator: func(v interface{}) error {
				return naming.Validate(v.(string))
			},
		},
		ParamLenient: {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Skip enclosing scopes that cannot hold a generated type instead of failing",
		},
	},
	Examples: []string{
		"//mapgen::mapper",
		"//mapgen::mapper -Name=Users",
		"//mapgen::mapper -Lenient",
		`//mapgen::mapper -Name="OrderConverter" -Lenient=false`,
	},
}

// RegisterBuiltinSchemas registers every built-in schema with the registry
func RegisterBuiltinSchemas(r AnnotationRegistry) error {
	return r.Register(MapperAnnotation, MapperAnnotationSchema)
}
