package annotations

import (
	"fmt"
	"sync"

	"github.com/toyz/mapgen/internal/utils"
)

// AnnotationRegistry defines the interface for managing annotation schemas
type AnnotationRegistry interface {
	// Register a new annotation type with its schema
	Register(annotationType AnnotationType, schema AnnotationSchema) error

	// GetSchema retrieves the schema for an annotation type
	GetSchema(annotationType AnnotationType) (AnnotationSchema, error)

	// ListTypes returns all registered annotation types
	ListTypes() []AnnotationType

	// IsRegistered checks if an annotation type is registered
	IsRegistered(annotationType AnnotationType) bool
}

type registry struct {
	schemas *utils.BaseRegistry[AnnotationType, AnnotationSchema]
}

// NewRegistry creates a new, empty annotation registry
func NewRegistry() AnnotationRegistry {
	schemas := utils.NewBaseRegistry[AnnotationType, AnnotationSchema]("annotation", "annotation type", "schema")
	schemas.SetValidator(utils.ChainValidators(
		utils.NoDuplicateValidator[AnnotationType, AnnotationSchema]("annotation type"),
		validateSchema,
	))
	return &registry{schemas: schemas}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global registry with the built-in schemas registered
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("failed to register built-in annotation schemas: %v", err))
		}
	})
	return defaultRegistry
}

func (r *registry) Register(annotationType AnnotationType, schema AnnotationSchema) error {
	return r.schemas.Register(annotationType, schema)
}

func (r *registry) GetSchema(annotationType AnnotationType) (AnnotationSchema, error) {
	return r.schemas.GetOrError(annotationType)
}

func (r *registry) ListTypes() []AnnotationType {
	return r.schemas.List()
}

func (r *registry) IsRegistered(annotationType AnnotationType) bool {
	return r.schemas.Has(annotationType)
}

// validateSchema performs basic validation on a schema
func validateSchema(annotationType AnnotationType, schema AnnotationSchema, _ map[AnnotationType]AnnotationSchema) error {
	if schema.Type != annotationType {
		return fmt.Errorf("schema type %s does not match annotation type %s", schema.Type, annotationType)
	}

	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if paramSpec.Type < StringType || paramSpec.Type > BoolType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}
		if paramSpec.DefaultValue == nil {
			continue
		}
		switch paramSpec.Type {
		case StringType:
			if _, ok := paramSpec.DefaultValue.(string); !ok {
				return fmt.Errorf("default value for string parameter %s must be string, got %T", paramName, paramSpec.DefaultValue)
			}
		case BoolType:
			if _, ok := paramSpec.DefaultValue.(bool); !ok {
				return fmt.Errorf("default value for bool parameter %s must be bool, got %T", paramName, paramSpec.DefaultValue)
			}
		}
	}
	return nil
}
