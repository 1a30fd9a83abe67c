package utils

import (
	"fmt"
	"go/token"
	"strings"
)

// ValidationError reports a rejected configuration value
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return "invalid value: " + e.Message
}

// Validator checks one value
type Validator[T any] func(T) error

// ValidatorChain runs validators in order and stops at the first failure
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a chain from validators
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add appends a validator
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs the chain
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// NotEmpty rejects empty or blank strings
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return ValidationError{Field: field, Value: value, Message: "cannot be empty"}
		}
		return nil
	}
}

// IdentifierFragment accepts strings that can be glued onto a Go identifier.
// The empty string is a valid fragment.
func IdentifierFragment(field string) Validator[string] {
	return func(value string) error {
		if value == "" || token.IsIdentifier("X"+value) {
			return nil
		}
		return ValidationError{Field: field, Value: value, Message: "must contain only letters, digits and underscores"}
	}
}

// AtLeast rejects integers below min
func AtLeast(field string, min int) Validator[int] {
	return func(value int) error {
		if value < min {
			return ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be at least %d", min)}
		}
		return nil
	}
}

// IsOneOf accepts only the listed values
func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		for _, candidate := range allowed {
			if value == candidate {
				return nil
			}
		}
		return ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be one of %v", allowed)}
	}
}

// ValidateEach applies itemValidator to every element
func ValidateEach[T any](field string, itemValidator Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for i, item := range values {
			if err := itemValidator(item); err != nil {
				return ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Value:   item,
					Message: err.Error(),
				}
			}
		}
		return nil
	}
}
