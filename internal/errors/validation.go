package errors

import "fmt"

// ValidationError represents a validation error with detailed context
type ValidationError struct {
	*BaseError
	Field    string      // field that failed validation
	Value    interface{} // the value that failed validation
	Expected string      // what was expected
	Actual   string      // what was provided
}

// NewValidationError creates a new validation error
func NewValidationError(field, expected, actual string) *ValidationError {
	message := fmt.Sprintf("validation failed for field '%s': expected %s, got %s", field, expected, actual)

	return &ValidationError{
		BaseError: New(ValidationErrorCode, message),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

// WithValue sets the value that failed validation
func (e *ValidationError) WithValue(value interface{}) *ValidationError {
	e.Value = value
	return e
}

// WithLocation adds location information to the error
func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SyntaxError represents an annotation syntax error
type SyntaxError struct {
	*BaseError
	Token string // the token that caused the error
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
	}
}

// NewSyntaxErrorWithToken creates a syntax error with token information
func NewSyntaxErrorWithToken(message, token string) *SyntaxError {
	if token != "" {
		message = fmt.Sprintf("%s (near token '%s')", message, token)
	}

	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
	}
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// GenerationError represents a failure while rendering generated code
type GenerationError struct {
	*BaseError
	TargetFile string // file being generated
	Stage      string // generation stage (synthesize, render, format, write)
}

// NewGenerationError creates a new generation error
func NewGenerationError(message string) *GenerationError {
	return &GenerationError{
		BaseError: New(GenerationErrorCode, message),
	}
}

// WithStage records the generation stage that failed
func (e *GenerationError) WithStage(stage string) *GenerationError {
	e.Stage = stage
	return e
}

// WithLocation adds location information to the error
func (e *GenerationError) WithLocation(loc SourceLocation) *GenerationError {
	e.BaseError.WithLocation(loc)
	return e
}
