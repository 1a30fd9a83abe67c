package models

import "fmt"

// ErrorType represents different types of generator errors
type ErrorType int

const (
	ErrorTypeAnnotationSyntax ErrorType = iota
	ErrorTypeValidation
	ErrorTypeGeneration
	ErrorTypeFileSystem
)

// String returns the string representation of the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeAnnotationSyntax:
		return "Annotation Syntax Error"
	case ErrorTypeValidation:
		return "Validation Error"
	case ErrorTypeGeneration:
		return "Code Generation Error"
	case ErrorTypeFileSystem:
		return "File System Error"
	default:
		return "Unknown Error"
	}
}

// GeneratorError represents an error surfaced by the CLI coordinator
type GeneratorError struct {
	Type        ErrorType              // type of error
	File        string                 // file where error occurred
	Line        int                    // line number where error occurred
	Message     string                 // error message
	Cause       error                  // underlying error cause
	Suggestions []string               // hints for fixing the error
	Context     map[string]interface{} // additional context
}

// Error implements the error interface
func (e *GeneratorError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error cause
func (e *GeneratorError) Unwrap() error {
	return e.Cause
}
