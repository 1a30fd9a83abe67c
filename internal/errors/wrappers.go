package errors

import "fmt"

// Common error wrapping patterns used throughout the codebase

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s %s", operation, item)
	return Wrap(UnknownErrorCode, message, cause)
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *SyntaxError {
	message := fmt.Sprintf("failed to parse %s", item)
	return &SyntaxError{
		BaseError: Wrap(SyntaxErrorCode, message, cause),
	}
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(stage, item string, cause error) *GenerationError {
	message := fmt.Sprintf("failed to generate %s", item)
	return &GenerationError{
		BaseError:  Wrap(GenerationErrorCode, message, cause),
		TargetFile: item,
		Stage:      stage,
	}
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}
