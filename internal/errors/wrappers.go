package errors

import "fmt"

// Common error constructors used throughout the codebase

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}

// MissingTypeArgumentError reports a tracked interface referenced without
// the type argument repomap needs to read.
func MissingTypeArgumentError(typeName, interfaceRef string, loc SourceLocation) *BaseError {
	message := fmt.Sprintf("type '%s' implements '%s' without a type argument", typeName, interfaceRef)
	return New(ConfigurationErrorCode, message).
		WithLocation(loc).
		WithContext("type_name", typeName).
		WithContext("interface", interfaceRef).
		WithSuggestions(
			fmt.Sprintf("Instantiate the interface with the entity type, e.g. %s[Entity]", interfaceRef),
			"Check that --interface names the generic repository interface",
		)
}

// ArtifactWriteError wraps an I/O failure while creating or writing the artifact
func ArtifactWriteError(resource string, cause error) *BaseError {
	message := fmt.Sprintf("failed to write artifact '%s'", resource)
	return Wrap(ArtifactWriteErrorCode, message, cause).
		WithContext("resource", resource).
		WithSuggestion("Check that the output directory exists and is writable")
}

// LoadError wraps a package loading or type-checking failure
func LoadError(pattern string, cause error) *BaseError {
	message := fmt.Sprintf("failed to load packages '%s'", pattern)
	return Wrap(LoadErrorCode, message, cause).
		WithContext("pattern", pattern).
		WithSuggestions(
			"Run 'go build ./...' to see compiler errors",
			"Run 'go mod tidy' to ensure dependencies are available",
		)
}

// PackageError reports a single error attached to a loaded package
func PackageError(pkgPath, message string, loc SourceLocation) *BaseError {
	return New(LoadErrorCode, message).
		WithLocation(loc).
		WithContext("package", pkgPath)
}

// AnnotationSyntaxError creates a syntax error for a malformed directive
func AnnotationSyntaxError(directive string, loc SourceLocation, cause error) *BaseError {
	message := fmt.Sprintf("malformed annotation '%s'", directive)
	return Wrap(SyntaxErrorCode, message, cause).
		WithLocation(loc).
		WithContext("annotation", directive).
		WithSuggestion("Annotations look like //repomap::Repository or //repomap::Repository -value=users")
}

// StateError reports an operation that is not allowed in the current state
func StateError(operation, state string) *BaseError {
	message := fmt.Sprintf("cannot %s: processor is %s", operation, state)
	return New(StateErrorCode, message).
		WithContext("operation", operation).
		WithContext("state", state)
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err RepomapError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
