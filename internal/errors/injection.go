package errors

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a fixture that is marked up incorrectly.
// It aborts the whole pass.
type ConfigurationError struct {
	*BaseError
	Field string // offending field, empty when the fixture itself is at fault
}

// NewConfigurationError creates a configuration error for a field
func NewConfigurationError(field, message string) *ConfigurationError {
	full := message
	if field != "" {
		full = fmt.Sprintf("field '%s': %s", field, message)
	}
	return &ConfigurationError{
		BaseError: New(ConfigurationErrorCode, full).WithContext("field", field),
		Field:     field,
	}
}

// NewMoreThanOneMarkerError reports a field carrying several substitute-producing markers
func NewMoreThanOneMarkerError(field string, kinds []string) *ConfigurationError {
	err := NewConfigurationError(field,
		fmt.Sprintf("more than one substitute-producing marker is not allowed (found %s)", strings.Join(kinds, ", ")))
	err.WithContext("markers", kinds)
	err.WithSuggestion("Keep exactly one of mock, spy or captor on the field")
	return err
}

// WithCause adds an underlying error cause
func (e *ConfigurationError) WithCause(cause error) *ConfigurationError {
	e.BaseError.WithCause(cause)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *ConfigurationError) WithSuggestion(suggestion string) *ConfigurationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// AssignmentError reports a write that the target slot rejected.
// It aborts that field only; earlier assignments stay in place.
type AssignmentError struct {
	*BaseError
	Field  string // field that could not be written
	Marker string // marker that requested the write, if any
}

// NewAssignmentError wraps the cause of a rejected write
func NewAssignmentError(field, marker string, cause error) *AssignmentError {
	message := fmt.Sprintf("problems setting field '%s'", field)
	if marker != "" {
		message = fmt.Sprintf("problems setting field '%s' annotated with %s", field, marker)
	}
	return &AssignmentError{
		BaseError: Wrap(AssignmentErrorCode, message, cause).
			WithContext("field", field).
			WithContext("marker", marker),
		Field:  field,
		Marker: marker,
	}
}

// AmbiguityError reports several equally valid candidates for one field or parameter
type AmbiguityError struct {
	*BaseError
	Field      string   // field or parameter being resolved
	Candidates []string // names of the competing candidates
}

// NewAmbiguityError creates an ambiguity error naming every competing candidate
func NewAmbiguityError(field, typeName string, candidates []string) *AmbiguityError {
	message := fmt.Sprintf("ambiguous candidates for '%s' of type %s: %s",
		field, typeName, strings.Join(candidates, ", "))
	return &AmbiguityError{
		BaseError: New(AmbiguityErrorCode, message).
			WithContext("field", field).
			WithContext("type", typeName).
			WithContext("candidates", candidates).
			WithSuggestion(fmt.Sprintf("Name one candidate '%s' with -name=%s", field, field)),
		Field:      field,
		Candidates: candidates,
	}
}
