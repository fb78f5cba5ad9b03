package errors

import "fmt"

// Common error wrapping patterns used throughout the codebase

// WrapWithOperation wraps an error with an operation context
func WrapWithOperation(operation, item string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s %s", operation, item)
	return Wrap(UnknownErrorCode, message, cause)
}

// WrapRegisterError wraps an error with a "failed to register" message
func WrapRegisterError(componentType, name string, cause error) *RegistrationError {
	err := NewRegistrationError(componentType, name, cause.Error())
	err.WithCause(cause)
	return err
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *SyntaxError {
	message := fmt.Sprintf("failed to parse %s", item)
	return &SyntaxError{
		BaseError: Wrap(SyntaxErrorCode, message, cause),
	}
}

// WrapConfigurationError turns any error raised while preparing a field into a configuration error
func WrapConfigurationError(field string, cause error) *ConfigurationError {
	if cfgErr, ok := cause.(*ConfigurationError); ok {
		return cfgErr
	}
	return NewConfigurationError(field, "invalid marker configuration").WithCause(cause)
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err MockwireError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
