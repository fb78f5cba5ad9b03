package utils

import (
	"fmt"
	"go/token"
	"regexp"
)

// ValidationError names the value that failed a Validator
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s '%v' %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("'%v' %s", e.Value, e.Message)
}

// Validator checks a single value
type Validator[T any] func(T) error

// All runs validators in order and returns the first failure
func All[T any](validators ...Validator[T]) Validator[T] {
	return func(value T) error {
		for _, v := range validators {
			if err := v(value); err != nil {
				return err
			}
		}
		return nil
	}
}

// NotEmpty rejects the empty string
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if value == "" {
			return ValidationError{Field: field, Value: value, Message: "cannot be empty"}
		}
		return nil
	}
}

// IsValidGoIdentifier rejects anything that is not a Go identifier
func IsValidGoIdentifier(field string) Validator[string] {
	return func(value string) error {
		if !token.IsIdentifier(value) {
			return ValidationError{Field: field, Value: value, Message: "must be a valid Go identifier"}
		}
		return nil
	}
}

// MatchesRegex rejects strings not matching pattern
func MatchesRegex(field, pattern string) Validator[string] {
	re := regexp.MustCompile(pattern)
	return func(value string) error {
		if !re.MatchString(value) {
			return ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must match '%s'", pattern)}
		}
		return nil
	}
}

// Unique rejects slices holding the same value twice
func Unique[T comparable](field string) Validator[[]T] {
	return func(values []T) error {
		seen := make(map[T]bool, len(values))
		for _, v := range values {
			if seen[v] {
				return ValidationError{Field: field, Value: v, Message: "is repeated"}
			}
			seen[v] = true
		}
		return nil
	}
}

// Each applies item to every element of a slice
func Each[T any](item Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for _, v := range values {
			if err := item(v); err != nil {
				return err
			}
		}
		return nil
	}
}
