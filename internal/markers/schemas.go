package markers

import (
	"fmt"

	"github.com/toyz/mockwire/internal/utils"
)

var substituteName = utils.All(
	utils.NotEmpty("substitute name"),
	utils.MatchesRegex("substitute name", `^[A-Za-z_][A-Za-z0-9_.]*$`),
)

func validateName(v interface{}) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	return substituteName(name)
}

// MockSchema defines the schema for mock markers
var MockSchema = Schema{
	Kind:        Mock,
	Description: "Creates a mock for the field and offers it for injection",
	Produces:    true,
	Candidate:   true,
	Parameters: map[string]ParameterSpec{
		NameParam: {
			Type:        StringType,
			Description: "Name used to disambiguate candidates of the same type (defaults to the field name)",
			Validator:   validateName,
		},
	},
	Examples: []string{
		`mockwire:"mock"`,
		`mockwire:"mock -name=primary"`,
	},
}

// SpySchema defines the schema for spy markers
var SpySchema = Schema{
	Kind:        Spy,
	Description: "Wraps the field's current value in a spy and offers it for injection",
	Produces:    true,
	Candidate:   true,
	Parameters: map[string]ParameterSpec{
		NameParam: {
			Type:        StringType,
			Description: "Name used to disambiguate candidates of the same type (defaults to the field name)",
			Validator:   validateName,
		},
	},
	Examples: []string{
		`mockwire:"spy"`,
		`mockwire:"inject spy"`,
	},
}

// CaptorSchema defines the schema for captor markers
var CaptorSchema = Schema{
	Kind:        Captor,
	Description: "Allocates an argument captor; captors are never injected",
	Produces:    true,
	Examples: []string{
		`mockwire:"captor"`,
	},
}

// InjectSchema defines the schema for inject markers
var InjectSchema = Schema{
	Kind:        Inject,
	Description: "Builds or completes the field's value with the fixture's mocks and spies",
	Examples: []string{
		`mockwire:"inject"`,
		`mockwire:"inject spy"`,
	},
}

// BuiltinSchemas returns the schemas of the built-in marker kinds
func BuiltinSchemas() []Schema {
	return []Schema{MockSchema, SpySchema, CaptorSchema, InjectSchema}
}
