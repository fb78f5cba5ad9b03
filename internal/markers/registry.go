package markers

import (
	"fmt"
	"sync"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/utils"
)

// SchemaRegistry defines the interface for managing marker schemas
type SchemaRegistry interface {
	// Register a new marker kind with its schema
	Register(kind Kind, schema Schema) error

	// Schema retrieves the schema for a marker kind
	Schema(kind Kind) (Schema, bool)

	// Kinds returns all registered marker kinds in registration order
	Kinds() []Kind

	// IsRegistered checks if a marker kind is registered
	IsRegistered(kind Kind) bool
}

type schemaRegistry struct {
	schemas *utils.BaseRegistry[Kind, Schema]
}

// NewSchemaRegistry creates an empty schema registry
func NewSchemaRegistry() SchemaRegistry {
	reg := utils.NewBaseRegistry[Kind, Schema]("marker schema", "marker kind")
	reg.SetValidator(utils.ChainValidators[Kind, Schema](
		utils.NotEmptyKeyValidator[Kind, Schema]("marker kind"),
		utils.NoDuplicateValidator[Kind, Schema]("marker kind"),
		validateSchema,
	))
	return &schemaRegistry{schemas: reg}
}

// NewBuiltinSchemaRegistry creates a registry holding the built-in marker kinds
func NewBuiltinSchemaRegistry() SchemaRegistry {
	reg := NewSchemaRegistry()
	for _, schema := range BuiltinSchemas() {
		if err := reg.Register(schema.Kind, schema); err != nil {
			panic(fmt.Sprintf("failed to register built-in marker %s: %v", schema.Kind, err))
		}
	}
	return reg
}

var (
	defaultSchemas     SchemaRegistry
	defaultSchemasOnce sync.Once
)

// DefaultSchemas returns the process-wide schema registry
func DefaultSchemas() SchemaRegistry {
	defaultSchemasOnce.Do(func() {
		defaultSchemas = NewBuiltinSchemaRegistry()
	})
	return defaultSchemas
}

// Register adds a new marker kind with its schema to the registry
func (r *schemaRegistry) Register(kind Kind, schema Schema) error {
	if schema.Kind == "" {
		schema.Kind = kind
	}
	if schema.Kind != kind {
		return errors.NewRegistrationError("marker", kind.String(),
			fmt.Sprintf("schema kind %s does not match marker kind %s", schema.Kind, kind))
	}
	if err := r.schemas.Register(kind, schema); err != nil {
		return errors.WrapRegisterError("marker", kind.String(), err)
	}
	return nil
}

// Schema retrieves the schema for a marker kind
func (r *schemaRegistry) Schema(kind Kind) (Schema, bool) {
	return r.schemas.Get(kind)
}

// Kinds returns all registered marker kinds
func (r *schemaRegistry) Kinds() []Kind {
	return r.schemas.List()
}

// IsRegistered checks if a marker kind is registered
func (r *schemaRegistry) IsRegistered(kind Kind) bool {
	return r.schemas.Has(kind)
}

// validateSchema performs basic validation on a schema
func validateSchema(kind Kind, schema Schema, _ map[Kind]Schema) error {
	if schema.Candidate && !schema.Produces {
		return fmt.Errorf("marker %s cannot be a candidate without producing a substitute", kind)
	}

	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}

		if paramSpec.Type < StringType || paramSpec.Type > StringSliceType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}

		if paramSpec.DefaultValue != nil {
			if err := validateDefaultValue(paramName, paramSpec.Type, paramSpec.DefaultValue); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateDefaultValue checks if the default value matches the parameter type
func validateDefaultValue(paramName string, paramType ParameterType, defaultValue interface{}) error {
	ok := false
	switch paramType {
	case StringType:
		_, ok = defaultValue.(string)
	case BoolType:
		_, ok = defaultValue.(bool)
	case IntType:
		_, ok = defaultValue.(int)
	case StringSliceType:
		_, ok = defaultValue.([]string)
	}
	if !ok {
		return fmt.Errorf("default value for %s parameter %s must be %s, got %T",
			paramType, paramName, paramType, defaultValue)
	}
	return nil
}
