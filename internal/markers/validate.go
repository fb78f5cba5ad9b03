package markers

import (
	"github.com/toyz/mockwire/internal/errors"
)

// Validate checks the markers of a single field against the registered schemas.
//
// A field may carry at most one substitute-producing marker, and an inject
// marker may only be combined with spy. Unknown kinds are ignored here; they
// resolve to the no-op handler later.
func Validate(field string, markers []Marker, schemas SchemaRegistry) error {
	if schemas == nil {
		schemas = DefaultSchemas()
	}
	var producing []string
	seen := make(map[Kind]bool, len(markers))

	for _, m := range markers {
		if seen[m.Kind] {
			schema, ok := schemas.Schema(m.Kind)
			if !ok || !schema.Produces {
				return errors.NewConfigurationError(field, "marker "+m.Kind.String()+" is repeated")
			}
		}
		seen[m.Kind] = true

		if schema, ok := schemas.Schema(m.Kind); ok && schema.Produces {
			producing = append(producing, m.Kind.String())
		}
	}

	if len(producing) > 1 {
		return errors.NewMoreThanOneMarkerError(field, producing)
	}

	if seen[Inject] {
		for _, m := range markers {
			if m.Kind == Inject || m.Kind == Spy {
				continue
			}
			if schema, ok := schemas.Schema(m.Kind); ok && schema.Produces {
				return errors.NewConfigurationError(field,
					"inject can only be combined with spy, found "+m.Kind.String()).
					WithSuggestion("Move the " + m.Kind.String() + " marker to a separate field")
			}
		}
	}

	return nil
}
