package markers

import (
	"fmt"
	"sort"
	"strings"
)

// Kind names a marker. The set is open: callers may register their own kinds
// next to the built-in ones.
type Kind string

const (
	// Mock produces a mock for the field
	Mock Kind = "mock"
	// Spy wraps the field's current value
	Spy Kind = "spy"
	// Captor allocates an argument captor
	Captor Kind = "captor"
	// Inject marks a field whose value receives substitutes
	Inject Kind = "inject"
)

// String returns the marker kind as written in tags
func (k Kind) String() string {
	return string(k)
}

// ParameterType represents the type of a marker parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for a marker parameter
type ParameterSpec struct {
	Type         ParameterType           // Expected parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Default value if not provided
	Description  string                  // Human-readable description
	Validator    func(interface{}) error // Custom validation function
}

// Schema defines how a marker kind behaves and which parameters it accepts
type Schema struct {
	Kind        Kind                     // Marker kind
	Description string                   // Human-readable description
	Produces    bool                     // Whether the kind produces a substitute
	Candidate   bool                     // Whether produced substitutes are offered for injection
	Parameters  map[string]ParameterSpec // Parameter specifications
	Examples    []string                 // Usage examples
}

// NameParam is the parameter carrying a substitute's name
const NameParam = "name"

// Marker is one parsed marker from a field tag
type Marker struct {
	Kind   Kind                   // Marker kind
	Params map[string]interface{} // Typed parameters
	Offset int                    // Byte offset of the marker in the tag
}

// String renders the marker back in tag syntax with parameters sorted by key
func (m Marker) String() string {
	if len(m.Params) == 0 {
		return string(m.Kind)
	}
	keys := make([]string, 0, len(m.Params))
	for k := range m.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(m.Kind))
	for _, k := range keys {
		switch v := m.Params[k].(type) {
		case bool:
			if v {
				fmt.Fprintf(&b, " -%s", k)
			} else {
				fmt.Fprintf(&b, " -%s=false", k)
			}
		case []string:
			fmt.Fprintf(&b, " -%s=%s", k, strings.Join(v, ","))
		default:
			fmt.Fprintf(&b, " -%s=%v", k, v)
		}
	}
	return b.String()
}

// GetString returns a string parameter value with optional default
func (m Marker) GetString(paramName string, defaultValue ...string) string {
	if value, exists := m.Params[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (m Marker) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := m.Params[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// Has reports whether a marker of the given kind is present
func Has(markers []Marker, kind Kind) bool {
	_, ok := Find(markers, kind)
	return ok
}

// Find returns the first marker of the given kind
func Find(markers []Marker, kind Kind) (Marker, bool) {
	for _, m := range markers {
		if m.Kind == kind {
			return m, true
		}
	}
	return Marker{}, false
}
