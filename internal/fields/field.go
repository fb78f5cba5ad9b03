// Package fields locates the declared fields of a struct type and writes
// values into them.
//
// Only fields declared directly on the struct are reported. An embedded
// struct shows up as one field; its own fields are never visited.
package fields

import (
	"reflect"

	"github.com/toyz/mockwire/internal/markers"
)

// Field describes one declared field of a struct type. It is immutable once
// returned by a Locator.
type Field struct {
	Name     string            // Go field name
	Index    int               // index in the owner's field list
	Type     reflect.Type      // declared type
	Owner    reflect.Type      // struct type declaring the field
	Exported bool              // false for unexported fields
	Embedded bool              // true for embedded fields
	Tag      reflect.StructTag // raw struct tag
	Markers  []markers.Marker  // parsed markers, in tag order
	Skip     bool              // tagged "-"
}

// QualifiedName returns Owner.Name, used in errors and reports
func (f Field) QualifiedName() string {
	owner := "<nil>"
	if f.Owner != nil {
		owner = f.Owner.Name()
		if owner == "" {
			owner = f.Owner.String()
		}
	}
	return owner + "." + f.Name
}

// HasMarker reports whether the field carries a marker of the given kind
func (f Field) HasMarker(kind markers.Kind) bool {
	return markers.Has(f.Markers, kind)
}

// Marker returns the field's marker of the given kind
func (f Field) Marker(kind markers.Kind) (markers.Marker, bool) {
	return markers.Find(f.Markers, kind)
}

// IsMarked reports whether the field carries any marker
func (f Field) IsMarked() bool {
	return len(f.Markers) > 0
}
