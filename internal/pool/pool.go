// Package pool holds the substitutes available to an injection pass.
//
// A Pool is assembled once through a Builder and is read-only afterwards,
// so resolution over it is deterministic and free of side effects.
package pool

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/markers"
)

// Substitute is a mock or spy offered for injection
type Substitute struct {
	ID    uuid.UUID     // identity, unique per substitute
	Name  string        // name used for disambiguation
	Kind  markers.Kind  // marker that produced it
	Field string        // fixture field holding it
	Value reflect.Value // the substitute itself
}

// Type returns the substitute's dynamic type
func (s Substitute) Type() reflect.Type {
	v := s.Value
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v.Type()
}

// AssignableTo reports whether the substitute can be stored in a slot of type t
func (s Substitute) AssignableTo(t reflect.Type) bool {
	return s.Type().AssignableTo(t)
}

// Interface returns the substitute as an interface value
func (s Substitute) Interface() interface{} {
	return s.Value.Interface()
}

// String identifies the substitute in reports and errors
func (s Substitute) String() string {
	return fmt.Sprintf("%s(%s %s)", s.Name, s.Kind, s.Type())
}

// Pool is a read-only, ordered set of substitutes
type Pool struct {
	items  []Substitute
	byName map[string]int
}

// Empty returns a pool without substitutes
func Empty() *Pool {
	return &Pool{byName: map[string]int{}}
}

// ByType returns every substitute assignable to t, in pool order
func (p *Pool) ByType(t reflect.Type) []Substitute {
	var out []Substitute
	for _, s := range p.items {
		if s.AssignableTo(t) {
			out = append(out, s)
		}
	}
	return out
}

// ByName returns the substitute with the given name
func (p *Pool) ByName(name string) (Substitute, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Substitute{}, false
	}
	return p.items[i], true
}

// All returns a copy of the pool's substitutes in order
func (p *Pool) All() []Substitute {
	out := make([]Substitute, len(p.items))
	copy(out, p.items)
	return out
}

// Len returns the number of substitutes
func (p *Pool) Len() int {
	return len(p.items)
}

// Builder accumulates substitutes before the pool is frozen
type Builder struct {
	items  []Substitute
	byName map[string]int
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{byName: map[string]int{}}
}

// Add appends a substitute. Names must be unique; an ID is assigned when missing.
func (b *Builder) Add(s Substitute) error {
	if !s.Value.IsValid() || isNil(s.Value) {
		return errors.NewConfigurationError(s.Field, "cannot offer a nil substitute for injection")
	}
	if s.Name == "" {
		s.Name = s.Field
	}
	if prev, dup := b.byName[s.Name]; dup {
		return errors.NewConfigurationError(s.Field,
			fmt.Sprintf("substitute name '%s' is already used by field '%s'", s.Name, b.items[prev].Field)).
			WithSuggestion("Give one of them a distinct -name")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	b.byName[s.Name] = len(b.items)
	b.items = append(b.items, s)
	return nil
}

// Build freezes the builder's content into a Pool
func (b *Builder) Build() *Pool {
	p := &Pool{
		items:  make([]Substitute, len(b.items)),
		byName: make(map[string]int, len(b.byName)),
	}
	copy(p.items, b.items)
	for k, v := range b.byName {
		p.byName[k] = v
	}
	return p
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}
