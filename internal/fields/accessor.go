package fields

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"unsafe"
)

var (
	// ErrFieldNotSettable is returned when a slot rejects a write
	ErrFieldNotSettable = stderrors.New("field not settable")

	// ErrNotCallable is returned when Invoke is given something other than a function
	ErrNotCallable = stderrors.New("value is not callable")

	// ErrInvocationPanicked is returned when an invoked function panics
	ErrInvocationPanicked = stderrors.New("invocation panicked")
)

// Accessor is the reflective capability the engine relies on: read and write
// declared fields regardless of visibility, and invoke functions.
type Accessor interface {
	// Get returns the current value of the field on owner
	Get(owner reflect.Value, f Field) (reflect.Value, error)

	// Set writes value into the field on owner, bypassing visibility
	Set(owner reflect.Value, f Field, value reflect.Value) error

	// Addr returns a pointer to the field on owner
	Addr(owner reflect.Value, f Field) (reflect.Value, error)

	// IsUnset reports whether the field holds its zero value
	IsUnset(owner reflect.Value, f Field) bool

	// Invoke calls fn with args
	Invoke(fn reflect.Value, args []reflect.Value) ([]reflect.Value, error)
}

// ReflectAccessor implements Accessor with reflect and unsafe
type ReflectAccessor struct{}

// NewReflectAccessor returns the reflection based accessor
func NewReflectAccessor() Accessor {
	return ReflectAccessor{}
}

// slot returns a settable view of the field on owner
func (ReflectAccessor) slot(owner reflect.Value, f Field) (reflect.Value, error) {
	if owner.Kind() == reflect.Pointer {
		if owner.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: owner of %s is nil", ErrFieldNotSettable, f.Name)
		}
		owner = owner.Elem()
	}
	if owner.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: owner of %s is a %s, not a struct", ErrFieldNotSettable, f.Name, owner.Kind())
	}
	if f.Index < 0 || f.Index >= owner.NumField() || owner.Type().Field(f.Index).Name != f.Name {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a field of %s", ErrFieldNotSettable, f.Name, owner.Type())
	}
	if !owner.CanAddr() {
		return reflect.Value{}, fmt.Errorf("%w: owner of %s is not addressable", ErrFieldNotSettable, f.Name)
	}

	field := owner.Field(f.Index)
	if !field.CanSet() {
		field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	}
	return field, nil
}

// Get returns the current value of the field on owner
func (a ReflectAccessor) Get(owner reflect.Value, f Field) (reflect.Value, error) {
	return a.slot(owner, f)
}

// Set writes value into the field on owner, bypassing visibility
func (a ReflectAccessor) Set(owner reflect.Value, f Field, value reflect.Value) error {
	field, err := a.slot(owner, f)
	if err != nil {
		return err
	}
	if !value.IsValid() {
		return fmt.Errorf("%w: no value to assign to %s", ErrFieldNotSettable, f.Name)
	}
	if !value.Type().AssignableTo(field.Type()) {
		return fmt.Errorf("%w: %s is not assignable to %s of type %s",
			ErrFieldNotSettable, value.Type(), f.Name, field.Type())
	}
	field.Set(value)
	return nil
}

// Addr returns a pointer to the field on owner, so a struct value can be
// modified in place
func (a ReflectAccessor) Addr(owner reflect.Value, f Field) (reflect.Value, error) {
	field, err := a.slot(owner, f)
	if err != nil {
		return reflect.Value{}, err
	}
	return field.Addr(), nil
}

// IsUnset reports whether the field holds its zero value
func (a ReflectAccessor) IsUnset(owner reflect.Value, f Field) bool {
	field, err := a.slot(owner, f)
	if err != nil {
		return false
	}
	return field.IsZero()
}

// Invoke calls fn with args, turning panics into errors
func (ReflectAccessor) Invoke(fn reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, ErrNotCallable
	}
	ft := fn.Type()
	if !ft.IsVariadic() && ft.NumIn() != len(args) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrNotCallable, ft, ft.NumIn(), len(args))
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrInvocationPanicked, rec)
		}
	}()

	return fn.Call(args), nil
}
