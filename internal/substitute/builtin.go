package substitute

import (
	"fmt"
	"reflect"

	"github.com/stretchr/testify/mock"

	"github.com/toyz/mockwire/internal/errors"
)

// CaptorType is implemented by argument captors. The captor handler only
// instantiates field types whose pointer form implements it.
type CaptorType interface {
	CapturedType() reflect.Type
}

var captorIface = reflect.TypeOf((*CaptorType)(nil)).Elem()

// testifyBindable matches mocks embedding testify's mock.Mock
type testifyBindable interface {
	Test(t mock.TestingT)
}

// MockHandler creates mocks. A registered factory wins; otherwise pointers to
// structs are allocated (testify style mocks embedding mock.Mock) and
// function types get a stub returning zero values.
type MockHandler struct{}

// Handle produces a mock for req.Field
func (MockHandler) Handle(req Request) (reflect.Value, error) {
	t := req.Field.Type
	if fn, ok := req.Env.Factories.Mock(t); ok {
		v, err := fn(req.Env)
		if err != nil {
			return reflect.Value{}, errors.WrapConfigurationError(req.Field.QualifiedName(), err)
		}
		return v, nil
	}

	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		v := reflect.New(t.Elem())
		bindTestify(v, req.Env)
		return v, nil
	case t.Kind() == reflect.Func:
		return zeroFunc(t), nil
	case t.Kind() == reflect.Interface:
		return reflect.Value{}, errors.NewConfigurationError(req.Field.QualifiedName(),
			fmt.Sprintf("no mock factory registered for interface %s", t)).
			WithSuggestion(fmt.Sprintf("Register one with mockwire.RegisterMockFactory[%s]", t))
	}
	return reflect.Value{}, errors.NewConfigurationError(req.Field.QualifiedName(),
		fmt.Sprintf("cannot mock a value of type %s", t))
}

// bindTestify hands the test reporter to mocks embedding mock.Mock
func bindTestify(v reflect.Value, env *Env) {
	if env == nil || env.Reporter == nil {
		return
	}
	tt, ok := env.Reporter.(mock.TestingT)
	if !ok {
		return
	}
	if m, ok := v.Interface().(testifyBindable); ok {
		m.Test(tt)
	}
}

func zeroFunc(t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func([]reflect.Value) []reflect.Value {
		out := make([]reflect.Value, t.NumOut())
		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}
		return out
	})
}

// SpyHandler wraps the field's current value through the spy factory of
// its type. An unset pointer to struct is allocated first.
type SpyHandler struct{}

// Handle produces a spy for req.Field
func (SpyHandler) Handle(req Request) (reflect.Value, error) {
	t := req.Field.Type
	name := req.Field.QualifiedName()

	fn, ok := req.Env.Factories.Spy(t)
	if !ok {
		return reflect.Value{}, errors.NewConfigurationError(name,
			fmt.Sprintf("no spy factory registered for %s", t)).
			WithSuggestion(fmt.Sprintf("Register one with mockwire.RegisterSpyFactory[%s]", t))
	}

	real := req.Current
	if !real.IsValid() || real.IsZero() {
		if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
			return reflect.Value{}, errors.NewConfigurationError(name,
				"cannot spy on an unset field").
				WithSuggestion("Assign the real value before initializing the fixture")
		}
		real = reflect.New(t.Elem())
	}

	v, err := fn(real)
	if err != nil {
		return reflect.Value{}, errors.WrapConfigurationError(name, err)
	}
	return v, nil
}

// CaptorHandler allocates argument captors
type CaptorHandler struct{}

// Handle produces a captor for req.Field
func (CaptorHandler) Handle(req Request) (reflect.Value, error) {
	t := req.Field.Type
	if t.Kind() != reflect.Pointer || !t.Implements(captorIface) {
		return reflect.Value{}, errors.NewConfigurationError(req.Field.QualifiedName(),
			fmt.Sprintf("captor fields must be *mockwire.Captor[T], got %s", t))
	}
	return reflect.New(t.Elem()), nil
}
