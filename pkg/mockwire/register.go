package mockwire

import (
	"go.uber.org/mock/gomock"

	"github.com/toyz/mockwire/internal/inject"
	"github.com/toyz/mockwire/internal/markers"
	"github.com/toyz/mockwire/internal/substitute"
)

// Registrations below change process-wide state. Make them before any test
// runs in parallel, typically from TestMain or an init function.

// Schema describes a marker kind and its parameters
type Schema = markers.Schema

// ParameterSpec describes one marker parameter
type ParameterSpec = markers.ParameterSpec

// RegisterMockFactory makes fn the source of mocks for fields of type T
func RegisterMockFactory[T any](fn func() T) error {
	return substitute.DefaultFactories().RegisterMock(substitute.TypeOf[T](), substitute.MockFactoryOf(fn))
}

// RegisterGomockFactory makes a generated gomock constructor the source of
// mocks for fields of type T. The engine needs a test reporter to create the
// controller; MustInit supplies one.
func RegisterGomockFactory[T any](fn func(*gomock.Controller) T) error {
	return substitute.DefaultFactories().RegisterMock(substitute.TypeOf[T](), substitute.GomockFactoryOf(fn))
}

// RegisterSpyFactory makes fn the wrapper used to spy on values of type T
func RegisterSpyFactory[T any](fn func(real T) T) error {
	return substitute.DefaultFactories().RegisterSpy(substitute.TypeOf[T](), substitute.SpyFactoryOf(fn))
}

// RegisterConstructor registers fn for constructor injection of the type it
// returns. fn returns T or (T, error); paramNames, when given, name each
// parameter for disambiguation between candidates of the same type.
func RegisterConstructor(fn interface{}, paramNames ...string) error {
	return inject.DefaultConstructors().Register(fn, paramNames...)
}

// RegisterMarker adds a marker kind with its handler. The schema's Kind is
// set to kind.
func RegisterMarker(kind string, schema Schema, h Handler) error {
	schema.Kind = markers.Kind(kind)
	if err := markers.DefaultSchemas().Register(schema.Kind, schema); err != nil {
		return err
	}
	return substitute.DefaultRegistry().Register(schema.Kind, h)
}
