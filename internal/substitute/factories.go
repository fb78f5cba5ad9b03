package substitute

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/mock/gomock"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/utils"
)

// MockFactory builds a fresh mock for one field
type MockFactory func(env *Env) (reflect.Value, error)

// SpyFactory wraps a real value in a spy
type SpyFactory func(real reflect.Value) (reflect.Value, error)

// Factories holds mock and spy factories keyed by the field type they serve
type Factories struct {
	mocks *utils.BaseRegistry[reflect.Type, MockFactory]
	spies *utils.BaseRegistry[reflect.Type, SpyFactory]
}

// NewFactories creates an empty factory set
func NewFactories() *Factories {
	mocks := utils.NewBaseRegistry[reflect.Type, MockFactory]("mock factory", "type")
	mocks.SetValidator(func(t reflect.Type, fn MockFactory, _ map[reflect.Type]MockFactory) error {
		return checkFactory(t, fn == nil)
	})
	spies := utils.NewBaseRegistry[reflect.Type, SpyFactory]("spy factory", "type")
	spies.SetValidator(func(t reflect.Type, fn SpyFactory, _ map[reflect.Type]SpyFactory) error {
		return checkFactory(t, fn == nil)
	})
	return &Factories{mocks: mocks, spies: spies}
}

var (
	defaultFactories     *Factories
	defaultFactoriesOnce sync.Once
)

// DefaultFactories returns the process-wide factory set
func DefaultFactories() *Factories {
	defaultFactoriesOnce.Do(func() {
		defaultFactories = NewFactories()
	})
	return defaultFactories
}

func checkFactory(t reflect.Type, nilFn bool) error {
	if t == nil {
		return fmt.Errorf("factory type cannot be nil")
	}
	if nilFn {
		return fmt.Errorf("factory for %s cannot be nil", t)
	}
	return nil
}

// RegisterMock installs the mock factory for t, replacing any previous one
func (f *Factories) RegisterMock(t reflect.Type, fn MockFactory) error {
	if err := f.mocks.Register(t, fn); err != nil {
		return errors.WrapRegisterError("mock factory", typeName(t), err)
	}
	return nil
}

// RegisterSpy installs the spy factory for t, replacing any previous one
func (f *Factories) RegisterSpy(t reflect.Type, fn SpyFactory) error {
	if err := f.spies.Register(t, fn); err != nil {
		return errors.WrapRegisterError("spy factory", typeName(t), err)
	}
	return nil
}

// Mock returns the mock factory for t
func (f *Factories) Mock(t reflect.Type) (MockFactory, bool) {
	return f.mocks.Get(t)
}

// Spy returns the spy factory for t
func (f *Factories) Spy(t reflect.Type) (SpyFactory, bool) {
	return f.spies.Get(t)
}

// Clone returns an independent copy, so per-engine registrations never
// leak into the process-wide set
func (f *Factories) Clone() *Factories {
	return &Factories{mocks: f.mocks.Clone(), spies: f.spies.Clone()}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// TypeOf returns the static type T, including interface types
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// valueOf keeps the static type T on the returned value
func valueOf[T any](v T) reflect.Value {
	return reflect.ValueOf(&v).Elem()
}

// MockFactoryOf adapts a typed constructor to MockFactory
func MockFactoryOf[T any](fn func() T) MockFactory {
	return func(*Env) (reflect.Value, error) {
		return valueOf(fn()), nil
	}
}

// GomockFactoryOf adapts a generated gomock constructor to MockFactory. The
// controller comes from the pass's test reporter.
func GomockFactoryOf[T any](fn func(*gomock.Controller) T) MockFactory {
	return func(env *Env) (reflect.Value, error) {
		ctrl, ok := env.Controller()
		if !ok {
			return reflect.Value{}, errors.NewConfigurationError("",
				fmt.Sprintf("gomock factory for %s needs a test reporter", TypeOf[T]())).
				WithSuggestion("Use mockwire.MustInit(t, ...) or the WithTestReporter option")
		}
		return valueOf(fn(ctrl)), nil
	}
}

// SpyFactoryOf adapts a typed wrapper to SpyFactory
func SpyFactoryOf[T any](fn func(real T) T) SpyFactory {
	return func(real reflect.Value) (reflect.Value, error) {
		r, ok := real.Interface().(T)
		if !ok {
			return reflect.Value{}, fmt.Errorf("cannot spy on %s as %s", real.Type(), TypeOf[T]())
		}
		return valueOf(fn(r)), nil
	}
}
