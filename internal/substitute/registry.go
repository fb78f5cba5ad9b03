// Package substitute produces the mocks, spies and captors requested by
// field markers.
package substitute

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/mock/gomock"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/fields"
	"github.com/toyz/mockwire/internal/markers"
	"github.com/toyz/mockwire/internal/utils"
)

// Request is everything a handler knows about the field it serves
type Request struct {
	Marker  markers.Marker // marker being handled
	Field   fields.Field   // field carrying the marker
	Current reflect.Value  // field's value before the handler runs
	Env     *Env           // per-pass factories and test reporter
}

// Handler produces a substitute for a marked field. An invalid reflect.Value
// with a nil error means nothing was produced.
type Handler interface {
	Handle(req Request) (reflect.Value, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(req Request) (reflect.Value, error)

// Handle calls f(req)
func (f HandlerFunc) Handle(req Request) (reflect.Value, error) {
	return f(req)
}

// NoopHandler never produces a substitute. Unknown markers resolve to it.
var NoopHandler Handler = HandlerFunc(func(Request) (reflect.Value, error) {
	return reflect.Value{}, nil
})

// Registry maps marker kinds to handlers. Registering a kind twice replaces
// the earlier handler.
type Registry struct {
	handlers *utils.BaseRegistry[markers.Kind, Handler]
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	reg := utils.NewBaseRegistry[markers.Kind, Handler]("handler", "marker kind")
	reg.SetValidator(utils.ChainValidators[markers.Kind, Handler](
		utils.NotEmptyKeyValidator[markers.Kind, Handler]("marker kind"),
		func(kind markers.Kind, h Handler, _ map[markers.Kind]Handler) error {
			if h == nil {
				return fmt.Errorf("handler for %s cannot be nil", kind)
			}
			return nil
		},
	))
	return &Registry{handlers: reg}
}

// NewBuiltinRegistry creates a registry with the mock, spy and captor handlers
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.mustRegister(markers.Mock, MockHandler{})
	r.mustRegister(markers.Spy, SpyHandler{})
	r.mustRegister(markers.Captor, CaptorHandler{})
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide handler registry. Populate it
// before injection passes start; it is only read during resolution.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewBuiltinRegistry()
	})
	return defaultRegistry
}

func (r *Registry) mustRegister(kind markers.Kind, h Handler) {
	if err := r.Register(kind, h); err != nil {
		panic(err)
	}
}

// Register installs the handler for a marker kind, replacing any previous one
func (r *Registry) Register(kind markers.Kind, h Handler) error {
	if err := r.handlers.Register(kind, h); err != nil {
		return errors.WrapRegisterError("handler", kind.String(), err)
	}
	return nil
}

// HandlerFor returns the handler for kind, or NoopHandler
func (r *Registry) HandlerFor(kind markers.Kind) Handler {
	if h, ok := r.handlers.Get(kind); ok {
		return h
	}
	return NoopHandler
}

// Kinds returns the marker kinds with a handler, in registration order
func (r *Registry) Kinds() []markers.Kind {
	return r.handlers.List()
}

// Clone returns an independent copy of the registry
func (r *Registry) Clone() *Registry {
	return &Registry{handlers: r.handlers.Clone()}
}

// Env carries per-pass state shared by handlers: factories and an optional
// test reporter from which a gomock controller is created on first use.
type Env struct {
	Factories *Factories
	Reporter  gomock.TestReporter

	once sync.Once
	ctrl *gomock.Controller
}

// NewEnv creates the handler environment of one pass
func NewEnv(factories *Factories, reporter gomock.TestReporter) *Env {
	if factories == nil {
		factories = DefaultFactories()
	}
	return &Env{Factories: factories, Reporter: reporter}
}

// Controller returns the pass's gomock controller; false without a reporter
func (e *Env) Controller() (*gomock.Controller, bool) {
	if e == nil || e.Reporter == nil {
		return nil, false
	}
	e.once.Do(func() {
		e.ctrl = gomock.NewController(e.Reporter)
	})
	return e.ctrl, true
}
