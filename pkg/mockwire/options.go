package mockwire

import (
	"io"

	"go.uber.org/mock/gomock"

	"github.com/toyz/mockwire/internal/engine"
	"github.com/toyz/mockwire/internal/inject"
	"github.com/toyz/mockwire/internal/markers"
	"github.com/toyz/mockwire/internal/substitute"
	"github.com/toyz/mockwire/internal/utils"
)

// Level controls how much the engine reports about a pass
type Level = utils.DiagnosticLevel

const (
	LevelSilent  = utils.DiagnosticSilent
	LevelError   = utils.DiagnosticError
	LevelWarn    = utils.DiagnosticWarn
	LevelInfo    = utils.DiagnosticInfo
	LevelVerbose = utils.DiagnosticVerbose
	LevelDebug   = utils.DiagnosticDebug
)

// Option customises an engine created by New, Init or MustInit
type Option func(*settings)

// settings collects options. Registries are cloned from the process-wide
// ones on first change so per-engine registrations stay local.
type settings struct {
	config       engine.Config
	output       io.Writer
	factories    *substitute.Factories
	constructors *inject.Constructors
	handlers     *substitute.Registry
	errs         []error
}

func newSettings(opts []Option) *settings {
	s := &settings{config: engine.DefaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *settings) fail(err error) {
	if err != nil {
		s.errs = append(s.errs, err)
	}
}

func (s *settings) localFactories() *substitute.Factories {
	if s.factories == nil {
		s.factories = substitute.DefaultFactories().Clone()
	}
	return s.factories
}

func (s *settings) localConstructors() *inject.Constructors {
	if s.constructors == nil {
		s.constructors = inject.DefaultConstructors().Clone()
	}
	return s.constructors
}

func (s *settings) localHandlers() *substitute.Registry {
	if s.handlers == nil {
		s.handlers = substitute.DefaultRegistry().Clone()
	}
	return s.handlers
}

func (s *settings) engineOptions() []engine.Option {
	var opts []engine.Option
	if s.factories != nil {
		opts = append(opts, engine.WithFactories(s.factories))
	}
	if s.constructors != nil {
		opts = append(opts, engine.WithConstructors(s.constructors))
	}
	if s.handlers != nil {
		opts = append(opts, engine.WithHandlers(s.handlers))
	}
	if s.output != nil {
		opts = append(opts, engine.WithDiagnostics(
			utils.NewDiagnosticSystem(s.config.Level).SetOutput(s.output)))
	}
	return opts
}

// WithTagKey reads markers from a struct tag key other than "mockwire"
func WithTagKey(key string) Option {
	return func(s *settings) { s.config.TagKey = key }
}

// WithDiagnostics sets the diagnostics level and, when w is not nil, where
// diagnostics are written
func WithDiagnostics(level Level, w io.Writer) Option {
	return func(s *settings) {
		s.config.Level = level
		s.output = w
	}
}

// WithTestReporter gives the engine a test to report to. It is required by
// gomock factories and is handed to testify mocks through mock.Mock.Test.
func WithTestReporter(r gomock.TestReporter) Option {
	return func(s *settings) { s.config.Reporter = r }
}

// WithMockFactory registers a mock factory for T on this engine only
func WithMockFactory[T any](fn func() T) Option {
	return func(s *settings) {
		s.fail(s.localFactories().RegisterMock(substitute.TypeOf[T](), substitute.MockFactoryOf(fn)))
	}
}

// WithGomockFactory registers a gomock constructor for T on this engine only
func WithGomockFactory[T any](fn func(*gomock.Controller) T) Option {
	return func(s *settings) {
		s.fail(s.localFactories().RegisterMock(substitute.TypeOf[T](), substitute.GomockFactoryOf(fn)))
	}
}

// WithSpyFactory registers a spy wrapper for T on this engine only
func WithSpyFactory[T any](fn func(real T) T) Option {
	return func(s *settings) {
		s.fail(s.localFactories().RegisterSpy(substitute.TypeOf[T](), substitute.SpyFactoryOf(fn)))
	}
}

// WithConstructor registers a constructor on this engine only
func WithConstructor(fn interface{}, paramNames ...string) Option {
	return func(s *settings) {
		s.fail(s.localConstructors().Register(fn, paramNames...))
	}
}

// WithHandler replaces the handler of an already known marker kind on this
// engine only. New kinds need RegisterMarker.
func WithHandler(kind string, h Handler) Option {
	return func(s *settings) {
		s.fail(s.localHandlers().Register(markers.Kind(kind), h))
	}
}
