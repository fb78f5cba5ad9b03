package mockwire

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toyz/mockwire/internal/engine"
	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/inject"
	"github.com/toyz/mockwire/internal/pool"
	"github.com/toyz/mockwire/internal/substitute"
)

type (
	// Engine runs injection passes
	Engine = engine.Engine

	// Result is what one pass produced
	Result = engine.Result

	// Report describes what one pass did to one inject field
	Report = inject.Report

	// Assignment is one placed substitute in a Report
	Assignment = inject.Assignment

	// Strategy names how a substitute reached its slot
	Strategy = inject.Strategy

	// Substitute is a mock, spy or captor written into a fixture
	Substitute = pool.Substitute

	// Handler produces the substitute for a marker kind
	Handler = substitute.Handler

	// HandlerFunc adapts a function to Handler
	HandlerFunc = substitute.HandlerFunc

	// Request is what a Handler receives
	Request = substitute.Request
)

const (
	ConstructorInjection = inject.ConstructorInjection
	SetterInjection      = inject.SetterInjection
	FieldInjection       = inject.FieldInjection
	SpyWrapping          = inject.SpyWrapping
)

type (
	// ConfigurationError reports a badly marked fixture; the pass was aborted
	ConfigurationError = errors.ConfigurationError

	// AssignmentError reports a write the field rejected; other fields went on
	AssignmentError = errors.AssignmentError

	// AmbiguityError reports several candidates for one slot; the pass was aborted
	AmbiguityError = errors.AmbiguityError

	// MultipleErrors collects the assignment errors of one pass
	MultipleErrors = errors.MultipleErrors
)

// New creates an engine configured by opts
func New(opts ...Option) (*Engine, error) {
	s := newSettings(opts)
	if len(s.errs) > 0 {
		return nil, stderrors.Join(s.errs...)
	}
	return engine.New(s.config, s.engineOptions()...), nil
}

// Init runs one injection pass over fixture, a pointer to a struct
func Init(fixture interface{}, opts ...Option) (*Result, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return e.Process(fixture)
}

// InitAll runs independent passes over several fixtures in parallel
func InitAll(ctx context.Context, fixtures []interface{}, opts ...Option) ([]*Result, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return e.ProcessAll(ctx, fixtures...)
}

// MustInit runs Init with t as test reporter and fails the test on any error
func MustInit(t testing.TB, fixture interface{}, opts ...Option) *Result {
	t.Helper()
	res, err := Init(fixture, append(opts, WithTestReporter(t))...)
	require.NoError(t, err, "mockwire: initializing %T", fixture)
	return res
}
