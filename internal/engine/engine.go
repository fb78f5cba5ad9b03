// Package engine runs injection passes over test fixtures.
//
// A pass locates the fixture's declared fields, asks the substitute handlers
// for mocks, spies and captors, writes them into their fields, then resolves
// every inject field against the substitutes that are candidates.
package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/fields"
	"github.com/toyz/mockwire/internal/inject"
	"github.com/toyz/mockwire/internal/markers"
	"github.com/toyz/mockwire/internal/pool"
	"github.com/toyz/mockwire/internal/substitute"
	"github.com/toyz/mockwire/internal/utils"
)

// Engine processes fixtures. It is safe for concurrent use once built.
type Engine struct {
	config       Config
	schemas      markers.SchemaRegistry
	handlers     *substitute.Registry
	factories    *substitute.Factories
	constructors *inject.Constructors
	accessor     fields.Accessor
	diag         *utils.DiagnosticSystem

	locator  *fields.Locator
	resolver *inject.Resolver
}

// Option customises an Engine
type Option func(*Engine)

// WithSchemas sets the marker schemas used to parse and validate tags
func WithSchemas(schemas markers.SchemaRegistry) Option {
	return func(e *Engine) { e.schemas = schemas }
}

// WithHandlers sets the marker handler registry
func WithHandlers(handlers *substitute.Registry) Option {
	return func(e *Engine) { e.handlers = handlers }
}

// WithFactories sets the mock and spy factories
func WithFactories(factories *substitute.Factories) Option {
	return func(e *Engine) { e.factories = factories }
}

// WithConstructors sets the constructor registry used for constructor injection
func WithConstructors(constructors *inject.Constructors) Option {
	return func(e *Engine) { e.constructors = constructors }
}

// WithAccessor replaces the reflective accessor
func WithAccessor(accessor fields.Accessor) Option {
	return func(e *Engine) { e.accessor = accessor }
}

// WithDiagnostics sets the diagnostics sink
func WithDiagnostics(diag *utils.DiagnosticSystem) Option {
	return func(e *Engine) { e.diag = diag }
}

// New creates an engine. Unset registries fall back to the process-wide ones.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{config: cfg}
	for _, opt := range opts {
		opt(e)
	}

	if e.config.TagKey == "" {
		e.config.TagKey = fields.DefaultTagKey
	}
	if e.schemas == nil {
		e.schemas = markers.DefaultSchemas()
	}
	if e.handlers == nil {
		e.handlers = substitute.DefaultRegistry()
	}
	if e.factories == nil {
		e.factories = substitute.DefaultFactories()
	}
	if e.constructors == nil {
		e.constructors = inject.DefaultConstructors()
	}
	if e.accessor == nil {
		e.accessor = fields.NewReflectAccessor()
	}
	if e.diag == nil {
		e.diag = utils.NewDiagnosticSystem(e.config.Level)
	}

	e.locator = fields.NewLocator(e.config.TagKey, markers.NewParser(e.schemas))
	e.resolver = inject.NewResolver(e.accessor, e.locator, e.constructors, e.diag)
	return e
}

// Config returns the engine's configuration
func (e *Engine) Config() Config {
	return e.config
}

// Process runs one injection pass over fixture, a non-nil pointer to struct.
//
// Configuration and ambiguity errors abort the pass and are returned as-is.
// Rejected writes do not stop the pass: they come back together as
// *errors.MultipleErrors alongside the partial result.
func (e *Engine) Process(fixture interface{}) (*Result, error) {
	rv := reflect.ValueOf(fixture)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, errors.NewConfigurationError("",
			fmt.Sprintf("fixture must be a non-nil pointer to a struct, got %T", fixture))
	}

	located, err := e.locator.Locate(rv.Type())
	if err != nil {
		return nil, err
	}

	p := &processing{
		Engine:  e,
		owner:   rv,
		env:     substitute.NewEnv(e.factories, e.config.Reporter),
		builder: pool.NewBuilder(),
		result:  &Result{Fixture: rv.Elem().Type().String()},
	}

	var targets []fields.Field
	for _, f := range located {
		if f.Skip || !f.IsMarked() {
			continue
		}
		if f.HasMarker(markers.Inject) {
			targets = append(targets, f)
			continue
		}
		if err := p.produce(f); err != nil {
			return p.result, err
		}
	}

	candidates := p.builder.Build()
	e.diag.Debug("%s: %d substitutes, %d candidates, %d targets",
		p.result.Fixture, len(p.result.Substitutes), candidates.Len(), len(targets))

	for _, f := range targets {
		if err := p.resolve(f, candidates); err != nil {
			return p.result, err
		}
	}

	return p.result, p.errs.ErrorOrNil()
}

// ProcessAll runs independent passes over several fixtures in parallel. All
// passes start together; a pass that begins after another has failed, or
// after ctx is done, returns without touching its fixture. Passes already
// running are not interrupted.
func (e *Engine) ProcessAll(ctx context.Context, fixtures ...interface{}) ([]*Result, error) {
	results := make([]*Result, len(fixtures))
	g, ctx := errgroup.WithContext(ctx)
	for i, fixture := range fixtures {
		i, fixture := i, fixture
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.Process(fixture)
			results[i] = res
			if err != nil {
				return fmt.Errorf("fixture %d (%T): %w", i, fixture, err)
			}
			return nil
		})
	}
	return results, g.Wait()
}

// processing is the state of one pass
type processing struct {
	*Engine
	owner   reflect.Value
	env     *substitute.Env
	builder *pool.Builder
	result  *Result
	errs    *errors.MultipleErrors
}

// produce asks the handlers of f's markers for a substitute and writes it.
// Only a returned error aborts the pass.
func (p *processing) produce(f fields.Field) error {
	name := f.QualifiedName()
	current, err := p.accessor.Get(p.owner, f)
	if err != nil {
		errors.AddToMultiple(&p.errs, errors.NewAssignmentError(name, f.Markers[0].String(), err))
		return nil
	}

	var (
		value reflect.Value
		by    markers.Marker
	)
	for _, m := range f.Markers {
		v, err := p.handlers.HandlerFor(m.Kind).Handle(substitute.Request{
			Marker:  m,
			Field:   f,
			Current: current,
			Env:     p.env,
		})
		if err != nil {
			return errors.WrapConfigurationError(name, err)
		}
		if !v.IsValid() {
			continue
		}
		if value.IsValid() {
			return errors.NewMoreThanOneMarkerError(name, []string{by.Kind.String(), m.Kind.String()})
		}
		value, by = v, m
	}
	if !value.IsValid() {
		return nil
	}

	if err := p.accessor.Set(p.owner, f, value); err != nil {
		errors.AddToMultiple(&p.errs, errors.NewAssignmentError(name, by.String(), err))
		return nil
	}

	sub := pool.Substitute{
		ID:    uuid.New(),
		Name:  by.GetString(markers.NameParam, f.Name),
		Kind:  by.Kind,
		Field: f.Name,
		Value: value,
	}
	p.result.Substitutes = append(p.result.Substitutes, sub)
	p.diag.Debug("%s: created %s", name, sub)

	if schema, ok := p.schemas.Schema(by.Kind); ok && schema.Candidate {
		if err := p.builder.Add(sub); err != nil {
			return err
		}
	}
	return nil
}

// resolve injects candidates into target f and applies spy wrapping when f
// also carries a spy marker
func (p *processing) resolve(f fields.Field, candidates *pool.Pool) error {
	report, resolveErr := p.resolver.Resolve(inject.Target{Owner: p.owner, Field: f}, candidates)
	p.result.Reports = append(p.result.Reports, report)
	if err := p.collect(resolveErr); err != nil {
		return err
	}
	p.diag.Debug("%s", report)

	spy, ok := f.Marker(markers.Spy)
	if !ok {
		return nil
	}

	name := f.QualifiedName()
	current, err := p.accessor.Get(p.owner, f)
	if err != nil {
		return p.collect(errors.NewAssignmentError(name, spy.String(), err))
	}
	if resolveErr != nil && current.IsZero() {
		return nil
	}
	wrapped, err := p.handlers.HandlerFor(markers.Spy).Handle(substitute.Request{
		Marker:  spy,
		Field:   f,
		Current: current,
		Env:     p.env,
	})
	if err != nil {
		return errors.WrapConfigurationError(name, err)
	}
	if !wrapped.IsValid() {
		return nil
	}
	if err := p.accessor.Set(p.owner, f, wrapped); err != nil {
		return p.collect(errors.NewAssignmentError(name, spy.String(), err))
	}
	report.AddSpyWrapping(f.Name)
	return nil
}

// collect keeps assignment errors for the end of the pass and hands back
// anything else
func (p *processing) collect(err error) error {
	switch e := err.(type) {
	case nil:
		return nil
	case *errors.AssignmentError:
		errors.AddToMultiple(&p.errs, e)
		return nil
	case *errors.MultipleErrors:
		for _, inner := range e.Errors {
			errors.AddToMultiple(&p.errs, inner)
		}
		return nil
	default:
		return err
	}
}
