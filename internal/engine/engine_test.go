package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/fields"
	"github.com/toyz/mockwire/internal/inject"
	"github.com/toyz/mockwire/internal/markers"
	"github.com/toyz/mockwire/internal/substitute"
)

type Clock interface{ Now() int64 }

type Store interface{ Load(key string) string }

type fakeClock struct{ at int64 }

func (c *fakeClock) Now() int64 { return c.at }

type memStore struct{ data map[string]string }

func (s *memStore) Load(key string) string { return s.data[key] }

type argCaptor struct{ values []string }

func (*argCaptor) CapturedType() reflect.Type { return reflect.TypeOf("") }

type Service struct {
	clock Clock
	store Store
	args  *argCaptor
	name  string
	spied bool
}

type serviceFixture struct {
	Clock Clock      `mockwire:"mock"`
	Store *memStore  `mockwire:"mock -name=store"`
	Args  *argCaptor `mockwire:"captor"`
	Svc   *Service   `mockwire:"inject"`
	plain int
}

type spiedFixture struct {
	Clock Clock    `mockwire:"mock"`
	Svc   *Service `mockwire:"inject spy"`
}

type twoClocks struct {
	First  Clock    `mockwire:"mock"`
	Second Clock    `mockwire:"mock"`
	Svc    *Service `mockwire:"inject"`
}

type namedClocks struct {
	First  Clock    `mockwire:"mock"`
	Second Clock    `mockwire:"mock -name=clock"`
	Svc    *Service `mockwire:"inject"`
}

func testFactories(t *testing.T) *substitute.Factories {
	t.Helper()
	f := substitute.NewFactories()
	require.NoError(t, f.RegisterMock(substitute.TypeOf[Clock](), substitute.MockFactoryOf(func() Clock {
		return &fakeClock{at: 1}
	})))
	require.NoError(t, f.RegisterSpy(substitute.TypeOf[*Service](), substitute.SpyFactoryOf(func(real *Service) *Service {
		cp := *real
		cp.spied = true
		return &cp
	})))
	require.NoError(t, f.RegisterSpy(substitute.TypeOf[*memStore](), substitute.SpyFactoryOf(func(real *memStore) *memStore {
		return &memStore{data: map[string]string{"spied": real.data["key"]}}
	})))
	return f
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithFactories(testFactories(t)),
		WithConstructors(inject.NewConstructors()),
	}
	return New(Config{}, append(base, opts...)...)
}

func TestProcessPopulatesFixture(t *testing.T) {
	fixture := &serviceFixture{}
	result, err := newEngine(t).Process(fixture)
	require.NoError(t, err)

	require.NotNil(t, fixture.Clock)
	require.NotNil(t, fixture.Store)
	require.NotNil(t, fixture.Args)
	require.NotNil(t, fixture.Svc)
	assert.Zero(t, fixture.plain)

	assert.Same(t, fixture.Clock, fixture.Svc.clock)
	assert.Same(t, fixture.Store, fixture.Svc.store)
	assert.Nil(t, fixture.Svc.args, "captors are never candidates")

	assert.Equal(t, "engine.serviceFixture", result.Fixture)
	require.Len(t, result.Substitutes, 3)
	store, ok := result.Substitute("store")
	require.True(t, ok)
	assert.Equal(t, markers.Mock, store.Kind)
	assert.Equal(t, "Store", store.Field)

	report, ok := result.Report("Svc")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"clock": "Clock", "store": "store"}, report.Placements())
	assert.ElementsMatch(t, []string{"args", "name", "spied"}, report.Unset)
}

func TestProcessWrapsInjectedSpies(t *testing.T) {
	fixture := &spiedFixture{}
	result, err := newEngine(t).Process(fixture)
	require.NoError(t, err)

	require.NotNil(t, fixture.Svc)
	assert.True(t, fixture.Svc.spied)
	assert.Same(t, fixture.Clock, fixture.Svc.clock, "the spy wraps the injected instance")

	report, _ := result.Report("Svc")
	a, ok := report.Lookup("Svc")
	require.True(t, ok)
	assert.Equal(t, inject.SpyWrapping, a.Strategy)
}

func TestProcessSpiesOnPopulatedField(t *testing.T) {
	type fixture struct {
		Store *memStore `mockwire:"spy"`
	}
	f := &fixture{Store: &memStore{data: map[string]string{"key": "value"}}}

	result, err := newEngine(t).Process(f)
	require.NoError(t, err)
	assert.Equal(t, "value", f.Store.Load("spied"))

	s, ok := result.Substitute("Store")
	require.True(t, ok)
	assert.Equal(t, markers.Spy, s.Kind)
}

func TestProcessRejectsAmbiguity(t *testing.T) {
	fixture := &twoClocks{}
	_, err := newEngine(t).Process(fixture)

	var ambErr *errors.AmbiguityError
	require.True(t, stderrors.As(err, &ambErr))
	assert.Equal(t, []string{"First", "Second"}, ambErr.Candidates)
	assert.Contains(t, err.Error(), "First")
	assert.Contains(t, err.Error(), "Second")
}

func TestProcessUsesSubstituteNames(t *testing.T) {
	fixture := &namedClocks{}
	_, err := newEngine(t).Process(fixture)
	require.NoError(t, err)
	assert.Same(t, fixture.Second, fixture.Svc.clock)
}

func TestProcessRejectsBadFixtures(t *testing.T) {
	e := newEngine(t)

	for _, fixture := range []interface{}{nil, serviceFixture{}, (*serviceFixture)(nil), new(int)} {
		_, err := e.Process(fixture)
		var cfgErr *errors.ConfigurationError
		assert.True(t, stderrors.As(err, &cfgErr), "%T", fixture)
	}

	type doubled struct {
		Clock Clock `mockwire:"mock spy"`
	}
	_, err := e.Process(&doubled{})
	assert.ErrorContains(t, err, "more than one")
}

func TestDoubleMarkerFailsBeforeAnyWrite(t *testing.T) {
	type fixture struct {
		First  Clock    `mockwire:"mock"`
		Second Clock    `mockwire:"mock spy"`
		Svc    *Service `mockwire:"inject"`
	}
	f := &fixture{}

	result, err := newEngine(t).Process(f)
	var cfgErr *errors.ConfigurationError
	require.True(t, stderrors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Field, "Second")
	assert.ErrorContains(t, err, "more than one")

	assert.Nil(t, f.First, "fields ahead of the bad one are left untouched")
	assert.Nil(t, f.Svc)
	if result != nil {
		assert.Empty(t, result.Substitutes)
	}
}

func TestProcessCustomMarkers(t *testing.T) {
	schemas := markers.NewBuiltinSchemaRegistry()
	require.NoError(t, schemas.Register("fake", markers.Schema{Kind: "fake", Produces: true, Candidate: true}))

	handlers := substitute.NewBuiltinRegistry()
	require.NoError(t, handlers.Register("fake", substitute.HandlerFunc(func(req substitute.Request) (reflect.Value, error) {
		return reflect.ValueOf(&fakeClock{at: 99}), nil
	})))

	type fixture struct {
		Clock   Clock    `mockwire:"fake"`
		Ignored Clock    `mockwire:"unknown"`
		Svc     *Service `mockwire:"inject"`
	}
	f := &fixture{}
	_, err := newEngine(t, WithSchemas(schemas), WithHandlers(handlers)).Process(f)
	require.NoError(t, err)

	assert.Equal(t, int64(99), f.Clock.Now())
	assert.Nil(t, f.Ignored, "unknown kinds resolve to a no-op")
	assert.Same(t, f.Clock, f.Svc.clock)
}

// rejectingAccessor refuses writes to one field
type rejectingAccessor struct {
	fields.Accessor
	field string
}

func (a rejectingAccessor) Set(owner reflect.Value, f fields.Field, value reflect.Value) error {
	if f.Name == a.field {
		return fmt.Errorf("%w: %s is frozen", fields.ErrFieldNotSettable, f.Name)
	}
	return a.Accessor.Set(owner, f, value)
}

func TestProcessCollectsAssignmentErrors(t *testing.T) {
	accessor := rejectingAccessor{Accessor: fields.NewReflectAccessor(), field: "clock"}
	fixture := &serviceFixture{}

	result, err := newEngine(t, WithAccessor(accessor)).Process(fixture)
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	assert.Equal(t, 1, multi.Count())
	assert.ErrorIs(t, err, fields.ErrFieldNotSettable)

	require.NotNil(t, result)
	assert.Nil(t, fixture.Svc.clock)
	assert.Same(t, fixture.Store, fixture.Svc.store, "the pass continues after a rejected write")
}

func TestProcessIsIdempotent(t *testing.T) {
	e := newEngine(t)

	first, err := e.Process(&serviceFixture{})
	require.NoError(t, err)
	second, err := e.Process(&serviceFixture{})
	require.NoError(t, err)

	assert.Equal(t, first.Reports[0].Placements(), second.Reports[0].Placements())
	assert.NotEqual(t, first.Substitutes[0].ID, second.Substitutes[0].ID)
}

func TestProcessAll(t *testing.T) {
	e := newEngine(t)

	a, b := &serviceFixture{}, &spiedFixture{}
	results, err := e.ProcessAll(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotNil(t, a.Svc)
	assert.NotNil(t, b.Svc)

	_, err = e.ProcessAll(context.Background(), &serviceFixture{}, &twoClocks{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixture 1 (*engine.twoClocks)")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.ProcessAll(ctx, &serviceFixture{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessWithGomockReporter(t *testing.T) {
	type gomockClock struct {
		Clock
		ctrl *gomock.Controller
	}
	f := substitute.NewFactories()
	require.NoError(t, f.RegisterMock(substitute.TypeOf[Clock](), substitute.GomockFactoryOf(func(ctrl *gomock.Controller) Clock {
		return &gomockClock{ctrl: ctrl}
	})))

	type fixture struct {
		A Clock `mockwire:"mock"`
		B Clock `mockwire:"mock"`
	}
	fx := &fixture{}
	_, err := New(Config{Reporter: t}, WithFactories(f)).Process(fx)
	require.NoError(t, err)
	assert.Same(t, fx.A.(*gomockClock).ctrl, fx.B.(*gomockClock).ctrl, "one controller per pass")

	_, err = New(Config{}, WithFactories(f)).Process(&fixture{})
	var cfgErr *errors.ConfigurationError
	assert.True(t, stderrors.As(err, &cfgErr))
}
