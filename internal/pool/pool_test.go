package pool

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/markers"
)

type store interface{ Get(key string) string }

type memStore struct{}

func (*memStore) Get(string) string { return "" }

type diskStore struct{}

func (*diskStore) Get(string) string { return "" }

func substitute(field string, v interface{}) Substitute {
	return Substitute{Field: field, Kind: markers.Mock, Value: reflect.ValueOf(v)}
}

func TestBuilderAssignsIdentityAndNames(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(substitute("mem", &memStore{})))

	named := substitute("disk", &diskStore{})
	named.Name = "primary"
	require.NoError(t, b.Add(named))

	p := b.Build()
	require.Equal(t, 2, p.Len())

	all := p.All()
	assert.Equal(t, "mem", all[0].Name, "name defaults to the field")
	assert.Equal(t, "primary", all[1].Name)
	assert.NotEqual(t, uuid.Nil, all[0].ID)
	assert.NotEqual(t, all[0].ID, all[1].ID)
}

func TestBuilderRejectsDuplicatesAndNil(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(substitute("a", &memStore{})))

	dup := substitute("b", &diskStore{})
	dup.Name = "a"
	err := b.Add(dup)
	var cfgErr *errors.ConfigurationError
	require.True(t, stderrors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "already used by field 'a'")

	assert.Error(t, b.Add(substitute("nil", (*memStore)(nil))))
	assert.Error(t, b.Add(Substitute{Field: "invalid"}))
}

func TestPoolLookups(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(substitute("mem", &memStore{})))
	require.NoError(t, b.Add(substitute("disk", &diskStore{})))
	require.NoError(t, b.Add(substitute("count", 3)))
	p := b.Build()

	storeType := reflect.TypeOf((*store)(nil)).Elem()
	byType := p.ByType(storeType)
	require.Len(t, byType, 2)
	assert.Equal(t, "mem", byType[0].Name, "pool order is kept")
	assert.Equal(t, "disk", byType[1].Name)

	assert.Len(t, p.ByType(reflect.TypeOf(&memStore{})), 1)
	assert.Empty(t, p.ByType(reflect.TypeOf("")))

	s, ok := p.ByName("count")
	require.True(t, ok)
	assert.Equal(t, 3, s.Interface())

	_, ok = p.ByName("missing")
	assert.False(t, ok)
}

func TestPoolIsSnapshot(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(substitute("mem", &memStore{})))
	p := b.Build()

	require.NoError(t, b.Add(substitute("disk", &diskStore{})))
	assert.Equal(t, 1, p.Len(), "adding after Build does not change the pool")

	all := p.All()
	all[0].Name = "changed"
	_, ok := p.ByName("mem")
	assert.True(t, ok)
	assert.Equal(t, "mem", p.All()[0].Name)
}

func TestSubstituteTypeUnwrapsInterfaces(t *testing.T) {
	var s store = &memStore{}
	sub := Substitute{Name: "s", Kind: markers.Spy, Value: reflect.ValueOf(&s).Elem()}

	assert.Equal(t, reflect.TypeOf(&memStore{}), sub.Type())
	assert.True(t, sub.AssignableTo(reflect.TypeOf(&memStore{})))
	assert.Equal(t, fmt.Sprintf("s(spy %s)", reflect.TypeOf(&memStore{})), sub.String())
	assert.True(t, Empty().Len() == 0)
}
