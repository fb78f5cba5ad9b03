package fields

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lenner []int

func (l lenner) Len() int { return len(l) }

type holder struct {
	Public  string
	private *int
	iface   interface{ Len() int }
}

func fieldOf(t *testing.T, owner interface{}, name string) Field {
	t.Helper()
	located, err := NewLocator("", nil).Locate(reflect.TypeOf(owner))
	require.NoError(t, err)
	for _, f := range located {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no field %s", name)
	return Field{}
}

func TestAccessorWritesUnexportedFields(t *testing.T) {
	h := &holder{}
	accessor := NewReflectAccessor()
	f := fieldOf(t, h, "private")

	assert.True(t, accessor.IsUnset(reflect.ValueOf(h), f))

	n := 7
	require.NoError(t, accessor.Set(reflect.ValueOf(h), f, reflect.ValueOf(&n)))
	assert.Same(t, &n, h.private)
	assert.False(t, accessor.IsUnset(reflect.ValueOf(h), f))

	got, err := accessor.Get(reflect.ValueOf(h), f)
	require.NoError(t, err)
	assert.Equal(t, 7, *got.Interface().(*int))
}

type outer struct {
	inner holder
}

func TestAccessorAddrReachesStructValues(t *testing.T) {
	o := &outer{}
	accessor := NewReflectAccessor()

	addr, err := accessor.Addr(reflect.ValueOf(o), fieldOf(t, o, "inner"))
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf(&holder{}), addr.Type())

	n := 3
	require.NoError(t, accessor.Set(addr, fieldOf(t, &holder{}, "private"), reflect.ValueOf(&n)))
	assert.Same(t, &n, o.inner.private)

	_, err = accessor.Addr(reflect.ValueOf(outer{}), fieldOf(t, o, "inner"))
	assert.ErrorIs(t, err, ErrFieldNotSettable)
}

func TestAccessorAssignsToInterfaceFields(t *testing.T) {
	h := &holder{}
	accessor := NewReflectAccessor()

	require.NoError(t, accessor.Set(reflect.ValueOf(h), fieldOf(t, h, "iface"), reflect.ValueOf(lenner{1, 2})))
	require.NotNil(t, h.iface)
	assert.Equal(t, 2, h.iface.Len())
}

func TestAccessorRejectsWrites(t *testing.T) {
	accessor := NewReflectAccessor()
	f := fieldOf(t, &holder{}, "Public")

	tests := []struct {
		name  string
		owner reflect.Value
		value reflect.Value
	}{
		{name: "owner passed by value", owner: reflect.ValueOf(holder{}), value: reflect.ValueOf("x")},
		{name: "nil owner", owner: reflect.ValueOf((*holder)(nil)), value: reflect.ValueOf("x")},
		{name: "type mismatch", owner: reflect.ValueOf(&holder{}), value: reflect.ValueOf(42)},
		{name: "no value", owner: reflect.ValueOf(&holder{}), value: reflect.Value{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := accessor.Set(tt.owner, f, tt.value)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, ErrFieldNotSettable))
		})
	}
}

func TestAccessorRejectsForeignFields(t *testing.T) {
	type other struct{ Public int }
	f := fieldOf(t, &other{}, "Public")
	f.Name = "Elsewhere"

	err := NewReflectAccessor().Set(reflect.ValueOf(&holder{}), f, reflect.ValueOf(1))
	assert.ErrorIs(t, err, ErrFieldNotSettable)
}

func TestAccessorInvoke(t *testing.T) {
	accessor := NewReflectAccessor()

	out, err := accessor.Invoke(reflect.ValueOf(func(a, b int) int { return a + b }),
		[]reflect.Value{reflect.ValueOf(2), reflect.ValueOf(3)})
	require.NoError(t, err)
	assert.Equal(t, 5, out[0].Interface())

	_, err = accessor.Invoke(reflect.ValueOf(func() { panic("boom") }), nil)
	assert.ErrorIs(t, err, ErrInvocationPanicked)
	assert.Contains(t, err.Error(), "boom")

	_, err = accessor.Invoke(reflect.ValueOf(42), nil)
	assert.ErrorIs(t, err, ErrNotCallable)

	_, err = accessor.Invoke(reflect.ValueOf(func(int) {}), nil)
	assert.ErrorIs(t, err, ErrNotCallable)
}
