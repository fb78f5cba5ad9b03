package mockwire

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/stretchr/testify/mock"
	"go.uber.org/mock/gomock"
)

// Captor records the arguments it is matched against. Use Capture() with
// testify mocks or pass the captor itself to gomock expectations.
type Captor[T any] struct {
	mu     sync.Mutex
	values []T
}

var _ gomock.Matcher = (*Captor[int])(nil)

// NewCaptor returns an empty captor
func NewCaptor[T any]() *Captor[T] {
	return &Captor[T]{}
}

// CapturedType returns T
func (c *Captor[T]) CapturedType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Capture returns a testify argument matcher that accepts any T and records it
func (c *Captor[T]) Capture() interface{} {
	return mock.MatchedBy(func(v T) bool {
		c.record(v)
		return true
	})
}

// Matches implements gomock.Matcher
func (c *Captor[T]) Matches(x interface{}) bool {
	if x == nil {
		var zero T
		switch c.CapturedType().Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			c.record(zero)
			return true
		}
		return false
	}
	v, ok := x.(T)
	if !ok {
		return false
	}
	c.record(v)
	return true
}

// String implements gomock.Matcher
func (c *Captor[T]) String() string {
	return fmt.Sprintf("captures %s", c.CapturedType())
}

func (c *Captor[T]) record(v T) {
	c.mu.Lock()
	c.values = append(c.values, v)
	c.mu.Unlock()
}

// Value returns the last captured argument, or the zero T
func (c *Captor[T]) Value() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.values) == 0 {
		var zero T
		return zero
	}
	return c.values[len(c.values)-1]
}

// AllValues returns every captured argument in capture order
func (c *Captor[T]) AllValues() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}

// Len returns how many arguments were captured
func (c *Captor[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

// Reset forgets every captured argument
func (c *Captor[T]) Reset() {
	c.mu.Lock()
	c.values = nil
	c.mu.Unlock()
}
