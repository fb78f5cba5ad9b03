package inject

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/utils"
)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()

	validParamNames = utils.All(
		utils.Each(utils.IsValidGoIdentifier("parameter name")),
		utils.Unique[string]("parameter name"),
	)
)

// Param is one constructor parameter
type Param struct {
	Name string // used for by-name disambiguation, may be empty
	Type reflect.Type
}

// Constructor is a registered function building a value of type Produces
type Constructor struct {
	Fn           reflect.Value
	Produces     reflect.Type
	Params       []Param
	ReturnsError bool
	seq          int
}

// String renders the constructor's signature
func (c Constructor) String() string {
	return c.Fn.Type().String()
}

// Constructors indexes registered constructors by the type they produce
type Constructors struct {
	mu    sync.Mutex
	byOut *utils.BaseRegistry[reflect.Type, []Constructor]
	seq   int
}

// NewConstructors creates an empty constructor registry
func NewConstructors() *Constructors {
	return &Constructors{
		byOut: utils.NewBaseRegistry[reflect.Type, []Constructor]("constructor", "type"),
	}
}

var (
	defaultConstructors     *Constructors
	defaultConstructorsOnce sync.Once
)

// DefaultConstructors returns the process-wide constructor registry
func DefaultConstructors() *Constructors {
	defaultConstructorsOnce.Do(func() {
		defaultConstructors = NewConstructors()
	})
	return defaultConstructors
}

// Register adds a constructor. fn must be a non-variadic function returning
// T or (T, error). paramNames, when given, name every parameter in order.
func (c *Constructors) Register(fn interface{}, paramNames ...string) error {
	ctor, err := newConstructor(fn, paramNames)
	if err != nil {
		name := "<nil>"
		if fn != nil {
			name = reflect.TypeOf(fn).String()
		}
		return errors.WrapRegisterError("constructor", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	ctor.seq = c.seq
	existing, _ := c.byOut.Get(ctor.Produces)
	return c.byOut.Register(ctor.Produces, append(existing[:len(existing):len(existing)], ctor))
}

func newConstructor(fn interface{}, paramNames []string) (Constructor, error) {
	if fn == nil {
		return Constructor{}, fmt.Errorf("constructor cannot be nil")
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func || v.IsNil() {
		return Constructor{}, fmt.Errorf("constructor must be a function, got %s", t)
	}
	if t.IsVariadic() {
		return Constructor{}, fmt.Errorf("variadic constructors are not supported")
	}

	ctor := Constructor{Fn: v}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
		ctor.ReturnsError = true
	default:
		return Constructor{}, fmt.Errorf("constructor must return T or (T, error), got %s", t)
	}
	ctor.Produces = t.Out(0)

	if len(paramNames) > 0 && len(paramNames) != t.NumIn() {
		return Constructor{}, fmt.Errorf("constructor takes %d parameters but %d names were given",
			t.NumIn(), len(paramNames))
	}
	if err := validParamNames(paramNames); err != nil {
		return Constructor{}, err
	}
	for i := 0; i < t.NumIn(); i++ {
		p := Param{Type: t.In(i)}
		if len(paramNames) > 0 {
			p.Name = paramNames[i]
		}
		ctor.Params = append(ctor.Params, p)
	}
	return ctor, nil
}

// For returns the constructors producing t: most parameters first, then
// registration order
func (c *Constructors) For(t reflect.Type) []Constructor {
	c.mu.Lock()
	found, _ := c.byOut.Get(t)
	out := make([]Constructor, len(found))
	copy(out, found)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Params) != len(out[j].Params) {
			return len(out[i].Params) > len(out[j].Params)
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Len returns the number of registered constructors
func (c *Constructors) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.byOut.List() {
		ctors, _ := c.byOut.Get(t)
		n += len(ctors)
	}
	return n
}

// Clone returns an independent copy of the registry
func (c *Constructors) Clone() *Constructors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Constructors{byOut: c.byOut.Clone(), seq: c.seq}
}
