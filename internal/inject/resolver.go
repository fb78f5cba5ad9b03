// Package inject places substitutes from a candidate pool into injection
// targets.
//
// For each target the strategies run in a fixed order. Constructor injection
// builds an unset target from a registered constructor whose parameters are
// all satisfiable. Setter injection runs only when no constructor was used.
// Direct field injection covers whatever is still unset. A candidate is
// placed at most once per target.
package inject

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stoewer/go-strcase"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/fields"
	"github.com/toyz/mockwire/internal/pool"
	"github.com/toyz/mockwire/internal/utils"
)

const injectMarker = "inject"

// Target is an inject-marked field on its owner
type Target struct {
	Owner reflect.Value // pointer to the struct declaring Field
	Field fields.Field
}

// Resolver decides which candidate goes where and performs the writes
type Resolver struct {
	accessor     fields.Accessor
	locator      *fields.Locator
	constructors *Constructors
	diag         *utils.DiagnosticSystem
}

// NewResolver creates a resolver. Nil arguments fall back to defaults.
func NewResolver(accessor fields.Accessor, locator *fields.Locator, constructors *Constructors, diag *utils.DiagnosticSystem) *Resolver {
	if accessor == nil {
		accessor = fields.NewReflectAccessor()
	}
	if locator == nil {
		locator = fields.NewLocator("", nil)
	}
	if constructors == nil {
		constructors = DefaultConstructors()
	}
	if diag == nil {
		diag = utils.NewSilentDiagnostics()
	}
	return &Resolver{accessor: accessor, locator: locator, constructors: constructors, diag: diag}
}

// pass is the state of one resolution
type pass struct {
	*Resolver
	pool   *pool.Pool
	used   map[uuid.UUID]bool
	report *Report
	errs   *errors.MultipleErrors
}

// Resolve injects candidates from p into target.
//
// Ambiguity and configuration errors stop resolution at once. Rejected
// writes are collected and returned together as *errors.MultipleErrors;
// assignments already made stay in place. The report is never nil.
func (r *Resolver) Resolve(target Target, p *pool.Pool) (*Report, error) {
	if p == nil {
		p = pool.Empty()
	}
	ps := &pass{
		Resolver: r,
		pool:     p,
		used:     make(map[uuid.UUID]bool),
		report:   &Report{Target: target.Field.QualifiedName()},
	}

	instance, err := ps.prepareTarget(target)
	if err != nil {
		return ps.report, err
	}
	if !instance.IsValid() {
		return ps.report, ps.errs.ErrorOrNil()
	}

	slots, err := ps.pendingSlots(instance)
	if err != nil {
		return ps.report, err
	}

	if !ps.report.Constructed {
		if slots, err = ps.injectSetters(instance, slots); err != nil {
			return ps.report, err
		}
	}
	if err := ps.injectFields(instance, slots); err != nil {
		return ps.report, err
	}

	return ps.report, ps.errs.ErrorOrNil()
}

// prepareTarget makes sure the target slot holds an instance. It returns the
// pointer to struct whose fields receive injection, or an invalid value when
// the target cannot take field-level injection. A struct value target is
// injected in place through its address.
func (ps *pass) prepareTarget(target Target) (reflect.Value, error) {
	name := target.Field.QualifiedName()
	slotType := target.Field.Type

	current, err := ps.accessor.Get(target.Owner, target.Field)
	if err != nil {
		return reflect.Value{}, errors.NewAssignmentError(name, injectMarker, err)
	}

	if current.IsZero() {
		built, ok, err := ps.construct(name, slotType)
		if err != nil {
			return reflect.Value{}, err
		}
		if !ok {
			switch {
			case slotType.Kind() == reflect.Struct:
				// the zero value is used as is
			case slotType.Kind() == reflect.Pointer && slotType.Elem().Kind() == reflect.Struct:
				built = reflect.New(slotType.Elem())
			default:
				return reflect.Value{}, errors.NewAssignmentError(name, injectMarker,
					fmt.Errorf("%w: cannot instantiate %s without a registered constructor",
						fields.ErrFieldNotSettable, slotType))
			}
		}
		if built.IsValid() {
			if err := ps.accessor.Set(target.Owner, target.Field, built); err != nil {
				return reflect.Value{}, errors.NewAssignmentError(name, injectMarker, err)
			}
			ps.diag.Debug("%s: instantiated %s (constructor=%t)", name, slotType, ok)
			if current, err = ps.accessor.Get(target.Owner, target.Field); err != nil {
				return reflect.Value{}, errors.NewAssignmentError(name, injectMarker, err)
			}
		}
		ps.report.Constructed = ok
	}

	if slotType.Kind() == reflect.Struct {
		addr, err := ps.accessor.Addr(target.Owner, target.Field)
		if err != nil {
			return reflect.Value{}, errors.NewAssignmentError(name, injectMarker, err)
		}
		return addr, nil
	}

	instance := current
	if instance.Kind() == reflect.Interface {
		instance = instance.Elem()
	}
	if instance.Kind() != reflect.Pointer || instance.IsNil() || instance.Elem().Kind() != reflect.Struct {
		ps.diag.Verbose("%s: %s takes no field injection", name, current.Type())
		return reflect.Value{}, nil
	}
	return instance, nil
}

// construct tries the constructors producing t. ok is false when none of
// them can be fully satisfied.
func (ps *pass) construct(name string, t reflect.Type) (reflect.Value, bool, error) {
	for _, ctor := range ps.constructors.For(t) {
		args := make([]reflect.Value, len(ctor.Params))
		picked := make([]pool.Substitute, len(ctor.Params))
		taken := make(map[uuid.UUID]bool, len(ctor.Params))

		satisfied := true
		for i, param := range ctor.Params {
			label := param.Name
			if label == "" {
				label = fmt.Sprintf("%s#%d", ctor, i)
			}
			s, found, err := choose(ps.pool, param.Type, label, param.Name, func(id uuid.UUID) bool {
				return ps.used[id] || taken[id]
			})
			if err != nil {
				return reflect.Value{}, false, err
			}
			if !found {
				satisfied = false
				break
			}
			taken[s.ID] = true
			picked[i] = s
			args[i] = convertTo(s.Value, param.Type)
		}
		if !satisfied {
			ps.diag.Debug("%s: constructor %s skipped", name, ctor)
			continue
		}

		out, err := ps.accessor.Invoke(ctor.Fn, args)
		if err != nil {
			return reflect.Value{}, false, errors.NewAssignmentError(name, injectMarker, err)
		}
		if ctor.ReturnsError && !out[1].IsNil() {
			return reflect.Value{}, false, errors.NewAssignmentError(name, injectMarker,
				out[1].Interface().(error))
		}
		if isNil(out[0]) {
			return reflect.Value{}, false, errors.NewAssignmentError(name, injectMarker,
				fmt.Errorf("constructor %s returned nil", ctor))
		}

		for i, s := range picked {
			ps.used[s.ID] = true
			field := ctor.Params[i].Name
			if field == "" {
				field = fmt.Sprintf("arg%d", i)
			}
			ps.report.add(field, s.Name, ConstructorInjection)
		}
		return out[0], true, nil
	}
	return reflect.Value{}, false, nil
}

// pendingSlots lists the declared fields of the instance that are still unset
func (ps *pass) pendingSlots(instance reflect.Value) ([]fields.Field, error) {
	declared, err := ps.locator.Locate(instance.Type())
	if err != nil {
		return nil, err
	}
	var slots []fields.Field
	for _, f := range declared {
		if f.Skip {
			continue
		}
		if ps.accessor.IsUnset(instance, f) {
			slots = append(slots, f)
		}
	}
	return slots, nil
}

// injectSetters calls Set<Field> for each slot with a single satisfiable
// parameter and returns the slots it did not handle
func (ps *pass) injectSetters(instance reflect.Value, slots []fields.Field) ([]fields.Field, error) {
	remaining := slots[:0:0]
	for _, f := range slots {
		setter, ok := findSetter(instance, f.Name)
		if !ok {
			remaining = append(remaining, f)
			continue
		}

		s, found, err := choose(ps.pool, setter.Type().In(0), f.QualifiedName(), f.Name, ps.isUsed)
		if err != nil {
			return nil, err
		}
		if !found {
			remaining = append(remaining, f)
			continue
		}

		out, err := ps.accessor.Invoke(setter, []reflect.Value{convertTo(s.Value, setter.Type().In(0))})
		if err == nil && len(out) == 1 && !out[0].IsNil() {
			err = out[0].Interface().(error)
		}
		if err != nil {
			errors.AddToMultiple(&ps.errs, errors.NewAssignmentError(f.QualifiedName(), injectMarker, err))
			continue
		}

		ps.used[s.ID] = true
		ps.report.add(f.Name, s.Name, SetterInjection)
		ps.diag.Debug("%s <- %s (setter)", f.QualifiedName(), s)
	}
	return remaining, nil
}

// injectFields writes a candidate straight into every slot still unset
func (ps *pass) injectFields(instance reflect.Value, slots []fields.Field) error {
	for _, f := range slots {
		if !ps.accessor.IsUnset(instance, f) {
			continue
		}

		s, found, err := choose(ps.pool, f.Type, f.QualifiedName(), f.Name, ps.isUsed)
		if err != nil {
			return err
		}
		if !found {
			ps.report.Unset = append(ps.report.Unset, f.Name)
			ps.diag.Verbose("%s: no candidate of type %s", f.QualifiedName(), f.Type)
			continue
		}

		if err := ps.accessor.Set(instance, f, convertTo(s.Value, f.Type)); err != nil {
			errors.AddToMultiple(&ps.errs, errors.NewAssignmentError(f.QualifiedName(), injectMarker, err))
			continue
		}

		ps.used[s.ID] = true
		ps.report.add(f.Name, s.Name, FieldInjection)
		ps.diag.Debug("%s <- %s (field)", f.QualifiedName(), s)
	}
	return nil
}

func (ps *pass) isUsed(id uuid.UUID) bool {
	return ps.used[id]
}

// choose picks the single candidate for a slot of type t called name. One
// candidate by type wins; several fall back to an exact name match and then a
// case-insensitive one. Anything else is ambiguous.
func choose(p *pool.Pool, t reflect.Type, label, name string, excluded func(uuid.UUID) bool) (pool.Substitute, bool, error) {
	var candidates []pool.Substitute
	for _, s := range p.ByType(t) {
		if !excluded(s.ID) {
			candidates = append(candidates, s)
		}
	}

	switch len(candidates) {
	case 0:
		return pool.Substitute{}, false, nil
	case 1:
		return candidates[0], true, nil
	}

	if name != "" {
		if s, ok := onlyMatch(candidates, func(s pool.Substitute) bool { return s.Name == name }); ok {
			return s, true, nil
		}
		if s, ok := onlyMatch(candidates, func(s pool.Substitute) bool { return strings.EqualFold(s.Name, name) }); ok {
			return s, true, nil
		}
	}

	names := make([]string, len(candidates))
	for i, s := range candidates {
		names[i] = s.Name
	}
	return pool.Substitute{}, false, errors.NewAmbiguityError(label, t.String(), names)
}

func onlyMatch(candidates []pool.Substitute, match func(pool.Substitute) bool) (pool.Substitute, bool) {
	var found pool.Substitute
	n := 0
	for _, s := range candidates {
		if match(s) {
			found = s
			n++
		}
	}
	return found, n == 1
}

// isSetter reports whether t looks like func(X) or func(X) error
// setterNames lists the method names tried for field. The literal form comes
// first so initialisms survive (clockAPI -> SetClockAPI); the camel-cased
// form covers snake_case fields.
func setterNames(field string) []string {
	r, size := utf8.DecodeRuneInString(field)
	names := []string{"Set" + string(unicode.ToUpper(r)) + field[size:]}
	if camel := "Set" + strcase.UpperCamelCase(field); camel != names[0] {
		names = append(names, camel)
	}
	return names
}

// findSetter returns the first setter method on instance for field
func findSetter(instance reflect.Value, field string) (reflect.Value, bool) {
	for _, name := range setterNames(field) {
		if m := instance.MethodByName(name); m.IsValid() && isSetter(m.Type()) {
			return m, true
		}
	}
	return reflect.Value{}, false
}

func isSetter(t reflect.Type) bool {
	if t.NumIn() != 1 || t.IsVariadic() {
		return false
	}
	switch t.NumOut() {
	case 0:
		return true
	case 1:
		return t.Out(0) == errorType
	}
	return false
}

// convertTo unwraps interface holders so the value's dynamic type is used
// when it is assigned to t
func convertTo(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Kind() == reflect.Interface && !v.IsNil() && !v.Type().AssignableTo(t) {
		return v.Elem()
	}
	return v
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}
