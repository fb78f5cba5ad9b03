package inject

import (
	"fmt"
	"strings"
)

// Strategy names how a substitute reached its slot
type Strategy int

const (
	ConstructorInjection Strategy = iota + 1
	SetterInjection
	FieldInjection
	SpyWrapping
)

// String returns the strategy name
func (s Strategy) String() string {
	switch s {
	case ConstructorInjection:
		return "constructor"
	case SetterInjection:
		return "setter"
	case FieldInjection:
		return "field"
	case SpyWrapping:
		return "spy"
	default:
		return "unknown"
	}
}

// Assignment records one placed substitute
type Assignment struct {
	Field     string   // target field, or constructor parameter
	Candidate string   // substitute name
	Strategy  Strategy // how it was placed
}

// Report describes what one resolution did to one target
type Report struct {
	Target      string       // qualified name of the inject field
	Constructed bool         // target built by a registered constructor
	Assignments []Assignment // in the order they happened
	Unset       []string     // slots left without a candidate
}

func (r *Report) add(field, candidate string, strategy Strategy) {
	r.Assignments = append(r.Assignments, Assignment{Field: field, Candidate: candidate, Strategy: strategy})
}

// AddSpyWrapping records that the target value was wrapped in a spy
func (r *Report) AddSpyWrapping(field string) {
	r.add(field, "spy", SpyWrapping)
}

// Lookup returns the assignment made for field
func (r *Report) Lookup(field string) (Assignment, bool) {
	for _, a := range r.Assignments {
		if a.Field == field {
			return a, true
		}
	}
	return Assignment{}, false
}

// ByStrategy returns the assignments made with strategy s
func (r *Report) ByStrategy(s Strategy) []Assignment {
	var out []Assignment
	for _, a := range r.Assignments {
		if a.Strategy == s {
			out = append(out, a)
		}
	}
	return out
}

// Placements maps each assigned field to its candidate
func (r *Report) Placements() map[string]string {
	out := make(map[string]string, len(r.Assignments))
	for _, a := range r.Assignments {
		out[a.Field] = a.Candidate
	}
	return out
}

// String summarises the report on one line
func (r *Report) String() string {
	parts := make([]string, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		parts = append(parts, fmt.Sprintf("%s<-%s(%s)", a.Field, a.Candidate, a.Strategy))
	}
	s := fmt.Sprintf("%s: [%s]", r.Target, strings.Join(parts, " "))
	if len(r.Unset) > 0 {
		s += fmt.Sprintf(" unset=%v", r.Unset)
	}
	return s
}
