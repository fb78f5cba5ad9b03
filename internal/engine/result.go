package engine

import (
	"strings"

	"github.com/toyz/mockwire/internal/inject"
	"github.com/toyz/mockwire/internal/pool"
)

// Result is what one pass produced
type Result struct {
	Fixture     string            // fixture type name
	Substitutes []pool.Substitute // every substitute written, captors included
	Reports     []*inject.Report  // one per inject field, in declaration order
}

// Substitute returns the substitute with the given name
func (r *Result) Substitute(name string) (pool.Substitute, bool) {
	for _, s := range r.Substitutes {
		if s.Name == name {
			return s, true
		}
	}
	return pool.Substitute{}, false
}

// Report returns the injection report of the inject field called field
func (r *Result) Report(field string) (*inject.Report, bool) {
	for _, rep := range r.Reports {
		if rep.Target == field || strings.HasSuffix(rep.Target, "."+field) {
			return rep, true
		}
	}
	return nil, false
}
