package fields

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/markers"
)

// DefaultTagKey is the struct tag key holding markers
const DefaultTagKey = "mockwire"

// Locator enumerates declared fields and classifies them by their markers.
// Results are cached per type; the cache is safe for concurrent use.
type Locator struct {
	tagKey string
	parser *markers.Parser
	cache  sync.Map // reflect.Type -> []Field
}

// NewLocator creates a locator reading markers from tagKey
func NewLocator(tagKey string, parser *markers.Parser) *Locator {
	if tagKey == "" {
		tagKey = DefaultTagKey
	}
	if parser == nil {
		parser = markers.DefaultParser()
	}
	return &Locator{tagKey: tagKey, parser: parser}
}

// TagKey returns the struct tag key the locator reads
func (l *Locator) TagKey() string {
	return l.tagKey
}

// Locate returns the fields declared on t, in declaration order.
//
// t may be a struct or a pointer to one. Marker syntax and marker
// combinations are validated here so a broken fixture fails before any
// value is written.
func (l *Locator) Locate(t reflect.Type) ([]Field, error) {
	if t == nil {
		return nil, errors.NewConfigurationError("", "cannot locate fields of a nil type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.NewConfigurationError("", fmt.Sprintf("%s is not a struct type", t))
	}

	if cached, ok := l.cache.Load(t); ok {
		return cached.([]Field), nil
	}

	located := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		f := Field{
			Name:     sf.Name,
			Index:    i,
			Type:     sf.Type,
			Owner:    t,
			Exported: sf.IsExported(),
			Embedded: sf.Anonymous,
			Tag:      sf.Tag,
		}

		tag, ok := sf.Tag.Lookup(l.tagKey)
		if ok && tag == "-" {
			f.Skip = true
		} else if ok {
			parsed, err := l.parser.Parse(tag)
			if err != nil {
				return nil, errors.WrapConfigurationError(f.QualifiedName(), err)
			}
			if err := markers.Validate(f.QualifiedName(), parsed, l.parser.Schemas()); err != nil {
				return nil, err
			}
			f.Markers = parsed
		}

		located = append(located, f)
	}

	l.cache.Store(t, located)
	return located, nil
}
