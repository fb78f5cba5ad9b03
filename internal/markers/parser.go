package markers

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/mockwire/internal/errors"
)

// tagNode is the root of a marker tag: a whitespace separated list of markers
//
//	mock -name=primary
//	inject spy
type tagNode struct {
	Markers []*markerNode `parser:"@@*"`
}

type markerNode struct {
	Pos    lexer.Position
	Kind   string       `parser:"@Ident"`
	Params []*paramNode `parser:"@@*"`
}

type paramNode struct {
	Pos    lexer.Position
	Key    string   `parser:"Dash @Ident"`
	Values []string `parser:"( Equals @( String | Ident | Number ) ( Comma @( String | Ident | Number ) )* )?"`
}

var tagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"|'[^']*'`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser turns tag values into markers using participle
type Parser struct {
	parser  *participle.Parser[tagNode]
	schemas SchemaRegistry
}

// NewParser creates a parser validating parameters against schemas.
// A nil registry disables parameter validation.
func NewParser(schemas SchemaRegistry) *Parser {
	return &Parser{
		parser: participle.MustBuild[tagNode](
			participle.Lexer(tagLexer),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
		schemas: schemas,
	}
}

var (
	defaultParser     *Parser
	defaultParserOnce sync.Once
)

// DefaultParser returns a parser bound to DefaultSchemas
func DefaultParser() *Parser {
	defaultParserOnce.Do(func() {
		defaultParser = NewParser(DefaultSchemas())
	})
	return defaultParser
}

// Schemas returns the registry the parser validates against
func (p *Parser) Schemas() SchemaRegistry {
	return p.schemas
}

// Parse parses a tag value such as "mock -name=db" into markers
func (p *Parser) Parse(tag string) ([]Marker, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, nil
	}

	root, err := p.parser.ParseString("", tag)
	if err != nil {
		return nil, toSyntaxError(tag, err)
	}

	result := make([]Marker, 0, len(root.Markers))
	for _, node := range root.Markers {
		marker, err := p.buildMarker(node)
		if err != nil {
			return nil, err
		}
		result = append(result, marker)
	}
	return result, nil
}

func (p *Parser) buildMarker(node *markerNode) (Marker, error) {
	marker := Marker{
		Kind:   Kind(node.Kind),
		Params: make(map[string]interface{}),
		Offset: node.Pos.Offset,
	}

	var schema Schema
	known := false
	if p.schemas != nil {
		schema, known = p.schemas.Schema(marker.Kind)
	}

	for _, param := range node.Params {
		if _, dup := marker.Params[param.Key]; dup {
			return Marker{}, errors.NewValidationError(param.Key, "a single value", "the parameter twice").
				WithContext("marker", node.Kind)
		}
		if !known {
			marker.Params[param.Key] = rawParameterValue(param)
			continue
		}

		spec, ok := schema.Parameters[param.Key]
		if !ok {
			return Marker{}, errors.NewValidationError(param.Key,
				fmt.Sprintf("a parameter of %s", marker.Kind), "unknown parameter").
				WithContext("marker", node.Kind)
		}

		value, err := convertParameterValue(param, spec)
		if err != nil {
			return Marker{}, err
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return Marker{}, errors.NewValidationError(param.Key, "a valid value", err.Error()).
					WithContext("marker", node.Kind)
			}
		}
		marker.Params[param.Key] = value
	}

	if known {
		for name, spec := range schema.Parameters {
			if !spec.Required {
				continue
			}
			if _, ok := marker.Params[name]; !ok {
				return Marker{}, errors.NewValidationError(name, "a value", "nothing").
					WithContext("marker", node.Kind).
					WithSuggestion(fmt.Sprintf("Add -%s=<value> to the %s marker", name, marker.Kind))
			}
		}
	}

	return marker, nil
}

// rawParameterValue keeps values of unknown markers as written: flags become true
func rawParameterValue(param *paramNode) interface{} {
	switch len(param.Values) {
	case 0:
		return true
	case 1:
		return unquote(param.Values[0])
	default:
		out := make([]string, len(param.Values))
		for i, v := range param.Values {
			out[i] = unquote(v)
		}
		return out
	}
}

// convertParameterValue converts a value to the appropriate type based on the schema
func convertParameterValue(param *paramNode, spec ParameterSpec) (interface{}, error) {
	if len(param.Values) == 0 {
		switch {
		case spec.Type == BoolType:
			return true, nil
		case spec.DefaultValue != nil:
			return spec.DefaultValue, nil
		default:
			return nil, errors.NewValidationError(param.Key, spec.Type.String()+" value", "a bare flag")
		}
	}

	values := make([]string, len(param.Values))
	for i, v := range param.Values {
		values[i] = unquote(v)
	}
	if spec.Type == StringSliceType {
		return values, nil
	}
	if len(values) > 1 {
		return nil, errors.NewValidationError(param.Key, spec.Type.String()+" value", "a list")
	}

	raw := values[0]
	switch spec.Type {
	case IntType:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewValidationError(param.Key, "int value", strconv.Quote(raw))
		}
		return n, nil
	case BoolType:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.NewValidationError(param.Key, "bool value", strconv.Quote(raw))
		}
		return b, nil
	default:
		return raw, nil
	}
}

// unquote removes surrounding quotes (both single and double)
func unquote(s string) string {
	if len(s) >= 2 {
		if s[0] == '"' && s[len(s)-1] == '"' {
			if u, err := strconv.Unquote(s); err == nil {
				return u
			}
			return s[1 : len(s)-1]
		}
		if s[0] == '\'' && s[len(s)-1] == '\'' {
			return s[1 : len(s)-1]
		}
	}
	return s
}

type positioned interface {
	Position() lexer.Position
}

func toSyntaxError(tag string, err error) *errors.SyntaxError {
	var pe positioned
	if stderrors.As(err, &pe) {
		pos := pe.Position()
		token := ""
		if pos.Offset >= 0 && pos.Offset < len(tag) {
			if fields := strings.Fields(tag[pos.Offset:]); len(fields) > 0 {
				token = fields[0]
			}
		}
		return errors.NewSyntaxErrorWithToken(fmt.Sprintf("invalid marker tag %q", tag), token, pos.Offset).
			WithCause(err).
			WithSuggestion(`Markers look like "mock -name=primary" or "inject spy"`)
	}
	return errors.WrapParseError(fmt.Sprintf("marker tag %q", tag), err)
}
