// Package lint checks marker tags in Go source without running any test.
package lint

import (
	stderrors "errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/fields"
	"github.com/toyz/mockwire/internal/markers"
	"github.com/toyz/mockwire/internal/utils"
)

// Severity of a diagnostic
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one finding on one field
type Diagnostic struct {
	Severity Severity
	Location errors.SourceLocation
	Struct   string // declaring struct, "struct{...}" when anonymous
	Field    string
	Message  string
	Hints    []string // suggestions carried by the underlying error
}

// String renders the diagnostic as file:line:col: severity: message
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s.%s: %s", d.Location, d.Severity, d.Struct, d.Field, d.Message)
}

// Checker reports marker problems found in struct field tags
type Checker struct {
	tagKey  string
	parser  *markers.Parser
	schemas markers.SchemaRegistry
	reader  *utils.FileReader
}

// NewChecker creates a checker for tagKey; nil schemas means the defaults
func NewChecker(tagKey string, schemas markers.SchemaRegistry) *Checker {
	if tagKey == "" {
		tagKey = fields.DefaultTagKey
	}
	if schemas == nil {
		schemas = markers.DefaultSchemas()
	}
	return &Checker{
		tagKey:  tagKey,
		parser:  markers.NewParser(schemas),
		schemas: schemas,
		reader:  utils.NewFileReader(),
	}
}

// CheckSource parses src and checks it
func (c *Checker) CheckSource(filename, src string) ([]Diagnostic, error) {
	file, err := c.reader.ParseGoSource(filename, src)
	if err != nil {
		return nil, err
	}
	return c.CheckFile(c.reader.FileSet(), file), nil
}

// CheckDir walks root and checks every Go file, tests included
func (c *Checker) CheckDir(root string) ([]Diagnostic, int, error) {
	files, err := utils.NewFileProcessor(c.reader).WalkGoFiles(root, utils.GoSourceFilter(true))
	if err != nil {
		return nil, 0, errors.WrapWithOperation("scan", root, err)
	}

	var diags []Diagnostic
	for _, path := range files {
		file, err := c.reader.ParseGoFile(path)
		if err != nil {
			return diags, len(files), errors.WrapParseError(path, err)
		}
		diags = append(diags, c.CheckFile(c.reader.FileSet(), file)...)
	}
	sortDiagnostics(diags)
	return diags, len(files), nil
}

// CheckPackages loads the packages matching patterns from dir, test files
// included, and checks each file once
func (c *Checker) CheckPackages(dir string, patterns ...string) ([]Diagnostic, int, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:   dir,
		Tests: true,
		Fset:  token.NewFileSet(),
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, 0, errors.WrapWithOperation("load", strings.Join(patterns, " "), err)
	}

	var (
		diags []Diagnostic
		seen  = make(map[string]bool)
		errs  []string
	)
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e.Error())
		}
		for _, file := range pkg.Syntax {
			name := cfg.Fset.Position(file.Package).Filename
			if seen[name] {
				continue
			}
			seen[name] = true
			diags = append(diags, c.CheckFile(cfg.Fset, file)...)
		}
	})
	if len(seen) == 0 && len(errs) > 0 {
		return nil, 0, errors.Newf(errors.SyntaxErrorCode, "failed to load packages: %s", strings.Join(errs, "; "))
	}

	sortDiagnostics(diags)
	return diags, len(seen), nil
}

// CheckFile checks every struct type in file, named or anonymous
func (c *Checker) CheckFile(fset *token.FileSet, file *ast.File) []Diagnostic {
	var diags []Diagnostic
	named := make(map[*ast.StructType]bool)

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.TypeSpec:
			if st, ok := node.Type.(*ast.StructType); ok {
				named[st] = true
				diags = append(diags, c.checkStruct(fset, node.Name.Name, st)...)
			}
		case *ast.StructType:
			if !named[node] {
				diags = append(diags, c.checkStruct(fset, "struct{...}", node)...)
			}
		}
		return true
	})
	return diags
}

func (c *Checker) checkStruct(fset *token.FileSet, structName string, st *ast.StructType) []Diagnostic {
	var diags []Diagnostic
	for _, field := range st.Fields.List {
		if field.Tag == nil {
			continue
		}
		raw, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			continue
		}
		tag, ok := reflect.StructTag(raw).Lookup(c.tagKey)
		if !ok || tag == "-" {
			continue
		}

		pos := fset.Position(field.Tag.Pos())
		loc := errors.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
		report := func(sev Severity, name, msg string, hints ...string) {
			diags = append(diags, Diagnostic{Severity: sev, Location: loc, Struct: structName, Field: name, Message: msg, Hints: hints})
		}

		for _, name := range fieldNames(field) {
			parsed, err := c.parser.Parse(tag)
			if err != nil {
				report(SeverityError, name, err.Error(), hintsOf(err)...)
				continue
			}
			if err := markers.Validate(structName+"."+name, parsed, c.schemas); err != nil {
				report(SeverityError, name, err.Error(), hintsOf(err)...)
			}
			for _, m := range parsed {
				if !c.schemas.IsRegistered(m.Kind) {
					report(SeverityWarning, name, fmt.Sprintf("unknown marker %q is ignored", m.Kind))
				}
			}
			if markers.Has(parsed, markers.Captor) && !looksLikeCaptor(field.Type) {
				report(SeverityWarning, name,
					fmt.Sprintf("captor fields should be *mockwire.Captor[T], got %s", types.ExprString(field.Type)))
			}
		}
	}
	return diags
}

func hintsOf(err error) []string {
	var mwErr errors.MockwireError
	if stderrors.As(err, &mwErr) {
		return mwErr.Suggestions()
	}
	return nil
}

func fieldNames(field *ast.Field) []string {
	if len(field.Names) == 0 {
		return []string{types.ExprString(field.Type)}
	}
	names := make([]string, len(field.Names))
	for i, n := range field.Names {
		names[i] = n.Name
	}
	return names
}

// looksLikeCaptor accepts *Captor[T] and *pkg.Captor[T]
func looksLikeCaptor(expr ast.Expr) bool {
	star, ok := expr.(*ast.StarExpr)
	if !ok {
		return false
	}
	var base ast.Expr
	switch x := star.X.(type) {
	case *ast.IndexExpr:
		base = x.X
	case *ast.IndexListExpr:
		base = x.X
	default:
		return false
	}
	switch b := base.(type) {
	case *ast.Ident:
		return b.Name == "Captor"
	case *ast.SelectorExpr:
		return b.Sel.Name == "Captor"
	}
	return false
}

func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Location, diags[j].Location
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Count returns the number of errors and warnings in diags
func Count(diags []Diagnostic) (errs, warnings int) {
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			warnings++
		} else {
			errs++
		}
	}
	return errs, warnings
}
