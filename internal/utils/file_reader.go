package utils

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sync"
)

// FileReader parses Go files into one shared FileSet, caching ASTs until
// the file changes
type FileReader struct {
	mu    sync.Mutex
	fset  *token.FileSet
	cache *FileCache[*ast.File]
}

// NewFileReader creates a reader with an empty cache
func NewFileReader() *FileReader {
	return &FileReader{
		fset:  token.NewFileSet(),
		cache: NewFileCache[*ast.File](),
	}
}

// FileSet returns the FileSet positions are recorded in
func (fr *FileReader) FileSet() *token.FileSet {
	return fr.fset
}

// ParseGoFile parses the file at path, reusing a cached AST when the file is unchanged
func (fr *FileReader) ParseGoFile(path string) (*ast.File, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	path = filepath.Clean(path)

	if file, ok := fr.cache.Get(path); ok {
		return file, nil
	}

	fr.mu.Lock()
	file, err := parser.ParseFile(fr.fset, path, nil, parser.SkipObjectResolution)
	fr.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go file %s: %w", filepath.Base(path), err)
	}

	_ = fr.cache.Put(path, file)
	return file, nil
}

// ParseGoSource parses in-memory source; the result is not cached
func (fr *FileReader) ParseGoSource(filename, source string) (*ast.File, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	file, err := parser.ParseFile(fr.fset, filename, source, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go source %s: %w", filename, err)
	}
	return file, nil
}

// Cached returns how many files have a cached AST
func (fr *FileReader) Cached() int {
	return fr.cache.Len()
}
