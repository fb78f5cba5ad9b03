package utils

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FileProcessor walks source trees
type FileProcessor struct {
	reader    *FileReader
	dirFilter DirectoryFilter
}

// FileFilter decides whether a file is processed
type FileFilter func(path string, entry fs.DirEntry) bool

// DirectoryFilter decides whether a directory is descended into
type DirectoryFilter func(path string, entry fs.DirEntry) bool

// NewFileProcessor creates a processor sharing reader; nil creates a new one
func NewFileProcessor(reader *FileReader) *FileProcessor {
	if reader == nil {
		reader = NewFileReader()
	}
	return &FileProcessor{reader: reader, dirFilter: DefaultDirectoryFilter()}
}

// Reader returns the processor's file reader
func (fp *FileProcessor) Reader() *FileReader {
	return fp.reader
}

// GoSourceFilter accepts .go files, and _test.go files when includeTests is set
func GoSourceFilter(includeTests bool) FileFilter {
	return func(path string, entry fs.DirEntry) bool {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			return false
		}
		return includeTests || !strings.HasSuffix(name, "_test.go")
	}
}

// DefaultDirectoryFilter skips vendored, hidden and underscore directories
// along with testdata, as the go tool does
func DefaultDirectoryFilter() DirectoryFilter {
	skip := map[string]bool{
		"vendor":       true,
		"testdata":     true,
		"node_modules": true,
	}
	return func(path string, entry fs.DirEntry) bool {
		name := entry.Name()
		if path == "." || name == "." {
			return true
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return false
		}
		return !skip[name]
	}
}

// WalkGoFiles returns the files under root accepted by filter, sorted. The
// root itself is always entered.
func (fp *FileProcessor) WalkGoFiles(root string, filter FileFilter) ([]string, error) {
	root = strings.TrimSuffix(root, "/...")
	if root == "" {
		root = "."
	}

	var matched []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && fp.dirFilter != nil && !fp.dirFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}
		if filter == nil || filter(path, entry) {
			matched = append(matched, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matched)
	return matched, nil
}
