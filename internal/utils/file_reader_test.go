package utils

import (
	"path/filepath"
	"testing"
)

func TestFileReader_ParseGoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.go")
	writeFile(t, path, "package sample\n\ntype fixture struct{}\n")

	reader := NewFileReader()
	first, err := reader.ParseGoFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name.Name != "sample" {
		t.Errorf("expected package sample, got %s", first.Name.Name)
	}

	second, err := reader.ParseGoFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected the cached AST for an unchanged file")
	}
	if reader.Cached() != 1 {
		t.Errorf("expected 1 cached file, got %d", reader.Cached())
	}

	pos := reader.FileSet().Position(first.Package)
	if pos.Filename != path || pos.Line != 1 {
		t.Errorf("unexpected position %s", pos)
	}
}

func TestFileReader_Errors(t *testing.T) {
	reader := NewFileReader()

	if _, err := reader.ParseGoFile(""); err == nil {
		t.Error("expected an error for an empty path")
	}
	if _, err := reader.ParseGoFile(filepath.Join(t.TempDir(), "missing.go")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.go")
	writeFile(t, path, "package")
	if _, err := reader.ParseGoFile(path); err == nil {
		t.Error("expected a parse error")
	}
	if reader.Cached() != 0 {
		t.Errorf("failed parses must not be cached, got %d", reader.Cached())
	}
}

func TestFileReader_ParseGoSource(t *testing.T) {
	reader := NewFileReader()

	file, err := reader.ParseGoSource("inline.go", "package inline\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Name.Name != "inline" {
		t.Errorf("expected package inline, got %s", file.Name.Name)
	}
	if reader.Cached() != 0 {
		t.Error("in-memory sources are not cached")
	}

	if _, err := reader.ParseGoSource("bad.go", "not go"); err == nil {
		t.Error("expected a parse error")
	}
}
