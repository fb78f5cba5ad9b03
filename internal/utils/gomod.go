package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ModuleInfo describes the module a directory belongs to
type ModuleInfo struct {
	Path      string // module path from the module directive
	GoVersion string // go directive, empty if absent
	Root      string // directory holding go.mod
}

// ParseModuleFile reads module information from a go.mod file
func ParseModuleFile(goModPath string) (*ModuleInfo, error) {
	cleanPath := filepath.Clean(goModPath)
	if !strings.HasSuffix(cleanPath, "go.mod") {
		return nil, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	// Parse using official modfile parser
	modFile, err := modfile.Parse(cleanPath, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	if modFile.Module == nil {
		return nil, fmt.Errorf("no module declaration found in go.mod")
	}

	info := &ModuleInfo{
		Path: modFile.Module.Mod.Path,
		Root: filepath.Dir(cleanPath),
	}
	if modFile.Go != nil {
		info.GoVersion = modFile.Go.Version
	}
	return info, nil
}

// FindModule searches for go.mod starting from startDir and walking up
func FindModule(startDir string) (*ModuleInfo, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if st, err := os.Stat(goModPath); err == nil && !st.IsDir() {
			return ParseModuleFile(goModPath)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return nil, fmt.Errorf("go.mod file not found")
}
