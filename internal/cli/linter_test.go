package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mockwire/internal/utils"
)

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["go.mod"] = "module github.com/example/fixtures\n\ngo 1.22\n"
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestLinter_WalkReportsErrors(t *testing.T) {
	root := writeModule(t, map[string]string{
		"service/service_test.go": "package service\n\ntype fx struct {\n\trepo *int `mockwire:\"mock spy\"`\n\tclock *int `mockwire:\"mock\"`\n}\n",
		"service/other.go":        "package service\n\ntype y struct {\n\tz *int `mockwire:\"stub\"`\n}\n",
	})

	var out bytes.Buffer
	diag := utils.NewDiagnosticSystem(utils.DiagnosticVerbose).SetOutput(&out)

	config := DefaultConfig()
	config.Dir = root
	config.Walk = true
	linter := NewLinter(config, diag)

	summary, err := linter.Run()
	require.NoError(t, err)
	assert.Equal(t, "github.com/example/fixtures", summary.Module)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, summary.Warnings)

	err = linter.Report(summary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 marker error(s) found")

	printed := out.String()
	assert.Contains(t, printed, "[ERROR]")
	assert.Contains(t, printed, "fx.repo")
	assert.Contains(t, printed, "[WARN]")
	assert.Contains(t, printed, "hint: Keep exactly one of mock, spy or captor on the field")
	assert.Contains(t, printed, "Files checked: 2")
}

func TestLinter_CleanModule(t *testing.T) {
	root := writeModule(t, map[string]string{
		"a/a_test.go": "package a\n\ntype fx struct {\n\trepo *int `mockwire:\"mock -name=repo\"`\n}\n",
	})

	var out bytes.Buffer
	config := DefaultConfig()
	config.Dir = root
	config.Walk = true
	config.Patterns = []string{"a"}
	linter := NewLinter(config, utils.NewDiagnosticSystem(utils.DiagnosticInfo).SetOutput(&out))

	summary, err := linter.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)
	assert.Empty(t, summary.Diagnostics)

	require.NoError(t, linter.Report(summary))
	assert.Contains(t, out.String(), "No marker errors found")
}

func TestLinter_MissingDirectory(t *testing.T) {
	config := DefaultConfig()
	config.Dir = filepath.Join(t.TempDir(), "missing")
	config.Walk = true

	_, err := NewLinter(config, utils.NewSilentDiagnostics()).Run()
	assert.Error(t, err)
}

func TestNewLinterDefaults(t *testing.T) {
	linter := NewLinter(Config{}, nil)
	assert.Equal(t, ".", linter.config.Dir)
	assert.Equal(t, []string{"./..."}, linter.config.Patterns)
	assert.NotNil(t, linter.diag)
}
