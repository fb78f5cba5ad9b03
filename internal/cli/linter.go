package cli

import (
	"path/filepath"

	"github.com/toyz/mockwire/internal/errors"
	"github.com/toyz/mockwire/internal/lint"
	"github.com/toyz/mockwire/internal/utils"
)

// Summary is the outcome of a lint run
type Summary struct {
	Module      string
	Files       int
	Errors      int
	Warnings    int
	Diagnostics []lint.Diagnostic
}

// Linter runs the marker checker over a module
type Linter struct {
	config  Config
	diag    *utils.DiagnosticSystem
	checker *lint.Checker
}

// NewLinter creates a linter; nil diagnostics are built from config.Level
func NewLinter(config Config, diag *utils.DiagnosticSystem) *Linter {
	if diag == nil {
		diag = utils.NewDiagnosticSystem(config.Level)
	}
	if config.Dir == "" {
		config.Dir = "."
	}
	if len(config.Patterns) == 0 {
		config.Patterns = []string{"./..."}
	}
	return &Linter{
		config:  config,
		diag:    diag,
		checker: lint.NewChecker(config.TagKey, nil),
	}
}

// Run checks every configured pattern
func (l *Linter) Run() (*Summary, error) {
	summary := &Summary{}

	if mod, err := utils.FindModule(l.config.Dir); err == nil {
		summary.Module = mod.Path
		l.diag.Verbose("module %s (go %s) at %s", mod.Path, mod.GoVersion, mod.Root)
	} else {
		l.diag.Verbose("no go.mod found from %s", l.config.Dir)
	}

	if l.config.Walk {
		for _, pattern := range l.config.Patterns {
			root := pattern
			if !filepath.IsAbs(root) {
				root = filepath.Join(l.config.Dir, pattern)
			}
			diags, files, err := l.checker.CheckDir(root)
			if err != nil {
				return summary, err
			}
			summary.Files += files
			summary.Diagnostics = append(summary.Diagnostics, diags...)
		}
	} else {
		diags, files, err := l.checker.CheckPackages(l.config.Dir, l.config.Patterns...)
		if err != nil {
			return summary, err
		}
		summary.Files = files
		summary.Diagnostics = diags
	}

	summary.Errors, summary.Warnings = lint.Count(summary.Diagnostics)
	l.diag.Debug("checked %d files: %d errors, %d warnings", summary.Files, summary.Errors, summary.Warnings)
	return summary, nil
}

// Report prints the summary's diagnostics and returns an error when any of
// them is an error
func (l *Linter) Report(summary *Summary) error {
	for _, d := range summary.Diagnostics {
		if d.Severity == lint.SeverityWarning {
			l.diag.Warn("%s", d)
		} else {
			l.diag.Error("%s", d)
		}
		for _, hint := range d.Hints {
			l.diag.Verbose("  hint: %s", hint)
		}
	}

	stats := map[string]interface{}{
		"Files checked": summary.Files,
		"Errors":        summary.Errors,
		"Warnings":      summary.Warnings,
	}
	if summary.Module != "" {
		stats["Module"] = summary.Module
	}
	l.diag.Summary("Marker check complete", stats)

	if summary.Errors > 0 {
		return errors.Newf(errors.ValidationErrorCode, "%d marker error(s) found", summary.Errors)
	}
	l.diag.Success("No marker errors found")
	return nil
}
