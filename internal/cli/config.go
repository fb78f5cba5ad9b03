package cli

import (
	"github.com/toyz/mockwire/internal/fields"
	"github.com/toyz/mockwire/internal/utils"
)

// Config holds the configuration of a lint run
type Config struct {
	// Patterns are package patterns or directories; "./..." when empty
	Patterns []string

	// Dir is the directory patterns are resolved from
	Dir string

	// TagKey is the struct tag key holding markers
	TagKey string

	// Walk checks files found by walking directories instead of loading
	// packages through the go tool
	Walk bool

	// Level controls how much is printed
	Level utils.DiagnosticLevel
}

// DefaultConfig returns the configuration used when no flag is given
func DefaultConfig() Config {
	return Config{
		Patterns: []string{"./..."},
		Dir:      ".",
		TagKey:   fields.DefaultTagKey,
		Level:    utils.DiagnosticInfo,
	}
}
