package engine

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/mock/gomock"

	"github.com/toyz/mockwire/internal/fields"
	"github.com/toyz/mockwire/internal/utils"
)

const (
	// EnvDebug raises the library's diagnostics. Accepts a boolean or a level name.
	EnvDebug = "MOCKWIRE_DEBUG"

	// EnvTag overrides the struct tag key markers are read from
	EnvTag = "MOCKWIRE_TAG"
)

// Config holds engine settings
type Config struct {
	TagKey   string                // struct tag key holding markers
	Level    utils.DiagnosticLevel // diagnostics level
	Reporter gomock.TestReporter   // optional; enables gomock factories and binds testify mocks
}

// DefaultConfig returns the configuration derived from the environment
func DefaultConfig() Config {
	cfg := Config{
		TagKey: fields.DefaultTagKey,
		Level:  utils.DiagnosticSilent,
	}
	if tag := strings.TrimSpace(os.Getenv(EnvTag)); tag != "" {
		cfg.TagKey = tag
	}
	cfg.Level = levelFromEnv(os.Getenv(EnvDebug), cfg.Level)
	return cfg
}

func levelFromEnv(value string, fallback utils.DiagnosticLevel) utils.DiagnosticLevel {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if on, err := strconv.ParseBool(value); err == nil {
		if on {
			return utils.DiagnosticDebug
		}
		return fallback
	}
	if level, err := utils.ParseDiagnosticLevel(value); err == nil {
		return level
	}
	return fallback
}
