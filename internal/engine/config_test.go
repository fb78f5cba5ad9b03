package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/mockwire/internal/fields"
	"github.com/toyz/mockwire/internal/utils"
)

func TestDefaultConfigFromEnvironment(t *testing.T) {
	tests := []struct {
		name      string
		debug     string
		tag       string
		wantLevel utils.DiagnosticLevel
		wantTag   string
	}{
		{name: "unset", wantLevel: utils.DiagnosticSilent, wantTag: fields.DefaultTagKey},
		{name: "boolean on", debug: "true", wantLevel: utils.DiagnosticDebug, wantTag: fields.DefaultTagKey},
		{name: "boolean off", debug: "0", wantLevel: utils.DiagnosticSilent, wantTag: fields.DefaultTagKey},
		{name: "level name", debug: "verbose", wantLevel: utils.DiagnosticVerbose, wantTag: fields.DefaultTagKey},
		{name: "garbage", debug: "loud", wantLevel: utils.DiagnosticSilent, wantTag: fields.DefaultTagKey},
		{name: "tag override", tag: " wire ", wantLevel: utils.DiagnosticSilent, wantTag: "wire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDebug, tt.debug)
			t.Setenv(EnvTag, tt.tag)

			cfg := DefaultConfig()
			assert.Equal(t, tt.wantLevel, cfg.Level)
			assert.Equal(t, tt.wantTag, cfg.TagKey)
			assert.Nil(t, cfg.Reporter)
		})
	}
}

func TestNewFillsDefaults(t *testing.T) {
	e := New(Config{})
	assert.Equal(t, fields.DefaultTagKey, e.Config().TagKey)
	assert.Equal(t, fields.DefaultTagKey, e.locator.TagKey())

	e = New(Config{TagKey: "wire"})
	assert.Equal(t, "wire", e.locator.TagKey())
}
