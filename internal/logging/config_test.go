package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, zapcore.InfoLevel, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.Output.Console)
	assert.False(t, cfg.Output.Stderr)
	assert.False(t, cfg.Output.OTEL)
	assert.True(t, cfg.Sampling.Enabled)
	assert.Equal(t, time.Second, cfg.Sampling.Tick)
	assert.True(t, cfg.Redaction.Enabled)
	assert.True(t, cfg.Redaction.ScrubValues)
	assert.Contains(t, cfg.Redaction.Keys, "api_key")
	assert.Equal(t, "voicaj", cfg.Fields["service"])
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"invalid format", func(c *Config) { c.Format = "xml" }, `format must be "json" or "console"`},
		{"no output", func(c *Config) { c.Output = OutputConfig{} }, "at least one output must be enabled"},
		{"zero tick", func(c *Config) { c.Sampling.Tick = 0 }, "sampling tick must be > 0"},
		{"zero initial", func(c *Config) { c.Sampling.Initial = 0 }, "sampling initial must be > 0"},
		{"negative thereafter", func(c *Config) { c.Sampling.Thereafter = -1 }, "sampling thereafter"},
		{"empty field key", func(c *Config) { c.Fields[""] = "x" }, "field key cannot be empty"},
		{"empty field value", func(c *Config) { c.Fields["env"] = "" }, `field "env" has empty value`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("sampling disabled ignores its settings", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Sampling = SamplingConfig{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		level, format string
		wantLevel     zapcore.Level
		wantFormat    string
	}{
		{"", "", zapcore.InfoLevel, FormatJSON},
		{"debug", "console", zapcore.DebugLevel, FormatConsole},
		{"WARN", "JSON", zapcore.WarnLevel, FormatJSON},
		{"error", "", zapcore.ErrorLevel, FormatJSON},
		{"Trace", "", TraceLevel, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			cfg, err := NewConfig(tt.level, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, cfg.Level)
			assert.Equal(t, tt.wantFormat, cfg.Format)
		})
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	_, err := NewConfig("verbose", "")
	assert.ErrorContains(t, err, `invalid log level "verbose"`)

	_, err = NewConfig("info", "xml")
	assert.ErrorContains(t, err, "format must be")
}
