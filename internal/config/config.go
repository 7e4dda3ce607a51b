// Package config provides configuration loading for voicaj.
//
// Configuration is read from a YAML file and overridden by environment
// variables. Sections map one-to-one onto the components they configure.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/voicaj/internal/classifier"
	"github.com/fyrsmithlabs/voicaj/internal/events"
	"github.com/fyrsmithlabs/voicaj/internal/exemplar"
	"github.com/fyrsmithlabs/voicaj/internal/generative"
	"github.com/fyrsmithlabs/voicaj/internal/history"
	"github.com/fyrsmithlabs/voicaj/internal/secrets"
)

// Config holds the complete voicaj configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Observability ObservabilityConfig `koanf:"observability"`
	Classifier    classifier.Config   `koanf:"classifier"`
	Generative    GenerativeConfig    `koanf:"generative"`
	Exemplars     exemplar.Config     `koanf:"exemplars"`
	History       history.Config      `koanf:"history"`
	Events        events.Config       `koanf:"events"`
	Secrets       secrets.Config      `koanf:"secrets"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"http_host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ObservabilityConfig holds logging and OpenTelemetry configuration.
type ObservabilityConfig struct {
	LogLevel        string `koanf:"log_level"`
	LogFormat       string `koanf:"log_format"`
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	OTLPEndpoint    string `koanf:"otlp_endpoint"`
	OTLPProtocol    string `koanf:"otlp_protocol"`
	ServiceName     string `koanf:"service_name"`
}

// GenerativeConfig selects the model backend. The API key is kept as a
// Secret so it never lands in logs or dumped config.
type GenerativeConfig struct {
	Provider   string   `koanf:"provider"`
	Model      string   `koanf:"model"`
	BaseURL    string   `koanf:"base_url"`
	APIKey     Secret   `koanf:"api_key"`
	Timeout    Duration `koanf:"timeout"`
	RateLimit  float64  `koanf:"rate_limit"`
	Burst      int      `koanf:"burst"`
	MaxRetries int      `koanf:"max_retries"`
}

// Completer converts the section into the generative package's Config.
func (g GenerativeConfig) Completer() generative.Config {
	return generative.Config{
		Provider:   g.Provider,
		Model:      g.Model,
		BaseURL:    g.BaseURL,
		APIKey:     g.APIKey.Value(),
		Timeout:    g.Timeout.Duration(),
		RateLimit:  g.RateLimit,
		Burst:      g.Burst,
		MaxRetries: g.MaxRetries,
	}
}

// Configured reports whether a model endpoint was chosen: a model, a base
// URL or an API key is set and the provider is not disabled.
func (g GenerativeConfig) Configured() bool {
	if g.Provider == generative.ProviderDisabled {
		return false
	}
	return g.Model != "" || g.BaseURL != "" || g.APIKey.IsSet()
}

// Default returns the configuration used when nothing is set. Model and
// base URL stay empty so each provider picks its own, and the generative path
// is off until LoadWithFile sees a configured model.
func Default() Config {
	gen := generative.DefaultConfig()
	classify := classifier.DefaultConfig()
	classify.GenerativeEnabled = false
	return Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9090,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:     "info",
			LogFormat:    "json",
			OTLPEndpoint: "localhost:4317",
			OTLPProtocol: "grpc",
			ServiceName:  "voicaj",
		},
		Classifier: classify,
		Generative: GenerativeConfig{
			Provider:   gen.Provider,
			Timeout:    Duration(gen.Timeout),
			RateLimit:  gen.RateLimit,
			Burst:      gen.Burst,
			MaxRetries: gen.MaxRetries,
		},
		Exemplars: exemplar.Config{
			Path: "~/.config/voicaj/exemplars.json",
		},
		History: history.Config{
			Path:         "~/.config/voicaj/history.db",
			ContextTurns: 5,
			ListLimit:    history.DefaultListLimit,
		},
		Events: events.Config{
			SubjectPrefix: events.DefaultSubjectPrefix,
		},
		Secrets: secrets.DefaultConfig(),
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown timeout is not positive
//   - Service name is empty (when telemetry is enabled)
//   - A component section fails its own checks
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}
	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q (must be json or console)", c.Observability.LogFormat)
	}

	if err := c.Classifier.Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}

	switch c.Generative.Provider {
	case generative.ProviderOllama, generative.ProviderLangchain, generative.ProviderOpenAI,
		generative.ProviderAnthropic, generative.ProviderGemini, generative.ProviderDisabled:
	default:
		return fmt.Errorf("generative: %w: %q", generative.ErrUnknownProvider, c.Generative.Provider)
	}
	if c.Generative.Completer().Remote() && !c.Generative.APIKey.IsSet() {
		return fmt.Errorf("generative: api_key required for provider %q", c.Generative.Provider)
	}
	if c.Generative.RateLimit < 0 {
		return fmt.Errorf("generative: rate_limit must be >= 0, got %v", c.Generative.RateLimit)
	}

	if err := c.Exemplars.Retention.Validate(); err != nil {
		return fmt.Errorf("exemplars: %w", err)
	}

	if c.History.ContextTurns < 0 {
		return fmt.Errorf("history: context_turns must be >= 0, got %d", c.History.ContextTurns)
	}

	if c.Secrets.Enabled {
		switch c.Secrets.Engine {
		case secrets.EngineRules, secrets.EngineGitleaks:
		default:
			return fmt.Errorf("secrets: %w: %q", secrets.ErrUnknownEngine, c.Secrets.Engine)
		}
	}

	return nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
