package generative

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderOllama    = "ollama"
	ProviderLangchain = "langchain"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderDisabled  = "disabled"
)

// Completer produces a text completion for a prompt.
//
// Implementations fail with ErrUnavailable for transport problems and with
// ErrTimeout when ctx expires; both are matched with errors.Is.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// ModelLister is implemented by completers that can enumerate models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Config configures a Completer.
type Config struct {
	Provider   string        `koanf:"provider"`
	Model      string        `koanf:"model"`
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	Timeout    time.Duration `koanf:"timeout"`
	RateLimit  float64       `koanf:"rate_limit"`
	Burst      int           `koanf:"burst"`
	MaxRetries int           `koanf:"max_retries"`
}

// DefaultConfig targets a local Ollama server.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderOllama,
		Model:      defaultOllamaModel,
		BaseURL:    defaultOllamaBaseURL,
		Timeout:    defaultTimeout,
		RateLimit:  defaultRateLimit,
		Burst:      defaultBurst,
		MaxRetries: defaultMaxRetries,
	}
}

// Remote reports whether the provider sends prompts off the host.
func (c Config) Remote() bool {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}

// New builds the Completer for cfg.Provider.
func New(cfg Config) (Completer, error) {
	switch cfg.Provider {
	case "", ProviderOllama:
		return newOllamaClient(cfg)
	case ProviderLangchain:
		return newLangchainClient(cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderGemini:
		return newGeminiClient(cfg)
	case ProviderDisabled:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// ListModels asks c for its models, or returns ErrModelsUnsupported.
func ListModels(ctx context.Context, c Completer) ([]string, error) {
	if l, ok := c.(ModelLister); ok {
		return l.ListModels(ctx)
	}
	return nil, ErrModelsUnsupported
}

// Noop always reports the model as unavailable, so callers take the
// deterministic path.
type Noop struct{}

// Complete implements Completer.
func (Noop) Complete(context.Context, string, int, float64) (string, error) {
	return "", fmt.Errorf("%w: provider disabled", ErrUnavailable)
}

var _ Completer = Noop{}
