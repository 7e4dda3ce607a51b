package classifier

import (
	"fmt"

	"github.com/fyrsmithlabs/voicaj/internal/generative"
)

// DefaultBatchParallelism bounds BatchClassify when Config.BatchParallelism is unset.
const DefaultBatchParallelism = 4

// Config tunes the pipeline.
type Config struct {
	// GenerativeEnabled routes complex messages to the model. When false every
	// message takes the deterministic path.
	GenerativeEnabled bool    `koanf:"generative_enabled"`
	MaxTokens         int     `koanf:"max_tokens"`
	Temperature       float64 `koanf:"temperature"`
	BatchParallelism  int     `koanf:"batch_parallelism"`
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		GenerativeEnabled: true,
		MaxTokens:         generative.DefaultMaxTokens,
		Temperature:       generative.DefaultTemperature,
		BatchParallelism:  DefaultBatchParallelism,
	}
}

// Validate checks the sampling and concurrency settings.
func (c Config) Validate() error {
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be >= 0, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.BatchParallelism < 0 {
		return fmt.Errorf("batch_parallelism must be >= 0, got %d", c.BatchParallelism)
	}
	return nil
}
