package generative

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// langchainClient reaches Ollama through langchaingo's LLM abstraction.
type langchainClient struct {
	llm llms.Model
}

func newLangchainClient(cfg Config) (*langchainClient, error) {
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating langchain ollama model: %w", err)
	}
	return &langchainClient{llm: llm}, nil
}

// Complete implements Completer.
func (l *langchainClient) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, l.llm, prompt, opts...)
	if err != nil {
		return "", classify(ctx, err)
	}
	return out, nil
}

var _ Completer = (*langchainClient)(nil)
