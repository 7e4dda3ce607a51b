package generative

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o-mini"
)

type openAIClient struct {
	model string
	http  *httpClient
}

func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAIClient{
		model: model,
		http: newHTTPClient(cfg, strings.TrimRight(baseURL, "/"), map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
		}),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openAIModelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Complete implements Completer.
func (o *openAIClient) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	req := openAIRequest{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	var resp openAIResponse
	if err := o.http.do(ctx, "/v1/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from openai", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// ListModels implements ModelLister.
func (o *openAIClient) ListModels(ctx context.Context) ([]string, error) {
	var resp openAIModelsResponse
	if err := o.http.do(ctx, "/v1/models", nil, &resp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

var (
	_ Completer   = (*openAIClient)(nil)
	_ ModelLister = (*openAIClient)(nil)
)
