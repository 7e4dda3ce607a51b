package generative

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2"
)

type ollamaClient struct {
	model string
	http  *httpClient
}

func newOllamaClient(cfg Config) (*ollamaClient, error) {
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &ollamaClient{
		model: model,
		http:  newHTTPClient(cfg, strings.TrimRight(baseURL, "/"), nil),
	}, nil
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Complete implements Completer.
func (o *ollamaClient) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	req := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Options: ollamaOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
		},
	}
	var resp ollamaGenerateResponse
	if err := o.http.do(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", fmt.Errorf("%w: empty response from ollama", ErrUnavailable)
	}
	return resp.Response, nil
}

// ListModels implements ModelLister.
func (o *ollamaClient) ListModels(ctx context.Context) ([]string, error) {
	var resp ollamaTagsResponse
	if err := o.http.do(ctx, "/api/tags", nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

var (
	_ Completer   = (*ollamaClient)(nil)
	_ ModelLister = (*ollamaClient)(nil)
)
