package generative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 2
	defaultBaseBackoff = 500 * time.Millisecond
	defaultRateLimit   = 2.0
	defaultBurst       = 4
	maxResponseBytes   = 4 << 20
)

// httpClient is the JSON-over-HTTP core shared by the REST completers. It
// rate limits, retries retryable failures with exponential backoff and maps
// failures onto the package sentinels.
type httpClient struct {
	baseURL    string
	headers    map[string]string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

func newHTTPClient(cfg Config, baseURL string, headers map[string]string) *httpClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit, burst := cfg.RateLimit, cfg.Burst
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &httpClient{
		baseURL:    baseURL,
		headers:    headers,
		client:     &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(limit), burst),
		maxRetries: retries,
		backoff:    defaultBaseBackoff,
	}
}

// do sends body to path and decodes the JSON reply into out. A nil body
// issues a GET.
func (c *httpClient) do(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return classify(ctx, fmt.Errorf("rate limiter: %w", err))
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return classify(ctx, ctx.Err())
			}
		}

		err := c.once(ctx, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return classify(ctx, err)
		}
	}
	return classify(ctx, fmt.Errorf("max retries exceeded: %w", lastErr))
}

func (c *httpClient) once(ctx context.Context, path string, body, out any) error {
	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		method = http.MethodPost
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return &retryableError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &retryableError{err: fmt.Errorf("rate limited (429)")}
	case resp.StatusCode >= 500:
		return &retryableError{err: fmt.Errorf("server error (%d): %s", resp.StatusCode, truncate(data))}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, truncate(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
