package generative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/extraction"
	"github.com/fyrsmithlabs/voicaj/internal/record"
	"github.com/fyrsmithlabs/voicaj/internal/secrets"
	"github.com/fyrsmithlabs/voicaj/internal/validate"
)

// Path names which branch produced a Result.
type Path string

const (
	PathGenerative Path = "generative"
	PathFallback   Path = "fallback"
)

// Result of Adapter.Generate. Err holds the reason for a fallback.
type Result struct {
	Records []record.Record
	Path    Path
	Err     error
}

// Adapter asks a Completer for records and repairs or replaces what it
// returns.
type Adapter struct {
	completer   Completer
	extractor   *extraction.Extractor
	validator   *validate.Validator
	scrubber    secrets.Scrubber
	logger      *zap.Logger
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(l *zap.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithScrubber redacts secrets from prompts before they are sent.
func WithScrubber(s secrets.Scrubber) AdapterOption {
	return func(a *Adapter) { a.scrubber = s }
}

// WithSampling overrides max tokens and temperature.
func WithSampling(maxTokens int, temperature float64) AdapterOption {
	return func(a *Adapter) {
		if maxTokens > 0 {
			a.maxTokens = maxTokens
		}
		if temperature >= 0 {
			a.temperature = temperature
		}
	}
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithExtractor shares an extractor with the rest of the pipeline.
func WithExtractor(e *extraction.Extractor) AdapterOption {
	return func(a *Adapter) {
		if e != nil {
			a.extractor = e
		}
	}
}

// NewAdapter wraps c. A nil c behaves like Noop.
func NewAdapter(c Completer, opts ...AdapterOption) *Adapter {
	if c == nil {
		c = Noop{}
	}
	a := &Adapter{
		completer:   c,
		extractor:   extraction.New(),
		logger:      zap.NewNop(),
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.validator = validate.New(a.extractor)
	return a
}

// Generate returns records for text. It never fails: any model error, an
// expired context or a reply without usable objects yields the deterministic
// extraction for types.
func (a *Adapter) Generate(ctx context.Context, text string, types []record.Type, now time.Time, history string) Result {
	prompt := BuildPrompt(text, types, now, history)
	if a.scrubber != nil {
		res := a.scrubber.Scrub(prompt)
		if res.HasFindings() {
			a.logger.Info("redacted secrets from prompt", zap.Strings("rules", res.RuleIDs()))
		}
		prompt = res.Scrubbed
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	reply, err := a.completer.Complete(callCtx, prompt, a.maxTokens, a.temperature)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return a.fallback(text, types, now, err)
	}

	parsed, err := ParseObjects(reply)
	if err != nil {
		return a.fallback(text, types, now, err)
	}

	a.logger.Debug("generative path produced records",
		zap.Int("count", len(parsed)),
		zap.Duration("latency", time.Since(started)),
	)
	return Result{
		Records: a.validator.ValidateAll(parsed, text, now),
		Path:    PathGenerative,
	}
}

func (a *Adapter) fallback(text string, types []record.Type, now time.Time, cause error) Result {
	a.logger.Warn("generative path failed, using deterministic extraction", zap.Error(cause))
	return Result{
		Records: a.extractor.ExtractAll(text, types, now),
		Path:    PathFallback,
		Err:     cause,
	}
}
