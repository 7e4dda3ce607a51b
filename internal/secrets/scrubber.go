package secrets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Engine names accepted by Config.Engine.
const (
	EngineRules    = "rules"
	EngineGitleaks = "gitleaks"
)

// DefaultRedaction replaces detected secrets.
const DefaultRedaction = "[REDACTED]"

// ErrUnknownEngine is returned for an unsupported Config.Engine.
var ErrUnknownEngine = errors.New("unknown secrets engine")

// Finding is one detected secret.
type Finding struct {
	RuleID      string
	Description string
	Match       string
}

// Result of a scrub.
type Result struct {
	Scrubbed string
	Findings []Finding
}

// HasFindings reports whether any secret was found.
func (r Result) HasFindings() bool { return len(r.Findings) > 0 }

// RuleIDs returns the distinct rule IDs that fired, sorted.
func (r Result) RuleIDs() []string {
	seen := make(map[string]bool, len(r.Findings))
	ids := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			ids = append(ids, f.RuleID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Scrubber redacts secrets from text.
type Scrubber interface {
	Scrub(content string) Result
	Engine() string
}

// Config selects and configures a Scrubber.
type Config struct {
	Enabled       bool   `koanf:"enabled"`
	Engine        string `koanf:"engine"`
	AllowlistPath string `koanf:"allowlist_path"`
	Redaction     string `koanf:"redaction"`
}

// DefaultConfig enables the built-in rules engine.
func DefaultConfig() Config {
	return Config{Enabled: true, Engine: EngineRules, Redaction: DefaultRedaction}
}

// New builds the Scrubber cfg asks for. A disabled config yields a scrubber
// that returns content unchanged.
func New(cfg Config) (Scrubber, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	if cfg.Redaction == "" {
		cfg.Redaction = DefaultRedaction
	}

	allow, err := LoadAllowlist(cfg.AllowlistPath)
	if err != nil {
		return nil, err
	}

	switch cfg.Engine {
	case "", EngineRules:
		return newRulesScrubber(cfg.Redaction, allow)
	case EngineGitleaks:
		return newGitleaksScrubber(cfg.Redaction, allow)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

// Noop returns content unchanged.
type Noop struct{}

// Scrub implements Scrubber.
func (Noop) Scrub(content string) Result { return Result{Scrubbed: content} }

// Engine implements Scrubber.
func (Noop) Engine() string { return "disabled" }

// redact replaces every finding's match in content, longest first so a match
// that contains another is replaced whole.
func redact(content, replacement string, findings []Finding) string {
	matches := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Match != "" {
			matches = append(matches, f.Match)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return len(matches[i]) > len(matches[j]) })
	for _, m := range matches {
		content = strings.ReplaceAll(content, m, replacement)
	}
	return content
}
