package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"

	"github.com/BurntSushi/toml"
)

// ErrInvalidAllowlist wraps TOML and pattern errors in an allowlist file.
var ErrInvalidAllowlist = errors.New("invalid allowlist")

// Allowlist holds content patterns that are never treated as secrets. The
// file uses the gitleaks layout:
//
//	[allowlist]
//	regexes = ['''EXAMPLE-[0-9]+''']
type Allowlist struct {
	Regexes  []string
	compiled []*regexp.Regexp
}

// LoadAllowlist reads path. An empty path or a missing file yields an empty
// allowlist; malformed TOML or an invalid pattern is an error.
func LoadAllowlist(path string) (*Allowlist, error) {
	if path == "" {
		return &Allowlist{}, nil
	}
	var doc struct {
		Allowlist struct {
			Regexes []string `toml:"regexes"`
		} `toml:"allowlist"`
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Allowlist{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAllowlist, path, err)
	}
	return NewAllowlist(doc.Allowlist.Regexes...)
}

// NewAllowlist compiles patterns.
func NewAllowlist(patterns ...string) (*Allowlist, error) {
	a := &Allowlist{Regexes: patterns}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidAllowlist, p, err)
		}
		a.compiled = append(a.compiled, re)
	}
	return a, nil
}

// Allows reports whether match is allowlisted.
func (a *Allowlist) Allows(match string) bool {
	if a == nil {
		return false
	}
	for _, re := range a.compiled {
		if re.MatchString(match) {
			return true
		}
	}
	return false
}
