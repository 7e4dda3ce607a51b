package secrets

import (
	"fmt"
	"sync"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// gitleaksScrubber runs the default gitleaks rule set. The detector is built
// once; mu serializes scans against it.
type gitleaksScrubber struct {
	redaction string
	allow     *Allowlist

	mu       sync.Mutex
	detector *detect.Detector
}

func newGitleaksScrubber(redaction string, allow *Allowlist) (*gitleaksScrubber, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("creating gitleaks detector: %w", err)
	}
	if allow != nil && len(allow.Regexes) > 0 {
		entry := &gitleaksConfig.Allowlist{Description: "voicaj allowlist"}
		for _, re := range allow.compiled {
			entry.Regexes = append(entry.Regexes, (*gitleaksRegexp.Regexp)(re))
		}
		detector.Config.Allowlists = append(detector.Config.Allowlists, entry)
	}
	return &gitleaksScrubber{redaction: redaction, allow: allow, detector: detector}, nil
}

// Scrub implements Scrubber.
func (s *gitleaksScrubber) Scrub(content string) Result {
	s.mu.Lock()
	found := s.detector.DetectString(content)
	s.mu.Unlock()

	findings := make([]Finding, 0, len(found))
	for _, f := range found {
		if s.allow.Allows(f.Secret) {
			continue
		}
		findings = append(findings, Finding{RuleID: f.RuleID, Description: f.Description, Match: f.Secret})
	}
	return Result{Scrubbed: redact(content, s.redaction, findings), Findings: findings}
}

// Engine implements Scrubber.
func (s *gitleaksScrubber) Engine() string { return EngineGitleaks }
