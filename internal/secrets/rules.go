package secrets

import (
	"regexp"
)

type rule struct {
	id          string
	description string
	pattern     *regexp.Regexp
}

// builtinRules cover credentials people paste into chat by accident.
var builtinRules = []rule{
	{"aws-access-key-id", "AWS Access Key ID",
		regexp.MustCompile(`\b(?:A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}\b`)},
	{"github-token", "GitHub token",
		regexp.MustCompile(`\b(?:ghp|gho|ghu|ghs)_[A-Za-z0-9]{36}\b|\bgithub_pat_[A-Za-z0-9_]{22,}`)},
	{"gitlab-token", "GitLab Personal Access Token",
		regexp.MustCompile(`\bglpat-[A-Za-z0-9\-]{20,}`)},
	{"anthropic-api-key", "Anthropic API key",
		regexp.MustCompile(`\bsk-ant-[A-Za-z0-9_\-]{20,}`)},
	{"openai-api-key", "OpenAI API key",
		regexp.MustCompile(`\bsk-(?:proj-)?[A-Za-z0-9_\-]{20,}`)},
	{"google-api-key", "Google API key",
		regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{35}`)},
	{"slack-token", "Slack token",
		regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9\-]{10,}`)},
	{"private-key", "Private key block",
		regexp.MustCompile(`-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----`)},
	{"bearer-token", "Bearer token",
		regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-\.=]{16,}`)},
	{"generic-secret", "Password or secret assignment",
		regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|secret|api[_-]?key|token)\s*[:=]\s*['"]?[^\s'"]{8,}['"]?`)},
}

type rulesScrubber struct {
	redaction string
	allow     *Allowlist
}

func newRulesScrubber(redaction string, allow *Allowlist) (*rulesScrubber, error) {
	return &rulesScrubber{redaction: redaction, allow: allow}, nil
}

// Scrub implements Scrubber.
func (s *rulesScrubber) Scrub(content string) Result {
	var findings []Finding
	for _, r := range builtinRules {
		for _, m := range r.pattern.FindAllString(content, -1) {
			if s.allow.Allows(m) {
				continue
			}
			findings = append(findings, Finding{RuleID: r.id, Description: r.description, Match: m})
		}
	}
	return Result{Scrubbed: redact(content, s.redaction, findings), Findings: findings}
}

// Engine implements Scrubber.
func (s *rulesScrubber) Engine() string { return EngineRules }
