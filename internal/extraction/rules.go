package extraction

import (
	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
)

// rule pairs a predicate over normalized text with a literal result.
type rule struct {
	when   func(text string) bool
	result string
}

// has matches when any entry of the vocabulary occurs.
func has(entries ...string) func(string) bool {
	return lexicon.New(entries...).Any
}

// both matches when each vocabulary has at least one entry present.
func both(a, b []string) func(string) bool {
	sa, sb := lexicon.New(a...), lexicon.New(b...)
	return func(t string) bool { return sa.Any(t) && sb.Any(t) }
}

// words is shorthand for a vocabulary literal.
func words(entries ...string) []string { return entries }

// first returns the result of the first matching rule.
func first(rules []rule, text string) (string, bool) {
	for _, r := range rules {
		if r.when(text) {
			return r.result, true
		}
	}
	return "", false
}
