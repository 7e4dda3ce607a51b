// Package lexicon matches vocabulary against free-form message text.
//
// Entries match on word boundaries. A trailing "*" turns an entry into a
// prefix match, so "report*" matches "report", "reports" and "reporting"
// while "work" does not match "workout".
package lexicon

import (
	"regexp"
	"strings"
)

// Set is a compiled list of vocabulary entries.
type Set struct {
	entries []string
	res     []*regexp.Regexp
}

// New compiles entries into a Set. It panics on an empty entry, which is a
// programming error in a rule table.
func New(entries ...string) Set {
	s := Set{entries: entries, res: make([]*regexp.Regexp, 0, len(entries))}
	for _, e := range entries {
		s.res = append(s.res, compile(e))
	}
	return s
}

func compile(entry string) *regexp.Regexp {
	entry = strings.ToLower(strings.TrimSpace(entry))
	if entry == "" || entry == "*" {
		panic("lexicon: empty entry")
	}
	prefix := strings.HasSuffix(entry, "*")
	entry = strings.TrimSuffix(entry, "*")

	pattern := `(?:^|[^\pL\pN])` + regexp.QuoteMeta(entry)
	if !prefix {
		pattern += `(?:$|[^\pL\pN])`
	}
	return regexp.MustCompile(pattern)
}

// Any reports whether any entry occurs in text. text must be normalized.
func (s Set) Any(text string) bool {
	for _, re := range s.res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// First returns the first entry, in declaration order, that occurs in text.
func (s Set) First(text string) (string, bool) {
	for i, re := range s.res {
		if re.MatchString(text) {
			return s.entries[i], true
		}
	}
	return "", false
}

// Len returns the number of entries.
func (s Set) Len() int { return len(s.entries) }

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// Normalize lower-cases text, unifies apostrophes and collapses whitespace.
func Normalize(text string) string {
	text = apostrophes.Replace(strings.ToLower(text))
	return strings.Join(strings.Fields(text), " ")
}

// Words splits text into words with surrounding punctuation trimmed.
// Empty results are dropped.
func Words(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, isPunct)
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// CountWord counts standalone occurrences of word in normalized text.
func CountWord(text, word string) int {
	n := 0
	for _, w := range Words(text) {
		if w == word {
			n++
		}
	}
	return n
}

func isPunct(r rune) bool {
	return strings.ContainsRune(".,;:!?\"'()[]{}-", r)
}
