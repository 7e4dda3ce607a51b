package feedback

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// Directives are the corrections a piece of feedback asks for.
type Directives struct {
	Description bool
	Date        bool
	Tags        bool
	Title       bool
	Priority    record.Priority
}

// Any reports whether at least one directive fired.
func (d Directives) Any() bool {
	return d.Description || d.Date || d.Tags || d.Title || d.Priority != ""
}

// Names lists the fired directives in a stable order.
func (d Directives) Names() []string {
	var names []string
	if d.Description {
		names = append(names, "description")
	}
	if d.Date {
		names = append(names, "date")
	}
	if d.Tags {
		names = append(names, "tags")
	}
	if d.Title {
		names = append(names, "title")
	}
	if d.Priority != "" {
		names = append(names, "priority:"+string(d.Priority))
	}
	return names
}

type cue struct {
	subject    []string
	complaints []string
}

func (c cue) matches(fb string) bool {
	return containsAny(fb, c.subject...) && containsAny(fb, c.complaints...)
}

var (
	descriptionCue = cue{
		subject:    []string{"description"},
		complaints: []string{"vague", "too little", "little info", "general", "not specific"},
	}
	dateCue = cue{
		subject:    []string{"date", "time"},
		complaints: []string{"wrong", "incorrect", "off"},
	}
	tagsCue = cue{
		subject:    []string{"tag"},
		complaints: []string{"no", "missing", "more", "few"},
	}
	titleCue = cue{
		subject:    []string{"title"},
		complaints: []string{"inaccurate", "generic", "vague", "wrong"},
	}
)

// Parse classifies free-text feedback into directives by substring match.
func Parse(feedback string) Directives {
	fb := strings.ToLower(feedback)
	return Directives{
		Description: descriptionCue.matches(fb),
		Date:        dateCue.matches(fb),
		Tags:        tagsCue.matches(fb),
		Title:       titleCue.matches(fb),
		Priority:    parsePriority(fb),
	}
}

// parsePriority returns the level a "priority" complaint names. A level
// preceded by "not" is ignored; of the rest the last one mentioned wins.
func parsePriority(fb string) record.Priority {
	if !strings.Contains(fb, "priority") {
		return ""
	}
	var (
		best    record.Priority
		bestPos = -1
	)
	for _, p := range []record.Priority{record.PriorityHigh, record.PriorityMedium, record.PriorityLow} {
		word := string(p)
		for from := 0; ; {
			i := strings.Index(fb[from:], word)
			if i < 0 {
				break
			}
			pos := from + i
			from = pos + len(word)
			if !wordAt(fb, pos, len(word)) || negated(fb[:pos]) {
				continue
			}
			if pos > bestPos {
				best, bestPos = p, pos
			}
		}
	}
	return best
}

func wordAt(s string, pos, n int) bool {
	before := pos == 0 || !isLetter(s[pos-1])
	after := pos+n >= len(s) || !isLetter(s[pos+n])
	return before && after
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }

func negated(prefix string) bool {
	prefix = strings.TrimRight(prefix, " ")
	return strings.HasSuffix(prefix, " not") || prefix == "not" ||
		strings.HasSuffix(prefix, "n't") || strings.HasSuffix(prefix, " no")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// String renders the directive set for logs.
func (d Directives) String() string {
	if !d.Any() {
		return "none"
	}
	return fmt.Sprint(d.Names())
}
