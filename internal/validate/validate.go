// Package validate repairs records so they satisfy the record invariants and
// merges confirmed exemplar fields onto freshly extracted records.
package validate

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fyrsmithlabs/voicaj/internal/exemplar"
	"github.com/fyrsmithlabs/voicaj/internal/extraction"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

const minTags = 2

// Titles too vague to keep; they are re-derived from the message.
var genericTitles = map[string]bool{
	"task":            true,
	"mood":            true,
	"moods":           true,
	"emotional state": true,
	"record":          true,
	"entry":           true,
}

// Validator repairs records. It never fails.
type Validator struct {
	extractor *extraction.Extractor
}

// New creates a Validator backed by the given extractor.
func New(e *extraction.Extractor) *Validator {
	if e == nil {
		e = extraction.New()
	}
	return &Validator{extractor: e}
}

// Validate fills missing fields of r from text, rewrites short
// descriptions, tops up tags, normalizes priority and extras, and always
// re-derives the due date from text at now.
func (v *Validator) Validate(r record.Record, text string, now time.Time) record.Record {
	out := r.Clone()
	out.Type = record.ParseType(string(out.Type))

	title := strings.TrimSpace(out.Title)
	if title == "" || genericTitles[strings.ToLower(title)] {
		out.Title = v.extractor.Title(text, out.Type)
	} else {
		out.Title = title
	}

	if utf8.RuneCountInString(strings.TrimSpace(out.Description)) < record.MinDescriptionLen {
		out.Description = extraction.EchoDescription(text)
	}

	out.Tags = record.AddTags(nil, out.Tags...)
	if len(out.Tags) < minTags {
		out.Tags = record.AddTags(out.Tags, v.extractor.Tags(text)...)
	}

	if p := strings.TrimSpace(string(out.Priority)); p == "" {
		out.Priority = record.PriorityMedium
	} else if parsed, ok := record.ParsePriority(p); ok {
		out.Priority = parsed
	} else {
		out.Priority = v.extractor.Priority(text)
	}

	due := extraction.ResolveDueDate(text, now)
	out.DueDate = &due

	switch out.Type {
	case record.TypeHabit:
		if out.Frequency == "" {
			out.Frequency = v.extractor.Frequency(text)
		}
	case record.TypeWorkout:
		if out.Duration == "" {
			out.Duration = v.extractor.Duration(text)
		}
	}
	return out.Normalize()
}

// ValidateAll validates each record.
func (v *Validator) ValidateAll(rs []record.Record, text string, now time.Time) []record.Record {
	out := make([]record.Record, len(rs))
	for i, r := range rs {
		out[i] = v.Validate(r, text, now)
	}
	return out
}

// Merge copies title, description, tags, priority and habit frequency from
// the exemplar record of the same type onto r. The due date is resolved
// against text rather than copied. Records without a same-type exemplar
// record are returned unchanged.
func (v *Validator) Merge(r record.Record, ex exemplar.Exemplar, text string, now time.Time) record.Record {
	src, ok := ex.RecordOf(r.Type)
	if !ok {
		return r.Clone()
	}
	out := r.Clone()
	if strings.TrimSpace(src.Title) != "" {
		out.Title = src.Title
	}
	if strings.TrimSpace(src.Description) != "" {
		out.Description = src.Description
	}
	if len(src.Tags) > 0 {
		out.Tags = record.AddTags(nil, src.Tags...)
	}
	if p, ok := record.ParsePriority(string(src.Priority)); ok {
		out.Priority = p
	}
	if r.Type == record.TypeHabit && src.Frequency != "" {
		out.Frequency = src.Frequency
	}
	due := extraction.ResolveDueDate(text, now)
	out.DueDate = &due
	return out
}

// MergeAll merges ex onto each record.
func (v *Validator) MergeAll(rs []record.Record, ex exemplar.Exemplar, text string, now time.Time) []record.Record {
	out := make([]record.Record, len(rs))
	for i, r := range rs {
		out[i] = v.Merge(r, ex, text, now)
	}
	return out
}
