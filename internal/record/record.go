package record

import (
	"strings"
	"time"
)

const (
	// MaxTags caps the number of tags on a record.
	MaxTags = 4
	// MinDescriptionLen is the shortest description kept as is.
	MinDescriptionLen = 10
	// DefaultHour is the hour used when a message names no time of day.
	DefaultHour = 18
)

// Record is one structured item extracted from a message.
type Record struct {
	Type        Type       `json:"type" yaml:"type"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Tags        []string   `json:"tags" yaml:"tags"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	DueDate     *Timestamp `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Frequency   string     `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Duration    string     `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Default is the record returned when nothing better can be produced.
func Default(text string, now time.Time) Record {
	due := DayAt(now, 1, DefaultHour, 0)
	return Record{
		Type:        TypeTask,
		Title:       "Task",
		Description: "Do: " + strings.TrimSpace(text),
		Tags:        []string{"task"},
		Priority:    PriorityMedium,
		DueDate:     &due,
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	if r.DueDate != nil {
		d := *r.DueDate
		out.DueDate = &d
	}
	return out
}

// CloneAll deep-copies a slice of records.
func CloneAll(in []Record) []Record {
	if in == nil {
		return nil
	}
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// Normalize clamps r to its variant: unknown types become tasks, extras that
// belong to another variant are dropped and missing extras are defaulted.
func (r Record) Normalize() Record {
	out := r.Clone()
	if !out.Type.Valid() {
		out.Type = ParseType(string(out.Type))
	}
	if p, ok := ParsePriority(string(out.Priority)); ok {
		out.Priority = p
	} else {
		out.Priority = PriorityMedium
	}
	out.Tags = AddTags(nil, out.Tags...)

	switch out.Type {
	case TypeHabit:
		out.Duration = ""
		switch strings.ToLower(out.Frequency) {
		case FrequencyWeekly:
			out.Frequency = FrequencyWeekly
		default:
			out.Frequency = FrequencyDaily
		}
	case TypeWorkout:
		out.Frequency = ""
		if strings.TrimSpace(out.Duration) == "" {
			out.Duration = DefaultDuration
		}
	default:
		out.Frequency = ""
		out.Duration = ""
	}
	return out
}

// AddTags appends extra to tags, skipping blanks and duplicates, and stops at
// MaxTags. Insertion order is kept.
func AddTags(tags []string, extra ...string) []string {
	out := make([]string, 0, MaxTags)
	seen := make(map[string]bool, MaxTags)
	for _, t := range append(append([]string(nil), tags...), extra...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		if len(out) == MaxTags {
			break
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
