package extraction

import (
	"strings"
	"time"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// Extractor builds records from message text with rule tables only.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract builds a record of type t from text. It never fails.
func (e *Extractor) Extract(text string, t record.Type, now time.Time) record.Record {
	if !t.Valid() {
		t = record.ParseType(string(t))
	}
	if strings.TrimSpace(text) == "" {
		return record.Default(text, now)
	}

	due := e.DueDate(text, now)
	r := record.Record{
		Type:        t,
		Title:       e.Title(text, t),
		Description: e.Description(text, t),
		Tags:        e.Tags(text),
		Priority:    e.Priority(text),
		DueDate:     &due,
	}
	switch t {
	case record.TypeHabit:
		r.Frequency = e.Frequency(text)
	case record.TypeWorkout:
		r.Duration = e.Duration(text)
	}
	return r
}

// ExtractAll builds one record per type, in order.
func (e *Extractor) ExtractAll(text string, types []record.Type, now time.Time) []record.Record {
	if len(types) == 0 {
		types = []record.Type{record.TypeTask}
	}
	out := make([]record.Record, 0, len(types))
	for _, t := range types {
		out = append(out, e.Extract(text, t, now))
	}
	return out
}
