// Package feedback applies free-text user corrections to prior output and
// records the corrected output as a new exemplar.
package feedback

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/events"
	"github.com/fyrsmithlabs/voicaj/internal/exemplar"
	"github.com/fyrsmithlabs/voicaj/internal/extraction"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// Titles that the title directive rewrites to a more specific form.
var specializedTitles = map[string]string{
	"task":            "Important task",
	"mood":            "Emotional state entry",
	"mood entry":      "Emotional state entry",
	"emotional state": "Emotional state entry",
	"habit":           "New daily habit",
	"goal":            "Long-term personal goal",
}

// Learner applies corrections and grows the exemplar store.
type Learner struct {
	store     *exemplar.Store
	extractor *extraction.Extractor
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Learner.
type Option func(*Learner)

// WithLogger sets the learner logger.
func WithLogger(l *zap.Logger) Option {
	return func(ln *Learner) {
		if l != nil {
			ln.logger = l
		}
	}
}

// WithPublisher emits a learned event after every correction.
func WithPublisher(p events.Publisher) Option {
	return func(ln *Learner) {
		if p != nil {
			ln.publisher = p
		}
	}
}

// WithClock overrides the learner clock.
func WithClock(now func() time.Time) Option {
	return func(ln *Learner) {
		if now != nil {
			ln.now = now
		}
	}
}

// WithExtractor shares an extractor with the rest of the pipeline.
func WithExtractor(e *extraction.Extractor) Option {
	return func(ln *Learner) {
		if e != nil {
			ln.extractor = e
		}
	}
}

// New returns a Learner that appends to store.
func New(store *exemplar.Store, opts ...Option) *Learner {
	l := &Learner{
		store:     store,
		extractor: extraction.New(),
		publisher: events.Noop{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Learn applies the directives in feedback to every record of prior,
// appends exactly one exemplar holding the corrected records and returns
// them. A persistence failure is logged; the corrected records are still
// returned.
func (l *Learner) Learn(ctx context.Context, text string, prior []record.Record, feedback string) []record.Record {
	now := l.now()
	d := Parse(feedback)

	corrected := make([]record.Record, len(prior))
	for i, r := range prior {
		corrected[i] = l.repair(l.Apply(d, r, text, now), text, now)
	}

	// The correction is recorded even if the caller goes away.
	ex, err := l.store.Append(context.WithoutCancel(ctx), exemplar.Exemplar{
		Input:     text,
		Expected:  corrected,
		Feedback:  feedback,
		Timestamp: now,
	})
	if err != nil {
		l.logger.Error("failed to persist exemplar", zap.Error(err))
	} else {
		l.logger.Info("exemplar recorded",
			zap.String("exemplar_id", ex.ID.String()),
			zap.Strings("directives", d.Names()),
		)
	}

	if err := l.publisher.Publish(ctx, events.Event{
		Kind:     events.KindLearned,
		Text:     text,
		Records:  corrected,
		Feedback: feedback,
	}); err != nil {
		l.logger.Warn("failed to publish learned event", zap.Error(err))
	}
	return record.CloneAll(corrected)
}

// Apply runs each fired directive against r.
func (l *Learner) Apply(d Directives, r record.Record, text string, now time.Time) record.Record {
	out := r.Clone()
	if d.Description {
		out.Description = l.specificDescription(out, text)
	}
	if d.Date {
		due := extraction.ResolveDueDate(text, now)
		out.DueDate = &due
	}
	if d.Tags {
		out.Tags = record.AddTags(out.Tags, extraction.TypeTags[out.Type]...)
		if len(out.Tags) < record.MaxTags {
			out.Tags = record.AddTags(out.Tags, l.extractor.Tags(text)...)
		}
	}
	if d.Title {
		out.Title = l.specificTitle(out, text)
	}
	if d.Priority != "" {
		out.Priority = d.Priority
	}
	return out
}

// repair clamps a corrected record to the record invariants. Prior output
// comes from the caller, so type, priority and tags may be anything. Values
// that are already valid, including the corrected ones, are kept.
func (l *Learner) repair(r record.Record, text string, now time.Time) record.Record {
	out := r.Normalize()
	if strings.TrimSpace(out.Title) == "" {
		out.Title = l.extractor.Title(text, out.Type)
	}
	if strings.TrimSpace(out.Description) == "" {
		out.Description = extraction.EchoDescription(text)
	}
	if len(out.Tags) == 0 {
		out.Tags = record.AddTags(extraction.TypeTags[out.Type], l.extractor.Tags(text)...)
	}
	if out.DueDate == nil {
		due := extraction.ResolveDueDate(text, now)
		out.DueDate = &due
	}
	return out
}

// specificDescription always returns something different from the current
// description.
func (l *Learner) specificDescription(r record.Record, text string) string {
	current := strings.TrimSpace(r.Description)
	if d, ok := l.extractor.SpecificDescription(text, r.Type); ok && d != current {
		return d
	}
	text = strings.TrimSpace(text)
	if text != "" {
		if r.Title != "" {
			if d := r.Title + ": " + text; d != current {
				return d
			}
		}
		if d := extraction.EchoDescription(text); d != current {
			return d
		}
		return current + " (" + text + ")"
	}
	return current + " (details needed)"
}

func (l *Learner) specificTitle(r record.Record, text string) string {
	if s, ok := specializedTitles[strings.ToLower(strings.TrimSpace(r.Title))]; ok {
		return s
	}
	return l.extractor.Title(text, r.Type)
}
