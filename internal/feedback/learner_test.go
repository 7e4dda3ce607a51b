package feedback

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/voicaj/internal/events"
	"github.com/fyrsmithlabs/voicaj/internal/exemplar"
	"github.com/fyrsmithlabs/voicaj/internal/extraction"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

var refNow = time.Date(2025, 6, 10, 10, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func openStore(t *testing.T) *exemplar.Store {
	t.Helper()
	s, err := exemplar.Open(exemplar.Config{Path: filepath.Join(t.TempDir(), "exemplars.json")})
	require.NoError(t, err)
	return s
}

func priorOutput(text string) []record.Record {
	return extraction.New().ExtractAll(text, []record.Type{record.TypeTask, record.TypeMood}, refNow)
}

func TestLearnDescriptionRoundTrip(t *testing.T) {
	store := openStore(t)
	pub := &recordingPublisher{}
	l := New(store, WithClock(func() time.Time { return refNow }), WithPublisher(pub))

	text := "I'm worried about the exam tomorrow"
	prior := priorOutput(text)
	fb := "the description is too vague"

	got := l.Learn(context.Background(), text, prior, fb)
	require.Len(t, got, len(prior))
	for i := range got {
		assert.NotEqual(t, prior[i].Description, got[i].Description, "record %d", i)
	}

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, fb, all[0].Feedback)
	assert.Equal(t, text, all[0].Input)
	assert.Equal(t, got, all[0].Expected)
	assert.True(t, all[0].Timestamp.Equal(refNow))

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.KindLearned, pub.events[0].Kind)
	assert.Equal(t, fb, pub.events[0].Feedback)
}

func TestLearnDescriptionAlwaysChanges(t *testing.T) {
	l := New(openStore(t))
	text := "zzz"
	r := record.Record{Type: record.TypeTask, Title: "", Description: extraction.EchoDescription(text)}

	got := l.Apply(Directives{Description: true}, r, text, refNow)
	assert.NotEqual(t, r.Description, got.Description)

	empty := l.Apply(Directives{Description: true}, record.Record{Type: record.TypeGoal, Description: "x"}, "", refNow)
	assert.NotEqual(t, "x", empty.Description)
}

func TestApplyDirectives(t *testing.T) {
	l := New(openStore(t))
	text := "Call the dentist tomorrow at 9:45"
	stale := record.DayAt(refNow, 5, 12, 0)
	base := record.Record{
		Type:        record.TypeTask,
		Title:       "Task",
		Description: "Do something",
		Tags:        []string{"health"},
		Priority:    record.PriorityMedium,
		DueDate:     &stale,
	}

	t.Run("date re-derived", func(t *testing.T) {
		got := l.Apply(Directives{Date: true}, base, text, refNow)
		require.NotNil(t, got.DueDate)
		assert.Equal(t, "2025-06-11 09:45", got.DueDate.String())
		assert.Equal(t, base.Title, got.Title)
	})

	t.Run("tags topped up", func(t *testing.T) {
		got := l.Apply(Directives{Tags: true}, base, text, refNow)
		assert.Equal(t, []string{"health", "work", "important"}, got.Tags[:3])
		assert.LessOrEqual(t, len(got.Tags), record.MaxTags)
	})

	t.Run("generic title specialized", func(t *testing.T) {
		got := l.Apply(Directives{Title: true}, base, text, refNow)
		assert.Equal(t, "Important task", got.Title)
	})

	t.Run("specific title re-extracted", func(t *testing.T) {
		r := base
		r.Title = "Something odd"
		got := l.Apply(Directives{Title: true}, r, text, refNow)
		assert.Equal(t, extraction.New().Title(text, record.TypeTask), got.Title)
	})

	t.Run("priority set", func(t *testing.T) {
		got := l.Apply(Directives{Priority: record.PriorityHigh}, base, text, refNow)
		assert.Equal(t, record.PriorityHigh, got.Priority)
	})

	t.Run("no directives leaves record unchanged", func(t *testing.T) {
		got := l.Apply(Directives{}, base, text, refNow)
		assert.Equal(t, base, got)
	})
}

func TestLearnPersistFailureStillReturns(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store, err := exemplar.Open(exemplar.Config{Path: filepath.Join(blocker, "exemplars.json")})
	require.NoError(t, err)

	core, logs := observer.New(zap.ErrorLevel)
	l := New(store, WithLogger(zap.New(core)))

	text := "send the report to my manager"
	prior := priorOutput(text)
	got := l.Learn(context.Background(), text, prior, "the date is wrong")

	assert.Len(t, got, len(prior))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to persist exemplar").Len())
}

func TestLearnEmptyPrior(t *testing.T) {
	store := openStore(t)
	got := New(store).Learn(context.Background(), "hello", nil, "title is wrong")
	assert.Empty(t, got)
	assert.Equal(t, 1, store.Len())
}

func TestLearnRepairsMalformedPrior(t *testing.T) {
	store := openStore(t)
	l := New(store, WithClock(func() time.Time { return refNow }))

	text := "send the report"
	prior := []record.Record{{
		Type:        "banana",
		Title:       "Report",
		Description: "Send the quarterly report",
		Tags:        []string{"a", "b", "c", "d", "e", "f"},
		Priority:    "urgent",
	}}

	got := l.Learn(context.Background(), text, prior, "the description is too vague")
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, record.TypeTask, r.Type)
	assert.Equal(t, record.PriorityMedium, r.Priority)
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.Tags)
	require.NotNil(t, r.DueDate)
	assert.Equal(t, "2025-06-11 18:00", r.DueDate.String())
	assert.NotEqual(t, prior[0].Description, r.Description)

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, got, all[0].Expected)
}

func TestLearnFillsEmptyFields(t *testing.T) {
	l := New(openStore(t), WithClock(func() time.Time { return refNow }))

	got := l.Learn(context.Background(), "I want to run every morning", []record.Record{{Type: record.TypeHabit}}, "priority should be low")
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, record.PriorityLow, r.Priority)
	assert.NotEmpty(t, r.Title)
	assert.NotEmpty(t, r.Description)
	assert.NotEmpty(t, r.Tags)
	assert.LessOrEqual(t, len(r.Tags), record.MaxTags)
	assert.Equal(t, record.FrequencyDaily, r.Frequency)
	assert.NotNil(t, r.DueDate)
}

func TestLearnPersistsAfterCancel(t *testing.T) {
	store := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text := "send the report to my manager"
	New(store).Learn(ctx, text, priorOutput(text), "the title is wrong")
	assert.Equal(t, 1, store.Len())
}
