package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestClassifierMetrics_RecordClassification(t *testing.T) {
	tt := NewTestTelemetry()

	m, err := NewClassifierMetrics(tt.Telemetry)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordClassification(ctx, "generative", []string{"task", "mood"}, 120*time.Millisecond)
	m.RecordClassification(ctx, "deterministic", []string{"task"}, time.Millisecond)

	assert.Equal(t, int64(2), tt.CounterValue(t, "voicaj.classifications"))
	assert.Equal(t, int64(1), tt.CounterValue(t, "voicaj.classifications", attribute.String("path", "generative")))
	assert.Equal(t, int64(2), tt.CounterValue(t, "voicaj.records", attribute.String("type", "task")))
	assert.Equal(t, int64(1), tt.CounterValue(t, "voicaj.records", attribute.String("type", "mood")))
}

func TestClassifierMetrics_RecordLearned(t *testing.T) {
	tt := NewTestTelemetry()

	m, err := NewClassifierMetrics(tt.Telemetry)
	require.NoError(t, err)

	m.RecordLearned(context.Background(), "description,date")
	assert.Equal(t, int64(1), tt.CounterValue(t, "voicaj.exemplars.learned", attribute.String("directives", "description,date")))
}

func TestClassifierMetrics_NilSafe(t *testing.T) {
	var m *ClassifierMetrics
	assert.NotPanics(t, func() {
		m.RecordClassification(context.Background(), "fallback", []string{"task"}, time.Second)
		m.RecordLearned(context.Background(), "")
	})
}

func TestClassifierMetrics_DisabledTelemetry(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	m, err := NewClassifierMetrics(tel)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordClassification(context.Background(), "deterministic", []string{"task"}, time.Millisecond)
	})
}

func TestClassifierMetrics_DurationHistogram(t *testing.T) {
	tt := NewTestTelemetry()

	m, err := NewClassifierMetrics(tt.Telemetry)
	require.NoError(t, err)

	m.RecordClassification(context.Background(), "fallback", nil, 2*time.Second)
	m.RecordClassification(context.Background(), "fallback", []string{"task"}, time.Second)

	assert.Equal(t, uint64(2), tt.HistogramCount(t, "voicaj.classify.duration", attribute.String("path", "fallback")))
	assert.Zero(t, tt.HistogramCount(t, "voicaj.classify.duration", attribute.String("path", "generative")))
}
