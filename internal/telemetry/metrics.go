package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const classifierMeterName = "github.com/fyrsmithlabs/voicaj/internal/classifier"

// ClassifierMetrics counts pipeline outcomes. A nil *ClassifierMetrics is a no-op.
type ClassifierMetrics struct {
	classifications metric.Int64Counter
	records         metric.Int64Counter
	duration        metric.Float64Histogram
	learned         metric.Int64Counter
}

// NewClassifierMetrics registers the classifier instruments on t's meter.
func NewClassifierMetrics(t *Telemetry) (*ClassifierMetrics, error) {
	meter := t.Meter(classifierMeterName)

	classifications, err := meter.Int64Counter(
		"voicaj.classifications",
		metric.WithDescription("Messages classified, by extraction path"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	records, err := meter.Int64Counter(
		"voicaj.records",
		metric.WithDescription("Records produced, by record type"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"voicaj.classify.duration",
		metric.WithDescription("End-to-end classification latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	learned, err := meter.Int64Counter(
		"voicaj.exemplars.learned",
		metric.WithDescription("Corrections learned from feedback"),
		metric.WithUnit("{exemplar}"),
	)
	if err != nil {
		return nil, err
	}

	return &ClassifierMetrics{
		classifications: classifications,
		records:         records,
		duration:        duration,
		learned:         learned,
	}, nil
}

// RecordClassification counts one classified message and each produced record.
func (m *ClassifierMetrics) RecordClassification(ctx context.Context, path string, recordTypes []string, elapsed time.Duration) {
	if m == nil {
		return
	}
	pathAttr := metric.WithAttributes(attribute.String("path", path))
	m.classifications.Add(ctx, 1, pathAttr)
	m.duration.Record(ctx, elapsed.Seconds(), pathAttr)
	for _, typ := range recordTypes {
		m.records.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typ)))
	}
}

// RecordLearned counts one learned correction.
func (m *ClassifierMetrics) RecordLearned(ctx context.Context, directives string) {
	if m == nil {
		return
	}
	m.learned.Add(ctx, 1, metric.WithAttributes(attribute.String("directives", directives)))
}
