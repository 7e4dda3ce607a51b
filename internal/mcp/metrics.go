package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/voicaj/internal/mcp"

// Metrics counts tool calls. Instruments that failed to register are nil and
// skipped.
type Metrics struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

// NewMetrics registers the tool instruments on mp, or on the global provider
// when mp is nil.
func NewMetrics(mp metric.MeterProvider, logger *zap.Logger) *Metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	var m Metrics
	var errs []error
	var err error
	m.calls, err = meter.Int64Counter("voicaj.mcp.tool.invocations_total",
		metric.WithDescription("MCP tool calls, by tool"),
		metric.WithUnit("{call}"))
	errs = append(errs, err)
	m.failures, err = meter.Int64Counter("voicaj.mcp.tool.errors_total",
		metric.WithDescription("Failed MCP tool calls, by tool and reason"),
		metric.WithUnit("{call}"))
	errs = append(errs, err)
	m.duration, err = meter.Float64Histogram("voicaj.mcp.tool.duration_seconds",
		metric.WithDescription("MCP tool call latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1, 5, 30))
	errs = append(errs, err)
	m.inFlight, err = meter.Int64UpDownCounter("voicaj.mcp.tool.active_requests",
		metric.WithDescription("MCP tool calls in progress"),
		metric.WithUnit("{call}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil && logger != nil {
		logger.Warn("some MCP tool metrics are disabled", zap.Error(err))
	}
	return &m
}

// begin marks a call to tool as in flight. The returned func records its
// outcome.
func (m *Metrics) begin(ctx context.Context, tool string) func(error) {
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("tool", tool))
	if m.inFlight != nil {
		m.inFlight.Add(ctx, 1, attrs)
	}
	return func(err error) {
		if m.inFlight != nil {
			m.inFlight.Add(ctx, -1, attrs)
		}
		if m.calls != nil {
			m.calls.Add(ctx, 1, attrs)
		}
		if m.duration != nil {
			m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
		if err != nil && m.failures != nil {
			m.failures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("tool", tool),
				attribute.String("reason", failureReason(err)),
			))
		}
	}
}

// instrumented wraps h so every call is counted under tool.
func instrumented[In, Out any](m *Metrics, tool string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		done := m.begin(ctx, tool)
		res, out, err := h(ctx, req, in)
		done(err)
		return res, out, err
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, errInvalidArguments):
		return "validation_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal_error"
	}
}
