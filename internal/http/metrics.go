package http

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const httpInstrumentationName = "github.com/fyrsmithlabs/voicaj/internal/http"

// unmatchedRoute labels requests that hit no route, keeping the endpoint
// label bounded.
const unmatchedRoute = "unmatched"

// HTTPMetrics records API traffic. A nil *HTTPMetrics records nothing.
type HTTPMetrics struct {
	requests  metric.Int64Counter
	latency   metric.Float64Histogram
	size      metric.Int64Histogram
	inFlight  metric.Int64UpDownCounter
	batchSize metric.Int64Histogram
}

// NewHTTPMetrics registers the instruments on mp, or on the global provider
// when mp is nil. Instruments that fail to register are skipped.
func NewHTTPMetrics(mp metric.MeterProvider, logger *zap.Logger) *HTTPMetrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(httpInstrumentationName)

	var m HTTPMetrics
	var errs []error
	var err error
	m.requests, err = meter.Int64Counter("voicaj.http.requests_total",
		metric.WithDescription("API requests by method, endpoint and status"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)
	// A generative classification can take tens of seconds.
	m.latency, err = meter.Float64Histogram("voicaj.http.request_duration_seconds",
		metric.WithDescription("API request latency by method, endpoint and status"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.025, 0.1, 0.5, 1, 2.5, 10, 30, 60))
	errs = append(errs, err)
	m.size, err = meter.Int64Histogram("voicaj.http.response_size_bytes",
		metric.WithDescription("API response body size"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(256, 1024, 4096, 16384, 65536, 262144))
	errs = append(errs, err)
	m.inFlight, err = meter.Int64UpDownCounter("voicaj.http.active_requests",
		metric.WithDescription("API requests in progress"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)
	m.batchSize, err = meter.Int64Histogram("voicaj.http.batch_texts",
		metric.WithDescription("Texts per batch classification request"),
		metric.WithUnit("{text}"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, maxBatchSize))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil && logger != nil {
		logger.Warn("some http metrics are disabled", zap.Error(err))
	}
	return &m
}

// MetricsMiddleware records every request. Handler errors are rendered here
// so the recorded status is the one sent.
func (m *HTTPMetrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			ctx := c.Request().Context()
			if m.inFlight != nil {
				m.inFlight.Add(ctx, 1)
				defer m.inFlight.Add(ctx, -1)
			}

			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("endpoint", routeLabel(c.Path())),
				attribute.Int("status", res.Status),
			)
			if m.requests != nil {
				m.requests.Add(ctx, 1, attrs)
			}
			if m.latency != nil {
				m.latency.Record(ctx, time.Since(start).Seconds(), attrs)
			}
			if m.size != nil {
				m.size.Record(ctx, res.Size, attrs)
			}
			return nil
		}
	}
}

// RecordBatch records the number of texts in one accepted batch request.
func (m *HTTPMetrics) RecordBatch(ctx context.Context, texts int) {
	if m == nil || m.batchSize == nil {
		return
	}
	m.batchSize.Record(ctx, int64(texts))
}

// routeLabel returns the route pattern. Every registered route is static.
func routeLabel(path string) string {
	if path == "" {
		return unmatchedRoute
	}
	return path
}
