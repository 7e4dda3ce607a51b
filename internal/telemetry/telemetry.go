package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Telemetry owns the tracer and meter providers for voicaj.
//
// A provider that cannot be built never stops the service. The failure is
// kept for Check and callers fall back to the global providers.
type Telemetry struct {
	config *Config
	logger *zap.Logger

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	mu       sync.Mutex
	failures []error
	closed   bool
}

// Option configures a Telemetry instance.
type Option func(*Telemetry)

// WithLogger reports provider failures through logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Telemetry) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New validates cfg and installs the OTLP providers globally. A disabled
// config yields an instance backed by the global no-op providers.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	t := &Telemetry{config: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	if !cfg.Enabled {
		return t, nil
	}

	res := newResource(cfg)

	if tp, err := newTracerProvider(ctx, cfg, res); err != nil {
		t.fail("tracer provider", err)
	} else {
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	if mp, err := newMeterProvider(ctx, cfg, res); err != nil {
		t.fail("meter provider", err)
	} else if mp != nil {
		t.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.logger.Info("telemetry enabled",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("protocol", cfg.protocol()),
		zap.Float64("sample_rate", cfg.Sampling.Rate),
	)
	return t, nil
}

// Tracer returns a tracer for the given instrumentation scope.
func (t *Telemetry) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return t.tracerProvider.Tracer(name, opts...)
}

// Meter returns a meter for the given instrumentation scope.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.meterProvider.Meter(name, opts...)
}

// Check reports provider failures recorded by New. It has the shape of an
// HTTP health check.
func (t *Telemetry) Check(context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("telemetry shut down")
	}
	return errors.Join(t.failures...)
}

// ForceFlush exports pending spans and metrics.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.each(ctx, "flush",
		func(ctx context.Context) error { return t.tracerProvider.ForceFlush(ctx) },
		func(ctx context.Context) error { return t.meterProvider.ForceFlush(ctx) },
	)
}

// Shutdown flushes and stops the providers. Without a deadline on ctx the
// configured shutdown timeout applies.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Shutdown.Timeout)
		defer cancel()
	}

	err := t.each(ctx, "shutdown",
		func(ctx context.Context) error { return t.tracerProvider.Shutdown(ctx) },
		func(ctx context.Context) error { return t.meterProvider.Shutdown(ctx) },
	)

	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return err
}

// each runs the trace step then the metric step, skipping providers that
// were never built.
func (t *Telemetry) each(ctx context.Context, op string, traces, metrics func(context.Context) error) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := traces(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace %s: %w", op, err))
		}
	}
	if t.meterProvider != nil {
		if err := metrics(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter %s: %w", op, err))
		}
	}
	return errors.Join(errs...)
}

func (t *Telemetry) fail(what string, err error) {
	t.mu.Lock()
	t.failures = append(t.failures, fmt.Errorf("%s: %w", what, err))
	t.mu.Unlock()
	t.logger.Warn("telemetry degraded", zap.String("component", what), zap.Error(err))
}
