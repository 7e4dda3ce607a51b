// Package telemetry provides OpenTelemetry instrumentation for voicaj.
//
// Traces and metrics export over OTLP (gRPC or HTTP) to a collector. When
// telemetry is disabled or a provider fails to start, Tracer and Meter fall
// back to the global no-op providers and the service keeps running. Check
// reports such failures to GET /health.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, cfg, telemetry.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	metrics, err := telemetry.NewClassifierMetrics(tel)
//	metrics.RecordClassification(ctx, "generative", []string{"task"}, elapsed)
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	_, span := tt.Tracer("test").Start(ctx, "classify")
//	span.End()
//	tt.AssertSpanExists(t, "classify")
package telemetry
