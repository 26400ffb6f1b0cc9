// Package observability provides OpenTelemetry tracing and metrics integration.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg.Tracing)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "voice.convert")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg.Metrics)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("voicescribe"))
//	metrics.RecordStage(ctx, "converting", "ok", elapsed)
//
// Exporters stay disabled unless enabled in config. Without them the global
// otel providers are no-ops and spans and metrics cost nothing.
package observability
