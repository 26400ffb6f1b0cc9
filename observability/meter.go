package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeter installs a global meter provider that pushes to an OTLP/HTTP
// collector every cfg.Interval. The caller must Shutdown it.
func InitMeter(ctx context.Context, cfg *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	res, err := newResource(cfg.Export)
	if err != nil {
		return nil, err
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the OpenTelemetry instruments for voice pipeline runs
// and the providers they call. A nil *Metrics records nothing.
type Metrics struct {
	runTotal          metric.Int64Counter
	runDuration       metric.Float64Histogram
	runActive         metric.Int64UpDownCounter
	stageDuration     metric.Float64Histogram
	pollTotal         metric.Int64Counter
	segmentTotal      metric.Int64Counter
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.runTotal, err = meter.Int64Counter("voice.runs.total",
		metric.WithDescription("Total number of pipeline runs by final state"),
	); err != nil {
		return nil, fmt.Errorf("creating voice.runs.total counter: %w", err)
	}
	if m.runDuration, err = meter.Float64Histogram("voice.run.duration",
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating voice.run.duration histogram: %w", err)
	}
	if m.runActive, err = meter.Int64UpDownCounter("voice.runs.active",
		metric.WithDescription("Number of pipeline runs in progress"),
	); err != nil {
		return nil, fmt.Errorf("creating voice.runs.active gauge: %w", err)
	}
	if m.stageDuration, err = meter.Float64Histogram("voice.stage.duration",
		metric.WithDescription("Duration of pipeline stages in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating voice.stage.duration histogram: %w", err)
	}
	if m.pollTotal, err = meter.Int64Counter("conversion.polls.total",
		metric.WithDescription("Total number of conversion status polls by step"),
	); err != nil {
		return nil, fmt.Errorf("creating conversion.polls.total counter: %w", err)
	}
	if m.segmentTotal, err = meter.Int64Counter("transcription.segments.total",
		metric.WithDescription("Total number of recognition segments emitted"),
	); err != nil {
		return nil, fmt.Errorf("creating transcription.segments.total counter: %w", err)
	}
	if m.operationTotal, err = meter.Int64Counter("operation.total",
		metric.WithDescription("Total number of provider operations"),
	); err != nil {
		return nil, fmt.Errorf("creating operation.total counter: %w", err)
	}
	if m.operationDuration, err = meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of provider operations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	); err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &m, nil
}

// RecordRunStart increments the active run count.
func (m *Metrics) RecordRunStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.runActive.Add(ctx, 1)
}

// RecordRunEnd decrements active runs and records the finished run.
func (m *Metrics) RecordRunEnd(ctx context.Context, state string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("state", state))
	m.runActive.Add(ctx, -1)
	m.runTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStage records how long a pipeline stage took.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordPoll counts one conversion status poll.
func (m *Metrics) RecordPoll(ctx context.Context, step string) {
	if m == nil {
		return
	}
	m.pollTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

// RecordSegment counts one emitted recognition segment.
func (m *Metrics) RecordSegment(ctx context.Context, final bool) {
	if m == nil {
		return
	}
	m.segmentTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("final", final)))
}

// RecordOperation records a provider operation execution.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.operationTotal.Add(ctx, 1, attrs)
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
