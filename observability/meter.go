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

	"github.com/kbukum/flowkit/logger"
)

// InitMeter installs an OTLP/HTTP meter provider exporting every
// cfg.Interval as the global provider. The caller shuts it down on exit.
func InitMeter(ctx context.Context, res Resource, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	r, err := res.build()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(r),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", res.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by pipelines.
type Metrics struct {
	runTotal        metric.Int64Counter
	runDuration     metric.Float64Histogram
	runActive       metric.Int64UpDownCounter
	stageFailures   metric.Int64Counter
	eventsForwarded metric.Int64Counter
	progressReports metric.Int64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("pipeline.runs",
		metric.WithDescription("Total number of settled pipeline runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.runs counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("pipeline.duration",
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.duration histogram: %w", err)
	}

	runActive, err := meter.Int64UpDownCounter("pipeline.active",
		metric.WithDescription("Number of pipelines currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.active gauge: %w", err)
	}

	stageFailures, err := meter.Int64Counter("pipeline.stage.failures",
		metric.WithDescription("Stages that returned an error, by stage name"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.stage.failures counter: %w", err)
	}

	eventsForwarded, err := meter.Int64Counter("pipeline.events.forwarded",
		metric.WithDescription("Events forwarded by the bridge, by channel"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.events.forwarded counter: %w", err)
	}

	progressReports, err := meter.Int64Histogram("pipeline.progress.percent",
		metric.WithDescription("Reported progress percentages"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.progress.percent histogram: %w", err)
	}

	return &Metrics{
		runTotal:        runTotal,
		runDuration:     runDuration,
		runActive:       runActive,
		stageFailures:   stageFailures,
		eventsForwarded: eventsForwarded,
		progressReports: progressReports,
	}, nil
}

// RecordRunStart increments the active pipeline count.
func (m *Metrics) RecordRunStart(ctx context.Context) {
	m.runActive.Add(ctx, 1)
}

// RecordRunEnd decrements active pipelines and records the settled run.
func (m *Metrics) RecordRunEnd(ctx context.Context, status string, stages int, duration time.Duration) {
	m.runActive.Add(ctx, -1)
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int(AttrStageCount, stages),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrStatus, status),
	))
}

// RecordStageFailure records a failed stage.
func (m *Metrics) RecordStageFailure(ctx context.Context, stage string) {
	m.stageFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStageName, stage),
	))
}

// RecordForwarded records one event forwarded on channel.
func (m *Metrics) RecordForwarded(ctx context.Context, channel, eventType string) {
	m.eventsForwarded.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrChannel, channel),
		attribute.String(AttrEventType, eventType),
	))
}

// RecordProgress records a reported progress percentage.
func (m *Metrics) RecordProgress(ctx context.Context, percent int) {
	m.progressReports.Record(ctx, int64(percent))
}
