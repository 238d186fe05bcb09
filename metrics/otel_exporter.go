package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export in Prometheus format
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector

	meter            metric.Meter
	statusCountGauge metric.Int64ObservableGauge
	queueDepthGauge  metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter backed by the
// collector. The exported metrics appear on the regular /metrics endpoint.
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"hookline",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers the metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.statusCountGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.status.count",
		metric.WithDescription("Number of webhooks by status"),
		metric.WithUnit("{webhooks}"),
		metric.WithInt64Callback(oe.observeStatusCounts),
	)
	if err != nil {
		return fmt.Errorf("creating status count gauge: %w", err)
	}

	oe.queueDepthGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.queue.depth",
		metric.WithDescription("Number of scheduled processing jobs"),
		metric.WithUnit("{jobs}"),
		metric.WithInt64Callback(oe.observeQueueDepth),
	)
	if err != nil {
		return fmt.Errorf("creating queue depth gauge: %w", err)
	}

	return nil
}

func (oe *OTelExporter) observeStatusCounts(ctx context.Context, observer metric.Int64Observer) error {
	counts, err := oe.collector.GetStatusCounts(ctx)
	if err != nil {
		return fmt.Errorf("observing status counts: %w", err)
	}
	for status, count := range counts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("status", status),
		))
	}
	return nil
}

func (oe *OTelExporter) observeQueueDepth(ctx context.Context, observer metric.Int64Observer) error {
	depth, err := oe.collector.GetQueueDepth(ctx)
	if err != nil {
		return fmt.Errorf("observing queue depth: %w", err)
	}
	observer.Observe(depth)
	return nil
}

// Shutdown flushes and stops the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	return oe.meterProvider.Shutdown(ctx)
}
