// Package observe holds the bridge's observability primitives:
// OpenTelemetry metrics and tracing plus the slog logger setup.
//
// Instruments are created through the OpenTelemetry Metrics API. InitProvider
// wires them to a private Prometheus registry whose text exposition the C
// surface can hand out. Tests build their own Metrics with NewMetrics and a
// ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/soundprediction/go-genai-capi"

// Metrics holds the bridge's instruments. All methods are safe on a nil
// receiver so callers never need to check whether metrics are enabled.
type Metrics struct {
	// GenerateDuration tracks generate latency by family, backend and outcome.
	GenerateDuration metric.Float64Histogram
	// LoadDuration tracks model load latency by family and backend.
	LoadDuration metric.Float64Histogram
	// Calls counts C-surface calls by op and status.
	Calls metric.Int64Counter
	// LiveHandles tracks handles currently registered, by kind.
	LiveHandles metric.Int64UpDownCounter
}

var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates the instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.GenerateDuration, err = m.Float64Histogram("genai.generate.duration",
		metric.WithDescription("Latency of pipeline generate calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LoadDuration, err = m.Float64Histogram("genai.pipeline.load.duration",
		metric.WithDescription("Latency of model loading at pipeline creation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Calls, err = m.Int64Counter("genai.calls",
		metric.WithDescription("C surface calls by operation and status."),
	); err != nil {
		return nil, err
	}
	if met.LiveHandles, err = m.Int64UpDownCounter("genai.handles.live",
		metric.WithDescription("Handles currently owned by callers, by kind."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// RecordGenerate records one generate call.
func (m *Metrics) RecordGenerate(ctx context.Context, family, backend string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GenerateDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("family", family),
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	))
}

// RecordLoad records one model load.
func (m *Metrics) RecordLoad(ctx context.Context, family, backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.LoadDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("family", family),
		attribute.String("backend", backend),
	))
}

// RecordCall counts one C surface call.
func (m *Metrics) RecordCall(ctx context.Context, op, status string) {
	if m == nil {
		return
	}
	m.Calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	))
}

// HandleOpened increments the live handle gauge for kind.
func (m *Metrics) HandleOpened(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.LiveHandles.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// HandleClosed decrements the live handle gauge for kind.
func (m *Metrics) HandleClosed(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.LiveHandles.Add(ctx, -1, metric.WithAttributes(attribute.String("kind", kind)))
}
