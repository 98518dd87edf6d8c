package observe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestRecordGenerate(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordGenerate(ctx, "speech", "stub", 120*time.Millisecond, nil)
	m.RecordGenerate(ctx, "speech", "stub", 80*time.Millisecond, errors.New("boom"))

	got := findMetric(collect(t, reader), "genai.generate.duration")
	if got == nil {
		t.Fatal("genai.generate.duration not recorded")
	}
	hist, ok := got.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", got.Data)
	}
	if len(hist.DataPoints) != 2 {
		t.Fatalf("expected 2 data points (ok, error), got %d", len(hist.DataPoints))
	}
	for _, dp := range hist.DataPoints {
		if dp.Count != 1 {
			t.Errorf("expected count 1, got %d", dp.Count)
		}
		if v, ok := dp.Attributes.Value(attribute.Key("family")); !ok || v.AsString() != "speech" {
			t.Errorf("family attribute = %v", v)
		}
	}
}

func TestCallsAndHandles(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCall(ctx, "whisper_pipeline_generate", "OK")
	m.RecordCall(ctx, "whisper_pipeline_generate", "OK")
	m.HandleOpened(ctx, "whisper_pipeline")
	m.HandleOpened(ctx, "whisper_pipeline")
	m.HandleClosed(ctx, "whisper_pipeline")

	rm := collect(t, reader)

	calls := findMetric(rm, "genai.calls")
	if calls == nil {
		t.Fatal("genai.calls not recorded")
	}
	sum := calls.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 2 {
		t.Errorf("calls = %+v, want a single point with value 2", sum.DataPoints)
	}

	live := findMetric(rm, "genai.handles.live")
	if live == nil {
		t.Fatal("genai.handles.live not recorded")
	}
	gauge := live.Data.(metricdata.Sum[int64])
	if gauge.DataPoints[0].Value != 1 {
		t.Errorf("live handles = %d, want 1", gauge.DataPoints[0].Value)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordGenerate(ctx, "text", "stub", time.Second, nil)
	m.RecordLoad(ctx, "text", "stub", time.Second)
	m.RecordCall(ctx, "op", "OK")
	m.HandleOpened(ctx, "k")
	m.HandleClosed(ctx, "k")
}

func TestProviderWriteText(t *testing.T) {
	ctx := context.Background()
	p, err := InitProvider(ctx, ProviderConfig{ServiceVersion: "test"})
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(ctx) })

	m, err := NewMetrics(p.MeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.RecordCall(ctx, "llm_pipeline_generate", "OK")

	var buf bytes.Buffer
	if err := p.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "genai_calls") {
		t.Errorf("exposition missing genai_calls:\n%s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo, "json").Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("unexpected json output: %s", buf.String())
	}
}
