package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/worldframe"
)

func TestObserveTickRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	collector.ObserveTick(3 * time.Millisecond)
	collector.ObserveTick(7 * time.Millisecond)

	if got := testutil.ToFloat64(collector.Ticks); got != 2 {
		t.Fatalf("sim_ticks_total = %v, want 2", got)
	}
	if count := histogramSampleCount(t, reg, "sim_tick_duration_seconds", nil); count != 2 {
		t.Fatalf("sim_tick_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestFrameErrorReasons(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	collector.IncFrameError("terra", fmt.Errorf("tangent frame: %w", worldframe.ErrSingularity))
	collector.IncFrameError("mars", &worldframe.AnchorError{World: "mars", Err: worldframe.ErrUnknownWorld})
	collector.IncFrameError("terra", cosmos.ErrUnknownBody)
	collector.IncFrameError("terra", errors.New("boom"))
	collector.IncFrameError("terra", nil)

	for _, tt := range []struct{ world, reason string }{
		{"terra", "singularity"},
		{"mars", "anchor"},
		{"terra", "unknown_body"},
		{"terra", "other"},
	} {
		if got := testutil.ToFloat64(collector.FrameErrors.WithLabelValues(tt.world, tt.reason)); got != 1 {
			t.Fatalf("sim_frame_errors_total{%s,%s} = %v, want 1", tt.world, tt.reason, got)
		}
	}
}

func TestNewSimCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	second, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("second NewSimCollector: %v", err)
	}
	second.ObserveTick(time.Millisecond)
	if got := testutil.ToFloat64(first.Ticks); got != 1 {
		t.Fatalf("shared sim_ticks_total = %v, want 1", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *SimCollector
	c.ObserveTick(time.Second)
	c.SetBodyDistance("moon", "earth", 1)
	c.SetSiteSunElevation("site", "terra", 1)
	c.SetCatalog(1, 1)
	c.IncFrameError("terra", errors.New("x"))
	if c.Gatherer() != nil {
		t.Fatalf("nil collector Gatherer should be nil")
	}
}

func TestMetricsHandlerExposesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	collector.SetBodyDistance("moon", "earth", 384400000)
	collector.SetSiteSunElevation("greenwich", "terra", 12.5)
	collector.SetCatalog(7, 2)
	collector.ObserveTick(time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"sim_ticks_total",
		"sim_tick_duration_seconds",
		`sim_body_distance_m{body="moon",parent="earth"} 3.844e+08`,
		`sim_site_sun_elevation_deg{site="greenwich",world="terra"} 12.5`,
		"sim_catalog_version 7",
		"sim_worlds 2",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output:\n%s", metric, body)
		}
	}
}

func TestTracingStdoutExport(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	var buf bytes.Buffer
	ctx := context.Background()
	shutdown, err := InitTracing(ctx, TracingConfig{
		Enabled:     true,
		ServiceName: "omnivox-test",
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}

	_, span := StartTick(ctx, 3, simtime.FromSeconds(90))
	span.End()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "sim.tick") || !strings.Contains(out, "90000000000") {
		t.Fatalf("exported spans missing tick attributes:\n%s", out)
	}
}

func TestTracingConfigErrors(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	ctx := context.Background()
	if _, err := InitTracing(ctx, TracingConfig{Enabled: true, Exporter: "zipkin", SampleRatio: 1}, nil); err == nil {
		t.Fatalf("expected error for unsupported exporter")
	}
	if _, err := InitTracing(ctx, TracingConfig{Enabled: true, SampleRatio: 1.5}, nil); err == nil {
		t.Fatalf("expected error for sample ratio above 1")
	}
	shutdown, err := InitTracing(ctx, TracingConfig{}, nil)
	if err != nil {
		t.Fatalf("disabled InitTracing: %v", err)
	}
	ShutdownWithTimeout(ctx, shutdown, nil)
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
