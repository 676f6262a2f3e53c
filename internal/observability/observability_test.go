package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestObserveFrame(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewEngineCollector(reg)
	require.NoError(t, err)

	c.ObserveFrame("terminal", 4*time.Millisecond, nil)
	c.ObserveFrame("terminal", 5*time.Millisecond, errors.New("surface lost"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Frames.WithLabelValues("terminal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RenderErrors.WithLabelValues("terminal")))
	assert.Equal(t, uint64(2), histogramSampleCount(t, reg, "h2scape_frame_duration_seconds", map[string]string{"backend": "terminal"}))
}

func TestObserveRebuildAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewEngineCollector(reg)
	require.NoError(t, err)

	c.ObserveRebuild("wind", 20*time.Millisecond)
	c.SetInstanceCount("power_source", 3)
	c.SetInstanceCount("electrolysis", 2)
	c.SetDrawStats(120, 7)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rebuilds.WithLabelValues("wind")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.FacilityInstances.WithLabelValues("power_source")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.FacilityInstances.WithLabelValues("electrolysis")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.DrawItems.WithLabelValues("culled")))
	assert.Equal(t, uint64(1), histogramSampleCount(t, reg, "h2scape_rebuild_duration_seconds", map[string]string{"profile": "wind"}))
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewEngineCollector(reg)
	require.NoError(t, err)
	second, err := NewEngineCollector(reg)
	require.NoError(t, err)

	second.ObserveRebuild("solar", time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Rebuilds.WithLabelValues("solar")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *EngineCollector
	assert.NotPanics(t, func() {
		c.ObserveFrame("wgpu", time.Millisecond, nil)
		c.ObserveRebuild("wind", time.Millisecond)
		c.SetInstanceCount("storage", 3)
		c.SetDrawStats(1, 1)
	})
	assert.Nil(t, c.Gatherer())
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewEngineCollector(reg)
	require.NoError(t, err)
	c.ObserveFrame("wgpu", time.Millisecond, nil)
	c.SetInstanceCount("storage", 3)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "h2scape_frames_total")
	assert.Contains(t, body, `h2scape_facility_instances{kind="storage"} 3`)
}

func TestTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestTracingStdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		Exporter:    "stdout",
		SampleRatio: 1,
		Output:      &buf,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = InitTracing(context.Background(), TracingConfig{}, nil) })

	_, span := otel.Tracer("test").Start(context.Background(), "facility.Build")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, nil)

	assert.Contains(t, buf.String(), "facility.Build")
}

func TestTracingUnsupportedExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"}, nil)
	assert.ErrorContains(t, err, "unsupported tracing exporter")
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	require.NoError(t, err)
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
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
