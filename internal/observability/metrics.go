package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for the render loop and facility rebuilds.
// A nil collector is valid and records nothing.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	Frames        *prometheus.CounterVec
	FrameDuration *prometheus.HistogramVec
	RenderErrors  *prometheus.CounterVec

	Rebuilds        *prometheus.CounterVec
	RebuildDuration *prometheus.HistogramVec

	FacilityInstances *prometheus.GaugeVec
	DrawItems         *prometheus.GaugeVec
}

// NewEngineCollector registers engine metrics against the provided registerer, defaulting to
// the global Prometheus registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "h2scape_frames_total",
		Help: "Total number of frames rendered, labeled by renderer backend.",
	}, []string{"backend"}), "h2scape_frames_total")
	if err != nil {
		return nil, err
	}

	frameDuration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "h2scape_frame_duration_seconds",
		Help:    "Time spent animating and rendering one frame.",
		Buckets: []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.05, 0.1, 0.25},
	}, []string{"backend"}), "h2scape_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	renderErrors, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "h2scape_render_errors_total",
		Help: "Total number of frames whose render failed, labeled by renderer backend.",
	}, []string{"backend"}), "h2scape_render_errors_total")
	if err != nil {
		return nil, err
	}

	rebuilds, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "h2scape_rebuilds_total",
		Help: "Total number of facility builds, labeled by profile.",
	}, []string{"profile"}), "h2scape_rebuilds_total")
	if err != nil {
		return nil, err
	}

	rebuildDuration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "h2scape_rebuild_duration_seconds",
		Help:    "Time spent disposing and rebuilding the facility.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"profile"}), "h2scape_rebuild_duration_seconds")
	if err != nil {
		return nil, err
	}

	instances, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "h2scape_facility_instances",
		Help: "Current number of placed facility units, labeled by kind.",
	}, []string{"kind"}), "h2scape_facility_instances")
	if err != nil {
		return nil, err
	}

	drawItems, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "h2scape_draw_items",
		Help: "Mesh draws in the last frame, labeled drawn or culled.",
	}, []string{"state"}), "h2scape_draw_items")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:          gatherer,
		Frames:            frames,
		FrameDuration:     frameDuration,
		RenderErrors:      renderErrors,
		Rebuilds:          rebuilds,
		RebuildDuration:   rebuildDuration,
		FacilityInstances: instances,
		DrawItems:         drawItems,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *EngineCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveFrame records one frame. Failed frames count as render errors as well.
func (c *EngineCollector) ObserveFrame(backend string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.Frames.WithLabelValues(backend).Inc()
	c.FrameDuration.WithLabelValues(backend).Observe(d.Seconds())
	if err != nil {
		c.RenderErrors.WithLabelValues(backend).Inc()
	}
}

// ObserveRebuild records one facility build.
func (c *EngineCollector) ObserveRebuild(profile string, d time.Duration) {
	if c == nil {
		return
	}
	c.Rebuilds.WithLabelValues(profile).Inc()
	c.RebuildDuration.WithLabelValues(profile).Observe(d.Seconds())
}

// SetInstanceCount sets the number of placed units of one kind.
func (c *EngineCollector) SetInstanceCount(kind string, n int) {
	if c == nil {
		return
	}
	c.FacilityInstances.WithLabelValues(kind).Set(float64(n))
}

// SetDrawStats records how many mesh draws the last frame kept and culled.
func (c *EngineCollector) SetDrawStats(drawn, culled int) {
	if c == nil {
		return
	}
	c.DrawItems.WithLabelValues("drawn").Set(float64(drawn))
	c.DrawItems.WithLabelValues("culled").Set(float64(culled))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
