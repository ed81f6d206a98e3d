package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/worldframe"
)

// SimCollector bundles the Prometheus metrics exported by the simulator.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Ticks            prometheus.Counter
	TickDuration     prometheus.Histogram
	BodyDistance     *prometheus.GaugeVec
	SiteSunElevation *prometheus.GaugeVec
	FrameErrors      *prometheus.CounterVec
	CatalogVersion   prometheus.Gauge
	Worlds           prometheus.Gauge
}

// NewSimCollector registers simulator metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Number of simulation clock ticks processed.",
	}), "sim_ticks_total")
	if err != nil {
		return nil, err
	}
	tickDuration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Wall-clock time spent resolving poses, frames and samples for one tick.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}), "sim_tick_duration_seconds")
	if err != nil {
		return nil, err
	}
	distance, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_body_distance_m",
		Help: "Distance in metres between a body and its orbital parent at the current tick.",
	}, []string{"body", "parent"}), "sim_body_distance_m")
	if err != nil {
		return nil, err
	}
	sunElevation, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_site_sun_elevation_deg",
		Help: "Elevation of the primary light source above a site's horizon, in degrees.",
	}, []string{"site", "world"}), "sim_site_sun_elevation_deg")
	if err != nil {
		return nil, err
	}
	frameErrors, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_frame_errors_total",
		Help: "Frame or sample resolutions that failed, labeled by world and reason.",
	}, []string{"world", "reason"}), "sim_frame_errors_total")
	if err != nil {
		return nil, err
	}
	version, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_catalog_version",
		Help: "Version of the world catalog snapshot in use.",
	}), "sim_catalog_version")
	if err != nil {
		return nil, err
	}
	worlds, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_worlds",
		Help: "Number of worlds in the catalog snapshot in use.",
	}), "sim_worlds")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:         gatherer,
		Ticks:            ticks,
		TickDuration:     tickDuration,
		BodyDistance:     distance,
		SiteSunElevation: sunElevation,
		FrameErrors:      frameErrors,
		CatalogVersion:   version,
		Worlds:           worlds,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SimCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveTick counts one tick and records how long it took.
func (c *SimCollector) ObserveTick(d time.Duration) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TickDuration.Observe(d.Seconds())
}

// SetBodyDistance records the body-to-parent distance in metres.
func (c *SimCollector) SetBodyDistance(body, parent string, metres float64) {
	if c == nil {
		return
	}
	c.BodyDistance.WithLabelValues(body, parent).Set(metres)
}

// SetSiteSunElevation records the light source elevation seen from a site.
func (c *SimCollector) SetSiteSunElevation(site, world string, degrees float64) {
	if c == nil {
		return
	}
	c.SiteSunElevation.WithLabelValues(site, world).Set(degrees)
}

// SetCatalog records the catalog snapshot in use.
func (c *SimCollector) SetCatalog(version uint64, worlds int) {
	if c == nil {
		return
	}
	c.CatalogVersion.Set(float64(version))
	c.Worlds.Set(float64(worlds))
}

// IncFrameError counts a failed resolution against world.
func (c *SimCollector) IncFrameError(world string, err error) {
	if c == nil || err == nil {
		return
	}
	c.FrameErrors.WithLabelValues(world, ErrorReason(err)).Inc()
}

// ErrorReason maps resolution errors onto a small, fixed label set.
func ErrorReason(err error) string {
	var anchorErr *worldframe.AnchorError
	switch {
	case errors.Is(err, worldframe.ErrSingularity):
		return "singularity"
	case errors.As(err, &anchorErr):
		return "anchor"
	case errors.Is(err, cosmos.ErrUnknownBody):
		return "unknown_body"
	default:
		return "other"
	}
}

// register adds c to reg, reusing an already registered collector of the
// same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero C
		return zero, err
	}
	return c, nil
}
