// Command simulator steps a simulation clock over a loaded system and, on
// every tick, resolves body distances, site illumination, environment
// samples and satellite passes. Metrics are served on /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/internal/config"
	"github.com/signalsfoundry/omnivox/internal/logging"
	"github.com/signalsfoundry/omnivox/internal/observability"
	"github.com/signalsfoundry/omnivox/kb"
	"github.com/signalsfoundry/omnivox/model"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/timectrl"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simulator: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	systemFile := flag.String("system", settings.SystemFile, "JSON or YAML system file; the built-in Sun, Earth and Moon when empty")
	bodiesDB := flag.String("bodies-db", settings.BodiesDB, "SQLite database whose bodies table replaces the system file's bodies")
	metricsAddr := flag.String("metrics-addr", settings.MetricsAddr, "address for the /metrics endpoint; empty disables it")
	startFlag := flag.String("start", "", "start time as RFC 3339 or decimal nanoseconds; defaults to the system file's start")
	duration := flag.Duration("duration", 24*time.Hour, "total simulated duration")
	tick := flag.Duration("tick", 10*time.Minute, "simulated time per tick")
	interval := flag.Duration("interval", time.Second, "wall-clock pause between ticks in real-time mode")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	source := flag.String("source", cosmos.SunID, "body used as the light source for sites")
	flag.Parse()

	log := logging.New(logging.Config{Level: settings.LogLevel, Format: settings.LogFormat})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, runID := logging.EnsureRunID(ctx)
	ctx = logging.ContextWithLogger(ctx, log)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     settings.Tracing.Enabled,
		ServiceName: settings.Tracing.ServiceName,
		Exporter:    settings.Tracing.Exporter,
		Endpoint:    settings.Tracing.Endpoint,
		SampleRatio: settings.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	def, err := config.LoadDefinition(ctx, *systemFile, *bodiesDB, defaultSystem())
	if err != nil {
		return err
	}
	start := def.Start
	if *startFlag != "" {
		if start, err = config.ParseSimTime(*startFlag); err != nil {
			return fmt.Errorf("-start: %w", err)
		}
	}

	store := kb.NewKnowledgeBase()
	if err := store.Load(def); err != nil {
		return fmt.Errorf("load system %q: %w", def.Name, err)
	}

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	r, err := newRunner(store, *source, collector, log)
	if err != nil {
		return err
	}
	defer r.watch(ctx)()

	if *metricsAddr != "" {
		srv := serveMetrics(ctx, *metricsAddr, collector, log)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(start, simtime.Nanoseconds(int64(*tick)), mode)
	tc.Interval = *interval
	tc.AddListener(func(now simtime.SimTime) { r.onTick(ctx, now) })

	log.Info(ctx, "starting simulation",
		logging.String("run_id", runID),
		logging.String("system", def.Name),
		logging.Int("bodies", len(def.Bodies)),
		logging.Int("worlds", len(def.Worlds)),
		logging.String("start", start.RFC3339()),
		logging.String("duration", duration.String()),
		logging.String("tick", tick.String()),
		logging.Bool("accelerated", *accelerated),
	)
	began := time.Now()
	err = tc.Run(ctx, simtime.Nanoseconds(int64(*duration)))
	switch {
	case errors.Is(err, context.Canceled):
		log.Warn(ctx, "simulation interrupted")
	case err != nil:
		return err
	}
	log.Info(ctx, "simulation complete",
		logging.String("ticks", humanize.Comma(int64(r.Ticks()))),
		logging.String("elapsed", time.Since(began).Round(time.Millisecond).String()),
		logging.String("end", tc.Now().RFC3339()),
	)
	return nil
}

// defaultSystem is the built-in solar system with a site at Greenwich,
// starting now.
func defaultSystem() model.SystemDefinition {
	def := model.SolarSystemDefinition()
	def.Start = simtime.FromTime(time.Now().UTC().Truncate(time.Second))
	def.Sites = []model.SiteDefinition{{
		ID:       "greenwich",
		World:    "terra",
		Location: coord.Geographic{LatDegrees: 51.4779, LonDegrees: 0, ElevationM: 46},
	}}
	return def
}

func serveMetrics(ctx context.Context, addr string, collector *observability.SimCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info(ctx, "serving metrics", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logging.Err(err))
		}
	}()
	return srv
}
