package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/signalsfoundry/omnivox/field"
	"github.com/signalsfoundry/omnivox/internal/logging"
	"github.com/signalsfoundry/omnivox/internal/observability"
	"github.com/signalsfoundry/omnivox/kb"
	"github.com/signalsfoundry/omnivox/physics"
	"github.com/signalsfoundry/omnivox/simtime"
)

// siteReport is what one site sees at one tick.
type siteReport struct {
	Site   string        `json:"site"`
	World  string        `json:"world"`
	Light  physics.Light `json:"light"`
	Sample field.Sample  `json:"sample"`
}

type passReport struct {
	Satellite string                `json:"satellite"`
	Site      string                `json:"site"`
	View      physics.SatelliteView `json:"view"`
}

type tickReport struct {
	Tick       uint64             `json:"tick"`
	Time       simtime.SimTime    `json:"time"`
	Distances  map[string]float64 `json:"distances_m"`
	Sites      []siteReport       `json:"sites"`
	Passes     []passReport       `json:"passes"`
	FrameFails int                `json:"frame_failures"`
}

// runner resolves the catalog's bodies, sites and satellites on every tick.
// It keeps the latest catalog snapshot and swaps it when the catalog
// changes.
type runner struct {
	store     *kb.KnowledgeBase
	source    string
	collector *observability.SimCollector
	log       logging.Logger

	snap  atomic.Pointer[kb.Snapshot]
	ticks atomic.Uint64
	last  atomic.Pointer[tickReport]
}

func newRunner(store *kb.KnowledgeBase, source string, collector *observability.SimCollector, log logging.Logger) (*runner, error) {
	if log == nil {
		log = logging.Noop()
	}
	r := &runner{store: store, source: source, collector: collector, log: log}
	if err := r.refresh(); err != nil {
		return nil, err
	}
	if _, ok := r.snap.Load().System.Body(source); !ok {
		return nil, fmt.Errorf("light source %q is not a body in the system", source)
	}
	return r, nil
}

// refresh takes a new catalog snapshot. A broken catalog keeps the previous
// snapshot in place.
func (r *runner) refresh() error {
	snap, err := r.store.Snapshot()
	if err != nil {
		return err
	}
	r.snap.Store(snap)
	r.collector.SetCatalog(snap.Version, len(snap.Resolver.Worlds()))
	return nil
}

// watch refreshes the snapshot on every catalog change until the returned
// function is called.
func (r *runner) watch(ctx context.Context) func() {
	return r.store.Subscribe(func(ev kb.Event) {
		if err := r.refresh(); err != nil {
			r.log.Warn(ctx, "catalog change rejected; keeping previous snapshot",
				logging.String("event", ev.Type.String()),
				logging.String("id", ev.ID),
				logging.Err(err),
			)
			return
		}
		r.log.Info(ctx, "catalog updated",
			logging.String("event", ev.Type.String()),
			logging.String("id", ev.ID),
			logging.Any("version", ev.Version),
		)
	})
}

// onTick is registered as a clock listener.
func (r *runner) onTick(ctx context.Context, now simtime.SimTime) {
	n := r.ticks.Add(1)
	ctx, span := observability.StartTick(ctx, n, now)
	defer span.End()

	began := time.Now()
	rep := r.step(ctx, n, now)
	r.collector.ObserveTick(time.Since(began))
	r.last.Store(&rep)

	fields := []logging.Field{
		logging.Any("tick", n),
		logging.String("time", now.RFC3339()),
		logging.String("date", now.SimDate().String()),
		logging.Int("visible_passes", len(rep.Passes)),
	}
	if rep.FrameFails > 0 {
		fields = append(fields, logging.Int("frame_failures", rep.FrameFails))
	}
	r.log.Info(ctx, "tick", fields...)
}

// step computes one tick's report against the current snapshot.
func (r *runner) step(ctx context.Context, n uint64, now simtime.SimTime) tickReport {
	snap := r.snap.Load()
	rep := tickReport{Tick: n, Time: now, Distances: map[string]float64{}}

	for _, b := range snap.System.Bodies() {
		if b.Orbit == nil {
			continue
		}
		d, err := snap.System.Distance(b.ID, b.Orbit.Parent, now)
		if err != nil {
			// Orbits around an absent parent have no distance to report.
			continue
		}
		rep.Distances[b.ID] = d
		r.collector.SetBodyDistance(b.ID, b.Orbit.Parent, d)
		r.log.Debug(ctx, "body distance",
			logging.String("body", b.ID),
			logging.String("parent", b.Orbit.Parent),
			logging.String("distance", humanize.SIWithDigits(d, 4, "m")),
		)
	}

	for _, site := range snap.Sites {
		light, err := physics.Illumination(snap.Resolver, site.World, site.Coord, now, r.source)
		if err != nil {
			r.frameFailure(ctx, &rep, site.World, site.ID, err)
			continue
		}
		r.collector.SetSiteSunElevation(site.ID, site.World, light.Elevation)

		var sample field.Sample
		if env := snap.Environments[site.World]; env != nil {
			sample, err = env.Sample(site.Coord, now)
			if err != nil {
				r.frameFailure(ctx, &rep, site.World, site.ID, err)
				continue
			}
		}
		rep.Sites = append(rep.Sites, siteReport{Site: site.ID, World: site.World, Light: light, Sample: sample})
		r.log.Debug(ctx, "site",
			logging.String("site", site.ID),
			logging.Float64("sun_elevation_deg", light.Elevation),
			logging.Bool("daylight", light.Daylight),
			logging.Float64("pressure_pa", sample.Pressure),
			logging.String("medium", sample.Medium.String()),
		)
	}

	for _, sat := range snap.Satellites {
		for _, site := range snap.Sites {
			if site.World != sat.World {
				continue
			}
			view, err := physics.SatelliteLook(snap.Resolver, site.World, site.Coord, now, sat.TLE)
			if err != nil {
				r.frameFailure(ctx, &rep, site.World, sat.ID, err)
				continue
			}
			if !view.Visible {
				continue
			}
			rep.Passes = append(rep.Passes, passReport{Satellite: sat.ID, Site: site.ID, View: view})
			r.log.Info(ctx, "satellite visible",
				logging.String("satellite", sat.ID),
				logging.String("site", site.ID),
				logging.Float64("elevation_deg", view.Elevation),
				logging.String("range", humanize.SIWithDigits(view.Range, 4, "m")),
			)
		}
	}
	return rep
}

func (r *runner) frameFailure(ctx context.Context, rep *tickReport, world, id string, err error) {
	rep.FrameFails++
	r.collector.IncFrameError(world, err)
	r.log.Warn(ctx, "resolution failed",
		logging.String("world", world),
		logging.String("id", id),
		logging.String("reason", observability.ErrorReason(err)),
		logging.Err(err),
	)
}

// Ticks returns the number of ticks processed.
func (r *runner) Ticks() uint64 { return r.ticks.Load() }

// Last returns the most recent tick report, if any.
func (r *runner) Last() (tickReport, bool) {
	p := r.last.Load()
	if p == nil {
		return tickReport{}, false
	}
	return *p, true
}
