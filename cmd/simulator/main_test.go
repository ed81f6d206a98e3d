package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/field"
	"github.com/signalsfoundry/omnivox/internal/config"
	"github.com/signalsfoundry/omnivox/internal/observability"
	"github.com/signalsfoundry/omnivox/kb"
	"github.com/signalsfoundry/omnivox/model"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/timectrl"
)

const (
	issLine1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issLine2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func testStore(t *testing.T) *kb.KnowledgeBase {
	t.Helper()
	def := model.SolarSystemDefinition()
	def.Sites = []model.SiteDefinition{{
		ID: "greenwich", World: "terra",
		Location: coord.Geographic{LatDegrees: 51.4779},
	}}
	def.Satellites = []model.SatelliteDefinition{{ID: "iss", World: "terra", TLE1: issLine1, TLE2: issLine2}}
	store := kb.NewKnowledgeBase()
	if err := store.Load(def); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return store
}

// TestIntegration_DayAtGreenwich runs a day of hourly ticks end to end.
func TestIntegration_DayAtGreenwich(t *testing.T) {
	store := testStore(t)
	reg := prometheus.NewRegistry()
	collector, err := observability.NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector error: %v", err)
	}
	r, err := newRunner(store, cosmos.SunID, collector, nil)
	if err != nil {
		t.Fatalf("newRunner error: %v", err)
	}

	start := simtime.Date(2021, time.October, 2, 0, 0, 0, 0)
	tc := timectrl.NewTimeController(start, simtime.Hours(1), timectrl.Accelerated)

	var daylight, night int
	tc.AddListener(func(now simtime.SimTime) {
		r.onTick(context.Background(), now)
		rep, ok := r.Last()
		if !ok || len(rep.Sites) != 1 {
			t.Errorf("tick at %s: report %+v, want one site", now, rep)
			return
		}
		if rep.Sites[0].Light.Daylight {
			daylight++
		} else {
			night++
		}
	})

	<-tc.Start(simtime.Days(1))

	if got := r.Ticks(); got != 24 {
		t.Fatalf("ticks = %d, want 24", got)
	}
	if got := testutil.ToFloat64(collector.Ticks); got != 24 {
		t.Fatalf("sim_ticks_total = %v, want 24", got)
	}
	if daylight == 0 || night == 0 {
		t.Fatalf("daylight=%d night=%d, want both over a day", daylight, night)
	}
	if got := testutil.ToFloat64(collector.BodyDistance.WithLabelValues(cosmos.MoonID, cosmos.EarthID)); got < 3e8 || got > 4.5e8 {
		t.Fatalf("moon distance = %v, want about 3.84e8", got)
	}
	if got := testutil.ToFloat64(collector.FrameErrors.WithLabelValues("terra", "other")); got != 0 {
		t.Fatalf("unexpected frame errors: %v", got)
	}
}

func TestRunnerRefreshesOnCatalogChange(t *testing.T) {
	store := testStore(t)
	r, err := newRunner(store, cosmos.SunID, nil, nil)
	if err != nil {
		t.Fatalf("newRunner error: %v", err)
	}
	unsubscribe := r.watch(context.Background())
	defer unsubscribe()

	now := simtime.Date(2021, time.October, 2, 12, 0, 0, 0)
	rep := r.step(context.Background(), 1, now)
	if got := rep.Sites[0].Sample.Density; got != 0 {
		t.Fatalf("density before update = %v, want 0", got)
	}

	d := field.Descriptor{Atmosphere: &field.AtmosphereDescriptor{SeaLevelDensity: 1.225, ScaleHeight: 8500}}
	if err := store.UpdateEnvironment("terra", d); err != nil {
		t.Fatalf("UpdateEnvironment error: %v", err)
	}
	rep = r.step(context.Background(), 2, now)
	if got := rep.Sites[0].Sample.Density; got < 1.2 || got > 1.23 {
		t.Fatalf("density after update = %v, want about 1.225", got)
	}
	if r.snap.Load().Version != store.Version() {
		t.Fatalf("runner snapshot version %d, want %d", r.snap.Load().Version, store.Version())
	}
}

func TestNewRunnerRejectsUnknownSource(t *testing.T) {
	if _, err := newRunner(testStore(t), "vega", nil, nil); err == nil {
		t.Fatalf("expected error for unknown light source")
	}
}

func TestLoadSystemFromBodiesDB(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bodies.db")
	db, err := config.OpenBodiesDB(ctx, path)
	if err != nil {
		t.Fatalf("OpenBodiesDB error: %v", err)
	}
	bodies := model.SolarSystemDefinition().Bodies
	bodies[0].Name = "Renamed"
	if err := config.SaveBodiesSQL(ctx, db, bodies); err != nil {
		t.Fatalf("SaveBodiesSQL error: %v", err)
	}
	_ = db.Close()

	def, err := config.LoadDefinition(ctx, "", path, defaultSystem())
	if err != nil {
		t.Fatalf("LoadDefinition error: %v", err)
	}
	var found bool
	for _, b := range def.Bodies {
		if b.ID == bodies[0].ID {
			found = b.Name == "Renamed"
		}
	}
	if !found {
		t.Fatalf("bodies not replaced from database: %+v", def.Bodies)
	}
	if len(def.Sites) != 1 {
		t.Fatalf("default site missing: %+v", def.Sites)
	}
}
