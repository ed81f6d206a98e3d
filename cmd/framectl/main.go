// Command framectl resolves one point on a world at one instant and prints
// its local frame, illumination, tide, eclipse state and environment
// sample as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/field"
	"github.com/signalsfoundry/omnivox/internal/config"
	"github.com/signalsfoundry/omnivox/internal/logging"
	"github.com/signalsfoundry/omnivox/kb"
	"github.com/signalsfoundry/omnivox/model"
	"github.com/signalsfoundry/omnivox/physics"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/sweep"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "framectl: %v\n", err)
		os.Exit(1)
	}
}

type frameJSON struct {
	East  mgl64.Vec3 `json:"east"`
	North mgl64.Vec3 `json:"north"`
	Up    mgl64.Vec3 `json:"up"`
}

type locationJSON struct {
	Coord       coord.Coord      `json:"coord"`
	Geographic  coord.Geographic `json:"geographic"`
	Altitude    float64          `json:"altitude_m"`
	Radius      string           `json:"radius"`
	WKT         string           `json:"wkt"`
	WebMercator [2]float64       `json:"web_mercator"`
}

// Result is the JSON document framectl prints.
type Result struct {
	World    string                 `json:"world"`
	Time     simtime.SimTime        `json:"time"`
	UTC      string                 `json:"utc"`
	Date     simtime.SimDate        `json:"sim_date"`
	Location locationJSON           `json:"location"`
	Frame    frameJSON              `json:"frame"`
	Light    physics.Light          `json:"light"`
	Tide     *physics.TideForce     `json:"tide,omitempty"`
	Eclipse  *physics.EclipseView   `json:"eclipse,omitempty"`
	Fields   []string               `json:"fields"`
	Sample   field.Sample           `json:"sample"`
	Profile  []sweep.AltitudeSample `json:"profile,omitempty"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("framectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	systemFile := fs.String("system", settings.SystemFile, "JSON or YAML system file; the built-in Sun, Earth and Moon when empty")
	bodiesDB := fs.String("bodies-db", settings.BodiesDB, "SQLite database whose bodies table replaces the system file's bodies")
	world := fs.String("world", "terra", "world to resolve on")
	lat := fs.Float64("lat", 0, "latitude, degrees")
	lon := fs.Float64("lon", 0, "longitude, degrees")
	elev := fs.Float64("elev", 0, "elevation above the reference surface, metres")
	at := fs.String("time", "", "instant as RFC 3339 or decimal nanoseconds; defaults to the system start")
	source := fs.String("source", cosmos.SunID, "light source body")
	tideSource := fs.String("tide-source", cosmos.MoonID, "body raising the tide; empty skips it")
	occluder := fs.String("occluder", cosmos.MoonID, "body checked for eclipsing the light source; empty skips it")
	profileTop := fs.Float64("profile-top", 0, "when positive, sample the environment from the point up to this altitude, metres")
	profileStep := fs.Float64("profile-step", 1000, "altitude profile step, metres")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logging.New(logging.Config{Level: settings.LogLevel, Format: settings.LogFormat, Output: stderr})

	ctx = logging.ContextWithLogger(ctx, log)
	fallback := model.SolarSystemDefinition()
	fallback.Start = simtime.FromTime(time.Now().UTC().Truncate(time.Second))
	def, err := config.LoadDefinition(ctx, *systemFile, *bodiesDB, fallback)
	if err != nil {
		return err
	}
	t := def.Start
	if *at != "" {
		if t, err = config.ParseSimTime(*at); err != nil {
			return fmt.Errorf("-time: %w", err)
		}
	}

	store := kb.NewKnowledgeBase()
	if err := store.Load(def); err != nil {
		return err
	}
	snap, err := store.Snapshot()
	if err != nil {
		return err
	}
	anchor, ok := snap.Resolver.Anchor(*world)
	if !ok {
		return fmt.Errorf("unknown world %q (have %v)", *world, snap.Resolver.Worlds())
	}
	env := snap.Environments[*world]

	ref := anchor.Surface.ReferenceRadius()
	c := coord.Geographic{LatDegrees: *lat, LonDegrees: *lon, ElevationM: *elev}.Coord(ref)

	frame, err := snap.Resolver.LocalTangentFrame(*world, c, t)
	if err != nil {
		return err
	}
	alt, err := snap.Resolver.Altitude(*world, c)
	if err != nil {
		return err
	}
	light, err := physics.Illumination(snap.Resolver, *world, c, t, *source)
	if err != nil {
		return err
	}
	sample, err := env.Sample(c, t)
	if err != nil {
		return err
	}

	point, err := c.GeoPoint(ref)
	if err != nil {
		return err
	}
	x, y := c.WebMercator()
	res := Result{
		World: *world,
		Time:  t,
		UTC:   t.RFC3339(),
		Date:  t.SimDate(),
		Location: locationJSON{
			Coord:       c,
			Geographic:  c.Geographic(ref),
			Altitude:    alt,
			Radius:      humanize.SIWithDigits(c.RadiusMetres(), 6, "m"),
			WKT:         point.AsText(),
			WebMercator: [2]float64{x, y},
		},
		Frame:  frameJSON{East: frame.East, North: frame.North, Up: frame.Up},
		Light:  light,
		Sample: sample,
	}
	for _, k := range env.Kinds() {
		res.Fields = append(res.Fields, k.String())
	}

	if *tideSource != "" && *tideSource != anchor.Body {
		tide, err := physics.Tide(snap.Resolver, *world, c, t, *tideSource)
		if err != nil {
			return err
		}
		res.Tide = &tide
	}
	if *occluder != "" && *occluder != *source && *occluder != anchor.Body {
		view, err := physics.Eclipse(snap.Resolver, *world, c, t, *source, *occluder)
		if err != nil {
			return err
		}
		res.Eclipse = &view
	}
	if *profileTop > 0 {
		profile, err := sweep.Altitudes(ctx, env, c, t, alt, *profileTop, *profileStep)
		if err != nil {
			return err
		}
		res.Profile = profile
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
