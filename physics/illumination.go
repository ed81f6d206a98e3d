// Package physics answers higher-level questions about a point on a world:
// how it is lit, what tides it feels, whether an eclipse is under way and
// where an artificial satellite appears in its sky. Everything here is a
// pure consumer of the world frame resolver.
package physics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/sweep"
	"github.com/signalsfoundry/omnivox/worldframe"
)

// ErrSameBody is returned when a query needs two distinct bodies.
var ErrSameBody = errors.New("source and occluder are the same body")

// Light describes a luminous body as seen from a surface point.
type Light struct {
	Azimuth   float64 `json:"azimuth_deg"`
	Elevation float64 `json:"elevation_deg"`
	Distance  float64 `json:"distance_m"`
	// Irradiance is the direct normal flux, zero when the anchor body is in
	// the way.
	Irradiance float64 `json:"irradiance_w_m2"`
	// Horizontal is the flux falling on a level surface.
	Horizontal float64 `json:"horizontal_irradiance_w_m2"`
	Daylight   bool    `json:"daylight"`
	Occluded   bool    `json:"occluded"`
}

func lookupBody(sys *cosmos.System, id string) (cosmos.Body, error) {
	b, ok := sys.Body(id)
	if !ok {
		return cosmos.Body{}, fmt.Errorf("body %q: %w", id, cosmos.ErrUnknownBody)
	}
	return b, nil
}

// Illumination returns how the source body lights c on world at t.
func Illumination(r *worldframe.Resolver, world string, c coord.Coord, t simtime.SimTime, source string) (Light, error) {
	sys := r.System()
	src, err := lookupBody(sys, source)
	if err != nil {
		return Light{}, err
	}
	frame, err := r.LocalTangentFrame(world, c, t)
	if err != nil {
		return Light{}, err
	}
	pose, anchor, err := r.BodyPose(world, t)
	if err != nil {
		return Light{}, err
	}
	body, err := lookupBody(sys, anchor.Body)
	if err != nil {
		return Light{}, err
	}
	srcPos, err := sys.Position(source, t)
	if err != nil {
		return Light{}, err
	}
	h, err := frame.LookAt(srcPos)
	if err != nil {
		return Light{}, fmt.Errorf("illumination by %q: %w", source, err)
	}

	l := Light{
		Azimuth:   h.AzimuthDeg(),
		Elevation: h.ElevationDeg(),
		Distance:  h.Magnitude,
	}
	if anchor.Body != source && body.Occluded(pose, frame.Origin, srcPos) {
		l.Occluded = true
		return l, nil
	}
	l.Daylight = true
	l.Irradiance = cosmos.PairFlux(frame.Origin, srcPos, src.Luminosity)
	l.Horizontal = l.Irradiance * math.Max(0, math.Sin(h.Elevation))
	return l, nil
}

// InsolationPoint is one step of an insolation curve.
type InsolationPoint struct {
	Time       simtime.SimTime `json:"time"`
	Elevation  float64         `json:"elevation_deg"`
	Horizontal float64         `json:"horizontal_irradiance_w_m2"`
}

// InsolationSeries is an insolation curve in time order.
type InsolationSeries []InsolationPoint

// Energy integrates the series with the trapezoid rule, J/m².
func (s InsolationSeries) Energy() float64 {
	var e float64
	for i := 1; i < len(s); i++ {
		dt := s[i].Time.Sub(s[i-1].Time).Seconds()
		e += 0.5 * (s[i].Horizontal + s[i-1].Horizontal) * dt
	}
	return e
}

// Peak returns the point of maximum horizontal irradiance.
func (s InsolationSeries) Peak() (InsolationPoint, bool) {
	if len(s) == 0 {
		return InsolationPoint{}, false
	}
	best := s[0]
	for _, p := range s[1:] {
		if p.Horizontal > best.Horizontal {
			best = p
		}
	}
	return best, true
}

// InsolationCurve samples the horizontal irradiance at c from start to end
// in increments of step.
func InsolationCurve(ctx context.Context, r *worldframe.Resolver, world string, c coord.Coord, source string, start, end simtime.SimTime, step simtime.SimDuration) (InsolationSeries, error) {
	times, err := sweep.Times(start, end, step)
	if err != nil {
		return nil, err
	}
	points, err := sweep.Run(ctx, len(times), 0, func(_ context.Context, i int) (InsolationPoint, error) {
		l, err := Illumination(r, world, c, times[i], source)
		if err != nil {
			return InsolationPoint{}, err
		}
		return InsolationPoint{Time: times[i], Elevation: l.Elevation, Horizontal: l.Horizontal}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("insolation on %q: %w", world, err)
	}
	return InsolationSeries(points), nil
}
