package physics

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/sweep"
	"github.com/signalsfoundry/omnivox/worldframe"
)

// EclipseState classifies how much of a source disc an occluder covers.
type EclipseState int

const (
	EclipseNone EclipseState = iota
	EclipsePartial
	// EclipseAnnular: the occluder lies wholly inside a larger source disc.
	EclipseAnnular
	EclipseTotal
)

func (s EclipseState) String() string {
	switch s {
	case EclipseNone:
		return "none"
	case EclipsePartial:
		return "partial"
	case EclipseAnnular:
		return "annular"
	case EclipseTotal:
		return "total"
	default:
		return fmt.Sprintf("EclipseState(%d)", int(s))
	}
}

func (s EclipseState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *EclipseState) UnmarshalText(b []byte) error {
	for _, v := range []EclipseState{EclipseNone, EclipsePartial, EclipseAnnular, EclipseTotal} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown eclipse state %q", b)
}

// EclipseView is the apparent geometry of a source and an occluder seen
// from one point. Angles are in degrees.
type EclipseView struct {
	State          EclipseState `json:"state"`
	SourceRadius   float64      `json:"source_radius_deg"`
	OccluderRadius float64      `json:"occluder_radius_deg"`
	Separation     float64      `json:"separation_deg"`
	// Magnitude is the fraction of the source diameter covered, [0, 1].
	Magnitude float64 `json:"magnitude"`
}

// Eclipse reports whether occluder hides source as seen from c on world at
// t.
func Eclipse(r *worldframe.Resolver, world string, c coord.Coord, t simtime.SimTime, source, occluder string) (EclipseView, error) {
	if source == occluder {
		return EclipseView{}, fmt.Errorf("eclipse of %q: %w", source, ErrSameBody)
	}
	sys := r.System()
	src, err := lookupBody(sys, source)
	if err != nil {
		return EclipseView{}, err
	}
	occ, err := lookupBody(sys, occluder)
	if err != nil {
		return EclipseView{}, err
	}
	p, err := r.AnchorPoint(world, c, t)
	if err != nil {
		return EclipseView{}, err
	}
	srcPos, err := sys.Position(source, t)
	if err != nil {
		return EclipseView{}, err
	}
	occPos, err := sys.Position(occluder, t)
	if err != nil {
		return EclipseView{}, err
	}

	ds, do := srcPos.Sub(p), occPos.Sub(p)
	dsLen, doLen := ds.Len(), do.Len()
	if dsLen == 0 || doLen == 0 {
		return EclipseView{}, fmt.Errorf("eclipse seen from a body centre: %w", worldframe.ErrSingularity)
	}
	rs := angularRadius(src.Radius, dsLen)
	ro := angularRadius(occ.Radius, doLen)
	sep := math.Atan2(ds.Cross(do).Len(), ds.Dot(do))

	v := EclipseView{
		SourceRadius:   rs * 180 / math.Pi,
		OccluderRadius: ro * 180 / math.Pi,
		Separation:     sep * 180 / math.Pi,
	}
	if doLen >= dsLen || sep >= rs+ro || rs == 0 {
		return v, nil
	}
	switch {
	case sep <= ro-rs:
		v.State = EclipseTotal
	case sep <= rs-ro:
		v.State = EclipseAnnular
	default:
		v.State = EclipsePartial
	}
	v.Magnitude = math.Min(1, (rs+ro-sep)/(2*rs))
	return v, nil
}

func angularRadius(radius, dist float64) float64 {
	if radius <= 0 {
		return 0
	}
	return math.Asin(math.Min(1, radius/dist))
}

// EclipseEvent marks the start of an eclipse state.
type EclipseEvent struct {
	Time      simtime.SimTime `json:"time"`
	State     EclipseState    `json:"state"`
	Magnitude float64         `json:"magnitude"`
}

// EclipseTimeline scans from start to end in increments of step and
// returns the state at start followed by every change of state. A change
// is timestamped at the first step that observes it.
func EclipseTimeline(ctx context.Context, r *worldframe.Resolver, world string, c coord.Coord, source, occluder string, start, end simtime.SimTime, step simtime.SimDuration) ([]EclipseEvent, error) {
	times, err := sweep.Times(start, end, step)
	if err != nil {
		return nil, err
	}
	views, err := sweep.Run(ctx, len(times), 0, func(_ context.Context, i int) (EclipseView, error) {
		return Eclipse(r, world, c, times[i], source, occluder)
	})
	if err != nil {
		return nil, fmt.Errorf("eclipse timeline on %q: %w", world, err)
	}
	var events []EclipseEvent
	for i, v := range views {
		if i == 0 || v.State != views[i-1].State {
			events = append(events, EclipseEvent{Time: times[i], State: v.State, Magnitude: v.Magnitude})
		}
	}
	return events, nil
}
