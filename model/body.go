package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
)

// ErrInvalidDefinition is returned for definitions that cannot be turned
// into runtime types.
var ErrInvalidDefinition = errors.New("invalid definition")

// BodyDefinition is the serializable form of a celestial body. Angles are
// in degrees and periods in seconds.
type BodyDefinition struct {
	ID              string           `json:"id" mapstructure:"id"`
	Name            string           `json:"name,omitempty" mapstructure:"name"`
	Mass            float64          `json:"mass_kg,omitempty" mapstructure:"mass_kg"`
	Radius          float64          `json:"radius_m,omitempty" mapstructure:"radius_m"`
	Luminosity      float64          `json:"luminosity_w,omitempty" mapstructure:"luminosity_w"`
	RotationPeriod  float64          `json:"rotation_period_s,omitempty" mapstructure:"rotation_period_s"`
	RotationPhase   float64          `json:"rotation_phase_deg,omitempty" mapstructure:"rotation_phase_deg"`
	TiltMagnitude   float64          `json:"tilt_deg,omitempty" mapstructure:"tilt_deg"`
	TiltOrientation float64          `json:"tilt_orientation_deg,omitempty" mapstructure:"tilt_orientation_deg"`
	Orbit           *OrbitDefinition `json:"orbit,omitempty" mapstructure:"orbit"`
}

// OrbitDefinition is the serializable form of a circular orbit.
type OrbitDefinition struct {
	Parent        string  `json:"parent" mapstructure:"parent"`
	SemiMajorAxis float64 `json:"semi_major_axis_m" mapstructure:"semi_major_axis_m"`
	Period        float64 `json:"period_s" mapstructure:"period_s"`
	Inclination   float64 `json:"inclination_deg,omitempty" mapstructure:"inclination_deg"`
	Phase         float64 `json:"phase_deg,omitempty" mapstructure:"phase_deg"`
	AscendingNode float64 `json:"ascending_node_deg,omitempty" mapstructure:"ascending_node_deg"`
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// maxPeriodSeconds keeps the whole-second part inside an int64.
const maxPeriodSeconds = 9e18

// DurationFromSeconds rounds a period in seconds to whole nanoseconds.
// Periods longer than int64 nanoseconds are kept exact to the second.
func DurationFromSeconds(s float64) (simtime.SimDuration, error) {
	if math.IsNaN(s) || math.Abs(s) >= maxPeriodSeconds {
		return simtime.SimDuration{}, fmt.Errorf("%w: period %v s out of range", ErrInvalidDefinition, s)
	}
	whole := math.Floor(s)
	frac := math.Round((s - whole) * float64(simtime.NanosPerSecond))
	return simtime.Seconds(int64(whole)).Add(simtime.Nanoseconds(int64(frac))), nil
}

// Body converts the definition into a cosmos.Body. Structural checks
// across bodies are left to cosmos.NewSystem.
func (d BodyDefinition) Body() (cosmos.Body, error) {
	if d.ID == "" {
		return cosmos.Body{}, fmt.Errorf("%w: body without id", ErrInvalidDefinition)
	}
	rot, err := DurationFromSeconds(d.RotationPeriod)
	if err != nil {
		return cosmos.Body{}, fmt.Errorf("body %q rotation: %w", d.ID, err)
	}
	b := cosmos.Body{
		ID:         d.ID,
		Name:       d.Name,
		Mass:       d.Mass,
		Radius:     d.Radius,
		Luminosity: d.Luminosity,
		Rotation:   cosmos.Rotation{Period: rot, PhaseAtEpoch: radians(d.RotationPhase)},
		Tilt:       cosmos.Tilt{Magnitude: radians(d.TiltMagnitude), Orientation: radians(d.TiltOrientation)},
	}
	if o := d.Orbit; o != nil {
		period, err := DurationFromSeconds(o.Period)
		if err != nil {
			return cosmos.Body{}, fmt.Errorf("body %q orbit: %w", d.ID, err)
		}
		b.Orbit = &cosmos.Orbit{
			Parent:        o.Parent,
			SemiMajorAxis: o.SemiMajorAxis,
			Period:        period,
			Inclination:   radians(o.Inclination),
			PhaseAtEpoch:  radians(o.Phase),
			AscendingNode: radians(o.AscendingNode),
		}
	}
	return b, nil
}

// DefinitionFromBody is the inverse of BodyDefinition.Body, used to export
// built-in presets.
func DefinitionFromBody(b cosmos.Body) BodyDefinition {
	d := BodyDefinition{
		ID:              b.ID,
		Name:            b.Name,
		Mass:            b.Mass,
		Radius:          b.Radius,
		Luminosity:      b.Luminosity,
		RotationPeriod:  b.Rotation.Period.Seconds(),
		RotationPhase:   degrees(b.Rotation.PhaseAtEpoch),
		TiltMagnitude:   degrees(b.Tilt.Magnitude),
		TiltOrientation: degrees(b.Tilt.Orientation),
	}
	if o := b.Orbit; o != nil {
		d.Orbit = &OrbitDefinition{
			Parent:        o.Parent,
			SemiMajorAxis: o.SemiMajorAxis,
			Period:        o.Period.Seconds(),
			Inclination:   degrees(o.Inclination),
			Phase:         degrees(o.PhaseAtEpoch),
			AscendingNode: degrees(o.AscendingNode),
		}
	}
	return d
}
