package field

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/omnivox/worldframe"
)

// ErrInvalidDescriptor is returned when a descriptor names an unknown model
// or carries a physically meaningless parameter.
var ErrInvalidDescriptor = errors.New("invalid field descriptor")

// Gravity model names.
const (
	GravityConstant      = "constant"
	GravityInverseSquare = "inverse_square"
	// GravityBody derives surface gravity from the anchor body's mass.
	GravityBody = "body"
)

// Descriptor is the declarative configuration of a world's environment.
// Optional sections left nil are not built.
type Descriptor struct {
	Space       SpaceDescriptor        `json:"space" mapstructure:"space"`
	Gravity     *GravityDescriptor     `json:"gravity,omitempty" mapstructure:"gravity"`
	Medium      string                 `json:"medium,omitempty" mapstructure:"medium"`
	Atmosphere  *AtmosphereDescriptor  `json:"atmosphere,omitempty" mapstructure:"atmosphere"`
	Temperature *TemperatureDescriptor `json:"temperature,omitempty" mapstructure:"temperature"`
	Land        *LandDescriptor        `json:"land,omitempty" mapstructure:"land"`
	Radiation   *RadiationDescriptor   `json:"radiation,omitempty" mapstructure:"radiation"`
}

// SpaceDescriptor selects the reference surface altitudes are measured
// from. An empty Kind defers to the world's anchor.
type SpaceDescriptor struct {
	Kind          string  `json:"kind,omitempty" mapstructure:"kind"`
	SurfaceRadius float64 `json:"surface_radius_m,omitempty" mapstructure:"surface_radius_m"`
	Elevation     float64 `json:"elevation_m,omitempty" mapstructure:"elevation_m"`
}

type GravityDescriptor struct {
	Model    string  `json:"model" mapstructure:"model"`
	Strength float64 `json:"strength" mapstructure:"strength"` // m/s² at the surface
}

// AtmosphereDescriptor is an isothermal exponential atmosphere.
type AtmosphereDescriptor struct {
	SeaLevelDensity float64 `json:"sea_level_density" mapstructure:"sea_level_density"` // kg/m³
	ScaleHeight     float64 `json:"scale_height_m" mapstructure:"scale_height_m"`
	// MaxHeight caps the atmosphere; zero means unbounded.
	MaxHeight float64 `json:"max_height_m,omitempty" mapstructure:"max_height_m"`
	Wind      float64 `json:"wind_m_s,omitempty" mapstructure:"wind_m_s"`
}

type TemperatureDescriptor struct {
	SurfaceTemp float64 `json:"surface_temp_k" mapstructure:"surface_temp_k"`
	LapseRate   float64 `json:"lapse_rate_k_per_m" mapstructure:"lapse_rate_k_per_m"`
}

// LandDescriptor is a uniform ground level with an optional sea.
type LandDescriptor struct {
	Height   float64  `json:"height_m" mapstructure:"height_m"`
	SeaLevel *float64 `json:"sea_level_m,omitempty" mapstructure:"sea_level_m"`
}

type RadiationDescriptor struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// Surface converts the space section into a reference surface. ok is false
// when the section is empty and the anchor's surface should be used.
func (s SpaceDescriptor) Surface() (surface worldframe.Surface, ok bool, err error) {
	switch s.Kind {
	case "":
		return worldframe.Surface{}, false, nil
	case "spherical":
		if !(s.SurfaceRadius > 0) {
			return worldframe.Surface{}, false, fmt.Errorf("%w: spherical space needs a positive surface radius", ErrInvalidDescriptor)
		}
		return worldframe.Spherical(s.SurfaceRadius), true, nil
	case "plane":
		return worldframe.Plane(s.Elevation), true, nil
	default:
		return worldframe.Surface{}, false, fmt.Errorf("%w: unknown space kind %q", ErrInvalidDescriptor, s.Kind)
	}
}

// Validate checks model names and parameter ranges without building.
func (d Descriptor) Validate() error {
	if _, _, err := d.Space.Surface(); err != nil {
		return err
	}
	if _, err := ParseMedium(d.Medium); err != nil {
		return err
	}
	if g := d.Gravity; g != nil {
		switch g.Model {
		case GravityConstant, GravityInverseSquare, GravityBody:
		default:
			return fmt.Errorf("%w: unknown gravity model %q", ErrInvalidDescriptor, g.Model)
		}
		if g.Model != GravityBody && (g.Strength < 0 || !finite(g.Strength)) {
			return fmt.Errorf("%w: gravity strength %v", ErrInvalidDescriptor, g.Strength)
		}
	}
	if a := d.Atmosphere; a != nil {
		if !(a.ScaleHeight > 0) || !finite(a.ScaleHeight) {
			return fmt.Errorf("%w: atmosphere scale height %v", ErrInvalidDescriptor, a.ScaleHeight)
		}
		if a.SeaLevelDensity < 0 || a.MaxHeight < 0 {
			return fmt.Errorf("%w: negative atmosphere parameter", ErrInvalidDescriptor)
		}
	}
	if tp := d.Temperature; tp != nil && tp.SurfaceTemp < 0 {
		return fmt.Errorf("%w: surface temperature %v K", ErrInvalidDescriptor, tp.SurfaceTemp)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
