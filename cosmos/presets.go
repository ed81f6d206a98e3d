package cosmos

import (
	"math"

	"github.com/signalsfoundry/omnivox/simtime"
)

// Body ids of the bundled Sun-Earth-Moon configuration.
const (
	SunID   = "sun"
	EarthID = "earth"
	MoonID  = "moon"
)

// Durations used by the bundled configuration.
var (
	// EarthSiderealDay is 86164.0905 s.
	EarthSiderealDay = simtime.Nanoseconds(86_164_090_500_000)
	// LunarSiderealMonth is 27.321661 days.
	LunarSiderealMonth = simtime.Nanoseconds(2_360_591_510_400_000)
)

func deg(d float64) float64 { return d * math.Pi / 180 }

// SolarSystem returns the Sun, Earth and Moon with rounded physical values
// and circular orbits. The Earth orbits once per synthetic year.
func SolarSystem() []Body {
	return []Body{
		{
			ID:         SunID,
			Name:       "Sun",
			Mass:       1.98847e30,
			Radius:     6.957e8,
			Luminosity: 3.828e26,
			Rotation:   Rotation{Period: simtime.Days(25).Add(simtime.Hours(9))},
		},
		{
			ID:       EarthID,
			Name:     "Earth",
			Mass:     5.9722e24,
			Radius:   6.371e6,
			Rotation: Rotation{Period: EarthSiderealDay},
			Tilt:     Tilt{Magnitude: deg(23.44)},
			Orbit: &Orbit{
				Parent:        SunID,
				SemiMajorAxis: AU,
				Period:        simtime.Years(1),
			},
		},
		{
			ID:       MoonID,
			Name:     "Moon",
			Mass:     7.342e22,
			Radius:   1.7374e6,
			Rotation: Rotation{Period: LunarSiderealMonth},
			Tilt:     Tilt{Magnitude: deg(6.68)},
			Orbit: &Orbit{
				Parent:        EarthID,
				SemiMajorAxis: 3.844e8,
				Period:        LunarSiderealMonth,
				Inclination:   deg(5.145),
			},
		},
	}
}
