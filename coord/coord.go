// Package coord implements the fixed-point spherical coordinate identity
// shared by every frame and field computation.
//
// A Coord is three signed 64-bit integers: a radius from the reference
// centre in micrometres and two angle codes. Angle codes are degrees scaled
// by UnitsPerDegree. Integer storage lets motion be integrated over very
// long simulated spans without floating point drift.
package coord

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// UnitsPerDegree is the single angular scale used by every angle code.
	UnitsPerDegree = int64(1_000_000_000)
	// FullCircle is 360 degrees in angle codes; longitude wraps at this modulus.
	FullCircle = 360 * UnitsPerDegree
	// HalfCircle is 180 degrees in angle codes.
	HalfCircle = 180 * UnitsPerDegree
	// QuarterCircle is 90 degrees in angle codes.
	QuarterCircle = 90 * UnitsPerDegree

	// MicrosPerMetre converts radius units to metres.
	MicrosPerMetre = int64(1_000_000)
)

// Coord is an immutable position identity in a spherical frame.
// Radius is in micrometres and never negative for valid values. Radius 0 is
// the origin and has no surface normal.
type Coord struct {
	Radius int64
	Lat    int64
	Lon    int64
}

// Delta is a displacement with the same shape as Coord.
type Delta struct {
	Radius int64
	Lat    int64
	Lon    int64
}

// New builds a Coord from raw integers, wrapping the longitude.
func New(radius, lat, lon int64) Coord {
	return Coord{Radius: radius, Lat: lat, Lon: wrapLon(lon)}
}

// DegreesToUnits converts degrees to angle codes, rounding to nearest.
func DegreesToUnits(deg float64) int64 {
	return int64(math.Round(deg * float64(UnitsPerDegree)))
}

// UnitsToDegrees converts angle codes to degrees.
func UnitsToDegrees(u int64) float64 {
	return float64(u) / float64(UnitsPerDegree)
}

// UnitsToRadians converts angle codes to radians.
func UnitsToRadians(u int64) float64 {
	return UnitsToDegrees(u) * math.Pi / 180
}

// MetresToMicros converts metres to radius units, rounding to nearest.
func MetresToMicros(m float64) int64 {
	return int64(math.Round(m * float64(MicrosPerMetre)))
}

// IsOrigin reports whether c is the degenerate zero-radius value.
func (c Coord) IsOrigin() bool { return c.Radius == 0 }

// RadiusMetres returns the radius in metres.
func (c Coord) RadiusMetres() float64 {
	return float64(c.Radius) / float64(MicrosPerMetre)
}

// LatRadians returns the latitude in radians.
func (c Coord) LatRadians() float64 { return UnitsToRadians(c.Lat) }

// LonRadians returns the longitude in radians.
func (c Coord) LonRadians() float64 { return UnitsToRadians(c.Lon) }

// Apply returns c displaced by d. Components add; longitude wraps into
// [-180°, 180°).
func (c Coord) Apply(d Delta) Coord {
	return Coord{
		Radius: c.Radius + d.Radius,
		Lat:    c.Lat + d.Lat,
		Lon:    wrapLon(c.Lon + d.Lon),
	}
}

// DeltaTo returns the displacement that takes c to other, with the
// longitude component taken the short way round.
func (c Coord) DeltaTo(other Coord) Delta {
	return Delta{
		Radius: other.Radius - c.Radius,
		Lat:    other.Lat - c.Lat,
		Lon:    wrapLon(other.Lon - c.Lon),
	}
}

// Add returns the component-wise sum of two deltas.
func (d Delta) Add(o Delta) Delta {
	return Delta{Radius: d.Radius + o.Radius, Lat: d.Lat + o.Lat, Lon: d.Lon + o.Lon}
}

// Scale multiplies every component by n, e.g. to integrate a per-step rate
// over n steps.
func (d Delta) Scale(n int64) Delta {
	return Delta{Radius: d.Radius * n, Lat: d.Lat * n, Lon: d.Lon * n}
}

// IsZero reports whether d moves nothing.
func (d Delta) IsZero() bool { return d == Delta{} }

// UnitNormal returns the unit direction of c on the unit sphere. It is
// defined for every angle pair; callers that need a surface normal must
// reject origin values themselves.
func (c Coord) UnitNormal() mgl64.Vec3 {
	return sphericalUnit(c.LatRadians(), c.LonRadians())
}

// Cartesian converts c to a Cartesian vector in metres.
func (c Coord) Cartesian() mgl64.Vec3 {
	return c.UnitNormal().Mul(c.RadiusMetres())
}

// FromCartesian converts a vector in metres to a Coord. The zero vector
// maps to the origin value.
func FromCartesian(v mgl64.Vec3) Coord {
	r := v.Len()
	if r == 0 {
		return Coord{}
	}
	lat := math.Asin(clamp(v.Z()/r, -1, 1))
	lon := math.Atan2(v.Y(), v.X())
	return New(
		MetresToMicros(r),
		DegreesToUnits(lat*180/math.Pi),
		DegreesToUnits(lon*180/math.Pi),
	)
}

// ApproxDistance returns a cheap distance estimate in metres for coarse
// range checks. It combines the radial difference with an equirectangular
// angular separation scaled by the mean radius. It is not a great-circle
// distance and loses accuracy over long baselines and near the poles.
func (c Coord) ApproxDistance(other Coord) float64 {
	dr := other.RadiusMetres() - c.RadiusMetres()
	meanR := (other.RadiusMetres() + c.RadiusMetres()) / 2
	dLat := UnitsToRadians(other.Lat - c.Lat)
	meanLat := UnitsToRadians(c.Lat+other.Lat) / 2
	dLon := UnitsToRadians(wrapLon(other.Lon-c.Lon)) * math.Cos(meanLat)
	arc := math.Sqrt(dLat*dLat+dLon*dLon) * meanR
	return math.Sqrt(dr*dr + arc*arc)
}

func sphericalUnit(lat, lon float64) mgl64.Vec3 {
	cosLat := math.Cos(lat)
	return mgl64.Vec3{
		cosLat * math.Cos(lon),
		cosLat * math.Sin(lon),
		math.Sin(lat),
	}
}

// wrapLon maps a longitude code into [-HalfCircle, HalfCircle).
func wrapLon(lon int64) int64 {
	lon = (lon + HalfCircle) % FullCircle
	if lon < 0 {
		lon += FullCircle
	}
	return lon - HalfCircle
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
