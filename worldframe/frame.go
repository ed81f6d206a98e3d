package worldframe

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is an East-North-Up orthonormal basis anchored at Origin. All
// vectors are in the inertial frame.
type Frame struct {
	Origin mgl64.Vec3
	East   mgl64.Vec3
	North  mgl64.Vec3
	Up     mgl64.Vec3
}

// ENU holds the components of a vector along a frame's axes.
type ENU struct {
	East  float64 `json:"east"`
	North float64 `json:"north"`
	Up    float64 `json:"up"`
}

// Horizontal is a direction expressed as azimuth (from north toward east,
// [0, 2π)) and elevation above the local horizon, both in radians.
type Horizontal struct {
	Azimuth   float64
	Elevation float64
	// Magnitude is the length of the projected vector, in its own units.
	Magnitude float64
}

// AzimuthDeg returns the azimuth in degrees.
func (h Horizontal) AzimuthDeg() float64 { return h.Azimuth * 180 / math.Pi }

// ElevationDeg returns the elevation in degrees.
func (h Horizontal) ElevationDeg() float64 { return h.Elevation * 180 / math.Pi }

// Project returns the components of v along east, north and up.
func (f Frame) Project(v mgl64.Vec3) ENU {
	return ENU{East: v.Dot(f.East), North: v.Dot(f.North), Up: v.Dot(f.Up)}
}

// ToInertial maps local components back to an inertial vector.
func (f Frame) ToInertial(e ENU) mgl64.Vec3 {
	return f.East.Mul(e.East).Add(f.North.Mul(e.North)).Add(f.Up.Mul(e.Up))
}

// Horizontal expresses the direction of v in azimuth and elevation. A zero
// vector has no direction and yields ErrSingularity.
func (f Frame) Horizontal(v mgl64.Vec3) (Horizontal, error) {
	mag := v.Len()
	if mag == 0 {
		return Horizontal{}, fmt.Errorf("horizontal of zero vector: %w", ErrSingularity)
	}
	e := f.Project(v.Mul(1 / mag))
	az := math.Atan2(e.East, e.North)
	if az < 0 {
		az += 2 * math.Pi
	}
	return Horizontal{
		Azimuth:   az,
		Elevation: math.Asin(math.Max(-1, math.Min(1, e.Up))),
		Magnitude: mag,
	}, nil
}

// LookAt returns the horizontal direction from the frame origin to an
// inertial point; Magnitude is the range in metres.
func (f Frame) LookAt(target mgl64.Vec3) (Horizontal, error) {
	return f.Horizontal(target.Sub(f.Origin))
}
