// Package cosmos resolves the pose of celestial bodies at any simulated
// time from parent-relative orbital elements.
//
// Motion is deliberately simple: circular orbits on inclined planes and
// uniform spin about a tilted axis. That is enough for lighting, tides and
// visualisation; it is not an ephemeris.
package cosmos

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/omnivox/simtime"
)

// Physical constants.
const (
	// G is the gravitational constant in m³ kg⁻¹ s⁻².
	G = 6.67430e-11
	// AU is the astronomical unit in metres.
	AU = 149_597_870_700.0
)

var (
	// PolarAxis is the body-local spin axis.
	PolarAxis = mgl64.Vec3{0, 0, 1}
	xAxis     = mgl64.Vec3{1, 0, 0}
)

// Rotation describes uniform spin about the body's polar axis.
type Rotation struct {
	// Period is the sidereal rotation period. Zero means no spin.
	Period simtime.SimDuration
	// PhaseAtEpoch is the spin angle at the epoch, radians.
	PhaseAtEpoch float64
}

// Tilt describes the axial tilt: the polar axis is rotated by Magnitude
// about a horizontal axis lying at angle Orientation from +X.
type Tilt struct {
	Magnitude   float64
	Orientation float64
}

// Orbit places a body on a circular orbit around a parent.
type Orbit struct {
	Parent        string
	SemiMajorAxis float64 // metres
	Period        simtime.SimDuration
	Inclination   float64 // radians, about +X
	PhaseAtEpoch  float64 // radians
	AscendingNode float64 // radians, about +Z
}

// Body is the static description of one celestial body. Zero Mass or
// Luminosity means the property is not modelled.
type Body struct {
	ID         string
	Name       string
	Mass       float64 // kg
	Radius     float64 // m
	Luminosity float64 // W
	Rotation   Rotation
	Tilt       Tilt
	// Orbit is nil for root bodies, which sit at the origin.
	Orbit *Orbit
}

// IsRoot reports whether b has no orbit.
func (b Body) IsRoot() bool { return b.Orbit == nil }

// IsLuminous reports whether b radiates.
func (b Body) IsLuminous() bool { return b.Luminosity > 0 }

// SpinAngle returns the rotation angle at t, radians.
func (b Body) SpinAngle(t simtime.SimTime) float64 {
	return b.Rotation.PhaseAtEpoch + 2*math.Pi*t.Fraction(b.Rotation.Period)
}

// TiltQuat returns the rotation taking the body-local polar axis to its
// inertial spin axis.
func (b Body) TiltQuat() mgl64.Quat {
	if b.Tilt.Magnitude == 0 {
		return mgl64.QuatIdent()
	}
	axis := mgl64.Vec3{math.Cos(b.Tilt.Orientation), math.Sin(b.Tilt.Orientation), 0}
	return mgl64.QuatRotate(b.Tilt.Magnitude, axis)
}

// Orientation returns the body-to-inertial rotation at t: spin about the
// local polar axis followed by the axial tilt.
func (b Body) Orientation(t simtime.SimTime) mgl64.Quat {
	spin := mgl64.QuatRotate(b.SpinAngle(t), PolarAxis)
	return b.TiltQuat().Mul(spin).Normalize()
}

// Angle returns the orbital angle at t, radians.
func (o Orbit) Angle(t simtime.SimTime) float64 {
	return o.PhaseAtEpoch + 2*math.Pi*t.Fraction(o.Period)
}

// Offset returns the position relative to the parent at t, metres.
func (o Orbit) Offset(t simtime.SimTime) mgl64.Vec3 {
	theta := o.Angle(t)
	inPlane := mgl64.Vec3{
		o.SemiMajorAxis * math.Cos(theta),
		o.SemiMajorAxis * math.Sin(theta),
		0,
	}
	return o.planeQuat().Rotate(inPlane)
}

// Normal returns the orbit plane normal.
func (o Orbit) Normal() mgl64.Vec3 {
	return o.planeQuat().Rotate(PolarAxis)
}

func (o Orbit) planeQuat() mgl64.Quat {
	incl := mgl64.QuatRotate(o.Inclination, xAxis)
	node := mgl64.QuatRotate(o.AscendingNode, PolarAxis)
	return node.Mul(incl)
}

// Pose is a body's inertial position (metres) and orientation at one
// instant.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// SpinAxis returns the inertial direction of the body's polar axis.
func (p Pose) SpinAxis() mgl64.Vec3 {
	return p.Orientation.Rotate(PolarAxis)
}

// ToInertial maps a body-fixed vector into the inertial frame (rotation
// only, no translation).
func (p Pose) ToInertial(v mgl64.Vec3) mgl64.Vec3 {
	return p.Orientation.Rotate(v)
}
