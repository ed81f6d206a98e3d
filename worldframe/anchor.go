// Package worldframe resolves coordinate identities on a world into
// absolute inertial positions and local East-North-Up frames.
//
// A world is bound to exactly one celestial body by an Anchor. The angular
// part of a coordinate is projected onto the anchor body's rotated frame
// and the coordinate radius is measured from the body centre.
package worldframe

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/omnivox/coord"
)

var (
	// ErrSingularity is returned where a direction is undefined: at the
	// coordinate origin, exactly at a pole, or for a zero vector.
	ErrSingularity = errors.New("singularity")
	// ErrUnknownWorld is returned for worlds without an anchor.
	ErrUnknownWorld = errors.New("unknown world")
	// ErrDuplicateAnchor is returned when a world is anchored twice.
	ErrDuplicateAnchor = errors.New("world already anchored")
)

// AnchorError reports a failure to anchor a world to its body.
type AnchorError struct {
	World string
	Body  string
	Err   error
}

func (e *AnchorError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("anchor world %q to body %q: %v", e.World, e.Body, e.Err)
	}
	return fmt.Sprintf("anchor world %q: %v", e.World, e.Err)
}

func (e *AnchorError) Unwrap() error { return e.Err }

// SurfaceKind selects how altitude is measured on a world.
type SurfaceKind int

const (
	// SurfaceSpherical measures altitude from a sphere of Radius metres.
	SurfaceSpherical SurfaceKind = iota
	// SurfacePlane measures altitude from a flat datum at Elevation metres;
	// the coordinate radius is read as a height.
	SurfacePlane
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceSpherical:
		return "spherical"
	case SurfacePlane:
		return "plane"
	default:
		return fmt.Sprintf("SurfaceKind(%d)", int(k))
	}
}

// Surface is a world's reference surface model.
type Surface struct {
	Kind      SurfaceKind
	Radius    float64 // metres, spherical surfaces
	Elevation float64 // metres, plane surfaces
}

// Spherical returns a spherical surface of radius r metres.
func Spherical(r float64) Surface { return Surface{Kind: SurfaceSpherical, Radius: r} }

// Plane returns a flat surface at the given elevation in metres.
func Plane(elevation float64) Surface { return Surface{Kind: SurfacePlane, Elevation: elevation} }

// Altitude returns the height of c above the surface, metres.
func (s Surface) Altitude(c coord.Coord) float64 {
	if s.Kind == SurfacePlane {
		return c.RadiusMetres() - s.Elevation
	}
	return c.RadiusMetres() - s.Radius
}

// ReferenceRadius returns the radius used to turn geographic elevations
// into coordinate radii.
func (s Surface) ReferenceRadius() float64 {
	if s.Kind == SurfacePlane {
		return s.Elevation
	}
	return s.Radius
}

// Anchor binds a world to one celestial body.
type Anchor struct {
	World   string
	Body    string
	Surface Surface
}
