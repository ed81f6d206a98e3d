package worldframe

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
)

// singularityEps bounds |spin × up| below which east is undefined.
const singularityEps = 1e-9

// Resolver maps (world, coordinate, time) to inertial geometry. It is
// immutable and safe for concurrent use.
type Resolver struct {
	system  *cosmos.System
	anchors map[string]Anchor
}

// NewResolver builds a resolver over a system. Every anchor must name a
// body in the system and each world may be anchored once.
func NewResolver(system *cosmos.System, anchors ...Anchor) (*Resolver, error) {
	r := &Resolver{
		system:  system,
		anchors: make(map[string]Anchor, len(anchors)),
	}
	for _, a := range anchors {
		if a.World == "" {
			return nil, &AnchorError{Body: a.Body, Err: ErrUnknownWorld}
		}
		if _, exists := r.anchors[a.World]; exists {
			return nil, &AnchorError{World: a.World, Body: a.Body, Err: ErrDuplicateAnchor}
		}
		if _, ok := system.Body(a.Body); !ok {
			return nil, &AnchorError{World: a.World, Body: a.Body, Err: cosmos.ErrUnknownBody}
		}
		r.anchors[a.World] = a
	}
	return r, nil
}

// System returns the underlying cosmic system.
func (r *Resolver) System() *cosmos.System { return r.system }

// Anchor returns the anchor of a world.
func (r *Resolver) Anchor(world string) (Anchor, bool) {
	a, ok := r.anchors[world]
	return a, ok
}

// Worlds returns the anchored world ids, sorted.
func (r *Resolver) Worlds() []string {
	res := make([]string, 0, len(r.anchors))
	for w := range r.anchors {
		res = append(res, w)
	}
	sort.Strings(res)
	return res
}

// BodyPose resolves the pose of the body a world is anchored to.
func (r *Resolver) BodyPose(world string, t simtime.SimTime) (cosmos.Pose, Anchor, error) {
	a, ok := r.anchors[world]
	if !ok {
		return cosmos.Pose{}, Anchor{}, &AnchorError{World: world, Err: ErrUnknownWorld}
	}
	pose, err := r.system.Pose(a.Body, t)
	if err != nil {
		return cosmos.Pose{}, a, &AnchorError{World: world, Body: a.Body, Err: err}
	}
	return pose, a, nil
}

// Altitude returns the height of c above the world's surface, metres.
func (r *Resolver) Altitude(world string, c coord.Coord) (float64, error) {
	a, ok := r.anchors[world]
	if !ok {
		return 0, &AnchorError{World: world, Err: ErrUnknownWorld}
	}
	return a.Surface.Altitude(c), nil
}

// AnchorPoint returns the inertial position of c on a world at t. The
// origin coordinate and negative radii have no direction and yield
// ErrSingularity.
func (r *Resolver) AnchorPoint(world string, c coord.Coord, t simtime.SimTime) (mgl64.Vec3, error) {
	pose, _, err := r.BodyPose(world, t)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	if err := checkRadius(c); err != nil {
		return mgl64.Vec3{}, fmt.Errorf("anchor point on %q: %w", world, err)
	}
	return anchorPoint(pose, c), nil
}

// checkRadius rejects the origin and negative radii, which would otherwise
// resolve through the antipode.
func checkRadius(c coord.Coord) error {
	switch {
	case c.IsOrigin():
		return fmt.Errorf("coordinate origin: %w", ErrSingularity)
	case c.Radius < 0:
		return fmt.Errorf("negative radius %d: %w", c.Radius, ErrSingularity)
	}
	return nil
}

func anchorPoint(pose cosmos.Pose, c coord.Coord) mgl64.Vec3 {
	normal := pose.ToInertial(c.UnitNormal())
	return pose.Position.Add(normal.Mul(c.RadiusMetres()))
}

// LocalTangentFrame returns the East-North-Up basis at c on a world at t.
// It fails with ErrSingularity at the coordinate origin, for negative
// radii and at the poles, where east is undefined.
func (r *Resolver) LocalTangentFrame(world string, c coord.Coord, t simtime.SimTime) (Frame, error) {
	pose, _, err := r.BodyPose(world, t)
	if err != nil {
		return Frame{}, err
	}
	if err := checkRadius(c); err != nil {
		return Frame{}, fmt.Errorf("tangent frame on %q: %w", world, err)
	}
	origin := anchorPoint(pose, c)
	up := origin.Sub(pose.Position).Normalize()
	east := pose.SpinAxis().Cross(up)
	if east.Len() < singularityEps {
		return Frame{}, fmt.Errorf("tangent frame on %q: east undefined at pole: %w", world, ErrSingularity)
	}
	east = east.Normalize()
	north := up.Cross(east)
	return Frame{Origin: origin, East: east, North: north, Up: up}, nil
}
