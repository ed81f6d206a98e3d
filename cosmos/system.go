package cosmos

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/omnivox/simtime"
)

var (
	// ErrUnknownBody is returned when a pose is requested for an id that is
	// not in the system.
	ErrUnknownBody = errors.New("unknown body")
	// ErrOrbitCycle is returned when a parent chain loops back on itself.
	ErrOrbitCycle = errors.New("orbit parent cycle")
	// ErrInvalidSystem is returned by NewSystem for malformed bodies.
	ErrInvalidSystem = errors.New("invalid system")
)

// System is an immutable set of bodies. All methods are safe for
// concurrent use.
type System struct {
	bodies map[string]Body
	order  []string
}

// NewSystem validates and freezes a set of bodies. Parents that are not in
// the set are allowed and contribute nothing; duplicate ids, negative
// physical quantities and parent cycles are rejected.
func NewSystem(bodies ...Body) (*System, error) {
	s := &System{
		bodies: make(map[string]Body, len(bodies)),
		order:  make([]string, 0, len(bodies)),
	}
	for _, b := range bodies {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: body with empty id", ErrInvalidSystem)
		}
		if _, exists := s.bodies[b.ID]; exists {
			return nil, fmt.Errorf("%w: body with ID %q already exists", ErrInvalidSystem, b.ID)
		}
		if b.Mass < 0 || b.Radius < 0 || b.Luminosity < 0 {
			return nil, fmt.Errorf("%w: body %q has negative mass, radius or luminosity", ErrInvalidSystem, b.ID)
		}
		if b.Orbit != nil {
			if b.Orbit.SemiMajorAxis < 0 {
				return nil, fmt.Errorf("%w: body %q has negative semi-major axis", ErrInvalidSystem, b.ID)
			}
			if b.Orbit.Period.Sign() < 0 {
				return nil, fmt.Errorf("%w: body %q has negative orbital period", ErrInvalidSystem, b.ID)
			}
			o := *b.Orbit
			b.Orbit = &o
		}
		s.bodies[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	for _, id := range s.order {
		if err := s.checkChain(id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSystem, err)
		}
	}
	return s, nil
}

func (s *System) checkChain(id string) error {
	seen := map[string]bool{}
	for cur := id; cur != ""; {
		if seen[cur] {
			return fmt.Errorf("%w through %q", ErrOrbitCycle, id)
		}
		seen[cur] = true
		b, ok := s.bodies[cur]
		if !ok || b.Orbit == nil {
			return nil
		}
		cur = b.Orbit.Parent
	}
	return nil
}

// Body returns the body with the given id.
func (s *System) Body(id string) (Body, bool) {
	b, ok := s.bodies[id]
	return b, ok
}

// Bodies returns all bodies in declaration order.
func (s *System) Bodies() []Body {
	res := make([]Body, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.bodies[id])
	}
	return res
}

// Len returns the number of bodies.
func (s *System) Len() int { return len(s.order) }

// Pose resolves a body's inertial position and orientation at t by walking
// its parent chain. Results are never cached: the same (id, t) always
// recomputes to the same value.
func (s *System) Pose(id string, t simtime.SimTime) (Pose, error) {
	b, ok := s.bodies[id]
	if !ok {
		return Pose{}, fmt.Errorf("%w: %q", ErrUnknownBody, id)
	}
	return s.pose(b, t, 0)
}

func (s *System) pose(b Body, t simtime.SimTime, depth int) (Pose, error) {
	if depth > len(s.bodies) {
		return Pose{}, fmt.Errorf("%w at %q", ErrOrbitCycle, b.ID)
	}
	p := Pose{Orientation: b.Orientation(t)}
	if b.Orbit == nil {
		return p, nil
	}
	var parentPos mgl64.Vec3
	if parent, ok := s.bodies[b.Orbit.Parent]; ok {
		pp, err := s.pose(parent, t, depth+1)
		if err != nil {
			return Pose{}, err
		}
		parentPos = pp.Position
	}
	p.Position = parentPos.Add(b.Orbit.Offset(t))
	return p, nil
}

// Position is a shorthand for Pose(id, t).Position.
func (s *System) Position(id string, t simtime.SimTime) (mgl64.Vec3, error) {
	p, err := s.Pose(id, t)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return p.Position, nil
}

// Distance returns the centre-to-centre distance between two bodies at t.
func (s *System) Distance(a, b string, t simtime.SimTime) (float64, error) {
	pa, err := s.Position(a, t)
	if err != nil {
		return 0, err
	}
	pb, err := s.Position(b, t)
	if err != nil {
		return 0, err
	}
	return pb.Sub(pa).Len(), nil
}
