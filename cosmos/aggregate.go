package cosmos

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/omnivox/simtime"
)

// PairAcceleration returns the acceleration at target due to a point mass
// at source: G·mass/r² directed toward the source. Coincident points and
// non-positive masses contribute nothing.
func PairAcceleration(target, source mgl64.Vec3, mass float64) mgl64.Vec3 {
	if mass <= 0 {
		return mgl64.Vec3{}
	}
	r := source.Sub(target)
	d2 := r.Dot(r)
	if d2 == 0 {
		return mgl64.Vec3{}
	}
	return r.Mul(G * mass / (d2 * math.Sqrt(d2)))
}

// PairFlux returns the radiative flux at target from an isotropic source:
// luminosity/(4π·r²) in W/m².
func PairFlux(target, source mgl64.Vec3, luminosity float64) float64 {
	if luminosity <= 0 {
		return 0
	}
	r := source.Sub(target)
	d2 := r.Dot(r)
	if d2 == 0 {
		return 0
	}
	return luminosity / (4 * math.Pi * d2)
}

func excluded(id string, exclude []string) bool {
	for _, e := range exclude {
		if e == id {
			return true
		}
	}
	return false
}

// GravityAt sums the gravitational acceleration at an inertial point from
// every massive body except the excluded ids.
func (s *System) GravityAt(point mgl64.Vec3, t simtime.SimTime, exclude ...string) (mgl64.Vec3, error) {
	var acc mgl64.Vec3
	for _, id := range s.order {
		b := s.bodies[id]
		if b.Mass <= 0 || excluded(id, exclude) {
			continue
		}
		pos, err := s.Position(id, t)
		if err != nil {
			return mgl64.Vec3{}, err
		}
		acc = acc.Add(PairAcceleration(point, pos, b.Mass))
	}
	return acc, nil
}

// AccelerationOn returns the total gravitational acceleration acting on a
// body from all other bodies.
func (s *System) AccelerationOn(id string, t simtime.SimTime) (mgl64.Vec3, error) {
	pos, err := s.Position(id, t)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return s.GravityAt(pos, t, id)
}

// IrradianceAt sums the radiative flux at an inertial point from every
// luminous body except the excluded ids, in W/m².
func (s *System) IrradianceAt(point mgl64.Vec3, t simtime.SimTime, exclude ...string) (float64, error) {
	var total float64
	for _, id := range s.order {
		b := s.bodies[id]
		if !b.IsLuminous() || excluded(id, exclude) {
			continue
		}
		pos, err := s.Position(id, t)
		if err != nil {
			return 0, err
		}
		total += PairFlux(point, pos, b.Luminosity)
	}
	return total, nil
}

// IrradianceOn returns the flux arriving at a body's centre from all other
// luminous bodies.
func (s *System) IrradianceOn(id string, t simtime.SimTime) (float64, error) {
	pos, err := s.Position(id, t)
	if err != nil {
		return 0, err
	}
	return s.IrradianceAt(pos, t, id)
}

// Accelerations computes AccelerationOn for every body in one all-pairs
// pass.
func (s *System) Accelerations(t simtime.SimTime) (map[string]mgl64.Vec3, error) {
	positions := make(map[string]mgl64.Vec3, len(s.order))
	for _, id := range s.order {
		pos, err := s.Position(id, t)
		if err != nil {
			return nil, err
		}
		positions[id] = pos
	}
	res := make(map[string]mgl64.Vec3, len(s.order))
	for _, target := range s.order {
		var acc mgl64.Vec3
		for _, source := range s.order {
			if source == target {
				continue
			}
			acc = acc.Add(PairAcceleration(positions[target], positions[source], s.bodies[source].Mass))
		}
		res[target] = acc
	}
	return res, nil
}
