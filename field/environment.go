// Package field composes the ambient physical quantities of a world from a
// declarative descriptor.
//
// An Environment is built once per world and reused for every query. Each
// configured model becomes one Field; models left out of the descriptor are
// simply not built and contribute nothing. Sampling runs every field's
// Sample in declared order, then every field's Derive, folding the partial
// results with Sample.Merge.
package field

import (
	"fmt"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/worldframe"
)

// Environment is an immutable set of fields for one world.
type Environment struct {
	world    string
	surface  worldframe.Surface
	fields   []Field
	resolver *worldframe.Resolver // nil unless a field needs inertial geometry
}

// Build constructs the environment of a world. The resolver is optional:
// without it, fields that need inertial geometry (radiation, body gravity)
// are not built, and the descriptor must carry its own space section.
func Build(world string, d Descriptor, r *worldframe.Resolver) (*Environment, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("world %q: %w", world, err)
	}
	surface, ok, _ := d.Space.Surface()
	var anchor cosmos.Body
	anchored := false
	if r != nil {
		if a, found := r.Anchor(world); found {
			anchor, _ = r.System().Body(a.Body)
			anchored = true
			if !ok {
				surface, ok = a.Surface, true
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("world %q: %w: no space section and no anchor", world, ErrInvalidDescriptor)
	}

	env := &Environment{world: world, surface: surface}
	refRadius := 0.0
	if surface.Kind == worldframe.SurfaceSpherical {
		refRadius = surface.Radius
	}

	if g := d.Gravity; g != nil {
		switch g.Model {
		case GravityBody:
			if anchored && anchor.Mass > 0 && refRadius > 0 {
				env.fields = append(env.fields, gravityField{
					model:    GravityInverseSquare,
					strength: cosmos.G * anchor.Mass / (refRadius * refRadius),
					radius:   refRadius,
				})
			}
		default:
			env.fields = append(env.fields, gravityField{model: g.Model, strength: g.Strength, radius: refRadius})
		}
	}
	if l := d.Land; l != nil {
		env.fields = append(env.fields, landField{height: l.Height})
	}
	if a := d.Atmosphere; a != nil {
		env.fields = append(env.fields, atmosphereField{
			seaLevelDensity: a.SeaLevelDensity,
			scaleHeight:     a.ScaleHeight,
			maxHeight:       a.MaxHeight,
			wind:            a.Wind,
		})
	}
	if tp := d.Temperature; tp != nil {
		env.fields = append(env.fields, temperatureField{surface: tp.SurfaceTemp, lapse: tp.LapseRate})
	}
	if rad := d.Radiation; rad != nil && rad.Enabled && anchored {
		env.fields = append(env.fields, radiationField{system: r.System(), anchor: anchor})
		env.resolver = r
	}
	if d.Medium != "" || d.Land != nil || d.Atmosphere != nil {
		m, _ := ParseMedium(d.Medium)
		mf := mediumField{def: m, land: d.Land != nil}
		if d.Land != nil {
			mf.seaLevel = d.Land.SeaLevel
		}
		env.fields = append(env.fields, mf)
	}
	return env, nil
}

// World returns the world id the environment was built for.
func (e *Environment) World() string { return e.world }

// Surface returns the reference surface altitudes are measured from.
func (e *Environment) Surface() worldframe.Surface { return e.surface }

// Kinds lists the built fields in evaluation order.
func (e *Environment) Kinds() []Kind {
	res := make([]Kind, len(e.fields))
	for i, f := range e.fields {
		res[i] = f.Kind()
	}
	return res
}

// Has reports whether a field of kind k was built.
func (e *Environment) Has(k Kind) bool {
	for _, f := range e.fields {
		if f.Kind() == k {
			return true
		}
	}
	return false
}

// Point builds the sampling context for c at t. Inertial geometry is
// resolved only when a field needs it.
func (e *Environment) Point(c coord.Coord, t simtime.SimTime) (Point, error) {
	p := Point{World: e.world, Coord: c, Time: t, Altitude: e.surface.Altitude(c)}
	if e.resolver == nil {
		return p, nil
	}
	pos, err := e.resolver.AnchorPoint(e.world, c, t)
	if err != nil {
		return Point{}, err
	}
	pose, _, err := e.resolver.BodyPose(e.world, t)
	if err != nil {
		return Point{}, err
	}
	p.Position = pos
	p.Body = pose
	return p, nil
}

// Sample returns the merged ambient quantities at c and t. It only fails
// when inertial geometry is needed and cannot be resolved.
func (e *Environment) Sample(c coord.Coord, t simtime.SimTime) (Sample, error) {
	p, err := e.Point(c, t)
	if err != nil {
		return Sample{}, fmt.Errorf("sample world %q: %w", e.world, err)
	}
	return e.SampleAt(p), nil
}

// SampleAt composes the fields at an already resolved point.
func (e *Environment) SampleAt(p Point) Sample {
	var acc Sample
	for _, f := range e.fields {
		acc = acc.Merge(f.Sample(p))
	}
	for _, f := range e.fields {
		acc = acc.Merge(f.Derive(p, acc))
	}
	return acc
}
