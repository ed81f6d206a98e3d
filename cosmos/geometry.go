package cosmos

import "github.com/go-gl/mathgl/mgl64"

// HasLineOfSight checks whether the straight segment between p1 and p2
// clears a sphere of the given radius at center. If the segment touches or
// enters the sphere the body blocks the line of sight and the function
// returns false.
func HasLineOfSight(p1, p2, center mgl64.Vec3, radius float64) bool {
	a1 := p1.Sub(center)
	v := p2.Sub(p1)
	vv := v.Dot(v)
	r2 := radius * radius
	if vv == 0 {
		// Degenerate case: same point. Outside the sphere it can see itself.
		return a1.Dot(a1) > r2
	}

	// Closest point on the segment to the sphere centre.
	t := -a1.Dot(v) / vv
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a1.Add(v.Mul(t))
	return closest.Dot(closest) > r2
}

// surfaceEps shrinks an occluding sphere so that points lying on its
// surface are not shadowed by the body they stand on.
const surfaceEps = 1e-9

// Occluded reports whether body b, at pose p, blocks the segment between
// two inertial points. An endpoint on or inside the body is treated as
// standing on its surface: only the far hemisphere is shadowed. Bodies
// without a radius never occlude.
func (b Body) Occluded(p Pose, from, to mgl64.Vec3) bool {
	if b.Radius <= 0 {
		return false
	}
	r := b.Radius
	for _, end := range [2]mgl64.Vec3{from, to} {
		if d := end.Sub(p.Position).Len(); d < r {
			r = d
		}
	}
	return !HasLineOfSight(from, to, p.Position, r*(1-surfaceEps))
}
