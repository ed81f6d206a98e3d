package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/worldframe"
)

// TideForce is the tidal acceleration at a surface point: the source's pull
// there minus its pull on the anchor body's centre.
type TideForce struct {
	// Vertical is positive upward, m/s².
	Vertical   float64    `json:"vertical_m_s2"`
	Horizontal float64    `json:"horizontal_m_s2"`
	Azimuth    float64    `json:"azimuth_deg"`
	Inertial   mgl64.Vec3 `json:"-"`
}

// Tide returns the tidal acceleration the source body raises at c on world
// at t. A body raises no tide on itself.
func Tide(r *worldframe.Resolver, world string, c coord.Coord, t simtime.SimTime, source string) (TideForce, error) {
	sys := r.System()
	src, err := lookupBody(sys, source)
	if err != nil {
		return TideForce{}, err
	}
	frame, err := r.LocalTangentFrame(world, c, t)
	if err != nil {
		return TideForce{}, err
	}
	pose, anchor, err := r.BodyPose(world, t)
	if err != nil {
		return TideForce{}, err
	}
	if anchor.Body == source {
		return TideForce{}, nil
	}
	srcPos, err := sys.Position(source, t)
	if err != nil {
		return TideForce{}, err
	}

	a := cosmos.PairAcceleration(frame.Origin, srcPos, src.Mass).
		Sub(cosmos.PairAcceleration(pose.Position, srcPos, src.Mass))
	enu := frame.Project(a)
	tf := TideForce{
		Vertical:   enu.Up,
		Horizontal: math.Hypot(enu.East, enu.North),
		Inertial:   a,
	}
	if tf.Horizontal > 0 {
		az := math.Atan2(enu.East, enu.North)
		if az < 0 {
			az += 2 * math.Pi
		}
		tf.Azimuth = az * 180 / math.Pi
	}
	return tf, nil
}
