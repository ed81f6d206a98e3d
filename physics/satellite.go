package physics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/worldframe"
)

var (
	// ErrInvalidTLE is returned for malformed two-line element sets.
	ErrInvalidTLE = errors.New("invalid TLE")
	// ErrPropagation is returned when SGP4 yields no usable position.
	ErrPropagation = errors.New("sgp4 propagation failed")
)

const tleLineLen = 69

// TLE is a parsed two-line element set ready for SGP4 propagation.
type TLE struct {
	Line1, Line2 string
	sat          satellite.Satellite
}

// tleNumbers are the column ranges SGP4 parses as numbers.
var tleNumbers = [2][][2]int{
	{{18, 32}},
	{{8, 16}, {17, 25}, {26, 33}, {34, 42}, {43, 51}, {52, 63}},
}

// ParseTLE validates the element lines and builds an SGP4 model with the
// WGS72 gravity constants. Checksums are not enforced.
func ParseTLE(line1, line2 string) (*TLE, error) {
	lines := [2]string{strings.TrimRight(line1, " \r\n"), strings.TrimRight(line2, " \r\n")}
	for i, l := range lines {
		if len(l) < tleLineLen {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrInvalidTLE, i+1, len(l), tleLineLen)
		}
		if l[0] != byte('1'+i) || l[1] != ' ' {
			return nil, fmt.Errorf("%w: line %d does not start with %q", ErrInvalidTLE, i+1, string(rune('1'+i)))
		}
		for _, cols := range tleNumbers[i] {
			field := strings.TrimSpace(l[cols[0]:cols[1]])
			if _, err := strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("%w: line %d columns %d-%d: %q", ErrInvalidTLE, i+1, cols[0]+1, cols[1], field)
			}
		}
	}
	if lines[0][2:7] != lines[1][2:7] {
		return nil, fmt.Errorf("%w: catalog numbers %q and %q differ", ErrInvalidTLE, lines[0][2:7], lines[1][2:7])
	}
	return &TLE{
		Line1: lines[0],
		Line2: lines[1],
		sat:   satellite.TLEToSat(lines[0], lines[1], satellite.GravityWGS72),
	}, nil
}

// BodyFixed propagates the satellite to t and returns its position in the
// rotating frame of the body it orbits, metres. Propagation runs at whole
// second resolution.
func (tle *TLE) BodyFixed(t simtime.SimTime) (mgl64.Vec3, error) {
	tm, err := t.Time()
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("%w: %v", ErrPropagation, err)
	}
	tm = tm.UTC()
	year, month, day := tm.Date()
	hour, min, sec := tm.Clock()

	posECI, _ := satellite.Propagate(tle.sat, year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(satellite.JDay(year, int(month), day, hour, min, sec))
	posECEF := satellite.ECIToECEF(posECI, gmst)

	const kmToM = 1000.0
	v := mgl64.Vec3{posECEF.X * kmToM, posECEF.Y * kmToM, posECEF.Z * kmToM}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return mgl64.Vec3{}, fmt.Errorf("%w at %s", ErrPropagation, t.RFC3339())
		}
	}
	if v.Len() == 0 {
		return mgl64.Vec3{}, fmt.Errorf("%w at %s: zero position", ErrPropagation, t.RFC3339())
	}
	return v, nil
}

// SatelliteView is where an artificial satellite appears from a surface
// point.
type SatelliteView struct {
	Azimuth   float64 `json:"azimuth_deg"`
	Elevation float64 `json:"elevation_deg"`
	Range     float64 `json:"range_m"`
	// Visible is true when the satellite is above the horizon and the
	// anchor body does not block the line of sight.
	Visible  bool       `json:"visible"`
	Position mgl64.Vec3 `json:"-"`
}

// SatelliteLook returns the look angles from c on world to the satellite at
// t. The SGP4 Earth-fixed position is mapped onto the anchor body's
// rotating frame, so the world should be anchored to the body the elements
// describe an orbit around.
func SatelliteLook(r *worldframe.Resolver, world string, c coord.Coord, t simtime.SimTime, tle *TLE) (SatelliteView, error) {
	fixed, err := tle.BodyFixed(t)
	if err != nil {
		return SatelliteView{}, err
	}
	frame, err := r.LocalTangentFrame(world, c, t)
	if err != nil {
		return SatelliteView{}, err
	}
	pose, anchor, err := r.BodyPose(world, t)
	if err != nil {
		return SatelliteView{}, err
	}
	body, err := lookupBody(r.System(), anchor.Body)
	if err != nil {
		return SatelliteView{}, err
	}
	target := pose.Position.Add(pose.ToInertial(fixed))
	h, err := frame.LookAt(target)
	if err != nil {
		return SatelliteView{}, fmt.Errorf("satellite look: %w", err)
	}
	return SatelliteView{
		Azimuth:   h.AzimuthDeg(),
		Elevation: h.ElevationDeg(),
		Range:     h.Magnitude,
		Visible:   h.Elevation > 0 && !body.Occluded(pose, frame.Origin, target),
		Position:  target,
	}, nil
}
