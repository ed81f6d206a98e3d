package coord

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// HexLen is the length of the hex form: three big-endian 64-bit words.
const HexLen = 48

// ErrInvalidHex is returned when a hex coordinate cannot be decoded.
var ErrInvalidHex = errors.New("coord: invalid hex coordinate")

// Hex returns the fixed-width lowercase hex form of c. Negative components
// are encoded as two's complement so the round trip is exact.
func (c Coord) Hex() string {
	var b [24]byte
	binary.BigEndian.PutUint64(b[0:8], uint64(c.Radius))
	binary.BigEndian.PutUint64(b[8:16], uint64(c.Lat))
	binary.BigEndian.PutUint64(b[16:24], uint64(c.Lon))
	return hex.EncodeToString(b[:])
}

func (c Coord) String() string { return c.Hex() }

// ParseHex decodes the form produced by Hex. Upper case is accepted.
func ParseHex(s string) (Coord, error) {
	if len(s) != HexLen {
		return Coord{}, fmt.Errorf("%w: length %d, want %d", ErrInvalidHex, len(s), HexLen)
	}
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return Coord{
		Radius: int64(binary.BigEndian.Uint64(b[0:8])),
		Lat:    int64(binary.BigEndian.Uint64(b[8:16])),
		Lon:    int64(binary.BigEndian.Uint64(b[16:24])),
	}, nil
}

// MarshalText implements encoding.TextMarshaler using the hex form.
func (c Coord) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler using the hex form.
func (c *Coord) UnmarshalText(b []byte) error {
	v, err := ParseHex(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Geographic is the human-facing form of a coordinate.
type Geographic struct {
	LatDegrees float64 `json:"lat_degrees" mapstructure:"lat_degrees"`
	LonDegrees float64 `json:"lon_degrees" mapstructure:"lon_degrees"`
	ElevationM float64 `json:"elevation_m" mapstructure:"elevation_m"`
}

// FromGeographic builds a Coord from degrees and an elevation in metres
// above a reference radius in metres. Elevation is folded into the radius.
func FromGeographic(latDeg, lonDeg, elevationM, referenceRadiusM float64) Coord {
	return New(
		MetresToMicros(referenceRadiusM+elevationM),
		DegreesToUnits(latDeg),
		DegreesToUnits(lonDeg),
	)
}

// Coord converts g using the given reference radius in metres.
func (g Geographic) Coord(referenceRadiusM float64) Coord {
	return FromGeographic(g.LatDegrees, g.LonDegrees, g.ElevationM, referenceRadiusM)
}

// Geographic returns degrees and elevation relative to a reference radius.
func (c Coord) Geographic(referenceRadiusM float64) Geographic {
	return Geographic{
		LatDegrees: UnitsToDegrees(c.Lat),
		LonDegrees: UnitsToDegrees(c.Lon),
		ElevationM: c.RadiusMetres() - referenceRadiusM,
	}
}
