package coord

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// ErrInvalidGeoPoint is returned when a coordinate cannot be exported as a
// GIS point.
var ErrInvalidGeoPoint = errors.New("coord: invalid geo point")

// MercatorLatLimit is the latitude beyond which web mercator diverges.
const MercatorLatLimit = 85.05112878

// GeoPoint returns c as an XYZ point (lon, lat, elevation above the
// reference radius) for GeoJSON/WKT export. The planet is treated as a
// sphere; no ellipsoid correction is applied. It fails when the elevation
// is not finite.
func (c Coord) GeoPoint(referenceRadiusM float64) (geom.Point, error) {
	g := c.Geographic(referenceRadiusM)
	p, err := geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: g.LonDegrees, Y: g.LatDegrees},
			Z:    g.ElevationM,
			Type: geom.DimXYZ,
		},
	)
	if err != nil {
		return geom.Point{}, fmt.Errorf("%w: %v", ErrInvalidGeoPoint, err)
	}
	return p, nil
}

// WebMercator projects the angular part of c to EPSG:3857 metres for map
// tile overlays. Latitudes are clamped to MercatorLatLimit.
func (c Coord) WebMercator() (x, y float64) {
	lat := UnitsToDegrees(c.Lat)
	lat = clamp(lat, -MercatorLatLimit, MercatorLatLimit)
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ = f(UnitsToDegrees(c.Lon), lat, 0)
	return x, y
}
