package coord

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const earthRadiusM = 6_371_000.0

func TestHexRoundTrip(t *testing.T) {
	cases := []Coord{
		{},
		{Radius: 1, Lat: -1, Lon: 1},
		{Radius: math.MaxInt64, Lat: math.MinInt64, Lon: math.MaxInt64},
		{Radius: 6_371_000_000_000, Lat: 45 * UnitsPerDegree, Lon: -122 * UnitsPerDegree},
		{Radius: 42, Lat: -QuarterCircle, Lon: -HalfCircle},
	}
	for _, c := range cases {
		h := c.Hex()
		if len(h) != HexLen {
			t.Fatalf("Hex() length = %d, want %d", len(h), HexLen)
		}
		got, err := ParseHex(h)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", h, err)
		}
		if got != c {
			t.Fatalf("round trip = %+v, want %+v", got, c)
		}
	}
}

func TestParseHexRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "abc", "zz" + Coord{}.Hex()[2:], Coord{}.Hex() + "00"} {
		if _, err := ParseHex(s); !errors.Is(err, ErrInvalidHex) {
			t.Fatalf("ParseHex(%q) error = %v, want ErrInvalidHex", s, err)
		}
	}
	upper := "0000000000000001FFFFFFFFFFFFFFFF0000000000000002"
	c, err := ParseHex(upper)
	require.NoError(t, err)
	assert.Equal(t, Coord{Radius: 1, Lat: -1, Lon: 2}, c)
}

func TestJSONUsesHex(t *testing.T) {
	c := FromGeographic(10, 20, 5, earthRadiusM)
	b, err := json.Marshal(map[string]Coord{"at": c})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"`+c.Hex()+`"}`, string(b))

	var out map[string]Coord
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, c, out["at"])
}

func TestDeltaAdditivity(t *testing.T) {
	start := FromGeographic(12.5, 33.25, 100, earthRadiusM)
	d1 := Delta{Radius: 1_000_000, Lat: 3 * UnitsPerDegree, Lon: -7 * UnitsPerDegree}
	d2 := Delta{Radius: -250_000, Lat: -UnitsPerDegree / 2, Lon: 11 * UnitsPerDegree}

	stepwise := start.Apply(d1).Apply(d2)
	combined := start.Apply(d1.Add(d2))
	assert.Equal(t, combined, stepwise)

	n := int64(1000)
	rate := Delta{Radius: 3, Lat: 5, Lon: 7}
	c := start
	for i := int64(0); i < n; i++ {
		c = c.Apply(rate)
	}
	assert.Equal(t, start.Apply(rate.Scale(n)), c)
}

func TestApplyWrapsLongitude(t *testing.T) {
	c := New(1, 0, 179*UnitsPerDegree)
	got := c.Apply(Delta{Lon: 2 * UnitsPerDegree})
	assert.Equal(t, -179*UnitsPerDegree, got.Lon)

	got = New(1, 0, -179*UnitsPerDegree).Apply(Delta{Lon: -2 * UnitsPerDegree})
	assert.Equal(t, 179*UnitsPerDegree, got.Lon)

	assert.Equal(t, -HalfCircle, New(1, 0, HalfCircle).Lon)
	assert.Equal(t, int64(0), New(1, 0, 3*FullCircle).Lon)
}

func TestDeltaTo(t *testing.T) {
	a := FromGeographic(0, 170, 0, earthRadiusM)
	b := FromGeographic(1, -170, 10, earthRadiusM)
	d := a.DeltaTo(b)
	assert.Equal(t, 20*UnitsPerDegree, d.Lon)
	assert.Equal(t, b, a.Apply(d))
}

func TestCartesianRoundTrip(t *testing.T) {
	c := FromGeographic(-33.5, 151.25, 250, earthRadiusM)
	v := c.Cartesian()
	assert.InDelta(t, earthRadiusM+250, v.Len(), 1e-6)

	back := FromCartesian(v)
	assert.InDelta(t, c.Radius, back.Radius, 2)
	assert.InDelta(t, c.Lat, back.Lat, 2)
	assert.InDelta(t, c.Lon, back.Lon, 2)
}

func TestCartesianAxes(t *testing.T) {
	r := 1000.0
	cases := []struct {
		lat, lon float64
		want     mgl64.Vec3
	}{
		{0, 0, mgl64.Vec3{r, 0, 0}},
		{0, 90, mgl64.Vec3{0, r, 0}},
		{90, 0, mgl64.Vec3{0, 0, r}},
		{-90, 0, mgl64.Vec3{0, 0, -r}},
	}
	for _, tc := range cases {
		got := FromGeographic(tc.lat, tc.lon, 0, r).Cartesian()
		assert.True(t, near(got, tc.want, 1e-9), "lat=%v lon=%v got %v", tc.lat, tc.lon, got)
	}
	assert.Equal(t, Coord{}, FromCartesian(mgl64.Vec3{}))
}

func TestGeographicRoundTrip(t *testing.T) {
	g := Geographic{LatDegrees: 51.4779, LonDegrees: -0.0015, ElevationM: 46}
	c := g.Coord(earthRadiusM)
	back := c.Geographic(earthRadiusM)
	assert.InDelta(t, g.LatDegrees, back.LatDegrees, 1e-9)
	assert.InDelta(t, g.LonDegrees, back.LonDegrees, 1e-9)
	assert.InDelta(t, g.ElevationM, back.ElevationM, 1e-6)
}

func TestApproxDistance(t *testing.T) {
	a := FromGeographic(0, 0, 0, earthRadiusM)
	assert.Equal(t, 0.0, a.ApproxDistance(a))

	up := FromGeographic(0, 0, 1000, earthRadiusM)
	assert.InDelta(t, 1000, a.ApproxDistance(up), 1e-6)

	// One degree along the equator is about 111 km.
	east := FromGeographic(0, 1, 0, earthRadiusM)
	assert.InDelta(t, earthRadiusM*math.Pi/180, a.ApproxDistance(east), 1)

	// Across the antimeridian the short way round is used.
	w := FromGeographic(0, 179.5, 0, earthRadiusM)
	e := FromGeographic(0, -179.5, 0, earthRadiusM)
	assert.InDelta(t, earthRadiusM*math.Pi/180, w.ApproxDistance(e), 1)
	assert.InDelta(t, w.ApproxDistance(e), e.ApproxDistance(w), 1e-9)
}

func TestGeoPoint(t *testing.T) {
	c := FromGeographic(10, 20, 30, earthRadiusM)
	p, err := c.GeoPoint(earthRadiusM)
	require.NoError(t, err)
	xyz, ok := p.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 20, xyz.X, 1e-9)
	assert.InDelta(t, 10, xyz.Y, 1e-9)
	assert.InDelta(t, 30, xyz.Z, 1e-6)
}

func TestGeoPointRejectsNonFiniteElevation(t *testing.T) {
	c := FromGeographic(10, 20, 30, earthRadiusM)
	_, err := c.GeoPoint(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidGeoPoint)

	_, err = c.GeoPoint(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidGeoPoint)
}

func TestWebMercator(t *testing.T) {
	x, y := FromGeographic(0, 0, 0, earthRadiusM).WebMercator()
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, _ = FromGeographic(0, 180-1e-9, 0, earthRadiusM).WebMercator()
	assert.InDelta(t, 20037508.34, x, 1)

	_, y = FromGeographic(90, 0, 0, earthRadiusM).WebMercator()
	assert.False(t, math.IsInf(y, 0) || math.IsNaN(y))
}

func near(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}
