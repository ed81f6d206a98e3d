package field

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/omnivox/coord"
	"github.com/signalsfoundry/omnivox/cosmos"
	"github.com/signalsfoundry/omnivox/simtime"
	"github.com/signalsfoundry/omnivox/worldframe"
)

const (
	earthR      = 6.371e6
	scaleHeight = 8500.0
	rho0        = 1.225
)

func earthLike() Descriptor {
	sea := 0.0
	return Descriptor{
		Space:       SpaceDescriptor{Kind: "spherical", SurfaceRadius: earthR},
		Gravity:     &GravityDescriptor{Model: GravityConstant, Strength: 9.81},
		Medium:      "vacuum",
		Atmosphere:  &AtmosphereDescriptor{SeaLevelDensity: rho0, ScaleHeight: scaleHeight, MaxHeight: 100_000},
		Temperature: &TemperatureDescriptor{SurfaceTemp: 288.15, LapseRate: 0.0065},
		Land:        &LandDescriptor{Height: -50, SeaLevel: &sea},
	}
}

func at(alt float64) coord.Coord { return coord.FromGeographic(10, 20, alt, earthR) }

func TestAtmosphereDensity(t *testing.T) {
	env, err := Build("terra", earthLike(), nil)
	require.NoError(t, err)

	s, err := env.Sample(at(0), simtime.Epoch)
	require.NoError(t, err)
	assert.InDelta(t, rho0, s.Density, 1e-12)
	assert.InDelta(t, rho0*9.81*scaleHeight, s.Pressure, 1e-9)

	s, err = env.Sample(at(scaleHeight), simtime.Epoch)
	require.NoError(t, err)
	assert.InDelta(t, rho0/math.E, s.Density, 1e-12)

	s, err = env.Sample(at(200_000), simtime.Epoch)
	require.NoError(t, err)
	assert.Zero(t, s.Density)
	assert.Zero(t, s.Pressure)
}

func TestMediumClassification(t *testing.T) {
	env, err := Build("terra", earthLike(), nil)
	require.NoError(t, err)

	tests := []struct {
		alt        float64
		want       Medium
		resistance float64
	}{
		{alt: -60, want: MediumSolid, resistance: RockDensity},
		{alt: -10, want: MediumLiquid, resistance: WaterDensity},
		{alt: 1000, want: MediumGas},
		{alt: 200_000, want: MediumVacuum},
	}
	for _, tt := range tests {
		s, err := env.Sample(at(tt.alt), simtime.Epoch)
		require.NoError(t, err)
		if s.Medium != tt.want {
			t.Fatalf("alt %v: medium = %v, want %v", tt.alt, s.Medium, tt.want)
		}
		if tt.want == MediumGas {
			assert.InDelta(t, s.Density, s.Resistance, 1e-12)
		} else {
			assert.InDelta(t, tt.resistance, s.Resistance, 1e-12)
		}
	}
}

func TestDefaultMediumSurvivesVacuumReports(t *testing.T) {
	env, err := Build("ocean", Descriptor{
		Space:  SpaceDescriptor{Kind: "plane"},
		Medium: "liquid",
	}, nil)
	require.NoError(t, err)

	s, err := env.Sample(coord.New(coord.MetresToMicros(10), 0, 0), simtime.Epoch)
	require.NoError(t, err)
	assert.Equal(t, MediumLiquid, s.Medium)
	assert.InDelta(t, WaterDensity, s.Resistance, 1e-12)
}

func TestMerge(t *testing.T) {
	a := Sample{Gravity: 1, Density: 2, Medium: MediumGas}
	got := a.Merge(Sample{Gravity: 0.5, Temperature: 3})
	assert.Equal(t, Sample{Gravity: 1.5, Density: 2, Temperature: 3, Medium: MediumGas}, got)

	got = got.Merge(Sample{Medium: MediumLiquid})
	assert.Equal(t, MediumLiquid, got.Medium)

	got = got.Merge(Sample{Medium: MediumVacuum})
	assert.Equal(t, MediumLiquid, got.Medium)
}

func TestMissingModelsAreNotBuilt(t *testing.T) {
	env, err := Build("bare", Descriptor{Space: SpaceDescriptor{Kind: "spherical", SurfaceRadius: 1000}}, nil)
	require.NoError(t, err)
	assert.Empty(t, env.Kinds())

	s, err := env.Sample(coord.FromGeographic(0, 0, 10, 1000), simtime.Epoch)
	require.NoError(t, err)
	assert.Equal(t, Sample{}, s)

	// Radiation and body gravity need a resolver.
	env, err = Build("bare", Descriptor{
		Space:     SpaceDescriptor{Kind: "spherical", SurfaceRadius: 1000},
		Gravity:   &GravityDescriptor{Model: GravityBody},
		Radiation: &RadiationDescriptor{Enabled: true},
	}, nil)
	require.NoError(t, err)
	assert.False(t, env.Has(KindRadiation))
	assert.False(t, env.Has(KindGravity))
}

func TestKindsInEvaluationOrder(t *testing.T) {
	env, err := Build("terra", earthLike(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindGravity, KindLand, KindAtmosphere, KindTemperature, KindMedium}, env.Kinds())
}

func TestTemperatureLapse(t *testing.T) {
	env, err := Build("terra", earthLike(), nil)
	require.NoError(t, err)

	s, err := env.Sample(at(1000), simtime.Epoch)
	require.NoError(t, err)
	assert.InDelta(t, 281.65, s.Temperature, 1e-9)

	s, err = env.Sample(at(1e6), simtime.Epoch)
	require.NoError(t, err)
	assert.Zero(t, s.Temperature)
}

func TestInverseSquareGravity(t *testing.T) {
	env, err := Build("terra", Descriptor{
		Space:   SpaceDescriptor{Kind: "spherical", SurfaceRadius: earthR},
		Gravity: &GravityDescriptor{Model: GravityInverseSquare, Strength: 9.8},
	}, nil)
	require.NoError(t, err)

	s, err := env.Sample(at(earthR), simtime.Epoch)
	require.NoError(t, err)
	assert.InDelta(t, 9.8/4, s.Gravity, 1e-12)

	s, err = env.Sample(coord.Coord{}, simtime.Epoch)
	require.NoError(t, err)
	assert.Zero(t, s.Gravity)
}

func TestInvalidDescriptors(t *testing.T) {
	space := SpaceDescriptor{Kind: "spherical", SurfaceRadius: 1}
	for name, d := range map[string]Descriptor{
		"medium":       {Space: space, Medium: "plasma"},
		"scale height": {Space: space, Atmosphere: &AtmosphereDescriptor{SeaLevelDensity: 1}},
		"gravity":      {Space: space, Gravity: &GravityDescriptor{Model: "mond"}},
		"space kind":   {Space: SpaceDescriptor{Kind: "torus"}},
		"radius":       {Space: SpaceDescriptor{Kind: "spherical"}},
		"no space":     {},
	} {
		_, err := Build("w", d, nil)
		assert.ErrorIs(t, err, ErrInvalidDescriptor, name)
	}
}

func TestDescriptorJSON(t *testing.T) {
	raw := `{
		"space": {"kind": "spherical", "surface_radius_m": 6371000},
		"gravity": {"model": "constant", "strength": 9.81},
		"medium": "gas",
		"atmosphere": {"sea_level_density": 1.225, "scale_height_m": 8500},
		"land": {"height_m": 0, "sea_level_m": -2}
	}`
	var d Descriptor
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	require.NoError(t, d.Validate())
	assert.Equal(t, earthR, d.Space.SurfaceRadius)
	require.NotNil(t, d.Land.SeaLevel)
	assert.Equal(t, -2.0, *d.Land.SeaLevel)
	assert.Nil(t, d.Temperature)

	var m Medium
	require.NoError(t, m.UnmarshalText([]byte("Solid")))
	assert.Equal(t, MediumSolid, m)
}

func TestRadiationAndBodyGravity(t *testing.T) {
	sys, err := cosmos.NewSystem(cosmos.SolarSystem()...)
	require.NoError(t, err)
	r, err := worldframe.NewResolver(sys, worldframe.Anchor{
		World: "terra", Body: cosmos.EarthID, Surface: worldframe.Spherical(earthR),
	})
	require.NoError(t, err)

	env, err := Build("terra", Descriptor{
		Gravity:   &GravityDescriptor{Model: GravityBody},
		Radiation: &RadiationDescriptor{Enabled: true},
	}, r)
	require.NoError(t, err)
	assert.Equal(t, worldframe.SurfaceSpherical, env.Surface().Kind)

	tm := simtime.FromSeconds(86400 * 40)
	for lon := 0.0; lon < 180; lon += 45 {
		day, err := env.Sample(coord.FromGeographic(0, lon+7, 0, earthR), tm)
		require.NoError(t, err)
		night, err := env.Sample(coord.FromGeographic(0, lon+7-180, 0, earthR), tm)
		require.NoError(t, err)

		lit := 0
		for _, s := range []Sample{day, night} {
			if s.Irradiance > 0 {
				lit++
				assert.InDelta(t, 1361, s.Irradiance, 30)
			}
		}
		assert.Equal(t, 1, lit, "exactly one of an antipodal pair is lit (lon %v)", lon)
		assert.InDelta(t, 9.82, day.Gravity, 0.02)
	}

	_, err = env.Sample(coord.Coord{}, tm)
	assert.ErrorIs(t, err, worldframe.ErrSingularity)
}
