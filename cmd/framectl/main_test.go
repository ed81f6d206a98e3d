package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runJSON(t *testing.T, args ...string) Result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout, &stderr), stderr.String())

	var res Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	return res
}

func TestFramectlDefaultSystem(t *testing.T) {
	res := runJSON(t, "-lat", "51.4779", "-lon", "0", "-time", "2024-06-21T12:00:00Z")

	assert.Equal(t, "terra", res.World)
	assert.Equal(t, "2024-06-21T12:00:00Z", res.UTC)
	assert.InDelta(t, 51.4779, res.Location.Geographic.LatDegrees, 1e-6)
	assert.InDelta(t, 0, res.Location.Altitude, 1e-3)
	assert.Contains(t, res.Location.WKT, "POINT")
	assert.InDelta(t, 1, res.Frame.Up.Len(), 1e-9)
	assert.InDelta(t, 0, res.Frame.Up.Dot(res.Frame.East), 1e-9)
	assert.True(t, res.Light.Elevation >= -90 && res.Light.Elevation <= 90)
	require.NotNil(t, res.Tide)
	assert.False(t, math.IsNaN(res.Tide.Vertical))
	require.NotNil(t, res.Eclipse)
	assert.Empty(t, res.Fields)
	assert.Empty(t, res.Profile)
}

func TestFramectlSystemFileProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"start": "2024-03-20T03:06:00Z",
		"worlds": [{"world": "terra", "body_id": "earth",
			"environment": {
				"atmosphere": {"sea_level_density": 1.225, "scale_height_m": 8500},
				"temperature": {"surface_temp_k": 288.15, "lapse_rate_k_per_m": 0.0065}
			}}]
	}`), 0o644))

	res := runJSON(t, "-system", path, "-lat", "10", "-lon", "20",
		"-profile-top", "2000", "-profile-step", "1000", "-occluder", "", "-tide-source", "")

	assert.Equal(t, []string{"atmosphere", "temperature", "medium"}, res.Fields)
	assert.InDelta(t, 1.225, res.Sample.Density, 1e-9)
	assert.Nil(t, res.Tide)
	assert.Nil(t, res.Eclipse)
	require.Len(t, res.Profile, 3)
	assert.InDelta(t, 2000, res.Profile[2].Altitude, 1e-6)
	assert.InDelta(t, 288.15-13, res.Profile[2].Sample.Temperature, 1e-6)
	assert.Less(t, res.Profile[2].Sample.Density, res.Profile[0].Sample.Density)
}

func TestFramectlErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	ctx := context.Background()

	assert.Error(t, run(ctx, []string{"-world", "mars"}, &stdout, &stderr))
	assert.Error(t, run(ctx, []string{"-time", "later"}, &stdout, &stderr))
	assert.Error(t, run(ctx, []string{"-source", "vega"}, &stdout, &stderr))
	assert.Error(t, run(ctx, []string{"-no-such-flag"}, &stdout, &stderr))
	// The coordinate origin has no horizon.
	assert.Error(t, run(ctx, []string{"-elev", "-6371000"}, &stdout, &stderr))
}
