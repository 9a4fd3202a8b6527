package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/physics/sim"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

func testWorld(t *testing.T) *sim.World {
	c := sim.DefaultConfig()
	c.Platform = sim.Platform{HalfX: 5, HalfZ: 5}
	c.Obstacles = []sim.Obstacle{{X: 3, Z: 3, HalfX: 1, HalfZ: 1,
		Height: 1}}
	w, err := sim.New(c)
	require.NoError(t, err)

	_, err = w.AddBody("hips", physics.Agent, nil, r3.Vec{Y: 1},
		spatialutils.Identity, 0.5, 1)
	require.NoError(t, err)
	_, err = w.AddBody("target", physics.Target, nil,
		r3.Vec{X: -3, Y: 1, Z: -3}, spatialutils.Identity, 0.5, 1)
	require.NoError(t, err)
	return w
}

func assertColour(t *testing.T, want color.RGBA, got color.Color) {
	t.Helper()
	r, g, b, _ := got.RGBA()
	assert.Equal(t, [3]uint8{want.R, want.G, want.B},
		[3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
}

func TestSnapshot(t *testing.T) {
	img := Snapshot(testWorld(t), Options{Scale: 10})

	// 5 units of platform and 1 of margin on each side
	require.Equal(t, 120, img.Bounds().Dx())
	require.Equal(t, 120, img.Bounds().Dy())

	assertColour(t, Background, img.At(2, 2))
	assertColour(t, Platform, img.At(20, 60))
	assertColour(t, Agent, img.At(60, 60))

	// Ground z grows up the image
	assertColour(t, Wall, img.At(90, 30))
	assertColour(t, Target, img.At(30, 90))
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.png")
	require.NoError(t, SavePNG(path, testWorld(t),
		Options{Heading: r3.Vec{Z: 1}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, SavePNG(filepath.Join(t.TempDir(), "no", "a.png"),
		testWorld(t), Options{}))
}
