package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

type recorder struct {
	events []string
}

func (r *recorder) OnCollisionEnter(t physics.Tag) {
	r.events = append(r.events, "enter "+string(t))
}

func (r *recorder) OnCollisionStay(t physics.Tag) {
	r.events = append(r.events, "stay "+string(t))
}

func (r *recorder) OnCollisionExit(t physics.Tag) {
	r.events = append(r.events, "exit "+string(t))
}

func newTestWorld(t *testing.T, obstacles ...Obstacle) *World {
	c := DefaultConfig()
	c.Obstacles = obstacles
	w, err := New(c)
	require.NoError(t, err)
	return w
}

func TestBodyFallsOntoPlatform(t *testing.T) {
	w := newTestWorld(t)
	b, err := w.AddBody("ball", physics.Target, nil, r3.Vec{Y: 2},
		spatialutils.Identity, 0.5, 1)
	require.NoError(t, err)
	rec := &recorder{}
	b.Subscribe(rec)

	for i := 0; i < 200; i++ {
		w.Step(w.Dt())
	}
	assert.InDelta(t, 0.5, b.Position().Y, 1e-9)
	assert.True(t, b.Touching(physics.Ground))
	assert.Equal(t, "enter ground", rec.events[0])
	for _, e := range rec.events[1:] {
		assert.Equal(t, "stay ground", e)
	}
	assert.Equal(t, 200, w.Steps())
}

func TestBodyFallsOffPlatform(t *testing.T) {
	w := newTestWorld(t)
	b, err := w.AddBody("ball", physics.Target, nil, r3.Vec{X: 20, Y: 1},
		spatialutils.Identity, 0.5, 1)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		w.Step(w.Dt())
	}
	assert.Less(t, b.Position().Y, -5.0)
	assert.False(t, b.Touching(physics.Ground))
}

func TestJointDrivesChild(t *testing.T) {
	w := newTestWorld(t)
	root, err := w.AddBody("root", physics.Agent, nil, r3.Vec{Y: 1},
		spatialutils.Identity, 0.2, 10)
	require.NoError(t, err)
	limb, err := w.AddBody("limb", physics.Agent, root, r3.Vec{Y: 0.5},
		spatialutils.Identity, 0.1, 1)
	require.NoError(t, err)
	tip, err := w.AddBody("tip", physics.Agent, limb, r3.Vec{Y: 0.2},
		spatialutils.Identity, 0.1, 1)
	require.NoError(t, err)

	// A limp joint does not move
	limb.Joint().SetTargetRotation(spatialutils.Euler(90, 0, 0))
	w.Step(w.Dt())
	assert.InDelta(t, 0, spatialutils.Angle(spatialutils.UpOf(limb.LocalRotation()),
		spatialutils.Up), 1e-6)

	limb.Joint().SetDrive(physics.Drive{Spring: 1000, Damper: 10,
		MaxForce: 1000})
	for i := 0; i < 100; i++ {
		w.Step(w.Dt())
	}
	assert.InDelta(t, 90, spatialutils.Angle(spatialutils.UpOf(limb.LocalRotation()),
		spatialutils.Up), 1e-3)

	// The tip hangs 0.3 below the limb, now turned onto +z
	rel := spatialutils.InverseRotate(root.Rotation(),
		r3.Sub(tip.Position(), limb.Position()))
	assert.InDelta(t, 0, rel.Y, 1e-3)
	assert.InDelta(t, 0.3, math.Abs(rel.Z), 1e-3)

	// Once settled the limb is at rest relative to the root
	assert.InDelta(t, 0, r3.Norm(r3.Sub(limb.AngularVelocity(),
		root.AngularVelocity())), 1e-2)
}

func TestTorqueTurnsChain(t *testing.T) {
	c := DefaultConfig()
	c.Gravity = 0
	c.AngularDamping = 0
	w, err := New(c)
	require.NoError(t, err)

	root, err := w.AddBody("root", physics.Agent, nil, r3.Vec{Y: 5},
		spatialutils.Identity, 0.5, 1)
	require.NoError(t, err)
	child, err := w.AddBody("child", physics.Agent, root, r3.Vec{Y: 5.5},
		spatialutils.Identity, 0.1, 1)
	require.NoError(t, err)

	// Torque on the child turns the whole chain
	child.AddTorque(r3.Vec{Z: 10})
	w.Step(w.Dt())
	assert.Greater(t, root.AngularVelocity().Z, 0.0)
	assert.Equal(t, r3.Vec{}, child.torque)

	w.Step(w.Dt())
	assert.Less(t, child.Position().X, 0.0)
}

func TestContactEvents(t *testing.T) {
	w := newTestWorld(t, Obstacle{X: 3, Z: 0, HalfX: 0.5, HalfZ: 5,
		Height: 2})

	body, err := w.AddBody("hand", physics.Agent, nil, r3.Vec{Y: 0.1},
		spatialutils.Identity, 0.1, 1)
	require.NoError(t, err)
	target, err := w.AddBody("target", physics.Target, nil,
		r3.Vec{X: -3, Y: 0.5}, spatialutils.Identity, 0.5, 1)
	require.NoError(t, err)

	bodyEvents, targetEvents := &recorder{}, &recorder{}
	body.Subscribe(bodyEvents)
	target.Subscribe(targetEvents)

	w.Step(w.Dt())
	assert.Equal(t, []string{"enter ground"}, bodyEvents.events)

	// Against the wall
	body.Teleport(r3.Vec{X: 2.45, Y: 0.1}, spatialutils.Identity)
	bodyEvents.events = nil
	w.Step(w.Dt())
	assert.Equal(t, []string{"enter ground", "enter wall"}, bodyEvents.events)

	// On the target
	body.Teleport(r3.Vec{X: -3, Y: 0.1, Z: 0.3}, spatialutils.Identity)
	bodyEvents.events, targetEvents.events = nil, nil
	w.Step(w.Dt())
	assert.Equal(t, []string{"enter ground", "enter target"},
		bodyEvents.events)
	assert.Contains(t, targetEvents.events, "enter agent")

	// Leaving the target
	bodyEvents.events = nil
	body.pos = r3.Vec{X: 5, Y: 0.1, Z: 3}
	w.Step(w.Dt())
	assert.Equal(t, []string{"stay ground", "exit target"}, bodyEvents.events)
}

func TestOverlapsAndRaycast(t *testing.T) {
	w := newTestWorld(t, Obstacle{X: 0, Z: 5, HalfX: 1, HalfZ: 1, Yaw: 45,
		Height: 3})
	_, err := w.AddBody("agent", physics.Agent, nil, r3.Vec{X: -5, Y: 1},
		spatialutils.Identity, 0.3, 1)
	require.NoError(t, err)
	_, err = w.AddBody("target", physics.Target, nil, r3.Vec{X: 5, Y: 1},
		spatialutils.Identity, 0.5, 1)
	require.NoError(t, err)

	assert.True(t, w.Overlaps(r3.Vec{X: 0, Y: 1, Z: 5}, 0.1))
	// Turned 45 degrees the corner reaches sqrt(2) along x
	assert.True(t, w.Overlaps(r3.Vec{X: 1.3, Y: 1, Z: 5}, 0.2))
	assert.False(t, w.Overlaps(r3.Vec{X: 1.3, Y: 1, Z: 6.3}, 0.2))
	// Above the obstacle
	assert.False(t, w.Overlaps(r3.Vec{X: 0, Y: 4, Z: 5}, 0.5))
	// Agents count, targets and the ground do not
	assert.True(t, w.Overlaps(r3.Vec{X: -5, Y: 1.5}, 0.3))
	assert.False(t, w.Overlaps(r3.Vec{X: 5, Y: 1}, 0.5))
	assert.False(t, w.Overlaps(r3.Vec{Y: 0.4}, 0.5))

	hit, ok := w.RaycastDown(r3.Vec{X: 0, Y: 10, Z: 5}, math.Inf(1))
	require.True(t, ok)
	assert.Equal(t, 3.0, hit.Y)

	hit, ok = w.RaycastDown(r3.Vec{X: 7, Y: 10, Z: 7}, math.Inf(1))
	require.True(t, ok)
	assert.Equal(t, 0.0, hit.Y)

	_, ok = w.RaycastDown(r3.Vec{X: 7, Y: 10, Z: 7}, 5)
	assert.False(t, ok)
	_, ok = w.RaycastDown(r3.Vec{X: 40, Y: 10}, math.Inf(1))
	assert.False(t, ok)
}

func TestArenaFootprints(t *testing.T) {
	a, err := NewArena(0, Obstacle{X: 2, Z: 1, HalfX: 1, HalfZ: 0.5,
		Height: 1, Yaw: 90})
	require.NoError(t, err)

	footprints := a.Footprints()
	require.Len(t, footprints, 1)
	require.Len(t, footprints[0], 4)

	// Turned a quarter turn, the long side runs along z
	for _, c := range footprints[0] {
		assert.InDelta(t, 0.5, math.Abs(c[0]-2), 1e-9)
		assert.InDelta(t, 1, math.Abs(c[1]-1), 1e-9)
	}
	assert.True(t, a.Obstacles()[0].Contains(2.4, 1.9))
	assert.False(t, a.Obstacles()[0].Contains(2.9, 1))

	_, err = NewArena(0, Obstacle{HalfX: 1})
	assert.Error(t, err)
}

func TestAddBodyValidates(t *testing.T) {
	w := newTestWorld(t)
	other := newTestWorld(t)
	stranger, err := other.AddBody("stranger", physics.Agent, nil, r3.Vec{},
		spatialutils.Identity, 1, 1)
	require.NoError(t, err)

	_, err = w.AddBody("child", physics.Agent, stranger, r3.Vec{},
		spatialutils.Identity, 1, 1)
	assert.Error(t, err)

	_, err = w.AddBody("flat", physics.Agent, nil, r3.Vec{},
		spatialutils.Identity, 0, 1)
	assert.Error(t, err)

	_, err = New(Config{})
	assert.Error(t, err)
}

func TestKinematicBodyFloats(t *testing.T) {
	w := newTestWorld(t)
	b, err := w.AddBody("target", physics.Target, nil, r3.Vec{Y: 1},
		spatialutils.Identity, 0.5, 1)
	require.NoError(t, err)
	b.SetKinematic(true)
	b.AddTorque(r3.Vec{X: 100})

	for i := 0; i < 50; i++ {
		w.Step(w.Dt())
	}
	assert.Equal(t, r3.Vec{Y: 1}, b.Position())
	assert.Equal(t, spatialutils.Identity, b.Rotation())

	b.SetVelocity(r3.Vec{X: 1}, r3.Vec{})
	w.Step(w.Dt())
	assert.InDelta(t, 0.02, b.Position().X, 1e-12)
}
