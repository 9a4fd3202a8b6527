package ragdoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

func TestSkeletonResetRestoresInitialPose(t *testing.T) {
	rig := newTestRig()
	sk := rig.skeleton(&rewardCounter{})
	rng := rand.New(rand.NewSource(9))

	for trial := 0; trial < 20; trial++ {
		for _, b := range rig.bodies {
			b.pos = r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(),
				Z: rng.NormFloat64()}
			b.rot = spatialutils.Euler(rng.Float64()*360, rng.Float64()*360,
				rng.Float64()*360)
			b.vel = r3.Vec{X: rng.NormFloat64()}
			b.angVel = r3.Vec{Z: rng.NormFloat64()}
			b.enter(physics.Ground)
		}
		sk.RotateAboutRoot(spatialutils.Yaw(rng.Float64() * 360))

		sk.Reset()
		for _, seg := range sk.Segments() {
			got := seg.Snapshot()
			want := seg.Initial()
			assert.InDelta(t, 0, r3.Norm(r3.Sub(want.Position, got.Position)),
				1e-5)
			assertQuatNear(t, want.Rotation, got.Rotation)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(want.Velocity, got.Velocity)),
				1e-5)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(want.AngularVelocity,
				got.AngularVelocity)), 1e-5)
			assert.Equal(t, ContactState{}, seg.Contact.State())
		}
	}
}

func TestNewSkeletonValidates(t *testing.T) {
	rig := newTestRig()
	var rewards [NumRoles]ContactRewards
	sink := &rewardCounter{}

	_, err := NewSkeleton(rig.bindings[:NumRoles-1], rewards, sink)
	assert.True(t, IsConfigurationError(err), "missing role")

	_, err = NewSkeleton(append(rig.bindings, rig.bindings[3]), rewards, sink)
	assert.True(t, IsConfigurationError(err), "duplicate role")

	withJoint := append([]Binding{}, rig.bindings...)
	withJoint[0].Joint = &fakeJoint{}
	_, err = NewSkeleton(withJoint, rewards, sink)
	assert.True(t, IsConfigurationError(err), "root with joint")

	badLimits := append([]Binding{}, rig.bindings...)
	badLimits[2].Limits = JointLimits{LowX: 10, HighX: -10}
	_, err = NewSkeleton(badLimits, rewards, sink)
	assert.True(t, IsConfigurationError(err), "inverted limits")

	_, err = NewSkeleton(rig.bindings, rewards, nil)
	assert.True(t, IsConfigurationError(err), "no sink")
}

func TestSkeletonAverageVelocity(t *testing.T) {
	rig := newTestRig()
	sk := rig.skeleton(&rewardCounter{})
	rig.bodies[Hips].vel = r3.Vec{X: float64(NumRoles)}
	assert.InDelta(t, 1, sk.AverageVelocity().X, 1e-12)
}

func TestGoalStateClamps(t *testing.T) {
	g, err := NewGoalState(10, r1.Interval{Min: 0.1, Max: 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, g.Speed())

	g.SetSpeed(-1)
	assert.Equal(t, 0.1, g.Speed())

	_, err = NewGoalState(1, r1.Interval{Min: 0, Max: 4})
	assert.True(t, IsConfigurationError(err))
}

func newTestEpisode(t *testing.T, relocate, randomize bool) (
	*EpisodeController, *testRig, *fakeBody) {
	rig := newTestRig()
	sk := rig.skeleton(&rewardCounter{})
	goal, err := NewGoalState(2, r1.Interval{Min: 0.5, Max: 3})
	require.NoError(t, err)

	target := newFakeBody(r3.Vec{Y: 1, Z: 8})
	placer, err := NewTargetPlacer(target, &fakeWorld{}, DefaultSpawnConfig(),
		3, zaptest.NewLogger(t))
	require.NoError(t, err)

	e, err := NewEpisodeController(sk, NewFrame(), goal, placer, relocate,
		randomize, 4, zaptest.NewLogger(t))
	require.NoError(t, err)
	return e, rig, target
}

func TestEpisodeBegin(t *testing.T) {
	e, rig, target := newTestEpisode(t, true, true)

	for i := 0; i < 50; i++ {
		rig.bodies[Head].pos = r3.Vec{X: 100}
		start := e.Begin()

		assert.GreaterOrEqual(t, start.Yaw, 0.0)
		assert.Less(t, start.Yaw, 360.0)
		assertQuatNear(t, spatialutils.Yaw(start.Yaw), rig.bodies[Hips].rot)

		// The body turns as a whole around the hips
		head := r3.Sub(rig.bodies[Head].pos, rig.bodies[Hips].pos)
		assert.InDelta(t, 0.7, r3.Norm(head), 1e-9)
		assert.InDelta(t, 0.7, head.Y, 1e-9)

		require.NotNil(t, start.Placement)
		assert.Equal(t, start.Placement.Position, target.pos)

		assert.GreaterOrEqual(t, start.Speed, 0.5)
		assert.LessOrEqual(t, start.Speed, 3.0)
		assert.Equal(t, start.Speed, e.goal.Speed())

		toTarget := r3.Sub(target.pos, rig.bodies[Hips].pos)
		toTarget.Y = 0
		assert.InDelta(t, 1, r3.Dot(r3.Unit(toTarget), e.frame.Forward()),
			1e-9)
	}
}

func TestEpisodeBeginFixedSpeed(t *testing.T) {
	e, _, target := newTestEpisode(t, false, false)
	before := target.pos

	for i := 0; i < 10; i++ {
		start := e.Begin()
		assert.Nil(t, start.Placement)
		assert.Equal(t, 2.0, start.Speed)
	}
	assert.Equal(t, before, target.pos)
}
