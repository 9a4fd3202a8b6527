package ragdoll

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

var testDrive = physics.Drive{Spring: 100, Damper: 10, MaxForce: 200}

func newTestActuator(t *testing.T) (*ActuatorMapper, *testRig) {
	rig := newTestRig()
	a, err := NewActuatorMapper(DefaultSchema(), rig.skeleton(&rewardCounter{}),
		testDrive)
	require.NoError(t, err)
	return a, rig
}

func assertQuatNear(t *testing.T, want, got quat.Number) {
	t.Helper()
	// q and -q are the same rotation
	d := math.Abs(want.Real*got.Real + want.Imag*got.Imag +
		want.Jmag*got.Jmag + want.Kmag*got.Kmag)
	assert.InDelta(t, 1, d, 1e-9, "want %v got %v", want, got)
}

func TestActuatorMapsActionsOntoLimits(t *testing.T) {
	a, rig := newTestActuator(t)

	action := make([]float64, a.Schema().Len())
	action[0], action[1], action[2] = 1, -1, 0 // spine x, y, z
	action[5] = 0.5                             // thighR x
	action[23] = 1                              // spine strength
	action[24] = -1                             // head strength
	require.NoError(t, a.Apply(action))

	// x spans [-90, 90], y and z span [-30, 30]
	assertQuatNear(t, spatialutils.Euler(90, -30, 0),
		rig.joints[Spine].target)
	assertQuatNear(t, spatialutils.Euler(45, 0, 0), rig.joints[ThighR].target)

	assert.Equal(t, physics.Drive{Spring: 100, Damper: 10, MaxForce: 200},
		rig.joints[Spine].drive)
	assert.Equal(t, 200.0, a.skeleton.Segment(Spine).CurrentStrength)
	assert.Equal(t, 0.0, rig.joints[Head].drive.MaxForce)
	assert.Equal(t, 100.0, a.skeleton.Segment(ThighL).CurrentStrength)
}

func TestActuatorIgnoresUncontrolledAxes(t *testing.T) {
	a, rig := newTestActuator(t)

	action := make([]float64, a.Schema().Len())
	for i := range action {
		action[i] = 1
	}
	require.NoError(t, a.Apply(action))

	// Shins only bend around x, so y and z stay at the middle of their
	// ranges
	assertQuatNear(t, spatialutils.Euler(90, 0, 0), rig.joints[ShinL].target)
	assertQuatNear(t, spatialutils.Euler(90, 0, 30), rig.joints[ArmL].target)
	assertQuatNear(t, spatialutils.Euler(90, 30, 0), rig.joints[Head].target)
}

func TestActuatorClipsActions(t *testing.T) {
	a, rig := newTestActuator(t)

	action := make([]float64, a.Schema().Len())
	action[3] = 7
	action[23] = 5
	require.NoError(t, a.Apply(action))

	assertQuatNear(t, spatialutils.Euler(90, 0, 0), rig.joints[ThighL].target)
	assert.Equal(t, testDrive.MaxForce, a.skeleton.Segment(Spine).CurrentStrength)
}

func TestActuatorRejectsWrongLength(t *testing.T) {
	a, rig := newTestActuator(t)

	err := a.Apply(make([]float64, a.Schema().Len()-1))
	assert.True(t, IsConfigurationError(err))
	for _, role := range Roles() {
		if j := rig.joints[role]; j != nil {
			assert.Zero(t, j.commands, "%v commanded", role)
		}
	}
}

func TestNewActuatorMapperValidates(t *testing.T) {
	rig := newTestRig()
	sk := rig.skeleton(&rewardCounter{})

	_, err := NewActuatorMapper(DefaultSchema(), sk, physics.Drive{})
	assert.True(t, IsConfigurationError(err))

	short, err := NewSchema(DefaultSchema().Entries()[:3]...)
	require.NoError(t, err)
	_, err = NewActuatorMapper(short, sk, testDrive)
	assert.True(t, IsConfigurationError(err))
}

func TestSegmentWithoutDrivePanics(t *testing.T) {
	sk := newTestRig().skeleton(&rewardCounter{})
	assert.Panics(t, func() { sk.Root().SetJointTargetRotation(0, 0, 0) })
	assert.Panics(t, func() { sk.Root().SetJointStrength(0, testDrive) })
}
