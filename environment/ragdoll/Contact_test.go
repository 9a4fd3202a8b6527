package ragdoll

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samuelfneumann/walker/physics"
)

var testContactRewards = ContactRewards{
	Target:        1,
	GroundPenalty: -1,
	WallPenalty:   -0.5,
}

func TestContactTargetRewardedOnce(t *testing.T) {
	sink := &rewardCounter{}
	c := NewContactTracker(testContactRewards, sink)

	c.OnCollisionEnter(physics.Target)
	assert.True(t, c.State().TouchingTarget)
	c.OnCollisionExit(physics.Target)
	assert.False(t, c.State().TouchingTarget)

	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, 1.0, sink.total)

	// Staying on the target is not rewarded again
	c.OnCollisionEnter(physics.Target)
	c.OnCollisionStay(physics.Target)
	c.OnCollisionStay(physics.Target)
	assert.Equal(t, 2, sink.calls)
}

func TestContactGroundPenalizedPerTick(t *testing.T) {
	sink := &rewardCounter{}
	c := NewContactTracker(testContactRewards, sink)

	c.OnCollisionEnter(physics.Ground)
	assert.True(t, c.State().TouchingGround)
	assert.Zero(t, sink.calls)

	for i := 0; i < 3; i++ {
		c.OnCollisionStay(physics.Ground)
	}
	c.OnCollisionStay(physics.Wall)
	assert.Equal(t, -3.5, sink.total)

	c.OnCollisionExit(physics.Ground)
	assert.Equal(t, ContactState{}, c.State())
}

func TestContactIgnoresUnknownTags(t *testing.T) {
	sink := &rewardCounter{}
	c := NewContactTracker(testContactRewards, sink)

	c.OnCollisionEnter(physics.Wall)
	before := c.State()
	for _, tag := range []physics.Tag{physics.Agent, "lava"} {
		c.OnCollisionEnter(tag)
		c.OnCollisionStay(tag)
		c.OnCollisionExit(tag)
	}
	assert.Equal(t, before, c.State())
	assert.Zero(t, sink.calls)
}

func TestContactZeroRewardsAreNotPaid(t *testing.T) {
	sink := &rewardCounter{}
	c := NewContactTracker(ContactRewards{}, sink)

	c.OnCollisionEnter(physics.Target)
	c.OnCollisionStay(physics.Ground)
	assert.Zero(t, sink.calls)
}

func TestContactReset(t *testing.T) {
	c := NewContactTracker(testContactRewards, &rewardCounter{})
	c.OnCollisionEnter(physics.Ground)
	c.OnCollisionEnter(physics.Wall)
	c.OnCollisionEnter(physics.Target)

	c.Reset()
	assert.Equal(t, ContactState{}, c.State())
}
