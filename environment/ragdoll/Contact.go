package ragdoll

import "github.com/samuelfneumann/walker/physics"

// RewardSink accumulates reward for the current episode
type RewardSink interface {
	AddReward(reward float64)
}

// ContactState records which kinds of surfaces a segment touches
type ContactState struct {
	TouchingGround bool
	TouchingWall   bool
	TouchingTarget bool
}

// ContactRewards configures the reward a segment's contacts produce.
// Target is paid once when contact with the target begins. The ground
// and wall penalties are paid on every tick the contact persists.
type ContactRewards struct {
	Target        float64 `yaml:"target"`
	GroundPenalty float64 `yaml:"ground_penalty"`
	WallPenalty   float64 `yaml:"wall_penalty"`
}

// ContactTracker follows the contact state of one segment and pays
// contact rewards into a RewardSink. It implements
// physics.ContactListener.
type ContactTracker struct {
	state   ContactState
	rewards ContactRewards
	sink    RewardSink
}

// NewContactTracker returns a new ContactTracker
func NewContactTracker(rewards ContactRewards, sink RewardSink) *ContactTracker {
	return &ContactTracker{rewards: rewards, sink: sink}
}

// State returns the current contact state
func (c *ContactTracker) State() ContactState {
	return c.state
}

// Reset clears all contact flags
func (c *ContactTracker) Reset() {
	c.state = ContactState{}
}

// OnCollisionEnter marks the contact and pays the target reward when
// the other collider is the target.
func (c *ContactTracker) OnCollisionEnter(other physics.Tag) {
	switch other {
	case physics.Ground:
		c.state.TouchingGround = true

	case physics.Wall:
		c.state.TouchingWall = true

	case physics.Target:
		c.state.TouchingTarget = true
		c.pay(c.rewards.Target)
	}
}

// OnCollisionStay pays the per-tick ground and wall penalties. Target
// contact is only rewarded on enter.
func (c *ContactTracker) OnCollisionStay(other physics.Tag) {
	switch other {
	case physics.Ground:
		c.pay(c.rewards.GroundPenalty)

	case physics.Wall:
		c.pay(c.rewards.WallPenalty)
	}
}

// OnCollisionExit clears the contact
func (c *ContactTracker) OnCollisionExit(other physics.Tag) {
	switch other {
	case physics.Ground:
		c.state.TouchingGround = false

	case physics.Wall:
		c.state.TouchingWall = false

	case physics.Target:
		c.state.TouchingTarget = false
	}
}

func (c *ContactTracker) pay(reward float64) {
	if reward != 0 {
		c.sink.AddReward(reward)
	}
}
