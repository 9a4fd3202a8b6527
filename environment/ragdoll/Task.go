package ragdoll

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/utils/floatutils"
)

// MinWalkingSpeed is the floor applied to the goal speed before it is
// used as a divisor
const MinWalkingSpeed = 0.01

// DefaultFootSpacingCap bounds the reward for spreading the feet
const DefaultFootSpacingCap = 0.1

// Preset is a named reward scheme. The two presets solve the same
// control problem but weight the reward terms differently and route
// contact rewards differently.
type Preset int

const (
	// WalkerPreset pays velocity matching at full weight, always pays
	// foot spacing, and penalizes every tick a non-foot segment spends
	// on the ground.
	WalkerPreset Preset = iota

	// RagdollPreset pays velocity matching at half weight and only
	// shapes foot spacing in FirstStepsMode. Contacts only pay the
	// target bonus.
	RagdollPreset
)

func (p Preset) String() string {
	if p == RagdollPreset {
		return "ragdoll"
	}
	return "walker"
}

// ParsePreset returns the Preset named by s
func ParsePreset(s string) (Preset, error) {
	switch s {
	case "walker", "":
		return WalkerPreset, nil
	case "ragdoll":
		return RagdollPreset, nil
	}
	return 0, fmt.Errorf("parsePreset: unknown preset %q", s)
}

// Weights is the weight table of the per-tick reward
type Weights struct {
	Velocity    float64
	Orientation float64

	// FootSpacing enables the anti-crossover term, which is capped at
	// FootSpacingCap but not bounded below
	FootSpacing    bool
	FootSpacingCap float64

	// EarlyOverride replaces the velocity term with the raw forward
	// velocity whenever the ragdoll is not moving toward the target
	EarlyOverride bool
}

// PresetWeights returns the reward weights of a preset in a mode
func PresetWeights(p Preset, m Mode) Weights {
	first := m == FirstStepsMode
	switch p {
	case RagdollPreset:
		return Weights{
			Velocity:       0.5,
			Orientation:    0.2,
			FootSpacing:    first,
			FootSpacingCap: DefaultFootSpacingCap,
			EarlyOverride:  first,
		}

	default:
		return Weights{
			Velocity:       1.0,
			Orientation:    0.2,
			FootSpacing:    true,
			FootSpacingCap: DefaultFootSpacingCap,
			EarlyOverride:  first,
		}
	}
}

// PresetContactRewards returns the contact rewards of each segment
// under a preset
func PresetContactRewards(p Preset) [NumRoles]ContactRewards {
	var rewards [NumRoles]ContactRewards
	for _, role := range Roles() {
		rewards[role].Target = 1
		if p == WalkerPreset && role != FootL && role != FootR {
			rewards[role].GroundPenalty = -1
		}
	}
	return rewards
}

// ObservesWalls returns whether wall contact is part of the
// observation under a preset
func (p Preset) ObservesWalls() bool {
	return p == WalkerPreset
}

// MatchingVelocityReward returns how closely actual matches goal on a
// curve decaying from 1 at a perfect match to 0 once the two differ by
// speed or more
func MatchingVelocityReward(goal, actual r3.Vec, speed float64) float64 {
	speed = math.Max(speed, MinWalkingSpeed)
	delta := floatutils.Clip(r3.Norm(r3.Sub(actual, goal)), 0, speed)

	ratio := delta / speed
	return math.Pow(1-ratio*ratio, 2)
}

// OrientationReward maps the cosine similarity of the frame's forward
// axis and the head's forward axis linearly onto [0, 1]
func OrientationReward(frameForward, headForward r3.Vec) float64 {
	return floatutils.Clip(0.5*(r3.Dot(frameForward, headForward)+1), 0, 1)
}

// FootSpacingReward returns the distance of the right foot to the
// right of the left foot, capped at limit. Crossed feet produce a
// negative reward which is not bounded.
func FootSpacingReward(footLeft, footRight, footLeftRight r3.Vec,
	limit float64) float64 {
	return math.Min(r3.Dot(r3.Sub(footRight, footLeft), footLeftRight), limit)
}

// EarlyVelocityReward is the velocity term used with the early
// override. It is the raw velocity along forward while that is not
// positive, and the velocity matching curve once it is.
func EarlyVelocityReward(forward, actual r3.Vec, speed float64) float64 {
	raw := r3.Dot(actual, forward)
	if raw > 0 {
		return MatchingVelocityReward(r3.Scale(speed, forward), actual, speed)
	}
	return raw
}

// RewardInputs is the state the per-tick reward is computed from. All
// vectors are in world space.
type RewardInputs struct {
	Forward         r3.Vec
	AverageVelocity r3.Vec
	Speed           float64

	HeadForward r3.Vec

	FootLeft      r3.Vec
	FootRight     r3.Vec
	FootLeftRight r3.Vec
}

// Terms is the breakdown of the per-tick reward. Velocity, Orientation
// and FootSpacing are unweighted; Total is the weighted sum.
type Terms struct {
	Velocity    float64
	Orientation float64
	FootSpacing float64
	Total       float64
}

// Map returns the terms keyed by name
func (t Terms) Map() map[string]float64 {
	return map[string]float64{
		"velocity":     t.Velocity,
		"orientation":  t.Orientation,
		"foot_spacing": t.FootSpacing,
		"total":        t.Total,
	}
}

// RewardShaper computes the per-tick shaped reward
type RewardShaper struct {
	weights Weights
}

// NewRewardShaper returns a new RewardShaper
func NewRewardShaper(w Weights) *RewardShaper {
	return &RewardShaper{w}
}

// Weights returns the weight table of the shaper
func (r *RewardShaper) Weights() Weights {
	return r.weights
}

// Compute returns the reward terms for a tick
func (r *RewardShaper) Compute(in RewardInputs) Terms {
	var t Terms

	goal := r3.Scale(in.Speed, in.Forward)
	if r.weights.EarlyOverride {
		t.Velocity = EarlyVelocityReward(in.Forward, in.AverageVelocity,
			in.Speed)
	} else {
		t.Velocity = MatchingVelocityReward(goal, in.AverageVelocity, in.Speed)
	}

	t.Orientation = OrientationReward(in.Forward, in.HeadForward)

	if r.weights.FootSpacing {
		t.FootSpacing = FootSpacingReward(in.FootLeft, in.FootRight,
			in.FootLeftRight, r.weights.FootSpacingCap)
	}

	t.Total = r.weights.Velocity*t.Velocity +
		r.weights.Orientation*t.Orientation + t.FootSpacing
	return t
}
