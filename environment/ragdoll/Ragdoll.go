// Package ragdoll implements the control and reward logic of a
// ragdoll walker: an articulated humanoid body which learns to walk
// toward a moving target at a goal speed.
//
// Actions are flat vectors which an action Schema decodes into target
// rotations and strengths for each joint drive. Rewards are shaped
// every physics tick from velocity matching, heading alignment, and
// foot spacing terms, plus contact rewards paid by each segment's
// ContactTracker. Observations and rewards are expressed in a
// stabilized Frame which faces the target.
//
// The physics engine is abstracted by the physics package. A Ragdoll
// only reads body state, drives joints, and queries the scene, so any
// engine implementing those interfaces can host it.
package ragdoll

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/walker/environment"
	"github.com/samuelfneumann/walker/physics"
	ts "github.com/samuelfneumann/walker/timestep"
	"github.com/samuelfneumann/walker/utils/curve"
	"github.com/samuelfneumann/walker/utils/matutils"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Default joint drive settings
const (
	DefaultSpring             = 40000.0
	DefaultDamper             = 5000.0
	DefaultMaxJointForceLimit = 20000.0
)

// Config configures a Ragdoll. The zero values of Schema,
// StabilizerGain, and Stabilized select defaults.
type Config struct {
	Preset Preset
	Mode   Mode

	Schema Schema
	Drive  physics.Drive

	WalkingSpeed   float64
	SpeedRange     r1.Interval
	RandomizeSpeed bool

	Spawn SpawnConfig

	StabilizerCurve curve.Curve
	StabilizerGain  float64
	Stabilized      []Role

	StepLimit int
	Discount  float64
	Seed      uint64
}

// DefaultConfig returns the configuration of the walker preset in
// StandardMode
func DefaultConfig() Config {
	return Config{
		Preset: WalkerPreset,
		Mode:   StandardMode,
		Schema: DefaultSchema(),
		Drive: physics.Drive{
			Spring:   DefaultSpring,
			Damper:   DefaultDamper,
			MaxForce: DefaultMaxJointForceLimit,
		},
		WalkingSpeed: DefaultWalkingSpeed,
		SpeedRange: r1.Interval{
			Min: DefaultMinWalkingSpeed,
			Max: DefaultMaxWalkingSpeed,
		},
		RandomizeSpeed:  true,
		Spawn:           DefaultSpawnConfig(),
		StabilizerCurve: curve.Linear(),
		Stabilized:      []Role{Hips, Spine},
		StepLimit:       1000,
		Discount:        0.995,
	}
}

// Ragdoll is a ragdoll walker environment. It drives one articulated
// body in a physics world and implements environment.Environment.
//
// Each Step applies the action to the joint drives, applies the
// upright stabilizers, steps the world, recomputes the frame, shapes
// the tick's reward, and builds the next observation. Contact rewards
// are paid during the world step and are part of the same tick's
// reward.
type Ragdoll struct {
	world physics.World

	skeleton    *Skeleton
	frame       *Frame
	goal        *GoalState
	target      *TargetPlacer
	actuator    *ActuatorMapper
	observer    *ObservationBuilder
	shaper      *RewardShaper
	episode     *EpisodeController
	stabilizers []*Stabilizer

	stepLimit *environment.StepLimit
	discount  float64
	preset    Preset
	mode      Mode

	// tickReward accumulates the reward of the current tick and
	// episodeReward the reward of the current episode
	tickReward    float64
	contactReward float64
	episodeReward float64
	terms         Terms

	currentTimeStep ts.TimeStep
	logger          *zap.Logger
}

// New returns a new Ragdoll driving the bodies in bindings toward the
// target body, together with the first timestep of the first episode.
// Every role must be bound, and the target and world must be non-nil.
func New(world physics.World, bindings []Binding, target physics.Body,
	c Config, logger *zap.Logger) (*Ragdoll, ts.TimeStep, error) {
	if world == nil {
		return nil, ts.TimeStep{}, configErrorf("newRagdoll", "no world")
	}
	if c.Discount < 0 || c.Discount > 1 {
		return nil, ts.TimeStep{}, configErrorf("newRagdoll", "discount "+
			"%v not in [0, 1]", c.Discount)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.Schema.Len() == 0 {
		c.Schema = DefaultSchema()
	}
	if len(c.Stabilized) == 0 {
		c.Stabilized = []Role{Hips, Spine}
	}
	if len(c.StabilizerCurve.Keys()) == 0 {
		c.StabilizerCurve = curve.Linear()
	}
	gain := c.StabilizerGain
	if gain == 0 {
		gain = StabilizerGain(c.Mode)
	}

	r := &Ragdoll{
		world:     world,
		frame:     NewFrame(),
		stepLimit: environment.NewStepLimit(c.StepLimit),
		discount:  c.Discount,
		preset:    c.Preset,
		mode:      c.Mode,
		shaper:    NewRewardShaper(PresetWeights(c.Preset, c.Mode)),
		logger:    logger.With(zap.Stringer("preset", c.Preset),
			zap.Stringer("mode", c.Mode)),
	}

	var err error
	r.skeleton, err = NewSkeleton(bindings, PresetContactRewards(c.Preset), r)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRagdoll: %w", err)
	}

	r.goal, err = NewGoalState(c.WalkingSpeed, c.SpeedRange)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRagdoll: %w", err)
	}

	r.target, err = NewTargetPlacer(target, world, c.Spawn, c.Seed,
		r.logger.Named("target"))
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRagdoll: %w", err)
	}

	r.actuator, err = NewActuatorMapper(c.Schema, r.skeleton, c.Drive)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRagdoll: %w", err)
	}

	r.observer, err = NewObservationBuilder(r.skeleton, r.frame, r.goal,
		target, c.Schema, c.Drive.MaxForce, c.Preset.ObservesWalls())
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRagdoll: %w", err)
	}

	// Offset the episode seed so that headings and speeds are not
	// correlated with target positions
	r.episode, err = NewEpisodeController(r.skeleton, r.frame, r.goal,
		r.target, c.Spawn.RespawnOnTouch, c.RandomizeSpeed, c.Seed+1,
		r.logger)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRagdoll: %w", err)
	}

	for _, role := range c.Stabilized {
		if !role.Valid() {
			return nil, ts.TimeStep{}, configErrorf("newRagdoll",
				"cannot stabilize invalid role %v", role)
		}
		s := NewStabilizer(r.skeleton.Segment(role).Body, c.StabilizerCurve,
			gain)
		r.stabilizers = append(r.stabilizers, s)
	}

	// The target starts somewhere free even when episodes do not move
	// it
	r.target.Relocate()

	firstStep, err := r.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newRagdoll: %w", err)
	}
	return r, firstStep, nil
}

// AddReward adds reward to the current tick. It implements RewardSink.
func (r *Ragdoll) AddReward(reward float64) {
	r.tickReward += reward
	r.contactReward += reward
}

// OnEpisodeBegin resets the ragdoll for a new episode
func (r *Ragdoll) OnEpisodeBegin() EpisodeStart {
	r.tickReward = 0
	r.contactReward = 0
	r.episodeReward = 0
	r.terms = Terms{}
	return r.episode.Begin()
}

// CollectObservations returns the observation of the current state
func (r *Ragdoll) CollectObservations() []float64 {
	return r.observer.Build()
}

// OnActionReceived sends an action to the joint drives
func (r *Ragdoll) OnActionReceived(action []float64) error {
	return r.actuator.Apply(action)
}

// FixedUpdate runs the per-tick logic which follows a world step: the
// frame is recomputed, a fallen target is recovered, and the shaped
// reward is added to the tick.
func (r *Ragdoll) FixedUpdate() Terms {
	r.frame.Update(r.skeleton.Root().Body.Position(), r.target.Position())
	r.target.CheckFall()

	head := r.skeleton.Segment(Head).Body
	footL := r.skeleton.Segment(FootL).Body
	footR := r.skeleton.Segment(FootR).Body

	r.terms = r.shaper.Compute(RewardInputs{
		Forward:         r.frame.Forward(),
		AverageVelocity: r.skeleton.AverageVelocity(),
		Speed:           r.goal.Speed(),
		HeadForward:     spatialutils.ForwardOf(head.Rotation()),
		FootLeft:        footL.Position(),
		FootRight:       footR.Position(),
		FootLeftRight:   spatialutils.RightOf(footL.Rotation()),
	})
	r.tickReward += r.terms.Total
	return r.terms
}

// Reset resets the environment and returns the first timestep of the
// new episode
func (r *Ragdoll) Reset() (ts.TimeStep, error) {
	r.OnEpisodeBegin()

	obs := r.CollectObservations()
	firstStep := ts.New(ts.First, 0, r.discount,
		mat.NewVecDense(len(obs), obs), 0)
	r.currentTimeStep = firstStep
	return firstStep, nil
}

// Step takes one physics tick with the given action. A malformed
// action is a configuration error and leaves the environment
// unchanged.
func (r *Ragdoll) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action == nil || action.Len() != r.actuator.Schema().Len() {
		n := 0
		if action != nil {
			n = action.Len()
		}
		return r.currentTimeStep, false, configErrorf("step", "action "+
			"has length %v, want %v", n, r.actuator.Schema().Len())
	}

	r.tickReward = 0
	r.contactReward = 0

	if err := r.OnActionReceived(matutils.Slice(action)); err != nil {
		return r.currentTimeStep, false, fmt.Errorf("step: %w", err)
	}

	for _, s := range r.stabilizers {
		s.Apply()
	}
	r.world.Step(r.world.Dt())

	terms := r.FixedUpdate()
	r.episodeReward += r.tickReward

	obs := r.CollectObservations()
	t := ts.New(ts.Mid, r.tickReward, r.discount,
		mat.NewVecDense(len(obs), obs), r.currentTimeStep.Number+1)
	t.Info = terms.Map()
	t.Info["contact"] = r.contactReward

	last := r.stepLimit.End(&t)
	r.currentTimeStep = t
	return t, last, nil
}

// CurrentTimeStep returns the last timestep of the environment
func (r *Ragdoll) CurrentTimeStep() ts.TimeStep {
	return r.currentTimeStep
}

// EpisodeReward returns the reward accumulated over the current
// episode
func (r *Ragdoll) EpisodeReward() float64 {
	return r.episodeReward
}

// ObservationSpec returns the observation specification
func (r *Ragdoll) ObservationSpec() environment.Spec {
	return environment.NewUnboundedSpec(r.observer.Len(),
		environment.Observation)
}

// ActionSpec returns the action specification. Every action value is
// bounded by [-1, 1].
func (r *Ragdoll) ActionSpec() environment.Spec {
	return environment.NewBoxSpec(r.actuator.Schema().Len(),
		environment.Action, -1, 1)
}

// DiscountSpec returns the discount specification
func (r *Ragdoll) DiscountSpec() environment.Spec {
	return environment.NewBoxSpec(1, environment.Discount, 0, 1)
}

// Skeleton returns the segments of the ragdoll
func (r *Ragdoll) Skeleton() *Skeleton { return r.skeleton }

// Frame returns the reference frame of the ragdoll
func (r *Ragdoll) Frame() *Frame { return r.frame }

// Goal returns the goal state of the ragdoll
func (r *Ragdoll) Goal() *GoalState { return r.goal }

// Target returns the target placer of the ragdoll
func (r *Ragdoll) Target() *TargetPlacer { return r.target }

// Schema returns the action schema of the ragdoll
func (r *Ragdoll) Schema() Schema { return r.actuator.Schema() }

// Stabilizers returns the upright stabilizers of the ragdoll
func (r *Ragdoll) Stabilizers() []*Stabilizer { return r.stabilizers }

// Preset returns the reward preset of the ragdoll
func (r *Ragdoll) Preset() Preset { return r.preset }

// Mode returns the control mode of the ragdoll
func (r *Ragdoll) Mode() Mode { return r.mode }

// Terms returns the reward terms of the last tick
func (r *Ragdoll) Terms() Terms { return r.terms }
