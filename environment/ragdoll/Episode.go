package ragdoll

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/walker/environment"
	"github.com/samuelfneumann/walker/utils/floatutils"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Walking speed defaults
const (
	DefaultMinWalkingSpeed = 0.1
	DefaultMaxWalkingSpeed = 4.0
	DefaultWalkingSpeed    = 2.0
)

// GoalState holds the walking speed the ragdoll should reach. The speed
// is always within the configured range.
type GoalState struct {
	speed float64
	bound r1.Interval
}

// NewGoalState returns a new GoalState with the given speed, clipped to
// bound
func NewGoalState(speed float64, bound r1.Interval) (*GoalState, error) {
	if !(bound.Min > 0) || bound.Min > bound.Max {
		return nil, configErrorf("newGoalState", "invalid walking speed "+
			"range %v", bound)
	}
	g := &GoalState{bound: bound}
	g.SetSpeed(speed)
	return g, nil
}

// Speed returns the goal walking speed
func (g *GoalState) Speed() float64 {
	return g.speed
}

// SetSpeed sets the goal walking speed, clipped to the speed range
func (g *GoalState) SetSpeed(speed float64) {
	g.speed = floatutils.ClipInterval(speed, g.bound)
}

// Bound returns the walking speed range
func (g *GoalState) Bound() r1.Interval {
	return g.bound
}

// EpisodeStart records the random draws made when an episode began
type EpisodeStart struct {
	Yaw       float64
	Speed     float64
	Placement *Placement
}

// EpisodeController resets the ragdoll at the start of every episode:
// segments return to their initial poses, the whole body is turned to
// a random heading, the target is optionally moved, the goal speed is
// optionally resampled, and the frame is recomputed.
type EpisodeController struct {
	skeleton *Skeleton
	frame    *Frame
	goal     *GoalState
	placer   *TargetPlacer

	relocate       bool
	randomizeSpeed bool

	// starter samples (yaw, speed)
	starter *environment.UniformStarter
	logger  *zap.Logger
}

// NewEpisodeController returns a new EpisodeController
func NewEpisodeController(skeleton *Skeleton, frame *Frame,
	goal *GoalState, placer *TargetPlacer, relocate, randomizeSpeed bool,
	seed uint64, logger *zap.Logger) (*EpisodeController, error) {
	const op = "newEpisodeController"
	switch {
	case skeleton == nil:
		return nil, configErrorf(op, "no skeleton")
	case frame == nil:
		return nil, configErrorf(op, "no frame")
	case goal == nil:
		return nil, configErrorf(op, "no goal")
	case placer == nil:
		return nil, configErrorf(op, "no target")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bounds := []r1.Interval{{Min: 0, Max: 360}, goal.Bound()}
	return &EpisodeController{
		skeleton:       skeleton,
		frame:          frame,
		goal:           goal,
		placer:         placer,
		relocate:       relocate,
		randomizeSpeed: randomizeSpeed,
		starter:        environment.NewUniformStarter(bounds, seed),
		logger:         logger,
	}, nil
}

// Begin starts a new episode
func (e *EpisodeController) Begin() EpisodeStart {
	draw := e.starter.Start()
	start := EpisodeStart{Yaw: draw.AtVec(0)}

	e.skeleton.Reset()
	e.skeleton.RotateAboutRoot(spatialutils.Yaw(start.Yaw))

	if e.relocate {
		p := e.placer.Relocate()
		start.Placement = &p
	}

	if e.randomizeSpeed {
		e.goal.SetSpeed(draw.AtVec(1))
	} else {
		e.goal.SetSpeed(e.goal.Speed())
	}
	start.Speed = e.goal.Speed()

	e.frame.Update(e.skeleton.Root().Body.Position(), e.placer.Position())

	e.logger.Debug("episode begin",
		zap.Float64("yaw", start.Yaw),
		zap.Float64("speed", start.Speed),
		zap.Bool("relocated", start.Placement != nil),
	)
	return start
}
