package ragdoll

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Region is the shape of the volume targets are spawned in
type Region int

const (
	// BoxRegion samples x and z in a rectangle and finds the ground
	// height below the sample with a raycast
	BoxRegion Region = iota

	// DiskRegion samples uniformly over the area of a horizontal disk
	DiskRegion
)

func (r Region) String() string {
	if r == DiskRegion {
		return "disk"
	}
	return "box"
}

// ParseRegion returns the Region named by s
func ParseRegion(s string) (Region, error) {
	switch s {
	case "box", "":
		return BoxRegion, nil
	case "disk":
		return DiskRegion, nil
	}
	return 0, fmt.Errorf("parseRegion: unknown region %q", s)
}

// Target placement defaults
const (
	DefaultRayDown        = 10.0
	DefaultMaxAttempts    = 1000
	DefaultFallThreshold  = -5.0
	DefaultTargetScale    = 1.0
	DefaultSpawnHalfWidth = 10.0
)

// SpawnConfig describes where targets may be placed
type SpawnConfig struct {
	Region Region

	// X and Z bound the box region. Y is the height band above the
	// ground (box) or above the centre (disk).
	X, Y, Z r1.Interval

	// Centre and Radius describe the disk region
	Centre r3.Vec
	Radius float64

	// RayDown is the height the ground raycast starts from
	RayDown float64

	// Scale is the diameter of the target, used for overlap queries
	Scale float64

	MaxAttempts    int
	FallThreshold  float64
	RespawnOnTouch bool
}

// DefaultSpawnConfig returns a box region of 20 x 20 units around the
// origin with targets floating 0.5 to 1.5 units above the ground
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		Region:         BoxRegion,
		X:              r1.Interval{Min: -DefaultSpawnHalfWidth, Max: DefaultSpawnHalfWidth},
		Y:              r1.Interval{Min: 0.5, Max: 1.5},
		Z:              r1.Interval{Min: -DefaultSpawnHalfWidth, Max: DefaultSpawnHalfWidth},
		Radius:         DefaultSpawnHalfWidth,
		RayDown:        DefaultRayDown,
		Scale:          DefaultTargetScale,
		MaxAttempts:    DefaultMaxAttempts,
		FallThreshold:  DefaultFallThreshold,
		RespawnOnTouch: true,
	}
}

// Validate checks the spawn configuration for degenerate regions
func (c SpawnConfig) Validate() error {
	const op = "validate"

	if c.Y.Min > c.Y.Max {
		return configErrorf(op, "empty height band %v", c.Y)
	}
	switch c.Region {
	case BoxRegion:
		if !(c.X.Max > c.X.Min) || !(c.Z.Max > c.Z.Min) {
			return configErrorf(op, "zero-size spawn box x=%v z=%v", c.X,
				c.Z)
		}
	case DiskRegion:
		if !(c.Radius > 0) {
			return configErrorf(op, "zero-size spawn disk radius %v",
				c.Radius)
		}
	default:
		return configErrorf(op, "unknown region %v", c.Region)
	}
	if c.MaxAttempts <= 0 {
		return configErrorf(op, "max attempts must be positive, got %v",
			c.MaxAttempts)
	}
	if !(c.Scale > 0) {
		return configErrorf(op, "target scale must be positive, got %v",
			c.Scale)
	}
	return nil
}

// Placement is the outcome of a target relocation
type Placement struct {
	Position r3.Vec
	Attempts int

	// Exhausted reports that no free position was found within the
	// attempt budget and Position is the last candidate tried
	Exhausted bool
}

// TargetPlacer moves a target to random free positions. It rejects
// candidates which overlap other colliders, relocates the target when
// it falls off the platform, and when respawn on touch is enabled,
// whenever an agent collides with it. It implements
// physics.ContactListener so it can be subscribed to the target body.
type TargetPlacer struct {
	target physics.Body
	scene  physics.Scene
	config SpawnConfig

	rng    distuv.Uniform
	logger *zap.Logger

	last Placement
}

// NewTargetPlacer returns a new TargetPlacer
func NewTargetPlacer(target physics.Body, scene physics.Scene,
	config SpawnConfig, seed uint64, logger *zap.Logger) (*TargetPlacer,
	error) {
	if target == nil {
		return nil, configErrorf("newTargetPlacer", "no target body")
	}
	if scene == nil {
		return nil, configErrorf("newTargetPlacer", "no scene")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newTargetPlacer: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &TargetPlacer{
		target: target,
		scene:  scene,
		config: config,
		rng:    distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)},
		logger: logger,
	}
	target.Subscribe(p)

	return p, nil
}

// Config returns the spawn configuration
func (p *TargetPlacer) Config() SpawnConfig {
	return p.config
}

// Position returns the current target position
func (p *TargetPlacer) Position() r3.Vec {
	return p.target.Position()
}

// Last returns the most recent placement
func (p *TargetPlacer) Last() Placement {
	return p.last
}

// Relocate moves the target to a random position that does not overlap
// any collider. If every candidate within the attempt budget overlaps,
// a warning is logged and the last candidate is used.
func (p *TargetPlacer) Relocate() Placement {
	radius := p.config.Scale / 2

	var candidate r3.Vec
	placement := Placement{}
	for placement.Attempts < p.config.MaxAttempts {
		candidate = p.sample()
		placement.Attempts++
		if !p.scene.Overlaps(candidate, radius) {
			placement.Position = candidate
			p.place(placement)
			return placement
		}
	}

	placement.Position = candidate
	placement.Exhausted = true
	p.logger.Warn("using last candidate for target",
		zap.Error(ErrPlacementExhausted),
		zap.Int("attempts", placement.Attempts),
		zap.Float64s("position", spatialutils.Slice(candidate)),
	)
	p.place(placement)
	return placement
}

// CheckFall relocates the target if it has fallen below the fall
// threshold and returns whether it did so
func (p *TargetPlacer) CheckFall() bool {
	pos := p.target.Position()
	if pos.Y >= p.config.FallThreshold {
		return false
	}

	p.logger.Info("target fell off platform",
		zap.Float64s("position", spatialutils.Slice(pos)))
	p.Relocate()
	return true
}

// OnCollisionEnter relocates the target when an agent touches it and
// respawn on touch is enabled
func (p *TargetPlacer) OnCollisionEnter(other physics.Tag) {
	if other == physics.Agent && p.config.RespawnOnTouch {
		p.Relocate()
	}
}

// OnCollisionStay implements physics.ContactListener
func (p *TargetPlacer) OnCollisionStay(physics.Tag) {}

// OnCollisionExit implements physics.ContactListener
func (p *TargetPlacer) OnCollisionExit(physics.Tag) {}

func (p *TargetPlacer) place(placement Placement) {
	p.last = placement
	p.target.Teleport(placement.Position, p.target.Rotation())
	p.target.SetVelocity(r3.Vec{}, r3.Vec{})
}

// sample draws a single candidate position
func (p *TargetPlacer) sample() r3.Vec {
	c := p.config
	switch c.Region {
	case DiskRegion:
		r := c.Radius * math.Sqrt(p.rng.Rand())
		theta := 2 * math.Pi * p.rng.Rand()
		return r3.Vec{
			X: c.Centre.X + r*math.Cos(theta),
			Y: c.Centre.Y + p.between(c.Y),
			Z: c.Centre.Z + r*math.Sin(theta),
		}

	default:
		candidate := r3.Vec{
			X: p.between(c.X),
			Y: c.RayDown,
			Z: p.between(c.Z),
		}
		if hit, ok := p.scene.RaycastDown(candidate, math.Inf(1)); ok {
			candidate.Y = hit.Y + p.between(c.Y)
		}
		return candidate
	}
}

func (p *TargetPlacer) between(i r1.Interval) float64 {
	return i.Min + (i.Max-i.Min)*p.rng.Rand()
}
