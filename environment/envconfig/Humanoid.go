package envconfig

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/environment/ragdoll"
	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/physics/sim"
	ts "github.com/samuelfneumann/walker/timestep"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// TargetMass is the mass of the target body
const TargetMass = 1.0

// BodySpec describes one segment body of the simulated humanoid.
// Positions are relative to the instance origin with the humanoid
// standing on the platform facing +z.
type BodySpec struct {
	Parent   ragdoll.Role
	Position r3.Vec
	Radius   float64
	Mass     float64
}

// Humanoid is the body layout of the simulated humanoid. The root's
// Parent is ignored.
var Humanoid = [ragdoll.NumRoles]BodySpec{
	ragdoll.Hips:     {ragdoll.Hips, r3.Vec{Y: 1.0}, 0.15, 10},
	ragdoll.Spine:    {ragdoll.Hips, r3.Vec{Y: 1.3}, 0.15, 8},
	ragdoll.Head:     {ragdoll.Spine, r3.Vec{Y: 1.65}, 0.12, 5},
	ragdoll.ThighL:   {ragdoll.Hips, r3.Vec{X: -0.1, Y: 0.75}, 0.08, 6},
	ragdoll.ShinL:    {ragdoll.ThighL, r3.Vec{X: -0.1, Y: 0.4}, 0.06, 4},
	ragdoll.FootL:    {ragdoll.ShinL, r3.Vec{X: -0.1, Y: 0.06, Z: 0.05}, 0.06, 1},
	ragdoll.ThighR:   {ragdoll.Hips, r3.Vec{X: 0.1, Y: 0.75}, 0.08, 6},
	ragdoll.ShinR:    {ragdoll.ThighR, r3.Vec{X: 0.1, Y: 0.4}, 0.06, 4},
	ragdoll.FootR:    {ragdoll.ShinR, r3.Vec{X: 0.1, Y: 0.06, Z: 0.05}, 0.06, 1},
	ragdoll.ArmL:     {ragdoll.Spine, r3.Vec{X: -0.3, Y: 1.4}, 0.06, 3},
	ragdoll.ForearmL: {ragdoll.ArmL, r3.Vec{X: -0.55, Y: 1.4}, 0.05, 2},
	ragdoll.ArmR:     {ragdoll.Spine, r3.Vec{X: 0.3, Y: 1.4}, 0.06, 3},
	ragdoll.ForearmR: {ragdoll.ArmR, r3.Vec{X: 0.55, Y: 1.4}, 0.05, 2},
}

// DefaultJointLimits are the joint limits of each segment in degrees
var DefaultJointLimits = [ragdoll.NumRoles]ragdoll.JointLimits{
	ragdoll.Spine:    {LowX: -30, HighX: 30, Y: 20, Z: 20},
	ragdoll.Head:     {LowX: -30, HighX: 30, Y: 45},
	ragdoll.ThighL:   {LowX: -90, HighX: 60, Z: 30},
	ragdoll.ShinL:    {LowX: 0, HighX: 120},
	ragdoll.FootL:    {LowX: -40, HighX: 40, Y: 20, Z: 20},
	ragdoll.ThighR:   {LowX: -90, HighX: 60, Z: 30},
	ragdoll.ShinR:    {LowX: 0, HighX: 120},
	ragdoll.FootR:    {LowX: -40, HighX: 40, Y: 20, Z: 20},
	ragdoll.ArmL:     {LowX: -90, HighX: 90, Z: 90},
	ragdoll.ForearmL: {LowX: 0, HighX: 120},
	ragdoll.ArmR:     {LowX: -90, HighX: 90, Z: 90},
	ragdoll.ForearmR: {LowX: 0, HighX: 120},
}

// Instance is one isolated ragdoll walker together with the world
// simulating it
type Instance struct {
	Origin  r3.Vec
	World   *sim.World
	Bodies  [ragdoll.NumRoles]*sim.Body
	Target  *sim.Body
	Ragdoll *ragdoll.Ragdoll
}

// Create builds the instance at the origin and returns it with the
// first timestep of its first episode
func (c Config) Create(seed uint64, logger *zap.Logger) (*Instance,
	ts.TimeStep, error) {
	return c.CreateAt(r3.Vec{}, seed, logger)
}

// CreateAt builds an instance whose world, humanoid, and spawn region
// are shifted to origin. The seed replaces the configured seed.
func (c Config) CreateAt(origin r3.Vec, seed uint64,
	logger *zap.Logger) (*Instance, ts.TimeStep, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rc, err := c.Ragdoll(origin)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createAt: %w", err)
	}
	rc.Seed = seed

	limits, err := c.Limits()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createAt: %v", err)
	}

	world, err := sim.New(c.Sim(origin))
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createAt: %v", err)
	}

	inst := &Instance{Origin: origin, World: world}
	bindings := make([]ragdoll.Binding, 0, ragdoll.NumRoles)
	for _, role := range ragdoll.Roles() {
		spec := Humanoid[role]

		var parent *sim.Body
		if role != ragdoll.Root {
			parent = inst.Bodies[spec.Parent]
		}
		body, err := world.AddBody(role.String(), physics.Agent, parent,
			r3.Add(origin, spec.Position), spatialutils.Identity,
			spec.Radius, spec.Mass)
		if err != nil {
			return nil, ts.TimeStep{}, fmt.Errorf("createAt: %v", err)
		}
		inst.Bodies[role] = body

		b := ragdoll.Binding{Role: role, Body: body}
		if role != ragdoll.Root {
			b.Joint = body.Joint()
			b.Limits = limits[role]
		}
		bindings = append(bindings, b)
	}

	// The target floats where it is placed. It starts in front of the
	// humanoid and is moved into the spawn region by the ragdoll.
	inst.Target, err = world.AddBody("target", physics.Target, nil,
		r3.Add(origin, r3.Vec{Y: 1, Z: 5}), spatialutils.Identity,
		rc.Spawn.Scale/2, TargetMass)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createAt: %v", err)
	}
	inst.Target.SetKinematic(true)

	var step ts.TimeStep
	inst.Ragdoll, step, err = ragdoll.New(world, bindings, inst.Target, rc,
		logger)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createAt: %w", err)
	}
	return inst, step, nil
}
