// Package sim implements a small physics engine for articulated
// bodies. It is not a general rigid body solver: each chain of bodies
// moves as one free root with its children posed kinematically by
// their joint drives, standing on a flat platform among static box
// obstacles. This is enough to exercise a controller against
// gravity, ground contact, joint drives, and collision events.
package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Platform is the flat, finite ground of a world. Bodies outside its
// footprint fall.
type Platform struct {
	Centre r3.Vec  `yaml:"centre"`
	HalfX  float64 `yaml:"half_x"`
	HalfZ  float64 `yaml:"half_z"`
}

// Contains returns whether (x, z) lies above the platform
func (p Platform) Contains(x, z float64) bool {
	return math.Abs(x-p.Centre.X) <= p.HalfX &&
		math.Abs(z-p.Centre.Z) <= p.HalfZ
}

// Height returns the height of the platform surface
func (p Platform) Height() float64 {
	return p.Centre.Y
}

// Config configures a World
type Config struct {
	Dt       float64  `yaml:"dt"`
	Gravity  float64  `yaml:"gravity"`
	Platform Platform `yaml:"platform"`

	Obstacles []Obstacle `yaml:"obstacles"`

	// Friction is the rate in 1/s at which grounded chains lose
	// horizontal velocity
	Friction float64 `yaml:"friction"`

	// Traction is the fraction of a grounded limb's slip relative to
	// its root that pushes the root the other way
	Traction float64 `yaml:"traction"`

	AngularDamping float64 `yaml:"angular_damping"`

	// ContactSkin is the distance within which bodies count as
	// touching the ground
	ContactSkin float64 `yaml:"contact_skin"`
}

// DefaultConfig returns a 30 x 30 platform at height zero stepped at
// 50Hz
func DefaultConfig() Config {
	return Config{
		Dt:             0.02,
		Gravity:        9.81,
		Platform:       Platform{HalfX: 15, HalfZ: 15},
		Friction:       4,
		Traction:       0.8,
		AngularDamping: 2,
		ContactSkin:    0.01,
	}
}

// World is a physics world. It implements physics.World.
type World struct {
	config Config
	arena  *Arena

	// bodies holds every body with parents before their children
	bodies []*Body
	chains map[*Body][]*Body

	steps int
}

// New returns a new, empty World
func New(c Config) (*World, error) {
	if !(c.Dt > 0) {
		return nil, fmt.Errorf("new: time step must be positive, got %v",
			c.Dt)
	}
	if c.Platform.HalfX < 0 || c.Platform.HalfZ < 0 {
		return nil, fmt.Errorf("new: invalid platform %+v", c.Platform)
	}

	arena, err := NewArena(c.Platform.Height(), c.Obstacles...)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &World{
		config: c,
		arena:  arena,
		chains: make(map[*Body][]*Body),
	}, nil
}

// AddBody adds a sphere to the world. If parent is non-nil, the body
// hangs off parent at its current offset and gets a Joint, otherwise
// it moves freely.
func (w *World) AddBody(name string, tag physics.Tag, parent *Body,
	position r3.Vec, rotation quat.Number, radius, mass float64) (*Body,
	error) {
	if !(radius > 0) || !(mass > 0) {
		return nil, fmt.Errorf("addBody: body %v needs positive radius "+
			"and mass", name)
	}

	b := &Body{
		name:     name,
		tag:      tag,
		parent:   parent,
		radius:   radius,
		mass:     mass,
		pos:      position,
		rot:      spatialutils.Normalize(rotation),
		touching: make(map[physics.Tag]bool),
	}
	b.prevPos, b.prevRot = b.pos, b.rot

	if parent != nil {
		root := parent.root()
		if _, ok := w.chains[root]; !ok {
			return nil, fmt.Errorf("addBody: parent %v of %v is not in "+
				"this world", parent.name, name)
		}
		b.offset = spatialutils.InverseRotate(parent.rot,
			r3.Sub(position, parent.pos))
		b.joint = newJoint(b)
		w.chains[root] = append(w.chains[root], b)
	} else {
		w.chains[b] = []*Body{b}
	}

	w.bodies = append(w.bodies, b)
	return b, nil
}

// Bodies returns every body of the world
func (w *World) Bodies() []*Body {
	bodies := make([]*Body, len(w.bodies))
	copy(bodies, w.bodies)
	return bodies
}

// Arena returns the static obstacles of the world
func (w *World) Arena() *Arena {
	return w.arena
}

// Platform returns the ground of the world
func (w *World) Platform() Platform {
	return w.config.Platform
}

// Dt implements physics.World
func (w *World) Dt() float64 {
	return w.config.Dt
}

// Steps returns the number of steps taken
func (w *World) Steps() int {
	return w.steps
}

// Step implements physics.World. Free bodies are integrated, children
// follow their joints, chains are held on the platform, and collision
// events are sent to subscribed listeners once the world has settled.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	// Local rotations are read before any body moves, so that bodies
	// teleported since the last step keep their pose
	locals := make([]quat.Number, len(w.bodies))
	for i, b := range w.bodies {
		b.prevPos, b.prevRot = b.pos, b.rot
		if b.parent != nil {
			locals[i] = spatialutils.Relative(b.parent.rot, b.rot)
		}
	}

	for _, b := range w.bodies {
		switch {
		case b.parent != nil:
		case b.kinematic:
			b.pos = r3.Add(b.pos, r3.Scale(dt, b.vel))
			b.rot = spatialutils.Integrate(b.rot, b.angVel, dt)
		default:
			w.integrate(b, dt)
		}
	}

	for i, b := range w.bodies {
		if b.parent == nil {
			continue
		}
		p := b.parent
		b.rot = spatialutils.Normalize(quat.Mul(p.rot, b.joint.step(locals[i],
			dt)))
		b.pos = r3.Add(p.pos, spatialutils.Rotate(p.rot, b.offset))
	}

	for _, b := range w.bodies {
		if b.parent == nil && !b.kinematic {
			w.support(b, dt)
		}
	}

	for _, b := range w.bodies {
		b.torque = r3.Vec{}
		if b.parent != nil {
			b.vel = r3.Scale(1/dt, r3.Sub(b.pos, b.prevPos))
			b.angVel = spatialutils.AngularVelocity(b.prevRot, b.rot, dt)
		}
	}

	w.steps++
	w.updateContacts()
}

// integrate moves a free body and turns it under the torque applied to
// its chain plus the gravity torque about the chain's ground support
func (w *World) integrate(root *Body, dt float64) {
	chain := w.chains[root]

	var mass float64
	var com, torque r3.Vec
	for _, b := range chain {
		mass += b.mass
		com = r3.Add(com, r3.Scale(b.mass, b.pos))
		torque = r3.Add(torque, b.torque)
	}
	com = r3.Scale(1/mass, com)

	var grounded []r3.Vec
	for _, b := range chain {
		if b.touching[physics.Ground] {
			grounded = append(grounded, b.pos)
		}
	}
	if len(grounded) > 0 {
		lever := r3.Sub(com, spatialutils.Mean(grounded...))
		weight := r3.Vec{Y: -mass * w.config.Gravity}
		torque = r3.Add(torque, r3.Cross(lever, weight))
	}

	var inertia float64
	for _, b := range chain {
		d := r3.Sub(b.pos, com)
		inertia += b.mass * (0.4*b.radius*b.radius + r3.Norm2(d))
	}

	root.angVel = r3.Add(root.angVel, r3.Scale(dt/inertia, torque))
	root.angVel = r3.Scale(math.Max(0, 1-w.config.AngularDamping*dt),
		root.angVel)
	root.rot = spatialutils.Integrate(root.rot, root.angVel, dt)

	root.vel.Y -= w.config.Gravity * dt
	root.pos = r3.Add(root.pos, r3.Scale(dt, root.vel))
}

// support keeps a chain on the platform. Limbs which slip along the
// ground relative to the root push the root the other way.
func (w *World) support(root *Body, dt float64) {
	chain := w.chains[root]
	platform := w.config.Platform
	floor := platform.Height()

	lowest := math.Inf(1)
	for _, b := range chain {
		if platform.Contains(b.pos.X, b.pos.Z) {
			lowest = math.Min(lowest, b.bottom())
		}
	}
	if lowest >= floor {
		return
	}

	lift := r3.Vec{Y: floor - lowest}
	var slip r3.Vec
	grounded := 0
	for _, b := range chain {
		b.pos = r3.Add(b.pos, lift)
		if b == root || b.bottom() > floor+w.config.ContactSkin ||
			!platform.Contains(b.pos.X, b.pos.Z) {
			continue
		}
		moved := r3.Sub(r3.Sub(b.pos, root.pos),
			r3.Sub(b.prevPos, root.prevPos))
		slip = r3.Add(slip, r3.Vec{X: moved.X, Z: moved.Z})
		grounded++
	}
	if root.vel.Y < 0 {
		root.vel.Y = 0
	}

	decay := math.Max(0, 1-w.config.Friction*dt)
	root.vel.X *= decay
	root.vel.Z *= decay
	if grounded == 0 {
		return
	}

	shift := r3.Scale(-w.config.Traction/float64(grounded), slip)
	for _, b := range chain {
		b.pos = r3.Add(b.pos, shift)
	}
	root.vel = r3.Add(root.vel, r3.Scale(1/dt, shift))
}

// Overlaps implements physics.Scene. Obstacles and bodies which are not
// targets count, the platform does not.
func (w *World) Overlaps(center r3.Vec, radius float64) bool {
	if w.arena.Overlaps(center, radius) {
		return true
	}
	for _, b := range w.bodies {
		if b.tag == physics.Target {
			continue
		}
		if r3.Norm(r3.Sub(b.pos, center)) < radius+b.radius {
			return true
		}
	}
	return false
}

// RaycastDown implements physics.Scene. The ray hits obstacle tops and
// the platform.
func (w *World) RaycastDown(origin r3.Vec, maxDistance float64) (r3.Vec,
	bool) {
	best, found := math.Inf(-1), false

	platform := w.config.Platform
	if platform.Contains(origin.X, origin.Z) && platform.Height() <= origin.Y {
		best, found = platform.Height(), true
	}
	if top, ok := w.arena.Top(origin.X, origin.Z, origin.Y); ok && top > best {
		best, found = top, true
	}

	if !found || origin.Y-best > maxDistance {
		return r3.Vec{}, false
	}
	return r3.Vec{X: origin.X, Y: best, Z: origin.Z}, true
}
