// Package physics defines the interfaces between the ragdoll control
// and reward logic and the physics engine which simulates it. Any engine
// which can report rigid body state, drive joints, and answer overlap
// and ground queries can host a ragdoll.
package physics

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tag identifies the kind of surface involved in a collision
type Tag string

const (
	Ground Tag = "ground"
	Wall   Tag = "wall"
	Target Tag = "target"
	Agent  Tag = "agent"
)

// Body is a rigid body simulated by the engine
type Body interface {
	Position() r3.Vec
	Rotation() quat.Number

	// LocalRotation is the rotation relative to the parent body, or the
	// world rotation for bodies without a parent
	LocalRotation() quat.Number

	Velocity() r3.Vec
	AngularVelocity() r3.Vec

	// Teleport places the body, bypassing the simulation
	Teleport(position r3.Vec, rotation quat.Number)
	SetVelocity(linear, angular r3.Vec)

	// AddTorque accumulates a torque to be applied on the next step
	AddTorque(torque r3.Vec)

	// Subscribe registers a listener for collisions of this body
	Subscribe(l ContactListener)
}

// Drive is the settings of a joint drive: a spring pulling the joint
// toward its target rotation, a damper, and a force limit.
type Drive struct {
	Spring   float64 `yaml:"spring"`
	Damper   float64 `yaml:"damper"`
	MaxForce float64 `yaml:"max_force"`
}

// JointDrive is a joint connecting a body to its parent, driven toward
// a target rotation expressed relative to the parent.
type JointDrive interface {
	SetTargetRotation(rotation quat.Number)
	SetDrive(drive Drive)
}

// Scene answers geometric queries about the static world
type Scene interface {
	// Overlaps returns whether a sphere intersects any collider
	Overlaps(center r3.Vec, radius float64) bool

	// RaycastDown casts a ray straight down from origin and returns the
	// first point hit within maxDistance, if any
	RaycastDown(origin r3.Vec, maxDistance float64) (r3.Vec, bool)
}

// ContactListener receives collision events for a single body. The tag
// identifies the other collider.
type ContactListener interface {
	OnCollisionEnter(other Tag)
	OnCollisionStay(other Tag)
	OnCollisionExit(other Tag)
}

// World is a steppable physics world
type World interface {
	Scene
	Step(dt float64)
	Dt() float64
}
