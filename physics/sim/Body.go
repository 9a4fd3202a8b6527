package sim

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Body is a rigid sphere in a World. A body without a parent moves
// freely under gravity and torque. A body with a parent hangs off it
// at a fixed offset and turns relative to it through its Joint.
type Body struct {
	name   string
	tag    physics.Tag
	parent *Body
	joint  *Joint

	radius float64
	mass   float64

	// kinematic bodies ignore gravity, torque, and the ground
	kinematic bool

	// offset is the position relative to the parent, in the parent's
	// frame
	offset r3.Vec

	pos    r3.Vec
	rot    quat.Number
	vel    r3.Vec
	angVel r3.Vec
	torque r3.Vec

	prevPos r3.Vec
	prevRot quat.Number

	listeners []physics.ContactListener
	touching  map[physics.Tag]bool
}

// Name returns the name of the body
func (b *Body) Name() string { return b.name }

// Tag returns the tag other bodies see when colliding with b
func (b *Body) Tag() physics.Tag { return b.tag }

// Radius returns the collision radius of the body
func (b *Body) Radius() float64 { return b.radius }

// Parent returns the body b hangs off, or nil
func (b *Body) Parent() *Body { return b.parent }

// Joint returns the joint connecting b to its parent, or nil
func (b *Body) Joint() *Joint { return b.joint }

// SetKinematic sets whether the chain rooted at b is moved only by
// Teleport and SetVelocity. It has no effect on bodies with a parent.
func (b *Body) SetKinematic(kinematic bool) { b.kinematic = kinematic }

// Kinematic returns whether b is kinematic
func (b *Body) Kinematic() bool { return b.kinematic }

// Position implements physics.Body
func (b *Body) Position() r3.Vec { return b.pos }

// Rotation implements physics.Body
func (b *Body) Rotation() quat.Number { return b.rot }

// LocalRotation implements physics.Body
func (b *Body) LocalRotation() quat.Number {
	if b.parent == nil {
		return b.rot
	}
	return spatialutils.Relative(b.parent.rot, b.rot)
}

// Velocity implements physics.Body
func (b *Body) Velocity() r3.Vec { return b.vel }

// AngularVelocity implements physics.Body
func (b *Body) AngularVelocity() r3.Vec { return b.angVel }

// Teleport implements physics.Body. The contacts of a teleported body
// are forgotten without Exit events, and contacts at its new position
// are reported with Enter events on the next step.
func (b *Body) Teleport(position r3.Vec, rotation quat.Number) {
	b.pos = position
	b.rot = spatialutils.Normalize(rotation)
	b.touching = make(map[physics.Tag]bool)
}

// SetVelocity implements physics.Body
func (b *Body) SetVelocity(linear, angular r3.Vec) {
	b.vel = linear
	b.angVel = angular
}

// AddTorque implements physics.Body. Torque on a body with a parent is
// carried by the root of its chain.
func (b *Body) AddTorque(torque r3.Vec) {
	b.torque = r3.Add(b.torque, torque)
}

// Subscribe implements physics.Body
func (b *Body) Subscribe(l physics.ContactListener) {
	b.listeners = append(b.listeners, l)
}

// Touching returns whether b is in contact with a collider tagged tag
func (b *Body) Touching(tag physics.Tag) bool {
	return b.touching[tag]
}

// root returns the free body at the top of b's chain
func (b *Body) root() *Body {
	for b.parent != nil {
		b = b.parent
	}
	return b
}

// bottom returns the height of the lowest point of the body
func (b *Body) bottom() float64 {
	return b.pos.Y - b.radius
}
