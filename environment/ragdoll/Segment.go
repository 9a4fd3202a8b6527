package ragdoll

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/floatutils"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// JointLimits are the rotation limits of a joint in degrees. The x axis
// has an asymmetric range [LowX, HighX], the y and z axes are symmetric
// around zero.
type JointLimits struct {
	LowX  float64 `yaml:"low_x"`
	HighX float64 `yaml:"high_x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
}

// Pose is a snapshot of the kinematic state of a rigid body
type Pose struct {
	Position        r3.Vec
	Rotation        quat.Number
	Velocity        r3.Vec
	AngularVelocity r3.Vec
}

// Binding connects a segment role to the engine objects simulating it.
// Joint must be nil for the root and non-nil for every other segment.
type Binding struct {
	Role   Role
	Body   physics.Body
	Joint  physics.JointDrive
	Limits JointLimits
}

// Segment is one rigid body of the ragdoll together with its joint
// drive, contact state, and the pose it is reset to.
type Segment struct {
	Role    Role
	Body    physics.Body
	Joint   physics.JointDrive
	Limits  JointLimits
	Contact *ContactTracker

	// CurrentStrength is the last force limit commanded to the joint,
	// in [0, maxJointForceLimit]
	CurrentStrength float64

	initial Pose
}

func newSegment(b Binding, contact *ContactTracker) *Segment {
	s := &Segment{
		Role:    b.Role,
		Body:    b.Body,
		Joint:   b.Joint,
		Limits:  b.Limits,
		Contact: contact,
	}
	s.initial = s.Snapshot()
	b.Body.Subscribe(contact)

	return s
}

// Driven returns whether the segment has a joint drive
func (s *Segment) Driven() bool {
	return s.Joint != nil
}

// Snapshot returns the current pose of the segment
func (s *Segment) Snapshot() Pose {
	return Pose{
		Position:        s.Body.Position(),
		Rotation:        s.Body.Rotation(),
		Velocity:        s.Body.Velocity(),
		AngularVelocity: s.Body.AngularVelocity(),
	}
}

// Initial returns the pose captured when the segment was set up
func (s *Segment) Initial() Pose {
	return s.initial
}

// Reset restores the segment to the pose captured at setup and clears
// its contact state.
func (s *Segment) Reset() {
	s.Body.Teleport(s.initial.Position, s.initial.Rotation)
	s.Body.SetVelocity(s.initial.Velocity, s.initial.AngularVelocity)
	s.Contact.Reset()
}

// SetJointTargetRotation drives the joint toward the rotation described
// by the normalized axis commands x, y, z in [-1, 1]. Values outside
// [-1, 1] are clipped.
func (s *Segment) SetJointTargetRotation(x, y, z float64) {
	if !s.Driven() {
		panic("setJointTargetRotation: segment " + s.Role.String() +
			" has no joint drive")
	}
	s.Joint.SetTargetRotation(TargetRotation(s.Limits, x, y, z))
}

// SetJointStrength sets the force limit of the joint drive from the
// normalized command strength in [-1, 1], which maps onto
// [0, drive.MaxForce].
func (s *Segment) SetJointStrength(strength float64, drive physics.Drive) {
	if !s.Driven() {
		panic("setJointStrength: segment " + s.Role.String() +
			" has no joint drive")
	}
	raw := floatutils.Unsigned(strength) * drive.MaxForce
	s.Joint.SetDrive(physics.Drive{
		Spring:   drive.Spring,
		Damper:   drive.Damper,
		MaxForce: raw,
	})
	s.CurrentStrength = raw
}

// TargetRotation maps normalized axis commands onto joint limits and
// returns the resulting joint rotation. The x command spans
// [LowX, HighX], the y and z commands span [-Y, Y] and [-Z, Z].
func TargetRotation(limits JointLimits, x, y, z float64) quat.Number {
	xRot := floatutils.Lerp(limits.LowX, limits.HighX, floatutils.Unsigned(x))
	yRot := floatutils.Lerp(-limits.Y, limits.Y, floatutils.Unsigned(y))
	zRot := floatutils.Lerp(-limits.Z, limits.Z, floatutils.Unsigned(z))

	return spatialutils.Euler(xRot, yRot, zRot)
}
