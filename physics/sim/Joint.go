package sim

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Joint response constants
const (
	// responseRate is the rate in 1/s at which an ideal drive closes
	// the gap to its target rotation
	responseRate = 30.0

	// forcePerMass is the force limit per unit of body mass at which a
	// drive reaches half of its ideal response
	forcePerMass = 100.0
)

// Joint connects a body to its parent and drives the body's rotation
// relative to the parent toward a target. A stiff drive with a high
// force limit reaches its target within a few steps, while a drive with
// no force limit leaves the joint where it is.
type Joint struct {
	body   *Body
	target quat.Number
	drive  physics.Drive
}

func newJoint(b *Body) *Joint {
	return &Joint{body: b, target: spatialutils.Identity}
}

// SetTargetRotation implements physics.JointDrive
func (j *Joint) SetTargetRotation(rotation quat.Number) {
	j.target = spatialutils.Normalize(rotation)
}

// SetDrive implements physics.JointDrive
func (j *Joint) SetDrive(drive physics.Drive) {
	j.drive = drive
}

// Target returns the target rotation of the joint
func (j *Joint) Target() quat.Number {
	return j.target
}

// Drive returns the drive settings of the joint
func (j *Joint) Drive() physics.Drive {
	return j.drive
}

// response returns the fraction of the remaining rotation toward the
// target which the joint closes in a step of dt
func (j *Joint) response(dt float64) float64 {
	d := j.drive
	if d.Spring <= 0 || d.MaxForce <= 0 {
		return 0
	}
	stiffness := d.Spring / (d.Spring + math.Max(d.Damper, 0))
	strength := d.MaxForce / (d.MaxForce + j.body.mass*forcePerMass)
	return 1 - math.Exp(-dt*responseRate*stiffness*strength)
}

// step turns the joint from its current local rotation toward its
// target and returns the new local rotation
func (j *Joint) step(current quat.Number, dt float64) quat.Number {
	return spatialutils.Nlerp(current, j.target, j.response(dt))
}
