package ragdoll

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Frame is the stabilized reference frame that reward and observation
// math is expressed in. It sits at the root segment, keeps world-up as
// its up axis, and faces the target along the ground plane. A flailing
// ragdoll's own axes make a poor reference, so directional signals are
// taken relative to the Frame instead.
//
// The Frame is recomputed from scratch on every Update and never
// accumulates rotation.
type Frame struct {
	position r3.Vec
	forward  r3.Vec
	rotation quat.Number
}

// NewFrame returns a new Frame at the origin facing +z
func NewFrame() *Frame {
	return &Frame{
		forward:  spatialutils.Forward,
		rotation: spatialutils.Identity,
	}
}

// Update moves the frame to root and turns it toward target. When the
// target is directly above or below the root, the planar direction is
// undefined and the previous forward axis is kept.
func (f *Frame) Update(root, target r3.Vec) {
	f.position = root

	dir := spatialutils.ProjectOnPlane(r3.Sub(target, root), spatialutils.Up)
	dir.Y = 0
	if r3.Norm(dir) < spatialutils.Eps {
		return
	}
	f.forward = r3.Unit(dir)
	f.rotation = spatialutils.Yaw(math.Atan2(f.forward.X, f.forward.Z) *
		180 / math.Pi)
}

// Position returns the origin of the frame
func (f *Frame) Position() r3.Vec {
	return f.position
}

// Rotation returns the rotation of the frame in world space
func (f *Frame) Rotation() quat.Number {
	return f.rotation
}

// Forward returns the unit forward axis, which always lies in the
// horizontal plane
func (f *Frame) Forward() r3.Vec {
	return f.forward
}

// Up returns the up axis of the frame, which is always world-up
func (f *Frame) Up() r3.Vec {
	return spatialutils.Up
}

// Right returns the right axis of the frame
func (f *Frame) Right() r3.Vec {
	return r3.Cross(spatialutils.Up, f.forward)
}

// InverseTransformDirection expresses the world direction v in frame
// coordinates
func (f *Frame) InverseTransformDirection(v r3.Vec) r3.Vec {
	return spatialutils.InverseRotate(f.rotation, v)
}

// InverseTransformPoint expresses the world point p in frame
// coordinates
func (f *Frame) InverseTransformPoint(p r3.Vec) r3.Vec {
	return f.InverseTransformDirection(r3.Sub(p, f.position))
}
