// Package spatialutils provides the rigid body geometry helpers shared
// by the physics and ragdoll packages. Vectors are gonum r3.Vec and
// rotations are unit quaternions stored as quat.Number. The world is
// y-up with +z as the forward axis and +x as the right axis.
package spatialutils

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Eps is the length below which a direction is considered degenerate
const Eps float64 = 1e-6

var (
	Up      = r3.Vec{X: 0, Y: 1, Z: 0}
	Forward = r3.Vec{X: 0, Y: 0, Z: 1}
	Right   = r3.Vec{X: 1, Y: 0, Z: 0}

	Identity = quat.Number{Real: 1}
)

// raise lifts a vector to a pure imaginary quaternion
func raise(v r3.Vec) quat.Number {
	return quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
}

// AxisAngle returns the rotation of radians around axis. A degenerate
// axis yields the identity rotation.
func AxisAngle(axis r3.Vec, radians float64) quat.Number {
	n := r3.Norm(axis)
	if n < Eps || radians == 0 {
		return Identity
	}
	sin, cos := math.Sincos(0.5 * radians)
	q := quat.Scale(sin/n, raise(axis))
	q.Real = cos
	return q
}

// Euler returns the rotation described by Euler angles in degrees. The
// z rotation is applied first, then x, then y.
func Euler(x, y, z float64) quat.Number {
	qx := AxisAngle(Right, x*math.Pi/180)
	qy := AxisAngle(Up, y*math.Pi/180)
	qz := AxisAngle(Forward, z*math.Pi/180)
	return quat.Mul(qy, quat.Mul(qx, qz))
}

// Yaw returns a rotation of degrees around the world up axis
func Yaw(degrees float64) quat.Number {
	return AxisAngle(Up, degrees*math.Pi/180)
}

// Normalize returns q scaled to unit length. The zero quaternion
// normalizes to the identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < Eps {
		return Identity
	}
	return quat.Scale(1/n, q)
}

// Rotate rotates v by the unit quaternion q
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Mul(quat.Mul(q, raise(v)), quat.Conj(q))
	return r3.Vec{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// InverseRotate rotates v by the inverse of the unit quaternion q. This
// expresses a world space direction in the local space of q.
func InverseRotate(q quat.Number, v r3.Vec) r3.Vec {
	return Rotate(quat.Conj(q), v)
}

// Relative returns the rotation child expressed in the space of parent
func Relative(parent, child quat.Number) quat.Number {
	return Normalize(quat.Mul(quat.Conj(parent), child))
}

// ForwardOf, UpOf and RightOf return the local axes of a rotation in
// world space.
func ForwardOf(q quat.Number) r3.Vec { return Rotate(q, Forward) }
func UpOf(q quat.Number) r3.Vec      { return Rotate(q, Up) }
func RightOf(q quat.Number) r3.Vec   { return Rotate(q, Right) }

// FromTo returns the shortest rotation taking direction from onto
// direction to. When the directions are opposite, the rotation is half
// a turn around an arbitrary axis orthogonal to from. A degenerate
// input yields the identity.
func FromTo(from, to r3.Vec) quat.Number {
	nf, nt := r3.Norm(from), r3.Norm(to)
	if nf < Eps || nt < Eps {
		return Identity
	}
	u := r3.Scale(1/nf, from)
	v := r3.Scale(1/nt, to)
	d := r3.Dot(u, v)

	if d >= 1-1e-9 {
		return Identity
	}
	if d <= -1+1e-9 {
		return AxisAngle(Orthogonal(u), math.Pi)
	}
	axis := r3.Cross(u, v)
	return Normalize(quat.Number{Real: 1 + d, Imag: axis.X, Jmag: axis.Y,
		Kmag: axis.Z})
}

// Orthogonal returns a unit vector orthogonal to v
func Orthogonal(v r3.Vec) r3.Vec {
	o := r3.Cross(v, Right)
	if r3.Norm(o) < Eps {
		o = r3.Cross(v, Up)
	}
	return r3.Unit(o)
}

// Angle returns the unsigned angle between a and b in degrees, in
// [0, 180]. The angle involving a zero vector is 0.
func Angle(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na < Eps || nb < Eps {
		return 0
	}
	cos := r3.Dot(a, b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// ProjectOnPlane removes the component of v along the plane normal n
func ProjectOnPlane(v, n r3.Vec) r3.Vec {
	nn := r3.Norm2(n)
	if nn < Eps*Eps {
		return v
	}
	return r3.Sub(v, r3.Scale(r3.Dot(v, n)/nn, n))
}

// Mean returns the arithmetic mean of vs, or the zero vector if vs is
// empty.
func Mean(vs ...r3.Vec) r3.Vec {
	var sum r3.Vec
	if len(vs) == 0 {
		return sum
	}
	for _, v := range vs {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(vs)), sum)
}

// Nlerp interpolates from a toward b along the shorter arc and
// normalizes the result. t is clipped to [0, 1].
func Nlerp(a, b quat.Number, t float64) quat.Number {
	t = math.Max(0, math.Min(1, t))
	if a.Real*b.Real+a.Imag*b.Imag+a.Jmag*b.Jmag+a.Kmag*b.Kmag < 0 {
		b = quat.Scale(-1, b)
	}
	return Normalize(quat.Add(quat.Scale(1-t, a), quat.Scale(t, b)))
}

// AngularVelocity returns the angular velocity which turns from into to
// over dt seconds, in radians per second around a world axis
func AngularVelocity(from, to quat.Number, dt float64) r3.Vec {
	if dt <= 0 {
		return r3.Vec{}
	}
	delta := Normalize(quat.Mul(to, quat.Conj(from)))
	if delta.Real < 0 {
		delta = quat.Scale(-1, delta)
	}
	axis := r3.Vec{X: delta.Imag, Y: delta.Jmag, Z: delta.Kmag}
	sin := r3.Norm(axis)
	if sin < Eps {
		return r3.Vec{}
	}
	angle := 2 * math.Atan2(sin, delta.Real)
	return r3.Scale(angle/(sin*dt), axis)
}

// Integrate turns q by the angular velocity w for dt seconds
func Integrate(q quat.Number, w r3.Vec, dt float64) quat.Number {
	return Normalize(quat.Mul(AxisAngle(w, r3.Norm(w)*dt), q))
}

// Components returns the (x, y, z, w) components of q
func Components(q quat.Number) [4]float64 {
	return [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real}
}

// Slice returns the components of v as a slice
func Slice(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}
