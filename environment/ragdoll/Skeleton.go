package ragdoll

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Skeleton is the fixed set of segments of a ragdoll, indexed by role
type Skeleton struct {
	segments [NumRoles]*Segment
}

// NewSkeleton binds one segment per role. Every role must be bound
// exactly once, the root must not have a joint drive, and every other
// segment must have one. Each segment gets its own ContactTracker
// reporting to sink with the rewards for its role.
func NewSkeleton(bindings []Binding, rewards [NumRoles]ContactRewards,
	sink RewardSink) (*Skeleton, error) {
	const op = "newSkeleton"
	if sink == nil {
		return nil, configErrorf(op, "no reward sink")
	}

	var sk Skeleton
	for _, b := range bindings {
		if !b.Role.Valid() {
			return nil, configErrorf(op, "invalid role %v", b.Role)
		}
		if sk.segments[b.Role] != nil {
			return nil, configErrorf(op, "role %v bound twice", b.Role)
		}
		if b.Body == nil {
			return nil, configErrorf(op, "role %v has no body", b.Role)
		}
		if b.Role == Root && b.Joint != nil {
			return nil, configErrorf(op, "root %v cannot have a joint drive",
				b.Role)
		}
		if b.Role != Root && b.Joint == nil {
			return nil, configErrorf(op, "role %v has no joint drive", b.Role)
		}
		if b.Limits.LowX > b.Limits.HighX || b.Limits.Y < 0 || b.Limits.Z < 0 {
			return nil, configErrorf(op, "role %v has invalid limits %+v",
				b.Role, b.Limits)
		}

		tracker := NewContactTracker(rewards[b.Role], sink)
		sk.segments[b.Role] = newSegment(b, tracker)
	}

	for _, role := range Roles() {
		if sk.segments[role] == nil {
			return nil, configErrorf(op, "role %v is not bound", role)
		}
	}

	return &sk, nil
}

// Segment returns the segment with the given role
func (s *Skeleton) Segment(role Role) *Segment {
	return s.segments[role]
}

// Root returns the root segment
func (s *Skeleton) Root() *Segment {
	return s.segments[Root]
}

// Segments returns all segments in setup order
func (s *Skeleton) Segments() []*Segment {
	segments := make([]*Segment, NumRoles)
	copy(segments, s.segments[:])
	return segments
}

// AverageVelocity returns the mean linear velocity over all segments.
// The mean is used rather than the root velocity since flailing limbs
// make the root velocity a noisy signal.
func (s *Skeleton) AverageVelocity() r3.Vec {
	velocities := make([]r3.Vec, NumRoles)
	for i, seg := range s.segments {
		velocities[i] = seg.Body.Velocity()
	}
	return spatialutils.Mean(velocities...)
}

// Reset restores every segment to its initial pose
func (s *Skeleton) Reset() {
	for _, seg := range s.segments {
		seg.Reset()
	}
}

// RotateAboutRoot rotates the whole skeleton around the root position
// so that the root ends up with the given rotation. Velocities are
// rotated along with the poses.
func (s *Skeleton) RotateAboutRoot(rotation quat.Number) {
	root := s.Root().Body
	pivot := root.Position()
	delta := spatialutils.Normalize(quat.Mul(rotation,
		quat.Conj(root.Rotation())))

	for _, seg := range s.segments {
		b := seg.Body
		offset := spatialutils.Rotate(delta, r3.Sub(b.Position(), pivot))
		b.Teleport(r3.Add(pivot, offset),
			spatialutils.Normalize(quat.Mul(delta, b.Rotation())))
		b.SetVelocity(spatialutils.Rotate(delta, b.Velocity()),
			spatialutils.Rotate(delta, b.AngularVelocity()))
	}
}
