package ragdoll

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/floatutils"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Observation layout sizes
const (
	GlobalObservationLen = 1 + 3 + 3 + 4 + 4 + 3

	// segmentObservationLen counts the ground flag, velocity, angular
	// velocity, position relative to the root, and local rotation
	segmentObservationLen = 1 + 3 + 3 + 3 + 4
)

// ObservationBuilder assembles the fixed-length observation vector.
// The global block holds the goal velocity error, the average and goal
// velocities, the heading errors of the hips and head, and the target
// position. It is followed by one block per segment in setup order.
// Directions and positions are expressed in the Frame.
type ObservationBuilder struct {
	skeleton *Skeleton
	frame    *Frame
	goal     *GoalState
	target   physics.Body

	maxForce     float64
	observeWalls bool

	// strength[r] is whether the strength of segment r is observed
	strength [NumRoles]bool
	length   int
}

// NewObservationBuilder returns a new ObservationBuilder. The strength
// of a segment is observed exactly when the schema commands it.
func NewObservationBuilder(skeleton *Skeleton, frame *Frame,
	goal *GoalState, target physics.Body, schema Schema, maxForce float64,
	observeWalls bool) (*ObservationBuilder, error) {
	const op = "newObservationBuilder"
	switch {
	case skeleton == nil:
		return nil, configErrorf(op, "no skeleton")
	case frame == nil:
		return nil, configErrorf(op, "no frame")
	case goal == nil:
		return nil, configErrorf(op, "no goal")
	case target == nil:
		return nil, configErrorf(op, "no target")
	case !(maxForce > 0):
		return nil, configErrorf(op, "max joint force limit must be "+
			"positive, got %v", maxForce)
	}
	if err := schema.Validate(skeleton); err != nil {
		return nil, fmt.Errorf("newObservationBuilder: %w", err)
	}

	o := &ObservationBuilder{
		skeleton:     skeleton,
		frame:        frame,
		goal:         goal,
		target:       target,
		maxForce:     maxForce,
		observeWalls: observeWalls,
	}
	for _, e := range schema.Entries() {
		if e.Field == StrengthField {
			o.strength[e.Role] = true
		}
	}

	o.length = GlobalObservationLen
	for _, role := range Roles() {
		o.length += segmentObservationLen
		if observeWalls {
			o.length++
		}
		if o.strength[role] {
			o.length++
		}
	}
	return o, nil
}

// Len returns the length of the observation vector
func (o *ObservationBuilder) Len() int {
	return o.length
}

// Build returns the observation for the current state. The frame must
// already be up to date.
func (o *ObservationBuilder) Build() []float64 {
	obs := make([]float64, 0, o.length)

	forward := o.frame.Forward()
	velGoal := r3.Scale(o.goal.Speed(), forward)
	avgVel := o.skeleton.AverageVelocity()

	hips := o.skeleton.Root().Body.Rotation()
	head := o.skeleton.Segment(Head).Body.Rotation()

	obs = append(obs, r3.Norm(r3.Sub(velGoal, avgVel)))
	obs = appendVec(obs, o.frame.InverseTransformDirection(avgVel))
	obs = appendVec(obs, o.frame.InverseTransformDirection(velGoal))
	obs = appendQuat(obs, spatialutils.FromTo(spatialutils.ForwardOf(hips),
		forward))
	obs = appendQuat(obs, spatialutils.FromTo(spatialutils.ForwardOf(head),
		forward))
	obs = appendVec(obs, o.frame.InverseTransformPoint(o.target.Position()))

	rootPos := o.skeleton.Root().Body.Position()
	for _, seg := range o.skeleton.Segments() {
		contact := seg.Contact.State()
		obs = append(obs, floatutils.Bool(contact.TouchingGround))
		if o.observeWalls {
			obs = append(obs, floatutils.Bool(contact.TouchingWall))
		}

		b := seg.Body
		obs = appendVec(obs, o.frame.InverseTransformDirection(b.Velocity()))
		obs = appendVec(obs,
			o.frame.InverseTransformDirection(b.AngularVelocity()))
		obs = appendVec(obs,
			o.frame.InverseTransformDirection(r3.Sub(b.Position(), rootPos)))
		obs = appendQuat(obs, b.LocalRotation())

		if o.strength[seg.Role] {
			obs = append(obs, seg.CurrentStrength/o.maxForce)
		}
	}

	if len(obs) != o.length {
		panic("build: observation layout mismatch")
	}
	return obs
}

func appendVec(dst []float64, v r3.Vec) []float64 {
	return append(dst, v.X, v.Y, v.Z)
}

func appendQuat(dst []float64, q quat.Number) []float64 {
	c := spatialutils.Components(q)
	return append(dst, c[:]...)
}
