package ragdoll

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
	"github.com/samuelfneumann/walker/utils/curve"
	"github.com/samuelfneumann/walker/utils/floatutils"
	"github.com/samuelfneumann/walker/utils/spatialutils"
)

// Mode selects the control-law variant of a ragdoll. FirstStepsMode
// is meant for policies that cannot stand yet: the stabilizers push
// harder and the reward favours any forward motion.
type Mode int

const (
	StandardMode Mode = iota
	FirstStepsMode
)

func (m Mode) String() string {
	if m == FirstStepsMode {
		return "first_steps"
	}
	return "standard"
}

// ParseMode returns the Mode named by s
func ParseMode(s string) (Mode, error) {
	switch s {
	case "standard", "":
		return StandardMode, nil
	case "first_steps":
		return FirstStepsMode, nil
	}
	return 0, fmt.Errorf("parseMode: unknown mode %q", s)
}

// Stabilizer gains
const (
	MinStabilizerGain        = 1000.0
	MaxStabilizerGain        = 10000.0
	StandardStabilizerGain   = 4000.0
	FirstStepsStabilizerGain = 10000.0
)

// StabilizerGain returns the default upright torque gain of a mode
func StabilizerGain(m Mode) float64 {
	if m == FirstStepsMode {
		return FirstStepsStabilizerGain
	}
	return StandardStabilizerGain
}

// Stabilizer pushes a single body back toward upright. Each tick the
// tilt angle between the body's up axis and world-up, normalized to
// [0, 1], is looked up on a response curve and the result scales a
// torque of at most gain around the axis which rotates the body's up
// axis onto world-up.
//
// The controller is proportional only and keeps no state between
// ticks.
type Stabilizer struct {
	body  physics.Body
	curve curve.Curve
	gain  float64
}

// NewStabilizer returns a new Stabilizer for body. The gain is clipped
// to [MinStabilizerGain, MaxStabilizerGain].
func NewStabilizer(body physics.Body, response curve.Curve,
	gain float64) *Stabilizer {
	if body == nil {
		panic("newStabilizer: nil body")
	}
	return &Stabilizer{
		body:  body,
		curve: response,
		gain:  floatutils.Clip(gain, MinStabilizerGain, MaxStabilizerGain),
	}
}

// Gain returns the torque gain of the stabilizer
func (s *Stabilizer) Gain() float64 {
	return s.gain
}

// Torque returns the corrective torque for the current pose of the
// body. An upright body needs no torque. A body that is upside down
// has no unique correction axis, so it is pushed around an arbitrary
// horizontal one.
func (s *Stabilizer) Torque() r3.Vec {
	up := spatialutils.UpOf(s.body.Rotation())
	tilt := spatialutils.Angle(up, spatialutils.Up) / 180
	if tilt < spatialutils.Eps {
		return r3.Vec{}
	}

	axis := r3.Cross(up, spatialutils.Up)
	if r3.Norm(axis) < spatialutils.Eps {
		axis = spatialutils.Orthogonal(up)
	}

	balance := floatutils.Clip(s.curve.Evaluate(tilt), 0, 1)
	return r3.Scale(balance*s.gain, r3.Unit(axis))
}

// Apply adds the corrective torque to the body
func (s *Stabilizer) Apply() {
	s.body.AddTorque(s.Torque())
}
