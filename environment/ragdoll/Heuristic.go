package ragdoll

import (
	"github.com/samuelfneumann/walker/utils/floatutils"
)

// ManualInput is a manual control input: two axes in [-1, 1] and a
// button
type ManualInput struct {
	Vertical   float64
	Horizontal float64
	Force      bool
}

// Heuristic returns an action of the ragdoll's schema driven by manual
// input, for testing joints without a trained policy. The vertical
// axis drives the first axis of every joint, inverted for the spine,
// and the horizontal axis drives the remaining axes. Every joint is at
// full strength while Force is held and at half strength otherwise,
// since a strength command of 0 maps to half the maximum force.
func (r *Ragdoll) Heuristic(in ManualInput) []float64 {
	return HeuristicAction(r.actuator.Schema(), in)
}

// HeuristicAction encodes manual input as an action of schema s
func HeuristicAction(s Schema, in ManualInput) []float64 {
	x := floatutils.Clip(in.Vertical, -1, 1)
	y := floatutils.Clip(in.Horizontal, -1, 1)
	force := floatutils.Bool(in.Force)

	return s.Encode(func(e Entry, axis Axis) float64 {
		if e.Field == StrengthField {
			return force
		}
		if axis == firstAxis(e.Axes) {
			if e.Role == Spine {
				return -x
			}
			return x
		}
		return y
	})
}

func firstAxis(a Axis) Axis {
	for _, axis := range [...]Axis{AxisX, AxisY, AxisZ} {
		if a.Has(axis) {
			return axis
		}
	}
	return 0
}
