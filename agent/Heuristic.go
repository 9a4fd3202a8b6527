package agent

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/walker/environment/ragdoll"
	ts "github.com/samuelfneumann/walker/timestep"
)

// Heuristic is a scripted policy which plays back manual input through
// the ragdoll's heuristic action mapping. The vertical axis swings
// with one period per gait cycle and the horizontal axis at twice that
// rate, with every joint held at full strength.
type Heuristic struct {
	schema ragdoll.Schema
	period int
}

// NewHeuristic returns a new Heuristic policy for actions of schema
// with a gait cycle of period steps
func NewHeuristic(schema ragdoll.Schema, period int) *Heuristic {
	if period <= 0 {
		panic("newHeuristic: period must be positive")
	}
	return &Heuristic{schema, period}
}

// Input returns the manual input played back on step n of an episode
func (h *Heuristic) Input(n int) ragdoll.ManualInput {
	phase := 2 * math.Pi * float64(n%h.period) / float64(h.period)
	return ragdoll.ManualInput{
		Vertical:   math.Sin(phase),
		Horizontal: 0.5 * math.Sin(2*phase),
		Force:      true,
	}
}

// SelectAction implements Policy
func (h *Heuristic) SelectAction(t ts.TimeStep) *mat.VecDense {
	action := ragdoll.HeuristicAction(h.schema, h.Input(t.Number))
	return mat.NewVecDense(len(action), action)
}
