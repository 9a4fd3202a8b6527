// Package environment outlines the interfaces and structs shared by
// environments: specifications of their inputs and outputs, starting
// state distributions, and episode enders.
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/walker/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when an episode ends. If a TimeStep ends the episode,
// End modifies its StepType to timestep.Last, records the end type, and
// returns true.
type Ender interface {
	End(t *ts.TimeStep) bool
}

// Environment implements a simulated environment driven one tick at a
// time by an action vector.
type Environment interface {
	Reset() (ts.TimeStep, error) // Resets between episodes
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep

	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
}
