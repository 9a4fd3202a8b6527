package agent

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/walker/environment"
	ts "github.com/samuelfneumann/walker/timestep"
)

// Uniform selects actions uniformly at random within the bounds of an
// action specification
type Uniform struct {
	rand *environment.UniformStarter
}

// NewUniform returns a new Uniform policy over the actions of spec.
// The bounds of spec must be finite.
func NewUniform(spec environment.Spec, seed uint64) *Uniform {
	if spec.Type != environment.Action {
		panic(fmt.Sprintf("newUniform: cannot select actions from a %v "+
			"spec", spec.Type))
	}

	bounds := make([]r1.Interval, spec.Shape.Len())
	for i := range bounds {
		bounds[i] = r1.Interval{
			Min: spec.LowerBound.AtVec(i),
			Max: spec.UpperBound.AtVec(i),
		}
	}
	return &Uniform{environment.NewUniformStarter(bounds, seed)}
}

// SelectAction implements Policy. The timestep is ignored.
func (u *Uniform) SelectAction(ts.TimeStep) *mat.VecDense {
	return u.rand.Start()
}
