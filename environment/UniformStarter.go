package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter samples vectors uniformly from a hyper-rectangle given
// by one interval per feature. Degenerate intervals (Min == Max) always
// sample their single value.
type UniformStarter struct {
	bounds []r1.Interval
	seed   uint64
	rand   *distmv.Uniform
}

// NewUniformStarter returns a new UniformStarter sampling feature i
// from bounds[i]
func NewUniformStarter(bounds []r1.Interval, seed uint64) *UniformStarter {
	b := make([]r1.Interval, len(bounds))
	copy(b, bounds)

	source := rand.NewSource(seed)
	rand := distmv.NewUniform(b, source)

	return &UniformStarter{b, seed, rand}
}

// Start returns a starting vector
func (u *UniformStarter) Start() *mat.VecDense {
	sample := u.rand.Rand(nil)

	// distmv.Uniform draws Min + (Max-Min)*U, which is exact for
	// degenerate intervals, but clamp anyway so that samples never
	// leave their interval through rounding.
	for i, b := range u.bounds {
		if sample[i] < b.Min {
			sample[i] = b.Min
		} else if sample[i] > b.Max {
			sample[i] = b.Max
		}
	}
	return mat.NewVecDense(len(sample), sample)
}

// Bounds returns the sampling intervals of the starter
func (u *UniformStarter) Bounds() []r1.Interval {
	b := make([]r1.Interval, len(u.bounds))
	copy(b, u.bounds)
	return b
}
