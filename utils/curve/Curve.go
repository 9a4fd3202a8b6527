// Package curve implements piecewise linear response curves defined by
// keyframes, used to shape controller responses.
package curve

import (
	"fmt"
	"sort"
)

// Key is a single keyframe of a curve
type Key struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// Curve is a piecewise linear function through a set of keyframes.
// Outside the keyframe range the curve holds the value of the nearest
// keyframe.
type Curve struct {
	keys []Key
}

// New returns a new Curve through keys. At least one key is needed and
// key times must be distinct.
func New(keys ...Key) (Curve, error) {
	if len(keys) == 0 {
		return Curve{}, fmt.Errorf("new: curve needs at least one key")
	}

	sorted := make([]Key, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Time == sorted[i-1].Time {
			return Curve{}, fmt.Errorf("new: duplicate key time %v",
				sorted[i].Time)
		}
	}

	return Curve{sorted}, nil
}

// Linear returns the identity curve on [0, 1]
func Linear() Curve {
	return Curve{[]Key{{0, 0}, {1, 1}}}
}

// Keys returns a copy of the keyframes of the curve
func (c Curve) Keys() []Key {
	keys := make([]Key, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Evaluate returns the value of the curve at time t
func (c Curve) Evaluate(t float64) float64 {
	if len(c.keys) == 0 {
		return 0
	}

	first, last := c.keys[0], c.keys[len(c.keys)-1]
	if t <= first.Time {
		return first.Value
	}
	if t >= last.Time {
		return last.Value
	}

	// Index of the first key strictly after t
	i := sort.Search(len(c.keys), func(i int) bool {
		return c.keys[i].Time > t
	})
	a, b := c.keys[i-1], c.keys[i]
	frac := (t - a.Time) / (b.Time - a.Time)
	return a.Value + frac*(b.Value-a.Value)
}
