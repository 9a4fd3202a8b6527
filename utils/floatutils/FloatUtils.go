// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// Lerp linearly interpolates between a and b. The fraction t is
// clipped to [0, 1].
func Lerp(a, b, t float64) float64 {
	t = Clip(t, 0, 1)
	return a + (b-a)*t
}

// Unsigned maps a value in [-1, 1] onto [0, 1], clipping values which
// lie outside [-1, 1].
func Unsigned(value float64) float64 {
	return (Clip(value, -1, 1) + 1) * 0.5
}

// Bool returns 1 if b is true and 0 otherwise
func Bool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
