// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"gonum.org/v1/gonum/mat"
)

// Slice copies the values of a vector into a new slice
func Slice(v mat.Vector) []float64 {
	s := make([]float64, v.Len())
	for i := range s {
		s[i] = v.AtVec(i)
	}
	return s
}
