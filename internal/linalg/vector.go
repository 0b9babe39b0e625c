package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vector is an immutable column vector backed by a gonum VecDense.
type Vector struct {
	v *mat.VecDense
}

// NewVector copies data into a vector of supported length.
func NewVector(data []float64) (Vector, error) {
	if !Supported(len(data)) {
		return Vector{}, unsupported("new vector", len(data))
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return Vector{v: mat.NewVecDense(len(buf), buf)}, nil
}

func (v Vector) Len() int {
	if v.v == nil {
		return 0
	}
	return v.v.Len()
}

func (v Vector) At(i int) float64 { return v.v.AtVec(i) }

// Data returns a copy of the elements.
func (v Vector) Data() []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.v.AtVec(i)
	}
	return out
}

// Scale returns f·v.
func (v Vector) Scale(f float64) Vector {
	var out mat.VecDense
	out.ScaleVec(f, v.v)
	return Vector{v: &out}
}

// NormInf returns the largest absolute element.
func (v Vector) NormInf() float64 {
	return mat.Norm(v.v, math.Inf(1))
}
