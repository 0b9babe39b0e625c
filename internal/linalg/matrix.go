package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sizes lists the square dimensions the substrate supports.
var Sizes = []int{3, 4, 6, 7}

// Supported reports whether n is one of [Sizes].
func Supported(n int) bool {
	for _, s := range Sizes {
		if s == n {
			return true
		}
	}
	return false
}

// Matrix is an immutable square matrix backed by a gonum Dense.
// Every operation returns a fresh value; the receiver is never modified.
type Matrix struct {
	d *mat.Dense
	n int
}

// Identity returns the n×n identity.
func Identity(n int) (Matrix, error) {
	if !Supported(n) {
		return Matrix{}, unsupported("identity", n)
	}
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return Matrix{d: d, n: n}, nil
}

// NewMatrix builds an n×n matrix from row-major data. The data is copied.
func NewMatrix(n int, data []float64) (Matrix, error) {
	if !Supported(n) {
		return Matrix{}, unsupported("new matrix", n)
	}
	if len(data) != n*n {
		return Matrix{}, mismatch("new matrix", n*n, len(data))
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return Matrix{d: mat.NewDense(n, n, buf), n: n}, nil
}

// FromRows builds a matrix from a square slice of rows.
func FromRows(rows [][]float64) (Matrix, error) {
	n := len(rows)
	data := make([]float64, 0, n*n)
	for _, r := range rows {
		if len(r) != n {
			return Matrix{}, mismatch("row length", n, len(r))
		}
		data = append(data, r...)
	}
	return NewMatrix(n, data)
}

func (m Matrix) Dim() int { return m.n }

func (m Matrix) At(i, j int) float64 { return m.d.At(i, j) }

// Row returns a copy of row i.
func (m Matrix) Row(i int) []float64 {
	return mat.Row(nil, i, m.d)
}

// Col returns a copy of column j.
func (m Matrix) Col(j int) []float64 {
	return mat.Col(nil, j, m.d)
}

// Data returns a row-major copy of the elements.
func (m Matrix) Data() []float64 {
	out := make([]float64, 0, m.n*m.n)
	for i := 0; i < m.n; i++ {
		out = append(out, mat.Row(nil, i, m.d)...)
	}
	return out
}

// Block projects the size×size sub-block whose top-left corner is (r0, c0).
func (m Matrix) Block(r0, c0, size int) (Matrix, error) {
	if !Supported(size) {
		return Matrix{}, unsupported("block", size)
	}
	if r0 < 0 || c0 < 0 || r0+size > m.n || c0+size > m.n {
		return Matrix{}, mismatch("block bounds", m.n, max(r0, c0)+size)
	}
	var d mat.Dense
	d.CloneFrom(m.d.Slice(r0, r0+size, c0, c0+size))
	return Matrix{d: &d, n: size}, nil
}

// Sub returns m − o.
func (m Matrix) Sub(o Matrix) (Matrix, error) {
	if m.n != o.n {
		return Matrix{}, mismatch("sub", m.n, o.n)
	}
	var d mat.Dense
	d.Sub(m.d, o.d)
	return Matrix{d: &d, n: m.n}, nil
}

// Mul returns the product m·o.
func (m Matrix) Mul(o Matrix) (Matrix, error) {
	if m.n != o.n {
		return Matrix{}, mismatch("mul", m.n, o.n)
	}
	var d mat.Dense
	d.Mul(m.d, o.d)
	return Matrix{d: &d, n: m.n}, nil
}

// MulVec returns m·v.
func (m Matrix) MulVec(v Vector) (Vector, error) {
	if v.Len() != m.n {
		return Vector{}, mismatch("mul vec", m.n, v.Len())
	}
	var out mat.VecDense
	out.MulVec(m.d, v.v)
	return Vector{v: &out}, nil
}

// ResolventOf returns I − m, the operator whose inverse solves fixed-point equations.
func ResolventOf(m Matrix) (Matrix, error) {
	id, err := Identity(m.n)
	if err != nil {
		return Matrix{}, err
	}
	return id.Sub(m)
}

// Cond estimates the 2-norm condition number. A singular matrix yields +Inf.
func (m Matrix) Cond() float64 {
	c := mat.Cond(m.d, 2)
	if math.IsNaN(c) {
		return math.Inf(1)
	}
	return c
}

// Solve returns x such that m·x = b. Singular and numerically
// ill-conditioned systems report ErrSingular.
func (m Matrix) Solve(b Vector) (Vector, error) {
	if b.Len() != m.n {
		return Vector{}, mismatch("solve", m.n, b.Len())
	}
	var x mat.VecDense
	if err := x.SolveVec(m.d, b.v); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return Vector{}, fmt.Errorf("%w: condition number %.3g", ErrSingular, float64(cond))
		}
		return Vector{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return Vector{v: &x}, nil
}

func (m Matrix) String() string {
	return fmt.Sprintf("%.6g", mat.Formatted(m.d, mat.Squeeze()))
}
