package beam

import (
	"fmt"
	"math"

	"github.com/san-kum/optix/internal/linalg"
)

// Dim is the size of the homogeneous phase space.
const Dim = 7

// Coordinate indices into a phase vector.
const (
	IndexX = iota
	IndexXP
	IndexY
	IndexYP
	IndexZ
	IndexZP
	IndexHom
)

// Plane is a phase plane: (x,x'), (y,y') or (z,z').
type Plane int

const (
	X Plane = iota
	Y
	Z
)

// Planes lists all three planes in mode order.
var Planes = [3]Plane{X, Y, Z}

func (p Plane) String() string {
	switch p {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return fmt.Sprintf("plane(%d)", int(p))
	}
}

// Pos returns the row (and column) index of the position coordinate of p.
func (p Plane) Pos() int { return 2 * int(p) }

// Ang returns the row (and column) index of the angle coordinate of p.
func (p Plane) Ang() int { return 2*int(p) + 1 }

// PhaseVector holds six phase-space coordinates and the homogeneous 1.
type PhaseVector [Dim]float64

// NewPhaseVector embeds coords with a trailing homogeneous coordinate.
func NewPhaseVector(coords [6]float64) PhaseVector {
	var v PhaseVector
	copy(v[:6], coords[:])
	v[IndexHom] = 1
	return v
}

// Origin is the zero orbit.
func Origin() PhaseVector {
	return NewPhaseVector([6]float64{})
}

func (v PhaseVector) Coords() [6]float64 {
	var c [6]float64
	copy(c[:], v[:6])
	return c
}

func (v PhaseVector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Distance is the Euclidean distance between the coordinate parts of v and o.
func (v PhaseVector) Distance(o PhaseVector) float64 {
	sum := 0.0
	for i := 0; i < 6; i++ {
		d := v[i] - o[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// PhaseMatrix is a 7×7 transfer matrix in homogeneous coordinates. The
// top-left 6×6 block is the linear map and column 6 is the translation.
// The zero value is not valid; use [NewPhaseMatrix] or [Identity].
type PhaseMatrix struct {
	m [Dim][Dim]float64
}

// NewPhaseMatrix validates rows and builds a transfer matrix. Six rows of
// seven columns are accepted with the homogeneous row implied.
func NewPhaseMatrix(rows [][]float64) (PhaseMatrix, error) {
	var pm PhaseMatrix
	switch len(rows) {
	case Dim:
	case Dim - 1:
		rows = append(rows[:Dim-1:Dim-1], homogeneousRow())
	default:
		return pm, &ShapeError{What: "transfer matrix rows", Want: "6 or 7", Got: fmt.Sprint(len(rows)), Wrapped: ErrShapeMismatch}
	}

	for i, r := range rows {
		if len(r) != Dim {
			return pm, &ShapeError{What: fmt.Sprintf("transfer matrix row %d", i), Want: "7", Got: fmt.Sprint(len(r)), Wrapped: ErrShapeMismatch}
		}
		copy(pm.m[i][:], r)
	}

	for j := 0; j < Dim; j++ {
		want := 0.0
		if j == IndexHom {
			want = 1
		}
		if pm.m[IndexHom][j] != want {
			return PhaseMatrix{}, fmt.Errorf("%w: element [6,%d] = %g", ErrNotHomogeneous, j, pm.m[IndexHom][j])
		}
	}
	return pm, nil
}

func homogeneousRow() []float64 {
	r := make([]float64, Dim)
	r[IndexHom] = 1
	return r
}

// Identity returns the identity transfer matrix.
func Identity() PhaseMatrix {
	var pm PhaseMatrix
	for i := 0; i < Dim; i++ {
		pm.m[i][i] = 1
	}
	return pm
}

func (p PhaseMatrix) At(i, j int) float64 { return p.m[i][j] }

// Rows returns a copy of the elements as nested slices.
func (p PhaseMatrix) Rows() [][]float64 {
	out := make([][]float64, Dim)
	for i := range out {
		out[i] = make([]float64, Dim)
		copy(out[i], p.m[i][:])
	}
	return out
}

// Linear projects the 6×6 linear transport block.
func (p PhaseMatrix) Linear() linalg.Matrix {
	return p.block(6)
}

// Transverse projects the 4×4 (x,x',y,y') block.
func (p PhaseMatrix) Transverse() linalg.Matrix {
	return p.block(4)
}

func (p PhaseMatrix) block(n int) linalg.Matrix {
	data := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		data = append(data, p.m[i][:n]...)
	}
	m, err := linalg.NewMatrix(n, data)
	if err != nil {
		panic(err)
	}
	return m
}

// Offset returns rows 0..n-1 of the translation column as a vector.
// n is 4 or 6.
func (p PhaseMatrix) Offset(n int) linalg.Vector {
	return p.columnVector(IndexHom, n)
}

// Coupling returns rows 0..n-1 of the z' column as a vector. n is 4 or 6.
func (p PhaseMatrix) Coupling(n int) linalg.Vector {
	return p.columnVector(IndexZP, n)
}

func (p PhaseMatrix) columnVector(j, n int) linalg.Vector {
	data := make([]float64, n)
	for i := range data {
		data[i] = p.m[i][j]
	}
	v, err := linalg.NewVector(data)
	if err != nil {
		panic(err)
	}
	return v
}

// Translation returns the affine part: column 6, rows 0–5.
func (p PhaseMatrix) Translation() [6]float64 {
	var d [6]float64
	for i := range d {
		d[i] = p.m[i][IndexHom]
	}
	return d
}

// Column returns rows 0–5 of column k.
func (p PhaseMatrix) Column(k int) [6]float64 {
	var c [6]float64
	for i := range c {
		c[i] = p.m[i][k]
	}
	return c
}

// Block returns the 2×2 diagonal block of plane pl.
func (p PhaseMatrix) Block(pl Plane) [2][2]float64 {
	i, j := pl.Pos(), pl.Ang()
	return [2][2]float64{
		{p.m[i][i], p.m[i][j]},
		{p.m[j][i], p.m[j][j]},
	}
}

// WithColumn returns a copy with rows 0–5 of column k replaced.
func (p PhaseMatrix) WithColumn(k int, col [6]float64) PhaseMatrix {
	out := p
	for i := range col {
		out.m[i][k] = col[i]
	}
	return out
}

// WithTranslation returns a copy with the affine part replaced.
func (p PhaseMatrix) WithTranslation(d [6]float64) PhaseMatrix {
	return p.WithColumn(IndexHom, d)
}

// WithBlock returns a copy with the 2×2 diagonal block of pl replaced.
func (p PhaseMatrix) WithBlock(pl Plane, b [2][2]float64) PhaseMatrix {
	out := p
	i, j := pl.Pos(), pl.Ang()
	out.m[i][i], out.m[i][j] = b[0][0], b[0][1]
	out.m[j][i], out.m[j][j] = b[1][0], b[1][1]
	return out
}

// Apply maps v through the transfer matrix.
func (p PhaseMatrix) Apply(v PhaseVector) PhaseVector {
	var out PhaseVector
	for i := 0; i < Dim; i++ {
		sum := 0.0
		for k := 0; k < Dim; k++ {
			sum += p.m[i][k] * v[k]
		}
		out[i] = sum
	}
	return out
}

// Mul returns p·o, the map that applies o first and then p.
func (p PhaseMatrix) Mul(o PhaseMatrix) PhaseMatrix {
	var out PhaseMatrix
	for i := 0; i < Dim; i++ {
		for j := 0; j < Dim; j++ {
			sum := 0.0
			for k := 0; k < Dim; k++ {
				sum += p.m[i][k] * o.m[k][j]
			}
			out.m[i][j] = sum
		}
	}
	return out
}

func (p PhaseMatrix) String() string {
	m, err := linalg.NewMatrix(Dim, flatten(p.m))
	if err != nil {
		return err.Error()
	}
	return m.String()
}

func flatten(a [Dim][Dim]float64) []float64 {
	out := make([]float64, 0, Dim*Dim)
	for i := range a {
		out = append(out, a[i][:]...)
	}
	return out
}
