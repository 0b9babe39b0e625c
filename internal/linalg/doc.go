// Package linalg is the small square-matrix substrate used by the optics
// engine: identity, sub-block projection, resolvent construction, linear
// solve and condition-number estimation for sizes 3, 4, 6 and 7.
//
// Values are immutable wrappers around gonum's mat.Dense and mat.VecDense.
package linalg
