package beam

import (
	"errors"
	"fmt"
)

// Domain errors for beam data construction.
var (
	// ErrShapeMismatch indicates input with the wrong number of rows, columns or planes.
	ErrShapeMismatch = errors.New("beam: shape mismatch")

	// ErrNotHomogeneous indicates a transfer matrix whose last row is not (0,0,0,0,0,0,1).
	ErrNotHomogeneous = errors.New("beam: last row must be (0,0,0,0,0,0,1)")

	// ErrInvalidGamma indicates a relativistic gamma below 1 or not finite.
	ErrInvalidGamma = errors.New("beam: relativistic gamma must be finite and >= 1")

	// ErrInvalidTwiss indicates a non-positive or non-finite beta.
	ErrInvalidTwiss = errors.New("beam: beta must be positive and finite")
)

// ShapeError wraps a shape failure with what was being built.
type ShapeError struct {
	What    string
	Want    string
	Got     string
	Wrapped error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: want %s, got %s", e.Wrapped.Error(), e.What, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error {
	return e.Wrapped
}
