package linalg

import (
	"errors"
	"fmt"
)

// Domain errors for matrix and vector operations.
var (
	// ErrShapeMismatch indicates operands whose dimensions do not agree.
	ErrShapeMismatch = errors.New("linalg: shape mismatch")

	// ErrUnsupportedSize indicates a dimension outside the supported set.
	ErrUnsupportedSize = errors.New("linalg: unsupported size")

	// ErrSingular indicates a linear system with no usable solution.
	ErrSingular = errors.New("linalg: singular or ill-conditioned system")
)

// DimError records the dimensions involved in a failed operation.
type DimError struct {
	Op      string
	Want    int
	Got     int
	Wrapped error
}

func (e *DimError) Error() string {
	return fmt.Sprintf("%s: %s (want %d, got %d)", e.Wrapped.Error(), e.Op, e.Want, e.Got)
}

func (e *DimError) Unwrap() error {
	return e.Wrapped
}

func mismatch(op string, want, got int) error {
	return &DimError{Op: op, Want: want, Got: got, Wrapped: ErrShapeMismatch}
}

func unsupported(op string, got int) error {
	return &DimError{Op: op, Want: 0, Got: got, Wrapped: ErrUnsupportedSize}
}
