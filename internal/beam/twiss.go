package beam

import (
	"fmt"
	"math"
)

// Twiss describes the phase-space ellipse of one plane. Emittance may be
// NaN when only the ellipse shape is known.
type Twiss struct {
	Alpha     float64 `json:"alpha" yaml:"alpha" toml:"alpha"`
	Beta      float64 `json:"beta" yaml:"beta" toml:"beta"`
	Emittance float64 `json:"emittance" yaml:"emittance" toml:"emittance"`
}

// Gamma returns the third Courant–Snyder parameter (1+α²)/β.
func (t Twiss) Gamma() float64 {
	return (1 + t.Alpha*t.Alpha) / t.Beta
}

// IsValid reports whether beta is positive and finite.
func (t Twiss) IsValid() bool {
	return t.Beta > 0 && !math.IsInf(t.Beta, 0) && !math.IsNaN(t.Alpha)
}

func (t Twiss) String() string {
	return fmt.Sprintf("(alpha=%.6g, beta=%.6g, emit=%.6g)", t.Alpha, t.Beta, t.Emittance)
}

// TwissSet holds one Twiss triple per plane, indexed by [Plane].
type TwissSet [3]Twiss

// NewTwissSet checks that exactly one triple per plane was supplied.
func NewTwissSet(ts []Twiss) (TwissSet, error) {
	var set TwissSet
	if len(ts) != len(set) {
		return set, &ShapeError{What: "twiss planes", Want: "3", Got: fmt.Sprint(len(ts)), Wrapped: ErrShapeMismatch}
	}
	copy(set[:], ts)
	return set, nil
}

// Validate returns ErrInvalidTwiss for the first plane with a bad beta.
func (s TwissSet) Validate() error {
	for _, p := range Planes {
		if !s[p].IsValid() {
			return fmt.Errorf("%w: plane %s has beta %g", ErrInvalidTwiss, p, s[p].Beta)
		}
	}
	return nil
}

// ValidateGamma rejects a relativistic gamma that is not finite or below 1.
func ValidateGamma(gamma float64) error {
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma < 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidGamma, gamma)
	}
	return nil
}
