package beam

import "math"

// CourantSnyder returns the 2×2 one-period map of a plane whose periodic
// ellipse is t and whose phase advance is mu:
//
//	| cos μ + α sin μ     β sin μ        |
//	| −γ sin μ            cos μ − α sin μ |
func CourantSnyder(t Twiss, mu float64) [2][2]float64 {
	s, c := math.Sincos(mu)
	return [2][2]float64{
		{c + t.Alpha*s, t.Beta * s},
		{-t.Gamma() * s, c - t.Alpha*s},
	}
}

// FromTwiss builds an uncoupled transfer matrix whose diagonal blocks are
// the Courant–Snyder maps of the given planes. Off-diagonal blocks and the
// translation are zero.
func FromTwiss(twiss TwissSet, mu [3]float64) PhaseMatrix {
	pm := Identity()
	for _, p := range Planes {
		pm = pm.WithBlock(p, CourantSnyder(twiss[p], mu[p]))
	}
	return pm
}

// Rotation returns a matrix whose diagonal blocks are plain rotations by theta.
func Rotation(theta [3]float64) PhaseMatrix {
	unit := Twiss{Alpha: 0, Beta: 1}
	return FromTwiss(TwissSet{unit, unit, unit}, theta)
}
