// Package legacy keeps the single-pass Twiss propagation used by older
// lattice tools. New code should use the periodic quantities from
// package optics instead.
package legacy

import (
	"math"

	"github.com/san-kum/optix/internal/beam"
)

// PropagateTwiss carries initial Twiss parameters through one pass of m,
// treating every plane independently. Each 2×2 block B is normalized by
// √det B before the usual transport:
//
//	α₁ = −N11·N21·β₀ + (N11·N22 + N12·N21)·α₀ − N12·N22·γ₀
//	β₁ = N11²·β₀ − 2·N11·N12·α₀ + N12²·γ₀
//
// When energyGain is non-zero the emittance is scaled by √det B; otherwise
// it is carried unchanged. NaN inputs propagate.
//
// Deprecated: coupled and periodic lattices are not handled. Use
// optics.Engine.MatchedTwiss and optics.Engine.PhaseAdvance.
func PropagateTwiss(m beam.PhaseMatrix, twiss beam.TwissSet, energyGain float64) beam.TwissSet {
	var out beam.TwissSet
	for _, p := range beam.Planes {
		out[p] = propagatePlane(m.Block(p), twiss[p], energyGain)
	}
	return out
}

func propagatePlane(b [2][2]float64, t beam.Twiss, energyGain float64) beam.Twiss {
	det := b[0][0]*b[1][1] - b[0][1]*b[1][0]
	s := math.Sqrt(det)

	n11, n12 := b[0][0]/s, b[0][1]/s
	n21, n22 := b[1][0]/s, b[1][1]/s
	g0 := t.Gamma()

	next := beam.Twiss{
		Alpha:     -n11*n21*t.Beta + (n11*n22+n12*n21)*t.Alpha - n12*n22*g0,
		Beta:      n11*n11*t.Beta - 2*n11*n12*t.Alpha + n12*n12*g0,
		Emittance: t.Emittance,
	}
	if energyGain != 0 {
		next.Emittance = t.Emittance * s
	}
	return next
}
