package optics

import (
	"math"

	"github.com/san-kum/optix/internal/beam"
)

// MatchedTwiss returns the periodic Twiss parameters of each plane:
//
//	β = M12 / sin μ
//	α = (M11 − M22) / (2 sin μ)
//
// with μ the unfolded per-cell phase advance. Emittance is NaN because a
// periodic solution fixes the ellipse shape but not its area. When sin μ is
// zero (μ = 0 or π) the Inf or NaN is returned as is.
func (e *Engine) MatchedTwiss(m beam.PhaseMatrix) beam.TwissSet {
	mu := e.PhaseAdvancePerCell(m)
	var set beam.TwissSet
	for _, p := range beam.Planes {
		b := m.Block(p)
		sinMu := math.Sin(mu[p])
		set[p] = beam.Twiss{
			Alpha:     (b[0][0] - b[1][1]) / (2 * sinMu),
			Beta:      b[0][1] / sinMu,
			Emittance: math.NaN(),
		}
	}
	return set
}
