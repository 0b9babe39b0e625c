package optics

import (
	"fmt"
	"math"

	"github.com/san-kum/optix/internal/beam"
)

// PhaseAdvancePerCell returns the signed phase advance of each plane over
// one period. The angle is acos(trace/2) with the trace clamped to [−2, 2],
// negated when M[2m,2m+1] (= β sin μ, β > 0) is negative. The result is
// not folded into [0, 2π).
func (e *Engine) PhaseAdvancePerCell(m beam.PhaseMatrix) [3]float64 {
	var mu [3]float64
	for _, p := range beam.Planes {
		b := m.Block(p)
		trace := clamp(b[0][0]+b[1][1], -2, 2)
		phi := math.Acos(trace / 2)
		if b[0][1] < 0 {
			phi = -phi
		}
		mu[p] = phi
	}
	return mu
}

// TunePerCell returns the fractional tune of each plane, always in [0, 1).
// A negative phase advance −θ maps to 1 − θ/2π.
func (e *Engine) TunePerCell(m beam.PhaseMatrix) [3]float64 {
	mu := e.PhaseAdvancePerCell(m)
	var q [3]float64
	for i, phi := range mu {
		q[i] = Fractional(phi / (2 * math.Pi))
	}
	return q
}

// Fractional returns x − ⌊x⌋ in [0, 1). NaN is returned unchanged.
func Fractional(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}

// PhaseAdvance returns the phase advance in [0, 2π) of each plane between
// a location with Twiss parameters initial and one with final, where m is
// the transfer matrix between them.
//
//	sin φ = M12 / √(β₀β₁)
//	cos φ = (M11·β₀ − M12·α₀) / √(β₀β₁)
//
// Angles in (−Config.PhaseSnapEpsilon, 0) are snapped to zero.
//
// An older formulation derived φ from asin and repaired the quadrant by hand:
//
//	phi := math.Asin(sinPhi)
//	if cosPhi < 0 {
//		phi = math.Pi - phi
//	}
//
// It returns wrong quadrants near ±π/2 and is kept only as this note.
func (e *Engine) PhaseAdvance(m beam.PhaseMatrix, initial, final beam.TwissSet) ([3]float64, error) {
	var out [3]float64
	if err := initial.Validate(); err != nil {
		return out, fmt.Errorf("initial twiss: %w", err)
	}
	if err := final.Validate(); err != nil {
		return out, fmt.Errorf("final twiss: %w", err)
	}

	for _, p := range beam.Planes {
		b := m.Block(p)
		m11, m12 := b[0][0], b[0][1]
		alpha0, beta0 := initial[p].Alpha, initial[p].Beta
		beta1 := final[p].Beta

		norm := math.Sqrt(beta0 * beta1)
		sinPhi := clamp(m12/norm, -1, 1)
		cosPhi := clamp((m11*beta0-m12*alpha0)/norm, -1, 1)

		phi := math.Atan2(sinPhi, cosPhi)
		if phi > -e.cfg.PhaseSnapEpsilon && phi < 0 {
			phi = 0
		}
		if phi < 0 {
			phi += 2 * math.Pi
		}
		out[p] = phi
	}
	return out, nil
}

// Stable reports, per plane, whether the one-period motion is bounded
// (|trace| < 2).
func (e *Engine) Stable(m beam.PhaseMatrix) [3]bool {
	var ok [3]bool
	for _, p := range beam.Planes {
		b := m.Block(p)
		ok[p] = math.Abs(b[0][0]+b[1][1]) < 2
	}
	return ok
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
