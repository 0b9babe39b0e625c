package optics

import (
	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/linalg"
)

// ChromaticAberration returns the column of m driven by the longitudinal
// divergence z'. The four transverse entries are divided by γ² to express
// them per unit fractional momentum spread; the longitudinal entries are
// returned unconverted.
func (e *Engine) ChromaticAberration(m beam.PhaseMatrix, gamma float64) ([6]float64, error) {
	var out [6]float64
	if err := beam.ValidateGamma(gamma); err != nil {
		return out, err
	}
	col := m.Column(beam.IndexZP)
	g2 := gamma * gamma
	for i := range out {
		if i < 4 {
			out[i] = col[i] / g2
		} else {
			out[i] = col[i]
		}
	}
	return out, nil
}

// Dispersion returns the momentum-dependent closed-orbit offset
// (η, η', η_y, η_y') per unit fractional momentum spread, solving
// (I − T)d = v for the transverse block T and the normalized coupling v.
//
// A numerically zero v yields zero immediately. A singular resolvent is
// logged and also yields zero; the linear-algebra failure is not returned.
func (e *Engine) Dispersion(m beam.PhaseMatrix, gamma float64) ([4]float64, error) {
	var out [4]float64
	if err := beam.ValidateGamma(gamma); err != nil {
		return out, err
	}

	v := m.Coupling(4).Scale(1 / (gamma * gamma))
	if v.NormInf() <= e.cfg.ZeroTolerance {
		return out, nil
	}

	r, err := linalg.ResolventOf(m.Transverse())
	if err != nil {
		e.logger.Warn("dispersion resolvent unavailable, returning zero", "err", err)
		return out, nil
	}
	d, err := r.Solve(v)
	if err != nil {
		e.logger.Warn("dispersion resolvent singular, returning zero", "err", err)
		return out, nil
	}
	copy(out[:], d.Data())
	return out, nil
}
