package optics

import (
	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/linalg"
)

// FixedPoint returns the closed orbit p with m·p = p.
//
// The six-dimensional system (I−T)p = Δ is solved when its condition number
// is below Config.ConditionLimit. Otherwise, typically because longitudinal
// motion is absent or decoupled, only the transverse (x,x',y,y') system is
// solved and the longitudinal coordinates are zero. If that also fails the
// zero orbit is returned.
func (e *Engine) FixedPoint(m beam.PhaseMatrix) beam.PhaseVector {
	full, err := linalg.ResolventOf(m.Linear())
	if err == nil {
		cond := full.Cond()
		if cond < e.cfg.ConditionLimit {
			p, err := full.Solve(m.Offset(6))
			if err == nil {
				var coords [6]float64
				copy(coords[:], p.Data())
				return beam.NewPhaseVector(coords)
			}
			e.logger.Debug("full fixed-point solve failed", "err", err)
		} else {
			e.logger.Debug("full resolvent ill-conditioned, using transverse system", "cond", cond, "limit", e.cfg.ConditionLimit)
		}
	}

	trans, err := linalg.ResolventOf(m.Transverse())
	if err != nil {
		e.logger.Warn("transverse resolvent unavailable, returning zero orbit", "err", err)
		return beam.Origin()
	}
	p, err := trans.Solve(m.Offset(4))
	if err != nil {
		e.logger.Warn("transverse fixed-point solve failed, returning zero orbit", "err", err)
		return beam.Origin()
	}

	var coords [6]float64
	copy(coords[:4], p.Data())
	return beam.NewPhaseVector(coords)
}
