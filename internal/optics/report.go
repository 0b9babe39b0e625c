package optics

import (
	"fmt"

	"github.com/san-kum/optix/internal/beam"
)

// Cell is one periodic structure to analyze. Initial and Final are optional;
// when both are set the point-to-point phase advance is computed as well.
type Cell struct {
	Name    string
	Matrix  beam.PhaseMatrix
	Gamma   float64
	Initial *beam.TwissSet
	Final   *beam.TwissSet
}

// Report collects every derived quantity of a [Cell].
type Report struct {
	Name                string
	Gamma               float64
	FixedPoint          beam.PhaseVector
	PhaseAdvancePerCell [3]float64
	Tune                [3]float64
	Stable              [3]bool
	Matched             beam.TwissSet
	PhaseAdvance        *[3]float64
	Chromatic           [6]float64
	Dispersion          [4]float64
}

// Analyze runs all calculators on c.
func (e *Engine) Analyze(c Cell) (Report, error) {
	r := Report{
		Name:                c.Name,
		Gamma:               c.Gamma,
		FixedPoint:          e.FixedPoint(c.Matrix),
		PhaseAdvancePerCell: e.PhaseAdvancePerCell(c.Matrix),
		Tune:                e.TunePerCell(c.Matrix),
		Stable:              e.Stable(c.Matrix),
		Matched:             e.MatchedTwiss(c.Matrix),
	}

	var err error
	if r.Chromatic, err = e.ChromaticAberration(c.Matrix, c.Gamma); err != nil {
		return r, fmt.Errorf("chromatic aberration: %w", err)
	}
	if r.Dispersion, err = e.Dispersion(c.Matrix, c.Gamma); err != nil {
		return r, fmt.Errorf("dispersion: %w", err)
	}

	if c.Initial != nil && c.Final != nil {
		phi, err := e.PhaseAdvance(c.Matrix, *c.Initial, *c.Final)
		if err != nil {
			return r, fmt.Errorf("phase advance: %w", err)
		}
		r.PhaseAdvance = &phi
	}

	e.logger.Debug("analyzed cell", "name", c.Name, "tune_x", r.Tune[beam.X], "tune_y", r.Tune[beam.Y], "tune_z", r.Tune[beam.Z])
	return r, nil
}
