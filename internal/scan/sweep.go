package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/optix/internal/config"
	"github.com/san-kum/optix/internal/optics"
)

var ErrInvalidSweep = errors.New("scan: invalid sweep")

// Sweep varies one parameter of Base over [From, To] in Steps evenly
// spaced values.
type Sweep struct {
	Base  *config.Config
	Param string
	From  float64
	To    float64
	Steps int
}

// Point is the analysis at one sweep value.
type Point struct {
	Value  float64
	Report optics.Report
}

// Values returns the parameter values visited by the sweep.
func (s *Sweep) Values() []float64 {
	if s.Steps == 1 {
		return []float64{s.From}
	}
	vals := make([]float64, s.Steps)
	step := (s.To - s.From) / float64(s.Steps-1)
	for i := range vals {
		vals[i] = s.From + float64(i)*step
	}
	vals[len(vals)-1] = s.To
	return vals
}

// Cells builds one engine cell per sweep value.
func (s *Sweep) Cells() ([]optics.Cell, error) {
	if s.Base == nil {
		return nil, fmt.Errorf("%w: no base lattice", ErrInvalidSweep)
	}
	if s.Steps < 1 {
		return nil, fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidSweep, s.Steps)
	}

	vals := s.Values()
	cells := make([]optics.Cell, len(vals))
	for i, v := range vals {
		cfg := s.Base.Clone()
		if err := SetParam(cfg, s.Param, v); err != nil {
			return nil, err
		}
		cell, err := cfg.Cell()
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", s.Param, v, err)
		}
		cell.Name = fmt.Sprintf("%s[%s=%g]", cfg.Name, s.Param, v)
		cells[i] = cell
	}
	return cells, nil
}

// RunSweep analyzes every sweep value concurrently. Points keep sweep order.
func RunSweep(ctx context.Context, eng *optics.Engine, s *Sweep) ([]Point, error) {
	cells, err := s.Cells()
	if err != nil {
		return nil, err
	}

	reports, err := eng.AnalyzeAll(ctx, cells)
	if err != nil {
		return nil, err
	}

	vals := s.Values()
	points := make([]Point, len(reports))
	for i, r := range reports {
		points[i] = Point{Value: vals[i], Report: r}
	}
	return points, nil
}

// Series extracts one quantity per point, in sweep order.
func Series(points []Point, f func(optics.Report) float64) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Value
		ys[i] = f(p.Report)
	}
	return xs, ys
}
