package scan

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/optix/internal/config"
	"github.com/san-kum/optix/internal/optics"
)

var ErrNoResult = errors.New("scan: search found no result")

// Objective scores a report; lower is better. NaN scores never win.
type Objective func(optics.Report) float64

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of parameter values on top of base
// and returns the best combination and its score.
func (g *GridSearch) Search(ctx context.Context, eng *optics.Engine, base *config.Config, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%w: %d parameters but %d ranges", ErrInvalidSweep, len(g.paramNames), len(g.ranges))
	}

	var combos []map[string]float64
	g.enumerate(0, make(map[string]float64), &combos)

	cells := make([]optics.Cell, len(combos))
	for i, combo := range combos {
		cfg := base.Clone()
		for k, v := range combo {
			if err := SetParam(cfg, k, v); err != nil {
				return nil, 0, err
			}
		}
		cell, err := cfg.Cell()
		if err != nil {
			return nil, 0, fmt.Errorf("%v: %w", combo, err)
		}
		cells[i] = cell
	}

	reports, err := eng.AnalyzeAll(ctx, cells)
	if err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for i, r := range reports {
		if val := objective(r); val < best {
			best = val
			bestParams = combos[i]
		}
	}
	if bestParams == nil {
		return nil, best, fmt.Errorf("%w: no finite score in %d evaluations", ErrNoResult, len(reports))
	}
	return bestParams, best, nil
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.enumerate(depth+1, newParams, out)
	}
}

// Linspace returns n evenly spaced values over [from, to].
func Linspace(from, to float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	s := Sweep{From: from, To: to, Steps: n}
	return s.Values()
}

// TuneDistance scores how far a report's tunes are from the targets.
func TuneDistance(qx, qy float64) Objective {
	return func(r optics.Report) float64 {
		dx := r.Tune[0] - qx
		dy := r.Tune[1] - qy
		return math.Hypot(dx, dy)
	}
}
