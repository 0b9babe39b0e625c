package scan

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/optix/internal/config"
	"github.com/san-kum/optix/internal/optics"
)

func TestSweepValues(t *testing.T) {
	tests := []struct {
		from, to float64
		steps    int
		want     []float64
	}{
		{0.1, 0.3, 3, []float64{0.1, 0.2, 0.3}},
		{1, 5, 1, []float64{1}},
		{2, 1, 2, []float64{2, 1}},
	}

	for _, tt := range tests {
		s := Sweep{From: tt.from, To: tt.to, Steps: tt.steps}
		got := s.Values()
		if len(got) != len(tt.want) {
			t.Fatalf("expected %d values, got %d", len(tt.want), len(got))
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-12 {
				t.Errorf("value %d: expected %g, got %g", i, tt.want[i], got[i])
			}
		}
	}
}

func TestSetParam(t *testing.T) {
	cfg := config.GetPreset("fodo-60")
	for _, name := range Params() {
		if err := SetParam(cfg, name, 1.5); err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		got, err := GetParam(cfg, name)
		if err != nil || got != 1.5 {
			t.Errorf("%s: expected 1.5, got %g (%v)", name, got, err)
		}
	}

	if err := SetParam(cfg, "length", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}

	linac := config.GetPreset("linac-cell")
	if err := SetParam(linac, "tune-x", 0.2); !errors.Is(err, ErrNeedsLattice) {
		t.Errorf("expected ErrNeedsLattice, got %v", err)
	}
	if err := SetParam(linac, "gamma", 5); err != nil {
		t.Errorf("gamma should apply to explicit matrices: %v", err)
	}
}

func TestRunSweepTune(t *testing.T) {
	sweep := &Sweep{Base: config.GetPreset("fodo-60"), Param: "tune-x", From: 0.05, To: 0.45, Steps: 9}

	points, err := RunSweep(context.Background(), optics.Default(), sweep)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(points) != 9 {
		t.Fatalf("expected 9 points, got %d", len(points))
	}
	for _, p := range points {
		if math.Abs(p.Report.Tune[0]-p.Value) > 1e-9 {
			t.Errorf("expected tune %g, got %g", p.Value, p.Report.Tune[0])
		}
	}

	xs, ys := Series(points, func(r optics.Report) float64 { return r.Tune[0] })
	if len(xs) != len(points) || xs[0] != 0.05 || math.Abs(ys[8]-0.45) > 1e-9 {
		t.Errorf("unexpected series %v %v", xs, ys)
	}
}

func TestRunSweepGamma(t *testing.T) {
	sweep := &Sweep{Base: config.GetPreset("linac-cell"), Param: "gamma", From: 1, To: 4, Steps: 4}

	points, err := RunSweep(context.Background(), optics.Default(), sweep)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	base := points[0].Report.Chromatic[0]
	for _, p := range points {
		want := base / (p.Value * p.Value)
		if math.Abs(p.Report.Chromatic[0]-want) > 1e-15 {
			t.Errorf("gamma %g: expected chromatic %g, got %g", p.Value, want, p.Report.Chromatic[0])
		}
	}
}

func TestSweepErrors(t *testing.T) {
	eng := optics.Default()
	ctx := context.Background()

	if _, err := RunSweep(ctx, eng, &Sweep{Base: config.DefaultConfig(), Param: "gamma", Steps: 0}); !errors.Is(err, ErrInvalidSweep) {
		t.Errorf("expected ErrInvalidSweep, got %v", err)
	}
	if _, err := RunSweep(ctx, eng, &Sweep{Param: "gamma", Steps: 2}); !errors.Is(err, ErrInvalidSweep) {
		t.Errorf("expected ErrInvalidSweep for missing base, got %v", err)
	}
	if _, err := RunSweep(ctx, eng, &Sweep{Base: config.DefaultConfig(), Param: "nope", Steps: 2}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	dir := t.TempDir()

	lattice := `
name = "from-file"
gamma = 5.0

[lattice.x]
tune = 0.3
beta = 7.0

[lattice.y]
tune = 0.2
beta = 4.0

[lattice.z]
tune = 0.01
beta = 100.0
`
	if err := os.WriteFile(filepath.Join(dir, "cell.toml"), []byte(lattice), 0644); err != nil {
		t.Fatal(err)
	}

	scenario := `
name: batch
description: three lattices
steps:
  - preset: fodo-90
  - file: cell.toml
  - name: custom
    gamma: 3
    params:
      tune-x: 0.12
`
	path := filepath.Join(dir, "batch.yaml")
	if err := os.WriteFile(path, []byte(scenario), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(sc.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(sc.Steps))
	}

	results, err := RunScenario(context.Background(), nil, sc, dir)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	reports := make([]optics.Report, len(results))
	for i, res := range results {
		reports[i] = res.Report
	}

	wantNames := []string{"fodo-90", "from-file", "custom"}
	for i, r := range reports {
		if r.Name != wantNames[i] {
			t.Errorf("report %d: expected %s, got %s", i, wantNames[i], r.Name)
		}
	}
	if math.Abs(reports[1].Tune[0]-0.3) > 1e-9 {
		t.Errorf("expected file tune 0.3, got %g", reports[1].Tune[0])
	}
	if reports[2].Gamma != 3 || math.Abs(reports[2].Tune[0]-0.12) > 1e-9 {
		t.Errorf("expected overrides to apply, got gamma %g tune %g", reports[2].Gamma, reports[2].Tune[0])
	}
}

func TestRunScenarioThresholds(t *testing.T) {
	dir := t.TempDir()

	lattice := `
name: loose
gamma: 1
lattice:
  x: {tune: 0.2, beta: 5}
  y: {tune: 0.3, beta: 5}
  z: {tune: 0.01, beta: 50}
  dispersion: [0.01, 0, 0, 0]
thresholds:
  zero_tolerance: 1
`
	if err := os.WriteFile(filepath.Join(dir, "loose.yaml"), []byte(lattice), 0644); err != nil {
		t.Fatal(err)
	}

	sc := &Scenario{Steps: []ScenarioStep{
		{File: "loose.yaml"},
		{File: "loose.yaml", Name: "strict-copy"},
		{Preset: "fodo-60"},
	}}
	results, err := RunScenario(context.Background(), nil, sc, dir)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i := 0; i < 2; i++ {
		if results[i].Thresholds.ZeroTolerance != 1 {
			t.Errorf("step %d: expected zero tolerance 1, got %g", i, results[i].Thresholds.ZeroTolerance)
		}
		if results[i].Report.Dispersion != [4]float64{} {
			t.Errorf("step %d: expected zero dispersion under the file tolerance, got %v", i, results[i].Report.Dispersion)
		}
	}
	if results[2].Thresholds != optics.DefaultConfig() {
		t.Errorf("expected default thresholds for the preset, got %+v", results[2].Thresholds)
	}
	if results[2].Report.Name != "fodo-60" {
		t.Errorf("expected fodo-60 last, got %s", results[2].Report.Name)
	}
}

func TestScenarioStepErrors(t *testing.T) {
	tests := []ScenarioStep{
		{Preset: "missing"},
		{Preset: "fodo-60", File: "x.yaml"},
		{File: "does-not-exist.yaml"},
		{Params: map[string]float64{"bogus": 1}},
	}
	for i, st := range tests {
		if _, err := st.Config(t.TempDir()); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestGridSearch(t *testing.T) {
	g := NewGridSearch(
		[]string{"tune-x", "tune-y"},
		[][]float64{Linspace(0.1, 0.4, 7), Linspace(0.1, 0.4, 7)},
	)

	best, score, err := g.Search(context.Background(), optics.Default(), config.GetPreset("fodo-60"), TuneDistance(0.2, 0.3))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if score > 1e-9 {
		t.Errorf("expected near-zero score, got %g", score)
	}
	if math.Abs(best["tune-x"]-0.2) > 1e-9 || math.Abs(best["tune-y"]-0.3) > 1e-9 {
		t.Errorf("expected tune-x 0.2 and tune-y 0.3, got %v", best)
	}
}

func TestGridSearchNoResult(t *testing.T) {
	g := NewGridSearch([]string{"tune-x"}, [][]float64{{0.1, 0.2}})
	nan := func(optics.Report) float64 { return math.NaN() }

	if _, _, err := g.Search(context.Background(), optics.Default(), config.DefaultConfig(), nan); !errors.Is(err, ErrNoResult) {
		t.Errorf("expected ErrNoResult, got %v", err)
	}
}
