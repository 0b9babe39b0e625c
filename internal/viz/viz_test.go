package viz

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/optix/internal/config"
	"github.com/san-kum/optix/internal/optics"
	"github.com/san-kum/optix/internal/scan"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{math.NaN(), "nan"},
		{math.Inf(1), "+inf"},
		{math.Inf(-1), "-inf"},
		{0.25, "0.25"},
	}
	for _, tt := range tests {
		if got := Num(tt.in); got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	if c.Grid[0][0] != brailleBlank|0x1 {
		t.Errorf("expected first dot set, got %U", c.Grid[0][0])
	}

	c.Set(100, 100)
	c.Set(-1, 0)

	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				t.Fatalf("expected blank canvas, got %U", r)
			}
		}
	}
}

func TestCanvasPlot(t *testing.T) {
	c := NewCanvas(10, 5)
	b := Fit([]float64{-1, 1}, []float64{-1, 1})
	if b.MaxX <= 1 || b.MinY >= -1 {
		t.Errorf("expected padded bounds, got %+v", b)
	}

	c.Plot(b, []float64{-1, 1, 1, -1}, []float64{-1, -1, 1, 1}, true)
	lit := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != brailleBlank {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("expected plotted dots")
	}
	if lines := strings.Count(c.String(), "\n"); lines != 5 {
		t.Errorf("expected 5 lines, got %d", lines)
	}
}

func TestSparklineChart(t *testing.T) {
	s := SparklineChart([]float64{0.1, 0.2, math.NaN(), 0.3}, 4)
	if s == "" {
		t.Error("expected sparkline output")
	}
	if got := SparklineChart(nil, 3); got != "───" {
		t.Errorf("expected empty line, got %q", got)
	}
}

func TestSweepChart(t *testing.T) {
	out := SweepChart("tune", 20, 5, []float64{0.1, 0.2, math.Inf(1), 0.3})
	if !strings.Contains(out, "tune") {
		t.Errorf("expected caption in chart, got %q", out)
	}

	empty := SweepChart("beta", 20, 5, []float64{math.NaN(), math.Inf(-1)})
	if !strings.Contains(empty, "no finite data") {
		t.Errorf("expected placeholder, got %q", empty)
	}
}

func TestRenderReport(t *testing.T) {
	cell, err := config.GetPreset("fodo-90").Cell()
	if err != nil {
		t.Fatal(err)
	}
	r, err := optics.Default().Analyze(cell)
	if err != nil {
		t.Fatal(err)
	}

	out := RenderReport(r)
	for _, want := range []string{"fodo-90", "tune", "dispersion", "closed orbit"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in report", want)
		}
	}
}

func TestThemeNext(t *testing.T) {
	th := Themes[0]
	for range Themes {
		th = th.Next()
	}
	if th.Name != Themes[0].Name {
		t.Errorf("expected cycle back to %s, got %s", Themes[0].Name, th.Name)
	}
	if GetTheme("missing").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
}

func TestExplorerMenu(t *testing.T) {
	m := NewExplorer(optics.Default(), nil)
	if m.state != stateMenu {
		t.Fatal("expected menu state without a config")
	}
	if !strings.Contains(m.View(), m.presets[0]) {
		t.Error("menu should list presets")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(Explorer)
	if got.state != stateExplore {
		t.Fatal("enter should open the explorer")
	}
	if got.cfg.Name != m.presets[1] {
		t.Errorf("expected %s, got %s", m.presets[1], got.cfg.Name)
	}
}

func TestExplorerAdjust(t *testing.T) {
	m := NewExplorer(optics.Default(), config.GetPreset("fodo-60"))
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	before, _ := scan.GetParam(m.cfg, "tune-x")

	next, _ := m.Update(runes("l"))
	got := next.(Explorer)
	after, _ := scan.GetParam(got.cfg, "tune-x")
	if math.Abs(after-before-paramSteps["tune-x"]) > 1e-12 {
		t.Errorf("expected tune-x to step by %g, got %g", paramSteps["tune-x"], after-before)
	}
	if math.Abs(got.report.Tune[0]-after) > 1e-9 {
		t.Errorf("expected report tune %g, got %g", after, got.report.Tune[0])
	}

	next, _ = got.Update(runes("r"))
	got = next.(Explorer)
	if v, _ := scan.GetParam(got.cfg, "tune-x"); v != before {
		t.Errorf("reset should restore %g, got %g", before, v)
	}
}

func TestExplorerMatrixOnlyGamma(t *testing.T) {
	m := NewExplorer(optics.Default(), config.GetPreset("linac-cell"))
	if len(m.params) != 1 || m.params[0] != "gamma" {
		t.Errorf("expected only gamma for an explicit matrix, got %v", m.params)
	}
}

func TestExplorerTracking(t *testing.T) {
	m := NewExplorer(optics.Default(), config.GetPreset("fodo-90"))

	var model tea.Model = m
	for i := 0; i < 8; i++ {
		model, _ = model.Update(TickMsg{})
	}
	got := model.(Explorer)
	if got.turns != 8 || len(got.trail) != 8 {
		t.Fatalf("expected 8 turns, got %d with %d points", got.turns, len(got.trail))
	}

	tw := got.report.Matched[got.plane]
	want := invariant(tw, 1e-3, 0)
	for _, p := range got.trail {
		if math.Abs(invariant(tw, p.X, p.Y)-want) > 1e-9*want+1e-15 {
			t.Errorf("invariant drifted: expected %g, got %g", want, invariant(tw, p.X, p.Y))
		}
	}

	model, _ = got.Update(runes(" "))
	model, _ = model.Update(TickMsg{})
	if model.(Explorer).turns != 8 {
		t.Error("paused explorer should not track")
	}

	if !strings.Contains(model.View(), "FODO-90") {
		t.Error("view should show the lattice name")
	}
}

func TestExplorerWithTheme(t *testing.T) {
	m := NewExplorer(optics.Default(), nil).WithTheme(GetTheme("ocean"))
	if m.theme.Name != "ocean" {
		t.Errorf("expected ocean, got %s", m.theme.Name)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, _ = next.Update(runes("t"))
	if got := next.(Explorer).theme.Name; got != ThemeOcean.Next().Name {
		t.Errorf("expected %s after cycling, got %s", ThemeOcean.Next().Name, got)
	}
}

func TestSeparator(t *testing.T) {
	for _, w := range []int{0, 5, 8, 9, 20, 41} {
		if got := lipgloss.Width(Separator(w)); got != w {
			t.Errorf("width %d: expected %d cells, got %d", w, w, got)
		}
	}
	if got := utf8.RuneCountInString(Separator(20)); got < 20 {
		t.Errorf("expected at least 20 runes, got %d", got)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Errorf("expected %d theme names, got %d", len(Themes), len(ThemeNames()))
	}
}
