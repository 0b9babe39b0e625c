package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/optix/internal/analysis"
	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/config"
	"github.com/san-kum/optix/internal/optics"
	"github.com/san-kum/optix/internal/scan"
)

const (
	stateMenu = iota
	stateExplore
)

const (
	canvasWidth     = 40
	canvasHeight    = 16
	trailCapacity   = 256
	historyCapacity = 60
	tickRate        = time.Second / 20
)

var paramSteps = map[string]float64{
	"tune-x":  0.005,
	"tune-y":  0.005,
	"tune-z":  0.001,
	"alpha-x": 0.05,
	"alpha-y": 0.05,
	"beta-x":  0.25,
	"beta-y":  0.25,
	"gamma":   0.5,
	"skew":    0.005,
}

var latticeParams = []string{"tune-x", "tune-y", "tune-z", "alpha-x", "beta-x", "alpha-y", "beta-y", "skew", "gamma"}

type TickMsg time.Time

// Explorer is the bubbletea model behind `optix live`. Parameters are
// adjusted with the keyboard and every change re-runs the engine; a test
// particle is tracked turn by turn on the matched ellipse.
type Explorer struct {
	state   int
	presets []string
	cursor  int

	eng      *optics.Engine
	base     *config.Config
	cfg      *config.Config
	params   []string
	selected int

	matrix beam.PhaseMatrix
	report optics.Report
	err    error

	plane    beam.Plane
	particle beam.PhaseVector
	trail    []analysis.Point
	history  []float64
	running  bool
	theme    Theme
	canvas   *Canvas
	turns    int
	showHelp bool
}

// NewExplorer starts on the preset menu when cfg is nil.
func NewExplorer(eng *optics.Engine, cfg *config.Config) Explorer {
	m := Explorer{
		state:   stateMenu,
		presets: config.ListPresets(),
		eng:     eng,
		running: true,
		theme:   Themes[0],
		canvas:  NewCanvas(canvasWidth, canvasHeight),
	}
	if cfg != nil {
		m.load(cfg)
	}
	return m
}

func (m *Explorer) load(cfg *config.Config) {
	m.base = cfg.Clone()
	m.cfg = cfg.Clone()
	m.params = []string{"gamma"}
	if len(cfg.Matrix) == 0 {
		m.params = latticeParams
	}
	m.selected = 0
	m.history = m.history[:0]
	m.state = stateExplore
	m.recompute()
}

func (m *Explorer) recompute() {
	cell, err := m.cfg.Cell()
	if err != nil {
		m.err = err
		return
	}
	report, err := m.eng.Analyze(cell)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.matrix = cell.Matrix
	m.report = report

	m.history = append(m.history, report.Tune[m.plane])
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	m.resetParticle()
}

// resetParticle launches a particle 1 mm off the closed orbit in the
// displayed plane.
func (m *Explorer) resetParticle() {
	coords := m.report.FixedPoint.Coords()
	coords[m.plane.Pos()] += 1e-3
	m.particle = beam.NewPhaseVector(coords)
	m.trail = m.trail[:0]
	m.turns = 0
}

func (m *Explorer) step() {
	if m.err != nil {
		return
	}
	next := m.matrix.Apply(m.particle)
	if !next.IsValid() {
		m.running = false
		return
	}
	m.particle = next
	m.turns++

	fp := m.report.FixedPoint
	m.trail = append(m.trail, analysis.Point{
		X: next[m.plane.Pos()] - fp[m.plane.Pos()],
		Y: next[m.plane.Ang()] - fp[m.plane.Ang()],
	})
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

func (m *Explorer) adjust(dir float64) {
	if len(m.params) == 0 {
		return
	}
	name := m.params[m.selected]
	v, err := scan.GetParam(m.cfg, name)
	if err != nil {
		m.err = err
		return
	}
	if err := scan.SetParam(m.cfg, name, v+dir*paramSteps[name]); err != nil {
		m.err = err
		return
	}
	m.recompute()
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Explorer) Init() tea.Cmd { return tick() }

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state == stateMenu {
			return m.menuKey(msg)
		}
		return m.exploreKey(msg)
	case TickMsg:
		if m.state == stateExplore && m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m Explorer) menuKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if cfg := config.GetPreset(m.presets[m.cursor]); cfg != nil {
			m.load(cfg)
		}
	}
	return m, nil
}

func (m Explorer) exploreKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.state = stateMenu
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j", "tab":
		if m.selected < len(m.params)-1 {
			m.selected++
		}
	case "right", "l", "+":
		m.adjust(1)
	case "left", "h", "-":
		m.adjust(-1)
	case "p":
		m.plane = beam.Planes[(int(m.plane)+1)%len(beam.Planes)]
		m.history = m.history[:0]
		m.recompute()
	case "r":
		m.cfg = m.base.Clone()
		m.history = m.history[:0]
		m.recompute()
	case " ":
		m.running = !m.running
	case "t":
		m.theme = m.theme.Next()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Explorer) View() string {
	if m.state == stateMenu {
		return m.viewMenu()
	}
	return m.viewExplore()
}

func (m Explorer) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + m.theme.primary().Render("OPTIX") + "\n    " + m.theme.muted().Render("periodic beam optics explorer") + "\n    " + m.theme.muted().Render("─────────────────────────────") + "\n\n")
	for i, name := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", m.theme.accent().Render("▸"), m.theme.primary().Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("      %s\n", m.theme.muted().Render(name)))
		}
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

// portrait draws the matched ellipse through the particle's launch point
// and the tracked turns.
func (m Explorer) portrait() string {
	m.canvas.Clear()
	if m.err != nil {
		return m.canvas.String()
	}

	tw := m.report.Matched[m.plane]
	xs := make([]float64, len(m.trail))
	ys := make([]float64, len(m.trail))
	for i, p := range m.trail {
		xs[i], ys[i] = p.X, p.Y
	}

	tw.Emittance = invariant(tw, 1e-3, 0)
	var ex, ey []float64
	if ellipse := analysis.TwissEllipse(m.plane, tw, 120); ellipse != nil {
		for _, p := range ellipse.Points {
			ex = append(ex, p.X)
			ey = append(ey, p.Y)
		}
	}

	bounds := Fit(append(append([]float64{}, xs...), ex...), append(append([]float64{}, ys...), ey...))
	m.canvas.Axes(bounds)
	m.canvas.Plot(bounds, ex, ey, true)
	m.canvas.Plot(bounds, xs, ys, false)
	return m.canvas.String()
}

func (m Explorer) viewExplore() string {
	var s strings.Builder
	s.WriteString(m.theme.primary().Render(strings.ToUpper(m.cfg.Name)) + "  " + m.theme.muted().Render("plane "+m.plane.String()) + "\n\n")

	if m.err != nil {
		s.WriteString(StatusUnstable.Render("error: "+m.err.Error()) + "\n\n")
	} else {
		r := m.report
		s.WriteString(MetricLabel.Render("tune") + m.theme.secondary().Render(fmt.Sprintf("%s / %s / %s", Num(r.Tune[0]), Num(r.Tune[1]), Num(r.Tune[2]))) + "\n")
		tw := r.Matched[m.plane]
		s.WriteString(MetricLabel.Render("alpha, beta") + m.theme.secondary().Render(fmt.Sprintf("%s, %s", Num(tw.Alpha), Num(tw.Beta))) + "\n")
		s.WriteString(MetricLabel.Render("motion") + Stability(r.Stable[m.plane]) + "\n")
		s.WriteString(MetricLabel.Render("dispersion") + m.theme.secondary().Render(fmt.Sprintf("%s, %s", Num(r.Dispersion[0]), Num(r.Dispersion[1]))) + "\n")
		s.WriteString(MetricLabel.Render("turns") + m.theme.secondary().Render(fmt.Sprint(m.turns)) + "\n")
		if n := len(m.trail); n > 0 {
			last := m.trail[n-1]
			s.WriteString(MetricLabel.Render("invariant") + m.theme.secondary().Render(Num(invariant(tw, last.X, last.Y))) + "\n")
		}
		if len(m.history) > 1 {
			s.WriteString(MetricLabel.Render("tune trend") + SparklineChart(m.history, 20) + "\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(m.theme.muted().Render("PARAMETERS") + "\n")
	for i, name := range m.params {
		v, _ := scan.GetParam(m.cfg, name)
		line := fmt.Sprintf("%-8s %10.4f", name, v)
		if i == m.selected {
			s.WriteString(m.theme.accent().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + m.theme.muted().Render(line) + "\n")
		}
	}

	s.WriteString("\n" + KeyHint.Render("j/k select  h/l adjust  p plane  r reset\nspace pause  t theme  esc menu  q quit"))
	if m.showHelp {
		s.WriteString("\n\n" + m.theme.muted().Render(fmt.Sprintf("steps: %v", paramSteps)))
	}

	canvas := lipgloss.NewStyle().Foreground(m.theme.Secondary).Padding(1, 2).Render(m.portrait())
	stats := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(m.theme.Muted).
		Padding(1, 2).
		Width(48).
		Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, stats)
}

// WithTheme returns a copy of m drawn in t.
func (m Explorer) WithTheme(t Theme) Explorer {
	m.theme = t
	return m
}

// RunExplorer runs the explorer full screen until the user quits. An
// unknown theme name falls back to the first theme.
func RunExplorer(eng *optics.Engine, cfg *config.Config, theme string) error {
	m := NewExplorer(eng, cfg).WithTheme(GetTheme(theme))
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// invariant is the Courant–Snyder invariant of (x, x') under t.
func invariant(t beam.Twiss, x, xp float64) float64 {
	if !t.IsValid() {
		return math.NaN()
	}
	return t.Gamma()*x*x + 2*t.Alpha*x*xp + t.Beta*xp*xp
}
