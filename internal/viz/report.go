package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/optics"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Num formats a value for tables; NaN and Inf are spelled out.
func Num(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.6g", v)
}

func row(label string, cells ...string) string {
	var b strings.Builder
	b.WriteString(MetricLabel.Render(label))
	for _, c := range cells {
		b.WriteString(MetricValue.Render(fmt.Sprintf("%14s", c)))
	}
	return b.String()
}

func planeHeader() string {
	var b strings.Builder
	b.WriteString(MetricLabel.Render(""))
	for _, p := range beam.Planes {
		b.WriteString(Subtle.Render(fmt.Sprintf("%14s", p)))
	}
	return b.String()
}

func triple(vals [3]float64) []string {
	return []string{Num(vals[0]), Num(vals[1]), Num(vals[2])}
}

// RenderReport formats every quantity of a report for the terminal.
func RenderReport(r optics.Report) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s  (gamma %s)", r.Name, Num(r.Gamma))) + "\n\n")

	b.WriteString(planeHeader() + "\n")
	b.WriteString(row("phase adv", triple(r.PhaseAdvancePerCell)...) + "\n")
	b.WriteString(row("tune", triple(r.Tune)...) + "\n")
	if r.PhaseAdvance != nil {
		b.WriteString(row("phase (p2p)", triple(*r.PhaseAdvance)...) + "\n")
	}

	var alpha, betaV, emit [3]float64
	for _, p := range beam.Planes {
		alpha[p] = r.Matched[p].Alpha
		betaV[p] = r.Matched[p].Beta
		emit[p] = r.Matched[p].Emittance
	}
	b.WriteString(row("alpha", triple(alpha)...) + "\n")
	b.WriteString(row("beta", triple(betaV)...) + "\n")
	b.WriteString(row("emittance", triple(emit)...) + "\n")

	var stab strings.Builder
	stab.WriteString(MetricLabel.Render("motion"))
	for _, p := range beam.Planes {
		pad := 14 - len("unstable")
		if r.Stable[p] {
			pad = 14 - len("stable")
		}
		stab.WriteString(strings.Repeat(" ", pad) + Stability(r.Stable[p]))
	}
	b.WriteString(stab.String() + "\n\n")

	coords := r.FixedPoint.Coords()
	b.WriteString(Title.Render("closed orbit") + "\n")
	b.WriteString(row("x, x'", Num(coords[beam.IndexX]), Num(coords[beam.IndexXP])) + "\n")
	b.WriteString(row("y, y'", Num(coords[beam.IndexY]), Num(coords[beam.IndexYP])) + "\n")
	b.WriteString(row("z, z'", Num(coords[beam.IndexZ]), Num(coords[beam.IndexZP])) + "\n\n")

	b.WriteString(Title.Render("dispersion") + "\n")
	b.WriteString(row("eta, eta'", Num(r.Dispersion[0]), Num(r.Dispersion[1])) + "\n")
	b.WriteString(row("eta_y, eta_y'", Num(r.Dispersion[2]), Num(r.Dispersion[3])) + "\n\n")

	b.WriteString(Title.Render("chromatic column") + "\n")
	b.WriteString(row("x, x'", Num(r.Chromatic[0]), Num(r.Chromatic[1])) + "\n")
	b.WriteString(row("y, y'", Num(r.Chromatic[2]), Num(r.Chromatic[3])) + "\n")
	b.WriteString(row("z, z'", Num(r.Chromatic[4]), Num(r.Chromatic[5])))

	return Panel.Render(b.String())
}

// RenderLegacy formats Twiss parameters carried through the deprecated
// propagation path.
func RenderLegacy(name string, in, out beam.TwissSet) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(name+"  (legacy propagation)") + "\n\n")
	b.WriteString(planeHeader() + "\n")

	for _, set := range []struct {
		label string
		twiss beam.TwissSet
	}{{"in", in}, {"out", out}} {
		var a, bt, e [3]float64
		for _, p := range beam.Planes {
			a[p], bt[p], e[p] = set.twiss[p].Alpha, set.twiss[p].Beta, set.twiss[p].Emittance
		}
		b.WriteString(row(set.label+" alpha", triple(a)...) + "\n")
		b.WriteString(row(set.label+" beta", triple(bt)...) + "\n")
		b.WriteString(row(set.label+" emit", triple(e)...) + "\n")
	}
	return Panel.Render(strings.TrimSuffix(b.String(), "\n"))
}

// SideBySide joins rendered blocks horizontally with a gap.
func SideBySide(blocks ...string) string {
	spaced := make([]string, 0, 2*len(blocks))
	for i, blk := range blocks {
		if i > 0 {
			spaced = append(spaced, "  ")
		}
		spaced = append(spaced, blk)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
}
