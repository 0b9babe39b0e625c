package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var ErrNoData = errors.New("analysis: nothing to plot")

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// Series is one named line of a plot.
type Series struct {
	Name string
	X, Y []float64
}

// Chart describes a line plot.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

// points drops non-finite samples, which gonum/plot rejects.
func points(s Series) plotter.XYs {
	n := len(s.X)
	if len(s.Y) < n {
		n = len(s.Y)
	}
	xys := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		x, y := s.X[i], s.Y[i]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	return xys
}

func (c Chart) build() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, s := range c.Series {
		xys := points(s)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}
	p.Legend.Top = true
	return p, nil
}

// SavePlot writes the chart to path; the extension picks the format
// (.png, .svg, .pdf, ...).
func SavePlot(path string, c Chart) error {
	p, err := c.build()
	if err != nil {
		return err
	}
	return p.Save(plotWidth, plotHeight, path)
}

// WritePlot renders the chart in the given format ("png", "svg", ...) to w.
func WritePlot(w io.Writer, format string, c Chart) error {
	p, err := c.build()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, strings.TrimPrefix(format, "."))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// PlotFormat returns the image format implied by a file name.
func PlotFormat(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
