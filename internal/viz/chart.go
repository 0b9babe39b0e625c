package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// SweepChart plots one or more series sampled on the same sweep grid.
// Infinite values are dropped from the chart.
func SweepChart(caption string, width, height int, series ...[]float64) string {
	clean := make([][]float64, 0, len(series))
	for _, s := range series {
		c := make([]float64, len(s))
		hasData := false
		for i, v := range s {
			if math.IsInf(v, 0) {
				v = math.NaN()
			}
			if !math.IsNaN(v) {
				hasData = true
			}
			c[i] = v
		}
		if hasData {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		return Subtle.Render("(no finite data for " + caption + ")")
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if len(clean) > 1 {
		opts = append(opts, asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow))
		return asciigraph.PlotMany(clean, opts...)
	}
	return asciigraph.Plot(clean[0], opts...)
}
