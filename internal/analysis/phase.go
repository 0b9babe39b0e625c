package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/optix/internal/beam"
)

type Point struct{ X, Y float64 }

// Portrait is a set of (position, angle) points of one plane.
type Portrait struct {
	Plane  beam.Plane
	Points []Point
}

// Xs returns the position coordinates in order.
func (p *Portrait) Xs() []float64 {
	xs := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i] = pt.X
	}
	return xs
}

// TwissEllipse samples the ellipse γx² + 2αxx' + βx'² = ε at n points.
// A NaN or non-positive emittance draws the unit-emittance ellipse.
func TwissEllipse(plane beam.Plane, t beam.Twiss, n int) *Portrait {
	if !t.IsValid() || n <= 0 {
		return nil
	}

	eps := t.Emittance
	if math.IsNaN(eps) || eps <= 0 {
		eps = 1
	}
	a := math.Sqrt(eps * t.Beta)
	b := math.Sqrt(eps / t.Beta)

	portrait := &Portrait{Plane: plane, Points: make([]Point, n)}
	for i := range portrait.Points {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		portrait.Points[i] = Point{
			X: a * c,
			Y: -b * (t.Alpha*c + s),
		}
	}
	return portrait
}

// Track applies m repeatedly to start and records the chosen plane after
// every period.
func Track(m beam.PhaseMatrix, start beam.PhaseVector, plane beam.Plane, turns int) *Portrait {
	portrait := &Portrait{
		Plane:  plane,
		Points: make([]Point, 0, turns),
	}

	v := start
	for i := 0; i < turns; i++ {
		v = m.Apply(v)
		if !v.IsValid() {
			break
		}
		portrait.Points = append(portrait.Points, Point{X: v[plane.Pos()], Y: v[plane.Ang()]})
	}
	return portrait
}

// PortraitToASCII converts phase portrait to ASCII art
func PortraitToASCII(portrait *Portrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where visible
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
