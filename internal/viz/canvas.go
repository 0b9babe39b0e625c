package viz

import (
	"math"
	"strings"
)

// Braille cells hold a 2x4 dot grid:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a character grid drawn with braille dots, giving twice the
// horizontal and four times the vertical resolution of plain text.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y); the canvas spans
// (Width*2) x (Height*4) dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Bounds is the data window mapped onto the canvas.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// Fit returns symmetric bounds around the origin that contain every
// finite point, padded by 10%.
func Fit(xs, ys []float64) Bounds {
	mx, my := 0.0, 0.0
	for i := range xs {
		if finite(xs[i]) {
			mx = math.Max(mx, math.Abs(xs[i]))
		}
	}
	for i := range ys {
		if finite(ys[i]) {
			my = math.Max(my, math.Abs(ys[i]))
		}
	}
	if mx == 0 {
		mx = 1
	}
	if my == 0 {
		my = 1
	}
	mx *= 1.1
	my *= 1.1
	return Bounds{MinX: -mx, MaxX: mx, MinY: -my, MaxY: my}
}

func (c *Canvas) project(b Bounds, x, y float64) (int, int) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	px := (x - b.MinX) / (b.MaxX - b.MinX) * w
	py := h - (y-b.MinY)/(b.MaxY-b.MinY)*h
	return int(math.Round(px)), int(math.Round(py))
}

// Plot draws points in data coordinates. With closed set the points are
// joined into a loop, otherwise they are scattered.
func (c *Canvas) Plot(b Bounds, xs, ys []float64, closed bool) {
	n := min(len(xs), len(ys))
	var firstX, firstY, prevX, prevY int
	started := false
	for i := 0; i < n; i++ {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		px, py := c.project(b, xs[i], ys[i])
		switch {
		case !closed:
			c.Set(px, py)
		case !started:
			firstX, firstY = px, py
		default:
			c.DrawLine(prevX, prevY, px, py)
		}
		prevX, prevY, started = px, py, true
	}
	if closed && started {
		c.DrawLine(prevX, prevY, firstX, firstY)
	}
}

// Axes draws the coordinate axes where they cross the window.
func (c *Canvas) Axes(b Bounds) {
	x0, y0 := c.project(b, 0, 0)
	if b.MinY <= 0 && b.MaxY >= 0 {
		c.DrawLine(0, y0, c.Width*2-1, y0)
	}
	if b.MinX <= 0 && b.MaxX >= 0 {
		c.DrawLine(x0, 0, x0, c.Height*4-1)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
