package canvas

import (
	"image/color"
	"math"
	"strings"
)

// Cell is one terminal character cell.
type Cell struct {
	Rune rune
	FG   color.RGBA
	BG   color.RGBA
}

// Grid is a Surface that samples the scene into a grid of character cells,
// one sample per cell centre.
type Grid struct {
	width, height int
	cols, rows    int
	cells         []Cell
}

// NewGrid creates a grid of cols x rows cells covering a width x height surface.
func NewGrid(cols, rows, width, height int) *Grid {
	g := &Grid{width: width, height: height}
	g.SetCells(cols, rows)
	return g
}

// SetCells changes the terminal resolution.
func (g *Grid) SetCells(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	g.cols, g.rows = cols, rows
	g.cells = make([]Cell, cols*rows)
}

func (g *Grid) Resize(width, height int) { g.width, g.height = width, height }

func (g *Grid) Size() (int, int) { return g.width, g.height }

// Cells returns the terminal resolution.
func (g *Grid) Cells() (cols, rows int) { return g.cols, g.rows }

// At returns the cell at col, row.
func (g *Grid) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return Cell{}
	}
	return g.cells[row*g.cols+col]
}

func (g *Grid) cellW() float64 { return float64(g.width) / float64(g.cols) }
func (g *Grid) cellH() float64 { return float64(g.height) / float64(g.rows) }

// center returns the surface coordinate of a cell centre.
func (g *Grid) center(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * g.cellW(), (float64(row) + 0.5) * g.cellH()
}

// cellOf maps a surface coordinate to its cell.
func (g *Grid) cellOf(x, y float64) (int, int) {
	return int(math.Floor(x / g.cellW())), int(math.Floor(y / g.cellH()))
}

func (g *Grid) set(col, row int, fn func(*Cell)) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return
	}
	fn(&g.cells[row*g.cols+col])
}

// paint fills every cell whose centre satisfies inside.
func (g *Grid) paint(x0, y0, x1, y1 float64, c color.RGBA, inside func(x, y float64) bool) {
	c0, r0 := g.cellOf(x0, y0)
	c1, r1 := g.cellOf(x1, y1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			x, y := g.center(col, row)
			if inside(x, y) {
				g.set(col, row, func(cell *Cell) { cell.Rune, cell.BG = ' ', c })
			}
		}
	}
}

func (g *Grid) Clear(bg color.RGBA) {
	for i := range g.cells {
		g.cells[i] = Cell{Rune: ' ', FG: Black, BG: bg}
	}
}

func (g *Grid) FillRect(x, y, w, h float64, c color.RGBA) {
	g.paint(x, y, x+w, y+h, c, func(px, py float64) bool {
		return px >= x && px < x+w && py >= y && py < y+h
	})
}

func (g *Grid) StrokeRect(x, y, w, h float64, s Stroke) {
	g.Line(x, y, x+w, y, s)
	g.Line(x+w, y, x+w, y+h, s)
	g.Line(x+w, y+h, x, y+h, s)
	g.Line(x, y+h, x, y, s)
}

func (g *Grid) FillCircle(cx, cy, r float64, c color.RGBA) {
	g.paint(cx-r, cy-r, cx+r, cy+r, c, func(x, y float64) bool {
		return hypot(x-cx, y-cy) <= r
	})
}

func (g *Grid) StrokeCircle(cx, cy, r float64, s Stroke) {
	for _, p := range arcPoints(cx, cy, r, 0, 2*math.Pi) {
		col, row := g.cellOf(p[0], p[1])
		g.set(col, row, func(cell *Cell) { cell.Rune, cell.FG = '·', s.Color })
	}
}

func (g *Grid) FillWedge(cx, cy, r, from, to float64, c color.RGBA) {
	g.paint(cx-r, cy-r, cx+r, cy+r, c, func(x, y float64) bool {
		return hypot(x-cx, y-cy) <= r && inWedge(math.Atan2(y-cy, x-cx), from, to)
	})
}

func lineRune(dx, dy float64) rune {
	switch {
	case math.Abs(dx) > 2*math.Abs(dy):
		return '─'
	case math.Abs(dy) > 2*math.Abs(dx):
		return '│'
	case dx*dy > 0:
		return '╲'
	default:
		return '╱'
	}
}

func (g *Grid) Line(x1, y1, x2, y2 float64, s Stroke) {
	ch := lineRune(x2-x1, y2-y1)
	step := math.Min(g.cellW(), g.cellH()) / 2
	for _, seg := range dashes(x1, y1, x2, y2, s.Dash) {
		l := hypot(seg[2]-seg[0], seg[3]-seg[1])
		n := int(math.Ceil(l/step)) + 1
		for i := 0; i < n; i++ {
			t := 0.0
			if n > 1 {
				t = float64(i) / float64(n-1)
			}
			col, row := g.cellOf(seg[0]+(seg[2]-seg[0])*t, seg[1]+(seg[3]-seg[1])*t)
			g.set(col, row, func(cell *Cell) { cell.Rune, cell.FG = ch, s.Color })
		}
	}
}

func (g *Grid) Text(x, y float64, text string, st TextStyle) {
	runes := []rune(text)
	// one rune per cell; the baseline sits in the lower part of the line box
	start := alignedX(x, float64(len(runes))*g.cellW(), st.Align)
	col, row := g.cellOf(start, y-LineHeight/4)
	for i, r := range runes {
		g.set(col+i, row, func(cell *Cell) { cell.Rune, cell.FG = r, st.Color })
	}
}

// String renders the runes only, one line per row.
func (g *Grid) String() string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			b.WriteRune(g.cells[row*g.cols+col].Rune)
		}
		if row < g.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
