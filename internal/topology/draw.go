package topology

import (
	"math"
	"strings"
	"unicode"

	"github.com/muesli/reflow/truncate"

	"turbine-topology/internal/canvas"
	"turbine-topology/internal/farm"
	"turbine-topology/internal/layout"
)

var (
	colorInk       = canvas.ParseHex("#263238")
	colorMuted     = canvas.ParseHex("#78909c")
	colorPanel     = canvas.ParseHex("#f5f7f8")
	colorHub       = canvas.ParseHex("#1f6f8b")
	colorExport    = canvas.ParseHex("#455a64")
	colorCable     = canvas.ParseHex("#37474f")
	colorHighlight = canvas.ParseHex("#ff6f00")
	colorDone      = canvas.ParseHex("#2e7d32")
)

const (
	titleX, titleY = 30.0, 30.0
	titleW, titleH = 360.0, 64.0
	exportLength   = 240.0
	exportGap      = 12.0
	legendTop      = 30.0
	legendWidth    = 400.0
	legendColumn   = 195.0
	legendRow      = 24.0
	legendSwatch   = 14.0
	labelMaxCells  = 18
	legendMaxCells = 20
	legendClear    = 16.0
	labelClear     = 24.0
)

// Draw paints a prepared scene onto s. It starts from a cleared surface, so
// drawing the same scene twice yields the same result.
func (r *Renderer) Draw(s canvas.Surface, sc *Scene, hover HoverState) {
	s.Resize(sc.Layout.Width, sc.Layout.Height)
	s.Clear(canvas.White)

	r.drawTitle(s, sc)
	r.drawHub(s, sc)
	r.drawExport(s, sc)
	r.drawCables(s, sc)
	for _, p := range sc.Layout.Positions {
		r.drawTurbine(s, sc, p, hover.TurbineID == p.ID)
	}
	r.drawLegend(s, sc)
	if hover.Active() {
		r.drawPanel(s, sc, hover)
	}
}

// Render prepares and draws in one call.
func (r *Renderer) Render(s canvas.Surface, in Input, hover HoverState) *Scene {
	sc := r.Prepare(in)
	r.Draw(s, sc, hover)
	return sc
}

func (r *Renderer) drawTitle(s canvas.Surface, sc *Scene) {
	s.FillRect(titleX, titleY, titleW, titleH, colorPanel)
	s.StrokeRect(titleX, titleY, titleW, titleH, canvas.Stroke{Color: colorInk, Width: 1})
	name := sc.Input.ProjectName
	if name == "" {
		name = "Untitled project"
	}
	s.Text(titleX+16, titleY+26, truncate.StringWithTail(name, 40, "…"), canvas.TextStyle{Color: colorInk, Bold: true})

	sub := "As of " + farm.FormatDate(sc.Reference)
	if rng := sc.Input.DateRange; rng != nil {
		sub = "Window " + farm.FormatDate(rng.Start) + " to " + farm.FormatDate(rng.End)
	}
	s.Text(titleX+16, titleY+48, sub, canvas.TextStyle{Color: colorMuted})
}

func (r *Renderer) drawHub(s canvas.Surface, sc *Scene) {
	cx, cy, rad := sc.Layout.HubX, sc.Layout.HubY, r.opts.HubRadius
	seg := 2 * math.Pi / 3
	for i := 0; i < 3; i++ {
		from := -math.Pi/2 + float64(i)*seg
		fill := canvas.White
		if i < sc.HubDone {
			fill = colorHub
		}
		s.FillWedge(cx, cy, rad, from, from+seg, fill)
	}
	for i := 0; i < 3; i++ {
		a := -math.Pi/2 + float64(i)*seg
		s.Line(cx, cy, cx+rad*math.Cos(a), cy+rad*math.Sin(a), canvas.Stroke{Color: colorInk, Width: 1})
	}
	s.StrokeCircle(cx, cy, rad, canvas.Stroke{Color: colorInk, Width: 2})
	inner := rad * 0.55
	s.FillCircle(cx, cy, inner, canvas.White)
	s.StrokeCircle(cx, cy, inner, canvas.Stroke{Color: colorInk, Width: 1})
	s.Text(cx, cy+5, "OSS", canvas.TextStyle{Color: colorInk, Align: canvas.AlignCenter, Bold: true})
}

// drawExport draws the two export cables leaving the hub toward shore.
func (r *Renderer) drawExport(s canvas.Surface, sc *Scene) {
	x1 := sc.Layout.HubX + r.opts.HubRadius
	x2 := x1 + exportLength
	mid := (x1 + x2) / 2
	for i, dy := range []float64{-exportGap, exportGap} {
		y := sc.Layout.HubY + dy
		s.Line(x1, y, x2, y, canvas.Stroke{Color: colorExport, Width: 3})
		label, ly := "Export Cable 1", y-6
		if i == 1 {
			label, ly = "Export Cable 2", y+18
		}
		s.Text(mid, ly, label, canvas.TextStyle{Color: colorExport, Align: canvas.AlignCenter})
	}
}

func (r *Renderer) drawCables(s canvas.Surface, sc *Scene) {
	for _, c := range sc.Cables {
		st := canvas.Stroke{Color: colorCable, Width: 2}
		if !c.Laid {
			st.Dash = []float64{8, 6}
			st.Color = colorMuted
		}
		s.Line(c.X1, c.Y1, c.X2, c.Y2, st)
	}
}

func (r *Renderer) drawTurbine(s canvas.Surface, sc *Scene, p layout.Position, hovered bool) {
	cx, cy, rad := p.X, p.Y, r.opts.NodeRadius
	done := sc.Completion[p.ID]

	s.FillCircle(cx, cy, rad, canvas.White)
	if n := len(sc.Names); n > 0 {
		seg := 2 * math.Pi / float64(n)
		for i, name := range sc.Names {
			if !done[name] {
				continue
			}
			from := -math.Pi/2 + float64(i)*seg
			s.FillWedge(cx, cy, rad, from, from+seg, canvas.ParseHex(sc.Colors[name]))
		}
		if n > 1 {
			for i := 0; i < n; i++ {
				a := -math.Pi/2 + float64(i)*seg
				s.Line(cx, cy, cx+rad*math.Cos(a), cy+rad*math.Sin(a), canvas.Stroke{Color: colorMuted, Width: 1})
			}
		}
	}
	ring := canvas.Stroke{Color: colorInk, Width: 2}
	if hovered {
		ring = canvas.Stroke{Color: colorHighlight, Width: 4}
	}
	s.StrokeCircle(cx, cy, rad, ring)

	s.FillCircle(cx, cy, r.opts.InnerRadius, canvas.White)
	s.StrokeCircle(cx, cy, r.opts.InnerRadius, canvas.Stroke{Color: colorMuted, Width: 1})

	code := canvas.TextStyle{Color: colorInk, Align: canvas.AlignCenter, Bold: true}
	if head, tail := splitCode(p.Code); tail != "" {
		s.Text(cx, cy-2, head, code)
		s.Text(cx, cy+13, tail, code)
	} else {
		s.Text(cx, cy+5, head, code)
	}
	if p.DisplayName != "" && p.DisplayName != p.Code {
		s.Text(cx, cy-rad-8, truncate.StringWithTail(p.DisplayName, labelMaxCells, "…"),
			canvas.TextStyle{Color: colorMuted, Align: canvas.AlignCenter})
	}
}

func legendHeight(names int) float64 {
	rows := (names + 1) / 2
	return 44 + float64(rows)*legendRow
}

// splitCode breaks a turbine code into two label lines at a dash or at the
// first letter-to-digit boundary.
func splitCode(code string) (string, string) {
	if i := strings.IndexByte(code, '-'); i > 0 && i < len(code)-1 {
		return code[:i], code[i+1:]
	}
	runes := []rune(code)
	for i := 1; i < len(runes); i++ {
		if unicode.IsLetter(runes[i-1]) && unicode.IsDigit(runes[i]) {
			return string(runes[:i]), string(runes[i:])
		}
	}
	return code, ""
}

func (r *Renderer) drawLegend(s canvas.Surface, sc *Scene) {
	x := float64(sc.Layout.Width) - r.opts.LegendOffset
	h := legendHeight(len(sc.Names))
	s.FillRect(x, legendTop, legendWidth, h, colorPanel)
	s.StrokeRect(x, legendTop, legendWidth, h, canvas.Stroke{Color: colorInk, Width: 1})
	s.Text(x+12, legendTop+22, "Tasks", canvas.TextStyle{Color: colorInk, Bold: true})

	for i, name := range sc.Names {
		col, row := float64(i%2), float64(i/2)
		sx := x + 12 + col*legendColumn
		sy := legendTop + 36 + row*legendRow
		s.FillRect(sx, sy, legendSwatch, legendSwatch, canvas.ParseHex(sc.Colors[name]))
		s.StrokeRect(sx, sy, legendSwatch, legendSwatch, canvas.Stroke{Color: colorInk, Width: 1})
		s.Text(sx+legendSwatch+6, sy+12, truncate.StringWithTail(name, legendMaxCells, "…"), canvas.TextStyle{Color: colorInk})
	}
}
