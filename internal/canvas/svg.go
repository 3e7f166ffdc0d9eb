package canvas

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// SVG is a Surface that builds an SVG document.
type SVG struct {
	width, height int
	body          bytes.Buffer
	doc           *svg.SVG
}

// NewSVG creates an SVG surface.
func NewSVG(width, height int) *SVG {
	s := &SVG{width: width, height: height}
	s.doc = svg.New(&s.body)
	return s
}

func (s *SVG) Resize(width, height int) { s.width, s.height = width, height }

func (s *SVG) Size() (int, int) { return s.width, s.height }

// Clear starts a new document.
func (s *SVG) Clear(bg color.RGBA) {
	s.body.Reset()
	s.doc.Start(s.width, s.height)
	s.doc.Rect(0, 0, s.width, s.height, "fill:"+Hex(bg))
}

// WriteTo writes the finished document.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var out bytes.Buffer
	out.Write(s.body.Bytes())
	svg.New(&out).End()
	return out.WriteTo(w)
}

func px(v float64) int { return int(math.Round(v)) }

func strokeStyle(st Stroke) string {
	w := st.Width
	if w <= 0 {
		w = 1
	}
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f", Hex(st.Color), w)
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = fmt.Sprintf("%.1f", d)
		}
		style += ";stroke-dasharray:" + strings.Join(parts, ",")
	}
	return style
}

func (s *SVG) FillRect(x, y, w, h float64, c color.RGBA) {
	s.doc.Rect(px(x), px(y), px(w), px(h), "fill:"+Hex(c))
}

func (s *SVG) StrokeRect(x, y, w, h float64, st Stroke) {
	s.doc.Rect(px(x), px(y), px(w), px(h), strokeStyle(st))
}

func (s *SVG) FillCircle(cx, cy, r float64, c color.RGBA) {
	s.doc.Circle(px(cx), px(cy), px(r), "fill:"+Hex(c))
}

func (s *SVG) StrokeCircle(cx, cy, r float64, st Stroke) {
	s.doc.Circle(px(cx), px(cy), px(r), strokeStyle(st))
}

func (s *SVG) FillWedge(cx, cy, r, from, to float64, c color.RGBA) {
	if to-from >= 2*math.Pi {
		s.FillCircle(cx, cy, r, c)
		return
	}
	x1, y1 := cx+r*math.Cos(from), cy+r*math.Sin(from)
	x2, y2 := cx+r*math.Cos(to), cy+r*math.Sin(to)
	large := 0
	if to-from > math.Pi {
		large = 1
	}
	d := fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z", cx, cy, x1, y1, r, r, large, x2, y2)
	s.doc.Path(d, "fill:"+Hex(c))
}

func (s *SVG) Line(x1, y1, x2, y2 float64, st Stroke) {
	s.doc.Line(px(x1), px(y1), px(x2), px(y2), strokeStyle(st))
}

func (s *SVG) Text(x, y float64, text string, st TextStyle) {
	anchor := "start"
	switch st.Align {
	case AlignCenter:
		anchor = "middle"
	case AlignRight:
		anchor = "end"
	}
	weight := "normal"
	if st.Bold {
		weight = "bold"
	}
	s.doc.Text(px(x), px(y), text, fmt.Sprintf("font-family:monospace;font-size:14px;font-weight:%s;text-anchor:%s;fill:%s", weight, anchor, Hex(st.Color)))
}
