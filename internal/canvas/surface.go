// Package canvas defines the 2D drawing surface the topology scene is drawn
// onto, with raster, SVG, terminal-grid and recording implementations.
package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Align is the horizontal anchoring of text.
type Align int

// Text alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// CharWidth and LineHeight are the metrics of the fixed 8x16 face every
// surface lays text out with.
const (
	CharWidth  = 8.0
	LineHeight = 16.0
)

// Stroke describes a line. A non-empty Dash alternates on/off lengths.
type Stroke struct {
	Color color.RGBA
	Width float64
	Dash  []float64
}

// TextStyle describes a text run. The y coordinate of Text is the baseline.
type TextStyle struct {
	Color color.RGBA
	Align Align
	Bold  bool
}

// Surface is a bitmap-style drawing target. Angles are radians, measured
// clockwise from the positive x axis (y grows downward).
type Surface interface {
	Resize(width, height int)
	Size() (width, height int)
	Clear(bg color.RGBA)
	FillRect(x, y, w, h float64, c color.RGBA)
	StrokeRect(x, y, w, h float64, s Stroke)
	FillCircle(cx, cy, r float64, c color.RGBA)
	StrokeCircle(cx, cy, r float64, s Stroke)
	FillWedge(cx, cy, r, from, to float64, c color.RGBA)
	Line(x1, y1, x2, y2 float64, s Stroke)
	Text(x, y float64, text string, st TextStyle)
}

// MeasureText returns the advance width of s in the fixed face.
func MeasureText(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * CharWidth
}

// alignedX shifts x so text of the given width honours the alignment.
func alignedX(x, width float64, a Align) float64 {
	switch a {
	case AlignCenter:
		return x - width/2
	case AlignRight:
		return x - width
	}
	return x
}

// Common colors.
var (
	White = color.RGBA{255, 255, 255, 255}
	Black = color.RGBA{33, 33, 33, 255}
	Gray  = color.RGBA{140, 140, 140, 255}
)

// ParseHex parses #rgb or #rrggbb. Malformed input yields Gray.
func ParseHex(s string) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Gray
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Gray
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}

// Hex formats a color as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// dashes splits a segment into the "on" pieces of a dash pattern.
func dashes(x1, y1, x2, y2 float64, pattern []float64) [][4]float64 {
	dx, dy := x2-x1, y2-y1
	length := hypot(dx, dy)
	total := 0.0
	for _, p := range pattern {
		total += p
	}
	if len(pattern) == 0 || total <= 0 || length == 0 {
		return [][4]float64{{x1, y1, x2, y2}}
	}
	ux, uy := dx/length, dy/length
	var out [][4]float64
	pos, i := 0.0, 0
	for pos < length {
		seg := pattern[i%len(pattern)]
		end := pos + seg
		if end > length {
			end = length
		}
		if i%2 == 0 {
			out = append(out, [4]float64{x1 + ux*pos, y1 + uy*pos, x1 + ux*end, y1 + uy*end})
		}
		pos = end
		i++
	}
	return out
}
