package canvas

import "image/color"

// Op kinds recorded by Recorder.
const (
	OpClear        = "clear"
	OpFillRect     = "fill-rect"
	OpStrokeRect   = "stroke-rect"
	OpFillCircle   = "fill-circle"
	OpStrokeCircle = "stroke-circle"
	OpFillWedge    = "fill-wedge"
	OpLine         = "line"
	OpText         = "text"
)

// Op is one recorded draw call.
type Op struct {
	Kind   string
	Args   []float64
	Color  color.RGBA
	Stroke Stroke
	Text   string
	Style  TextStyle
}

// Recorder is a Surface that keeps the draw calls of the last frame.
type Recorder struct {
	width, height int
	Ops           []Op
}

// NewRecorder creates a recording surface.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

func (r *Recorder) Resize(width, height int) { r.width, r.height = width, height }

func (r *Recorder) Size() (int, int) { return r.width, r.height }

// Clear drops the previous frame's ops.
func (r *Recorder) Clear(bg color.RGBA) {
	r.Ops = r.Ops[:0]
	r.Ops = append(r.Ops, Op{Kind: OpClear, Color: bg, Args: []float64{float64(r.width), float64(r.height)}})
}

func (r *Recorder) FillRect(x, y, w, h float64, c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpFillRect, Args: []float64{x, y, w, h}, Color: c})
}

func (r *Recorder) StrokeRect(x, y, w, h float64, s Stroke) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeRect, Args: []float64{x, y, w, h}, Stroke: s})
}

func (r *Recorder) FillCircle(cx, cy, rad float64, c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpFillCircle, Args: []float64{cx, cy, rad}, Color: c})
}

func (r *Recorder) StrokeCircle(cx, cy, rad float64, s Stroke) {
	r.Ops = append(r.Ops, Op{Kind: OpStrokeCircle, Args: []float64{cx, cy, rad}, Stroke: s})
}

func (r *Recorder) FillWedge(cx, cy, rad, from, to float64, c color.RGBA) {
	r.Ops = append(r.Ops, Op{Kind: OpFillWedge, Args: []float64{cx, cy, rad, from, to}, Color: c})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64, s Stroke) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Args: []float64{x1, y1, x2, y2}, Stroke: s})
}

func (r *Recorder) Text(x, y float64, text string, st TextStyle) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Args: []float64{x, y}, Text: text, Style: st})
}

// Find returns the recorded ops of one kind.
func (r *Recorder) Find(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every text run in draw order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Find(OpText) {
		out = append(out, op.Text)
	}
	return out
}
