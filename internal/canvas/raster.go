package canvas

import (
	"image"
	"image/color"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/inconsolata"
)

// Raster is a Surface backed by an RGBA image drawn through a gg context.
// Text uses the inconsolata 8x16 faces.
type Raster struct {
	img *image.RGBA
	dc  *gg.Context
}

// NewRaster creates a raster surface of the given size.
func NewRaster(width, height int) *Raster {
	r := &Raster{}
	r.Resize(width, height)
	return r
}

// Resize reallocates the image when the size changes.
func (r *Raster) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if r.img != nil && r.img.Bounds().Dx() == width && r.img.Bounds().Dy() == height {
		return
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.dc = gg.NewContextForRGBA(r.img)
}

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

// EncodePNG writes the current frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

func (r *Raster) Clear(bg color.RGBA) {
	r.dc.SetColor(bg)
	r.dc.Clear()
}

func (r *Raster) stroke(s Stroke) {
	width := s.Width
	if width <= 0 {
		width = 1
	}
	r.dc.SetColor(s.Color)
	r.dc.SetLineWidth(width)
	r.dc.SetDash(s.Dash...)
	r.dc.Stroke()
	r.dc.SetDash()
}

func (r *Raster) FillRect(x, y, w, h float64, c color.RGBA) {
	r.dc.SetColor(c)
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

func (r *Raster) StrokeRect(x, y, w, h float64, s Stroke) {
	r.dc.DrawRectangle(x, y, w, h)
	r.stroke(s)
}

func (r *Raster) FillCircle(cx, cy, rad float64, c color.RGBA) {
	r.dc.SetColor(c)
	r.dc.DrawCircle(cx, cy, rad)
	r.dc.Fill()
}

func (r *Raster) StrokeCircle(cx, cy, rad float64, s Stroke) {
	r.dc.DrawCircle(cx, cy, rad)
	r.stroke(s)
}

func (r *Raster) FillWedge(cx, cy, rad, from, to float64, c color.RGBA) {
	r.dc.SetColor(c)
	r.dc.NewSubPath()
	r.dc.MoveTo(cx, cy)
	r.dc.DrawArc(cx, cy, rad, from, to)
	r.dc.ClosePath()
	r.dc.Fill()
}

func (r *Raster) Line(x1, y1, x2, y2 float64, s Stroke) {
	r.dc.NewSubPath()
	r.dc.MoveTo(x1, y1)
	r.dc.LineTo(x2, y2)
	r.stroke(s)
}

func (r *Raster) Text(x, y float64, text string, st TextStyle) {
	face := inconsolata.Regular8x16
	if st.Bold {
		face = inconsolata.Bold8x16
	}
	r.dc.SetFontFace(face)
	r.dc.SetColor(st.Color)
	w, _ := r.dc.MeasureString(text)
	r.dc.DrawString(text, alignedX(x, w, st.Align), y)
}
