package canvas

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"
)

func TestParseHex(t *testing.T) {
	if got := ParseHex("#4e79a7"); got != (color.RGBA{0x4e, 0x79, 0xa7, 255}) {
		t.Fatalf("ParseHex = %v", got)
	}
	if got := ParseHex("fff"); got != White {
		t.Fatalf("short form = %v", got)
	}
	if got := ParseHex("#zzzzzz"); got != Gray {
		t.Fatalf("malformed = %v, want gray", got)
	}
	if Hex(ParseHex("#59a14f")) != "#59a14f" {
		t.Fatalf("hex round trip failed")
	}
}

func TestDashesCoverPattern(t *testing.T) {
	segs := dashes(0, 0, 20, 0, []float64{4, 4})
	if len(segs) != 3 {
		t.Fatalf("dashes = %d, want 3", len(segs))
	}
	if segs[1][0] != 8 || segs[1][2] != 12 {
		t.Fatalf("second dash = %v", segs[1])
	}
	if solid := dashes(0, 0, 20, 0, nil); len(solid) != 1 {
		t.Fatalf("solid line split into %d", len(solid))
	}
}

func TestInWedge(t *testing.T) {
	top := -math.Pi / 2
	if !inWedge(-math.Pi/4, top, 0) {
		t.Errorf("expected upper-right quadrant inside")
	}
	if inWedge(math.Pi/2, top, 0) {
		t.Errorf("expected bottom outside")
	}
	if !inWedge(math.Pi, top, top+2*math.Pi) {
		t.Errorf("full sweep must contain everything")
	}
}

func TestRecorderClearResetsFrame(t *testing.T) {
	r := NewRecorder(10, 10)
	r.Clear(White)
	r.Line(0, 0, 1, 1, Stroke{})
	r.Clear(White)
	if len(r.Ops) != 1 || r.Ops[0].Kind != OpClear {
		t.Fatalf("ops after clear = %+v", r.Ops)
	}
}

func TestRasterFillsPixels(t *testing.T) {
	r := NewRaster(40, 40)
	r.Clear(White)
	red := color.RGBA{255, 0, 0, 255}
	r.FillRect(10, 10, 10, 10, red)
	if got := r.Image().RGBAAt(15, 15); got != red {
		t.Fatalf("pixel = %v, want red", got)
	}
	if got := r.Image().RGBAAt(30, 30); got != White {
		t.Fatalf("pixel outside = %v, want white", got)
	}
	r.FillWedge(20, 20, 15, -math.Pi/2, 0, red)
	if got := r.Image().RGBAAt(26, 12); got != red {
		t.Fatalf("wedge pixel = %v", got)
	}
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestRasterStrokeCircleLeavesHole(t *testing.T) {
	r := NewRaster(60, 60)
	r.Clear(White)
	r.StrokeCircle(30, 30, 20, Stroke{Color: Black, Width: 2})
	if got := r.Image().RGBAAt(30, 30); got != White {
		t.Fatalf("ring centre = %v, want white", got)
	}
	if got := r.Image().RGBAAt(50, 30); got == White {
		t.Fatalf("ring edge not painted")
	}
}

func TestSVGDocument(t *testing.T) {
	s := NewSVG(100, 50)
	s.Clear(White)
	s.Line(0, 0, 10, 10, Stroke{Color: Black, Dash: []float64{6, 4}})
	s.FillWedge(50, 25, 10, -math.Pi/2, 0, Black)
	s.Text(5, 20, "WB030", TextStyle{Color: Black, Align: AlignCenter})
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<svg", "stroke-dasharray", "<path", "WB030", "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestGridSamplesShapes(t *testing.T) {
	g := NewGrid(20, 10, 200, 100)
	g.Clear(White)
	red := color.RGBA{255, 0, 0, 255}
	g.FillCircle(100, 50, 20, red)
	if g.At(10, 5).BG != red {
		t.Fatalf("circle centre cell not painted")
	}
	if g.At(0, 0).BG != White {
		t.Fatalf("corner cell painted")
	}
	g.Text(0, 95, "hub", TextStyle{Color: Black})
	if !strings.Contains(g.String(), "hub") {
		t.Fatalf("text missing from grid:\n%s", g.String())
	}
}

func TestRasterDashedLineLeavesGaps(t *testing.T) {
	r := NewRaster(40, 12)
	r.Clear(White)
	r.Line(0, 5, 40, 5, Stroke{Color: Black, Width: 2, Dash: []float64{4, 4}})
	if got := r.Image().RGBAAt(2, 5); got == White {
		t.Fatalf("dash not painted")
	}
	if got := r.Image().RGBAAt(6, 5); got != White {
		t.Fatalf("gap painted: %v", got)
	}
	// The dash pattern does not leak into the next stroke.
	r.Line(0, 9, 40, 9, Stroke{Color: Black, Width: 2})
	if got := r.Image().RGBAAt(6, 9); got == White {
		t.Fatalf("solid line has a gap")
	}
}
