package canvas

import "math"

func hypot(x, y float64) float64 { return math.Hypot(x, y) }

// arcPoints returns points along a circle from angle `from` to `to`.
func arcPoints(cx, cy, r, from, to float64) [][2]float64 {
	span := to - from
	steps := int(math.Ceil(math.Abs(span) * math.Max(r, 8) / 4))
	if steps < 4 {
		steps = 4
	}
	pts := make([][2]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := from + span*float64(i)/float64(steps)
		pts = append(pts, [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

// inWedge reports whether angle a lies in the clockwise sweep [from, to).
func inWedge(a, from, to float64) bool {
	span := to - from
	if span >= 2*math.Pi {
		return true
	}
	if span <= 0 {
		return false
	}
	d := math.Mod(a-from, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d < span
}
