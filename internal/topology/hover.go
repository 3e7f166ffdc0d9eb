package topology

import (
	"math"
	"sync"
	"sync/atomic"

	"turbine-topology/internal/farm"
	"turbine-topology/internal/layout"
)

// Point is a location in surface pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HoverState is either idle (empty TurbineID) or hovering one turbine.
type HoverState struct {
	TurbineID string      `json:"turbine_id,omitempty"`
	Anchor    Point       `json:"anchor"`
	Tasks     []farm.Task `json:"tasks,omitempty"`
}

// Active reports whether a turbine is hovered.
func (h HoverState) Active() bool { return h.TurbineID != "" }

// Snapshot is the read-only state hit-testing runs against. It is replaced
// wholesale on every redraw and never mutated.
type Snapshot struct {
	Positions []layout.Position
	Tasks     []farm.Task
	Width     int
	Height    int
}

// PointerSample is one pointer event. X and Y are relative to the displayed
// surface's top-left corner, in display pixels.
type PointerSample struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
	Outside       bool    `json:"outside,omitempty"`
}

// HoverController maps pointer samples onto turbines. Samples read the
// published snapshot without blocking redraws.
type HoverController struct {
	radius float64
	offset float64

	snap atomic.Pointer[Snapshot]

	mu    sync.Mutex
	state HoverState
}

// NewHoverController creates a controller with the given hit radius and
// panel offset, both in surface pixels.
func NewHoverController(radius, offset float64) *HoverController {
	h := &HoverController{radius: radius, offset: offset}
	h.snap.Store(&Snapshot{})
	return h
}

// State returns the current hover state.
func (h *HoverController) State() HoverState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// ToSurface scales a display-space sample into surface pixels. A zero
// display size is treated as unscaled.
func (h *HoverController) ToSurface(p PointerSample) Point {
	return toSurface(h.snap.Load(), p)
}

func toSurface(s *Snapshot, p PointerSample) Point {
	sx, sy := 1.0, 1.0
	if p.DisplayWidth > 0 && s.Width > 0 {
		sx = float64(s.Width) / p.DisplayWidth
	}
	if p.DisplayHeight > 0 && s.Height > 0 {
		sy = float64(s.Height) / p.DisplayHeight
	}
	return Point{X: p.X * sx, Y: p.Y * sy}
}

// Hit returns the first turbine in layout order whose center lies within
// the hit radius of the surface point.
func (h *HoverController) Hit(pt Point) (layout.Position, bool) {
	return hit(h.snap.Load(), pt, h.radius)
}

func hit(s *Snapshot, pt Point, radius float64) (layout.Position, bool) {
	for _, p := range s.Positions {
		if math.Hypot(pt.X-p.X, pt.Y-p.Y) <= radius {
			return p, true
		}
	}
	return layout.Position{}, false
}

// Sample applies a pointer sample. changed is true only when the hovered
// turbine differs from before, so moving within one turbine or across
// empty space never asks for a redraw. The snapshot is read under the lock
// so a concurrent Publish cannot be overwritten by a stale hover.
func (h *HoverController) Sample(p PointerSample) (state HoverState, changed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.snap.Load()
	next := HoverState{}
	if !p.Outside {
		if pos, ok := hit(s, toSurface(s, p), h.radius); ok {
			next = h.hoverOn(s, pos)
		}
	}
	if next.TurbineID == h.state.TurbineID {
		return h.state, false
	}
	h.state = next
	return next, true
}

// Leave clears the hover when the pointer exits the surface.
func (h *HoverController) Leave() (HoverState, bool) {
	return h.Sample(PointerSample{Outside: true})
}

// Publish swaps in a new snapshot. A hover on a turbine that is gone is
// cleared; one that survives is refreshed against the new data.
func (h *HoverController) Publish(s *Snapshot) (HoverState, bool) {
	if s == nil {
		s = &Snapshot{}
	}
	h.snap.Store(s)

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.state.Active() {
		return h.state, false
	}
	for _, pos := range s.Positions {
		if pos.ID == h.state.TurbineID {
			h.state = h.hoverOn(s, pos)
			return h.state, false
		}
	}
	h.state = HoverState{}
	return h.state, true
}

func (h *HoverController) hoverOn(s *Snapshot, pos layout.Position) HoverState {
	var tasks []farm.Task
	for _, t := range s.Tasks {
		if t.LinkedTo(pos.ID) {
			tasks = append(tasks, t)
		}
	}
	return HoverState{
		TurbineID: pos.ID,
		Anchor:    Point{X: pos.X, Y: pos.Y - h.offset},
		Tasks:     PanelTasks(tasks),
	}
}
