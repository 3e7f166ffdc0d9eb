// Package topology renders the turbine-farm topology view and tracks pointer
// hover over it.
package topology

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"turbine-topology/internal/farm"
	"turbine-topology/internal/layout"
	"turbine-topology/internal/progress"
)

// Input is the snapshot a caller asks to render.
type Input struct {
	ProjectName string          `json:"project_name"`
	Turbines    []farm.Turbine  `json:"turbines"`
	Tasks       []farm.Task     `json:"tasks"`
	CurrentDate time.Time       `json:"current_date"`
	DateRange   *farm.DateRange `json:"date_range,omitempty"`
}

// Options are the renderer's geometry and domain constants.
type Options struct {
	Layout        layout.Options
	NodeRadius    float64
	InnerRadius   float64
	HubRadius     float64
	HitRadius     float64
	PanelOffset   float64
	PanelMaxTasks int
	LegendOffset  float64
	HubTaskType   string
	CableTaskType string
	Palette       []string
}

// DefaultOptions returns the dashboard constants.
func DefaultOptions() Options {
	return Options{
		Layout:        layout.DefaultOptions(),
		NodeRadius:    35,
		InnerRadius:   22,
		HubRadius:     45,
		HitRadius:     35,
		PanelOffset:   45,
		PanelMaxTasks: 5,
		LegendOffset:  420,
		HubTaskType:   "operations",
		CableTaskType: "cable-laying",
		Palette:       progress.DefaultPalette,
	}
}

// Cable is one connection line of the collection network.
type Cable struct {
	From   string // empty for the hub
	To     string
	X1, Y1 float64
	X2, Y2 float64
	Laid   bool
}

// Scene is everything derived from one Input, ready to draw.
type Scene struct {
	Input      Input
	Layout     layout.Result
	Names      []string
	Colors     progress.ColorMap
	Completion map[string]progress.CompletionMap
	Cables     []Cable
	HubDone    int
	Reference  time.Time
	byID       map[string]layout.Position
}

// Position looks up a laid-out turbine by id.
func (s *Scene) Position(id string) (layout.Position, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Snapshot returns the immutable view the hit-tester works against.
func (s *Scene) Snapshot() *Snapshot {
	positions := make([]layout.Position, len(s.Layout.Positions))
	copy(positions, s.Layout.Positions)
	return &Snapshot{
		Positions: positions,
		Tasks:     s.Input.Tasks,
		Width:     s.Layout.Width,
		Height:    s.Layout.Height,
	}
}

// Renderer turns inputs into scenes and scenes into draw calls.
type Renderer struct {
	opts    Options
	layouts *layout.Registry
	colors  *progress.ColorCache
	log     *slog.Logger
}

// NewRenderer creates a renderer. The color cache belongs to the caller's
// visualization session; nil creates a private one.
func NewRenderer(opts Options, colors *progress.ColorCache, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	if colors == nil {
		colors = progress.NewColorCache(opts.Palette)
	}
	return &Renderer{
		opts:    opts,
		layouts: layout.DefaultRegistry(opts.Layout, log),
		colors:  colors,
		log:     log,
	}
}

// Options returns the renderer constants.
func (r *Renderer) Options() Options { return r.opts }

// Prepare lays out the input and derives completion, colors and cables.
func (r *Renderer) Prepare(in Input) *Scene {
	ref := farm.Reference(in.CurrentDate, in.DateRange)
	names := progress.DistinctNames(in.Tasks)
	res := r.clearLegend(r.layouts.Resolve(in.ProjectName, in.Turbines), len(names))

	sc := &Scene{
		Input:      in,
		Layout:     res,
		Names:      names,
		Colors:     r.colors.Colors(names),
		Completion: make(map[string]progress.CompletionMap, len(res.Positions)),
		HubDone:    progress.HubSegments(in.Tasks, r.opts.HubTaskType, ref),
		Reference:  ref,
		byID:       make(map[string]layout.Position, len(res.Positions)),
	}

	perTurbine := make(map[string][]farm.Task, len(res.Positions))
	for _, p := range res.Positions {
		sc.byID[p.ID] = p
		perTurbine[p.ID] = nil
	}
	skipped, malformed := 0, 0
	for _, t := range in.Tasks {
		if t.Completed() {
			if _, ok := t.End(); !ok {
				malformed++
			}
		}
		for _, id := range t.TurbineIDs {
			if _, ok := perTurbine[id]; !ok {
				skipped++
				continue
			}
			perTurbine[id] = append(perTurbine[id], t)
		}
	}
	if skipped > 0 || malformed > 0 {
		r.log.Debug("absorbed task data issues", "project", in.ProjectName, "unplaced_links", skipped, "bad_end_dates", malformed)
	}

	for _, p := range res.Positions {
		sc.Completion[p.ID] = progress.Completion(perTurbine[p.ID], names, in.CurrentDate, in.DateRange)
	}
	sc.Cables = r.cables(res, perTurbine, ref)
	return sc
}

// clearLegend moves the turbines down when a long legend would reach the
// nodes (and their labels) that sit under it. The hub stays in place and the
// surface grows by the same amount.
func (r *Renderer) clearLegend(res layout.Result, names int) layout.Result {
	left := float64(res.Width) - r.opts.LegendOffset
	bottom := legendTop + legendHeight(names) + legendClear
	top, under := 0.0, false
	for _, p := range res.Positions {
		if p.X+r.opts.NodeRadius < left || p.X-r.opts.NodeRadius > left+legendWidth {
			continue
		}
		if y := p.Y - r.opts.NodeRadius - labelClear; !under || y < top {
			top, under = y, true
		}
	}
	if !under || bottom <= top {
		return res
	}
	shift := math.Ceil(bottom - top)
	moved := make([]layout.Position, len(res.Positions))
	for i, p := range res.Positions {
		p.Y += shift
		moved[i] = p
	}
	res.Positions = moved
	res.Height += int(shift)
	return res
}

// cables connects the top row to the hub and every other turbine to its
// upper neighbour in the same column. A cable is laid when every turbine
// from its lower end down the column has a completed cable task.
func (r *Renderer) cables(res layout.Result, perTurbine map[string][]farm.Task, ref time.Time) []Cable {
	if len(res.Positions) == 0 {
		return nil
	}
	minY := res.Positions[0].Y
	columns := make(map[float64][]layout.Position)
	for _, p := range res.Positions {
		if p.Y < minY {
			minY = p.Y
		}
		columns[p.X] = append(columns[p.X], p)
	}
	for _, col := range columns {
		sort.SliceStable(col, func(i, j int) bool { return col[i].Y < col[j].Y })
	}
	laid := make(map[string]bool, len(res.Positions))
	for _, p := range res.Positions {
		laid[p.ID] = progress.TypeCompleted(perTurbine[p.ID], r.opts.CableTaskType, ref)
	}
	downstreamLaid := func(col []layout.Position, from int) bool {
		for _, p := range col[from:] {
			if !laid[p.ID] {
				return false
			}
		}
		return true
	}

	var out []Cable
	for _, p := range res.Positions {
		col := columns[p.X]
		idx := 0
		for i, c := range col {
			if c.ID == p.ID && c.Y == p.Y {
				idx = i
				break
			}
		}
		switch {
		case p.Y == minY:
			out = append(out, Cable{To: p.ID, X1: res.HubX, Y1: res.HubY, X2: p.X, Y2: p.Y, Laid: downstreamLaid(col, idx)})
		case idx > 0:
			up := col[idx-1]
			out = append(out, Cable{From: up.ID, To: p.ID, X1: up.X, Y1: up.Y, X2: p.X, Y2: p.Y, Laid: downstreamLaid(col, idx)})
		}
	}
	return out
}
