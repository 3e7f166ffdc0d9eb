package topology

import (
	"fmt"
	"sort"

	"github.com/muesli/reflow/truncate"

	"turbine-topology/internal/canvas"
	"turbine-topology/internal/farm"
	"turbine-topology/internal/progress"
)

const (
	panelWidth    = 280.0
	panelHeader   = 30.0
	panelRow      = 18.0
	panelPadding  = 10.0
	panelMaxCells = 20
	panelBullet   = 3.0
	panelIndent   = 12.0
)

// PanelTasks orders a turbine's tasks for the hover panel: by start date,
// tasks without a readable start last, ties in input order.
func PanelTasks(tasks []farm.Task) []farm.Task {
	out := make([]farm.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i].Start()
		b, bok := out[j].Start()
		switch {
		case aok && bok:
			return a.Before(b)
		default:
			return aok && !bok
		}
	})
	return out
}

// PanelRect returns the panel bounds for a hover: centered above the
// anchor and kept inside the surface.
func (r *Renderer) PanelRect(sc *Scene, hover HoverState) (x, y, w, h float64) {
	rows := len(hover.Tasks)
	if rows > r.opts.PanelMaxTasks {
		rows = r.opts.PanelMaxTasks + 1
	}
	if rows == 0 {
		rows = 1
	}
	w = panelWidth
	h = panelHeader + float64(rows)*panelRow + panelPadding
	x = hover.Anchor.X - w/2
	y = hover.Anchor.Y - h
	x = clamp(x, 0, float64(sc.Layout.Width)-w)
	y = clamp(y, 0, float64(sc.Layout.Height)-h)
	return x, y, w, h
}

func (r *Renderer) drawPanel(s canvas.Surface, sc *Scene, hover HoverState) {
	x, y, w, h := r.PanelRect(sc, hover)
	s.FillRect(x, y, w, h, colorPanel)
	s.StrokeRect(x, y, w, h, canvas.Stroke{Color: colorInk, Width: 1})

	title := hover.TurbineID
	if p, ok := sc.Position(hover.TurbineID); ok && p.DisplayName != "" {
		title = p.DisplayName
	}
	s.Text(x+panelPadding, y+20, truncate.StringWithTail(title, 32, "…"), canvas.TextStyle{Color: colorInk, Bold: true})

	line := y + panelHeader + 12
	if len(hover.Tasks) == 0 {
		s.Text(x+panelPadding, line, "No tasks assigned", canvas.TextStyle{Color: colorMuted})
		return
	}
	for i, t := range hover.Tasks {
		if i == r.opts.PanelMaxTasks {
			more := len(hover.Tasks) - r.opts.PanelMaxTasks
			s.Text(x+panelPadding, line, fmt.Sprintf("+%d more", more), canvas.TextStyle{Color: colorMuted})
			break
		}
		st := canvas.TextStyle{Color: colorMuted}
		if progress.TaskComplete(t, sc.Reference) {
			st.Color = colorDone
		}
		s.FillCircle(x+panelPadding+panelBullet, line-5, panelBullet, st.Color)
		name := truncate.StringWithTail(t.Name, panelMaxCells, "…")
		s.Text(x+panelPadding+panelIndent, line, name, canvas.TextStyle{Color: colorInk})
		end := "n/a"
		if d, ok := t.End(); ok {
			end = farm.FormatDate(d)
		}
		st.Align = canvas.AlignRight
		s.Text(x+w-panelPadding, line, end, st)
		line += panelRow
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
