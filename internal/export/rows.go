// Package export turns a project's task history into daily progress rows and
// ships them to files, stdout or GreptimeDB.
package export

import (
	"time"

	"turbine-topology/internal/farm"
	"turbine-topology/internal/topology"
)

// Row is the state of one task name on one turbine at the end of one day.
type Row struct {
	Date      time.Time `json:"date"`
	Project   string    `json:"project"`
	TurbineID string    `json:"turbine_id"`
	Code      string    `json:"code"`
	Task      string    `json:"task"`
	Complete  bool      `json:"complete"`
	CableLaid bool      `json:"cable_laid"`
	HubDone   int       `json:"hub_done"`
}

// Build evaluates the input once per day in [from, to] and returns one row
// per turbine and task name, in layout order. from after to yields nothing.
func Build(r *topology.Renderer, in topology.Input, from, to time.Time) []Row {
	from = truncateDay(from)
	to = truncateDay(to)
	var rows []Row
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := in
		day.CurrentDate = d.Add(24*time.Hour - time.Nanosecond)
		day.DateRange = nil
		rows = append(rows, Snapshot(r.Prepare(day), d)...)
	}
	return rows
}

// Snapshot flattens one prepared scene into rows stamped with date.
func Snapshot(sc *topology.Scene, date time.Time) []Row {
	laid := make(map[string]bool, len(sc.Cables))
	for _, c := range sc.Cables {
		laid[c.To] = c.Laid
	}
	var rows []Row
	for _, p := range sc.Layout.Positions {
		done := sc.Completion[p.ID]
		for _, name := range sc.Names {
			rows = append(rows, Row{
				Date:      date,
				Project:   sc.Input.ProjectName,
				TurbineID: p.ID,
				Code:      p.Code,
				Task:      name,
				Complete:  done[name],
				CableLaid: laid[p.ID],
				HubDone:   sc.HubDone,
			})
		}
	}
	return rows
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDay parses a date flag value.
func ParseDay(s string) (time.Time, bool) {
	t, ok := farm.ParseDate(s)
	if !ok {
		return time.Time{}, false
	}
	return truncateDay(t), true
}
