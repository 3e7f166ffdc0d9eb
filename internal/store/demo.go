package store

import (
	"fmt"
	"time"

	"turbine-topology/internal/farm"
)

// DemoProjectID identifies the built-in dataset's project.
const DemoProjectID = "hai-long-2ab"

var demoStart = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

type demoStage struct {
	name     string
	taskType string
	offset   int // days after the turbine's first task
	length   int
}

var demoStages = []demoStage{
	{"Pile Installation", "installation", 0, 4},
	{"Jacket Installation", "installation", 10, 3},
	{"Array Cable Laying", "cable-laying", 20, 2},
	{"Turbine Installation", "installation", 35, 5},
	{"Commissioning", "commissioning", 50, 7},
}

// Demo returns a mock HAI LONG dataset: 40 turbines progressing string by
// string through five installation stages, plus offshore substation work.
func Demo() *Memory {
	d := Dataset{
		Projects: []farm.Project{{ID: DemoProjectID, Name: "Hai Long 2A + 2B", Description: "Offshore wind farm demo dataset"}},
	}
	for n := 1; n <= 40; n++ {
		code := fmt.Sprintf("WB%03d", n)
		id := fmt.Sprintf("wtg-%03d", n)
		d.Turbines = append(d.Turbines, farm.Turbine{
			ID:          id,
			ProjectID:   DemoProjectID,
			Code:        code,
			DisplayName: fmt.Sprintf("WTG %02d", n),
			Location:    farm.Location{X: float64((n - 1) / 5), Y: float64((n - 1) % 5)},
		})
		first := demoStart.AddDate(0, 0, (n-1)*3)
		for i, st := range demoStages {
			start := first.AddDate(0, 0, st.offset)
			end := start.AddDate(0, 0, st.length)
			d.Tasks = append(d.Tasks, farm.Task{
				ID:         fmt.Sprintf("%s-%d", id, i+1),
				ProjectID:  DemoProjectID,
				Name:       st.name,
				StartDate:  farm.FormatDate(start),
				EndDate:    farm.FormatDate(end),
				Status:     demoStatus(end),
				Type:       st.taskType,
				TurbineIDs: []string{id},
			})
		}
	}
	for i, name := range []string{"OSS Jacket", "OSS Topside", "OSS Energisation"} {
		end := demoStart.AddDate(0, 0, 30+i*45)
		d.Tasks = append(d.Tasks, farm.Task{
			ID:        fmt.Sprintf("oss-%d", i+1),
			ProjectID: DemoProjectID,
			Name:      name,
			StartDate: farm.FormatDate(end.AddDate(0, 0, -20)),
			EndDate:   farm.FormatDate(end),
			Status:    demoStatus(end),
			Type:      "operations",
		})
	}
	return NewMemory(d)
}

// demoStatus marks everything finished by the demo cutoff as completed, so
// the date slider has something to scrub through.
func demoStatus(end time.Time) farm.TaskStatus {
	if end.Before(demoStart.AddDate(0, 6, 0)) {
		return farm.StatusCompleted
	}
	return farm.StatusInProgress
}
