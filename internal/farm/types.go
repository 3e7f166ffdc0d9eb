// Project, turbine, and task records supplied by the asset backend
package farm

import (
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

// Task status constants.
const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Normalize lowercases and trims the status so backend spellings compare equal.
func (s TaskStatus) Normalize() TaskStatus {
	return TaskStatus(strings.ToLower(strings.TrimSpace(string(s))))
}

// Project is a wind-farm construction or maintenance project.
type Project struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Location is an abstract grid coordinate, not a surface pixel.
type Location struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Turbine is one wind turbine generator of a farm.
type Turbine struct {
	ID          string   `json:"id" yaml:"id"`
	ProjectID   string   `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Code        string   `json:"code" yaml:"code"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Location    Location `json:"location" yaml:"location"`
}

// Task is a unit of installation or maintenance work linked to turbines.
// Name is the grouping key for segments and legend entries; Type is the
// category used by the hub and cable predicates.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	ProjectID   string     `json:"project_id" yaml:"project_id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   string     `json:"start_date" yaml:"start_date"`
	EndDate     string     `json:"end_date" yaml:"end_date"`
	Status      TaskStatus `json:"status" yaml:"status"`
	Type        string     `json:"type" yaml:"type"`
	TurbineIDs  []string   `json:"turbine_ids" yaml:"turbine_ids"`
}

// Start returns the parsed start date.
func (t Task) Start() (time.Time, bool) { return ParseDate(t.StartDate) }

// End returns the parsed end date.
func (t Task) End() (time.Time, bool) { return ParseDate(t.EndDate) }

// Completed reports whether the task status is completed.
func (t Task) Completed() bool { return t.Status.Normalize() == StatusCompleted }

// LinkedTo reports whether the task references the given turbine.
func (t Task) LinkedTo(turbineID string) bool {
	for _, id := range t.TurbineIDs {
		if id == turbineID {
			return true
		}
	}
	return false
}

// DateRange is a selected window on the date slider.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Reference returns the instant completion is evaluated against: the range
// end when a range is selected, otherwise the current date. Range start is
// never consulted.
func Reference(current time.Time, rng *DateRange) time.Time {
	if rng != nil {
		return rng.End
	}
	return current
}
