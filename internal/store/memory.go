package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"turbine-topology/internal/farm"
)

// Memory serves a Dataset held in memory.
type Memory struct {
	data Dataset
}

// NewMemory wraps a dataset. Turbines and tasks without a project id are
// attached to the only project when there is exactly one.
func NewMemory(d Dataset) *Memory {
	if len(d.Projects) == 1 {
		pid := d.Projects[0].ID
		for i := range d.Turbines {
			if d.Turbines[i].ProjectID == "" {
				d.Turbines[i].ProjectID = pid
			}
		}
		for i := range d.Tasks {
			if d.Tasks[i].ProjectID == "" {
				d.Tasks[i].ProjectID = pid
			}
		}
	}
	return &Memory{data: d}
}

// LoadFile reads a YAML or JSON dataset.
func LoadFile(path string) (*Memory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var d Dataset
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return NewMemory(d), nil
}

// Dataset returns the underlying data.
func (m *Memory) Dataset() Dataset { return m.data }

func (m *Memory) Projects(context.Context) ([]farm.Project, error) {
	out := make([]farm.Project, len(m.data.Projects))
	copy(out, m.data.Projects)
	return out, nil
}

func (m *Memory) Project(_ context.Context, id string) (farm.Project, error) {
	for _, p := range m.data.Projects {
		if p.ID == id {
			return p, nil
		}
	}
	return farm.Project{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
}

func (m *Memory) Turbines(_ context.Context, projectID string) ([]farm.Turbine, error) {
	var out []farm.Turbine
	for _, t := range m.data.Turbines {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) Tasks(_ context.Context, projectID string) ([]farm.Task, error) {
	var out []farm.Task
	for _, t := range m.data.Tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}
