// Package store loads projects, turbines and tasks from the configured data
// source.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"turbine-topology/internal/farm"
	"turbine-topology/internal/logging"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("store: not found")

// Source is a read-only view of farm data.
type Source interface {
	Projects(ctx context.Context) ([]farm.Project, error)
	Project(ctx context.Context, id string) (farm.Project, error)
	Turbines(ctx context.Context, projectID string) ([]farm.Turbine, error)
	Tasks(ctx context.Context, projectID string) ([]farm.Task, error)
}

// Dataset is a complete farm snapshot as stored in data files.
type Dataset struct {
	Projects []farm.Project `json:"projects" yaml:"projects"`
	Turbines []farm.Turbine `json:"turbines" yaml:"turbines"`
	Tasks    []farm.Task    `json:"tasks" yaml:"tasks"`
}

// Bundle is everything needed to render one project.
type Bundle struct {
	Project  farm.Project
	Turbines []farm.Turbine
	Tasks    []farm.Task
}

// Find resolves a project by id, then by case-insensitive name. An empty
// ref picks the first project.
func Find(ctx context.Context, src Source, ref string) (farm.Project, error) {
	if ref != "" {
		p, err := src.Project(ctx, ref)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return farm.Project{}, err
		}
	}
	all, err := src.Projects(ctx)
	if err != nil {
		return farm.Project{}, err
	}
	for _, p := range all {
		if ref == "" || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	if ref == "" {
		return farm.Project{}, fmt.Errorf("no projects: %w", ErrNotFound)
	}
	return farm.Project{}, fmt.Errorf("project %q: %w", ref, ErrNotFound)
}

// Load fetches a project with its turbines and tasks.
func Load(ctx context.Context, src Source, ref string) (Bundle, error) {
	p, err := Find(ctx, src, ref)
	if err != nil {
		return Bundle{}, err
	}
	turbines, err := src.Turbines(ctx, p.ID)
	if err != nil {
		return Bundle{}, fmt.Errorf("load turbines for %s: %w", p.ID, err)
	}
	tasks, err := src.Tasks(ctx, p.ID)
	if err != nil {
		return Bundle{}, fmt.Errorf("load tasks for %s: %w", p.ID, err)
	}
	logging.FromContext(ctx).Debug("loaded project", "project", p.ID, "turbines", len(turbines), "tasks", len(tasks))
	return Bundle{Project: p, Turbines: turbines, Tasks: tasks}, nil
}
