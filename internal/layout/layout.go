// Package layout places turbines on the drawing surface.
package layout

import (
	"log/slog"
	"strings"

	"turbine-topology/internal/farm"
)

// Position is a turbine placed in surface pixel coordinates.
type Position struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Code        string  `json:"code"`
	DisplayName string  `json:"display_name"`
}

// Strategy produces positions for one family of projects.
type Strategy interface {
	// Key is the canonical normalized project name the strategy serves.
	Key() string
	// Aliases are normalized fragments accepted when no key matches exactly.
	Aliases() []string
	Positions(turbines []farm.Turbine) []Position
}

// Options holds the surface geometry constants.
type Options struct {
	Width        int
	MinHeight    int
	HeightMargin int
	HubY         float64
	BaseX        float64
	BaseY        float64
	Spacing      float64
}

// DefaultOptions returns the dashboard geometry.
func DefaultOptions() Options {
	return Options{
		Width:        1600,
		MinHeight:    900,
		HeightMargin: 180,
		HubY:         150,
		BaseX:        200,
		BaseY:        300,
		Spacing:      140,
	}
}

// Result is a resolved layout.
type Result struct {
	Strategy  string
	Positions []Position
	Width     int
	Height    int
	HubX      float64
	HubY      float64
}

// Registry selects a layout strategy by project name.
type Registry struct {
	opts       Options
	strategies []Strategy
	generic    Strategy
	log        *slog.Logger
}

// NewRegistry creates a registry over the given curated strategies.
func NewRegistry(opts Options, log *slog.Logger, strategies ...Strategy) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		opts:       opts,
		strategies: strategies,
		generic:    Generic{BaseX: opts.BaseX, BaseY: opts.BaseY, Spacing: opts.Spacing},
		log:        log,
	}
}

// DefaultRegistry returns a registry with every known project layout.
func DefaultRegistry(opts Options, log *slog.Logger) *Registry {
	return NewRegistry(opts, log, HaiLong(), GreaterChanghua1(), Formosa2())
}

// NormalizeName upper-cases a project name and collapses whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), " ")
}

// Select returns the strategy for a project. An exact key match wins;
// otherwise an alias match is accepted only when exactly one strategy
// matches. Anything else uses the generic grid.
func (r *Registry) Select(projectName string) Strategy {
	norm := NormalizeName(projectName)
	if norm == "" {
		return r.generic
	}
	for _, s := range r.strategies {
		if s.Key() == norm {
			return s
		}
	}
	var candidates []Strategy
	for _, s := range r.strategies {
		for _, a := range s.Aliases() {
			if a != "" && strings.Contains(norm, a) {
				candidates = append(candidates, s)
				break
			}
		}
	}
	switch len(candidates) {
	case 1:
		return candidates[0]
	case 0:
		return r.generic
	default:
		keys := make([]string, len(candidates))
		for i, c := range candidates {
			keys[i] = c.Key()
		}
		r.log.Warn("ambiguous project layout, using generic grid", "project", projectName, "candidates", keys)
		return r.generic
	}
}

// Resolve lays out the turbines of a project.
func (r *Registry) Resolve(projectName string, turbines []farm.Turbine) Result {
	s := r.Select(projectName)
	positions := s.Positions(turbines)
	if _, curated := s.(*Curated); curated {
		positions = attachTurbines(positions, turbines)
	}
	return Result{
		Strategy:  s.Key(),
		Positions: positions,
		Width:     r.opts.Width,
		Height:    surfaceHeight(positions, r.opts),
		HubX:      float64(r.opts.Width) / 2,
		HubY:      r.opts.HubY,
	}
}

func surfaceHeight(positions []Position, opts Options) int {
	maxY := 0.0
	for _, p := range positions {
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	h := int(maxY) + opts.HeightMargin
	if h < opts.MinHeight {
		h = opts.MinHeight
	}
	return h
}

// attachTurbines matches curated slots to live turbines by ID, then by code.
// Matched slots take the turbine's ID and display name; unmatched slots keep
// their placeholder code as display name. A turbine attaches to one slot
// only: an exact ID match claims it before any code match is tried.
func attachTurbines(positions []Position, turbines []farm.Turbine) []Position {
	byID := make(map[string]farm.Turbine, len(turbines))
	byCode := make(map[string]farm.Turbine, len(turbines))
	for _, t := range turbines {
		byID[t.ID] = t
		if t.Code != "" {
			byCode[strings.ToUpper(t.Code)] = t
		}
	}
	attached := make(map[string]bool, len(turbines))
	for _, p := range positions {
		if _, ok := byID[p.ID]; ok {
			attached[p.ID] = true
		}
	}
	for i := range positions {
		p := &positions[i]
		t, ok := byID[p.ID]
		if !ok {
			t, ok = byCode[strings.ToUpper(p.Code)]
			if ok && attached[t.ID] {
				ok = false
			} else if ok {
				attached[t.ID] = true
			}
		}
		if !ok {
			p.DisplayName = p.Code
			continue
		}
		p.ID = t.ID
		p.DisplayName = t.DisplayName
		if p.DisplayName == "" {
			p.DisplayName = p.Code
		}
	}
	return positions
}
