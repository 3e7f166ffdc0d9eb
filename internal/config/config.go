// YAML config loader with CUE validation integration
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"turbine-topology/internal/layout"
	"turbine-topology/internal/progress"
	"turbine-topology/internal/topology"
)

//go:embed schema.cue
var defaultSchema []byte

// Surface is the drawing surface geometry.
type Surface struct {
	Width        int     `yaml:"width" json:"width"`
	MinHeight    int     `yaml:"min_height" json:"min_height"`
	HeightMargin int     `yaml:"height_margin" json:"height_margin"`
	HubY         float64 `yaml:"hub_y" json:"hub_y"`
	BaseX        float64 `yaml:"base_x" json:"base_x"`
	BaseY        float64 `yaml:"base_y" json:"base_y"`
	Spacing      float64 `yaml:"spacing" json:"spacing"`
}

// Render holds node sizes and hover constants.
type Render struct {
	NodeRadius    float64 `yaml:"node_radius" json:"node_radius"`
	InnerRadius   float64 `yaml:"inner_radius" json:"inner_radius"`
	HubRadius     float64 `yaml:"hub_radius" json:"hub_radius"`
	HitRadius     float64 `yaml:"hit_radius" json:"hit_radius"`
	PanelOffset   float64 `yaml:"panel_offset" json:"panel_offset"`
	PanelMaxTasks int     `yaml:"panel_max_tasks" json:"panel_max_tasks"`
	LegendOffset  float64 `yaml:"legend_offset" json:"legend_offset"`
}

// TaskTypes names the task categories the hub and cables key on.
type TaskTypes struct {
	HubType   string `yaml:"hub_type" json:"hub_type"`
	CableType string `yaml:"cable_type" json:"cable_type"`
}

// Data selects the farm data source.
type Data struct {
	Kind    string `yaml:"kind" json:"kind"`
	Path    string `yaml:"path" json:"path"`
	Project string `yaml:"project" json:"project"`
}

// Server configures the HTTP viewer.
type Server struct {
	Addr             string  `yaml:"addr" json:"addr"`
	PointerRate      float64 `yaml:"pointer_rate" json:"pointer_rate"`
	PointerBurst     int     `yaml:"pointer_burst" json:"pointer_burst"`
	HeartbeatSeconds int     `yaml:"heartbeat_seconds" json:"heartbeat_seconds"`
}

// Greptime configures the progress export sink.
type Greptime struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Database string `yaml:"database" json:"database"`
}

// Config is the root configuration.
type Config struct {
	Surface  Surface   `yaml:"surface" json:"surface"`
	Render   Render    `yaml:"render" json:"render"`
	Tasks    TaskTypes `yaml:"tasks" json:"tasks"`
	Palette  []string  `yaml:"palette" json:"palette"`
	Data     Data      `yaml:"data" json:"data"`
	Server   Server    `yaml:"server" json:"server"`
	Greptime Greptime  `yaml:"greptime" json:"greptime"`
	LogLevel string    `yaml:"log_level" json:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	lo := layout.DefaultOptions()
	ro := topology.DefaultOptions()
	palette := make([]string, len(progress.DefaultPalette))
	copy(palette, progress.DefaultPalette)
	return &Config{
		Surface: Surface{
			Width:        lo.Width,
			MinHeight:    lo.MinHeight,
			HeightMargin: lo.HeightMargin,
			HubY:         lo.HubY,
			BaseX:        lo.BaseX,
			BaseY:        lo.BaseY,
			Spacing:      lo.Spacing,
		},
		Render: Render{
			NodeRadius:    ro.NodeRadius,
			InnerRadius:   ro.InnerRadius,
			HubRadius:     ro.HubRadius,
			HitRadius:     ro.HitRadius,
			PanelOffset:   ro.PanelOffset,
			PanelMaxTasks: ro.PanelMaxTasks,
			LegendOffset:  ro.LegendOffset,
		},
		Tasks:    TaskTypes{HubType: ro.HubTaskType, CableType: ro.CableTaskType},
		Palette:  palette,
		Data:     Data{Kind: "demo"},
		Server:   Server{Addr: ":8080", PointerRate: 60, PointerBurst: 30, HeartbeatSeconds: 15},
		Greptime: Greptime{Host: "localhost", Port: 4001, Database: "public"},
		LogLevel: "info",
	}
}

// Load reads a YAML config over the defaults and validates it against the
// embedded CUE schema, or against schemaPath when set. An empty configPath
// yields the validated defaults.
func Load(configPath, schemaPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read YAML config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
		}
	}
	cfg.applyEnv()

	schema := defaultSchema
	if schemaPath != "" {
		b, err := os.ReadFile(schemaPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read CUE schema: %w", err)
		}
		schema = b
	}
	if err := ValidateWithCue(cfg, schema); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets deployments override the listen address and export sink.
func (c *Config) applyEnv() {
	if v := os.Getenv("TOPOLOGY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TOPOLOGY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GREPTIMEDB_HOST"); v != "" {
		c.Greptime.Host = v
		c.Greptime.Enabled = true
	}
	if v := os.Getenv("GREPTIMEDB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Greptime.Port = p
		}
	}
	if v := os.Getenv("GREPTIMEDB_DATABASE"); v != "" {
		c.Greptime.Database = v
	}
}

// ValidateWithCue checks cfg against the #Config definition in schema.
func ValidateWithCue(cfg *Config, schema []byte) error {
	ctx := cuecontext.New()
	schemaVal := ctx.CompileBytes(schema)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return fmt.Errorf("CUE schema has no #Config definition")
	}
	val := ctx.Encode(cfg)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// RenderOptions converts the config into renderer constants.
func (c *Config) RenderOptions() topology.Options {
	return topology.Options{
		Layout: layout.Options{
			Width:        c.Surface.Width,
			MinHeight:    c.Surface.MinHeight,
			HeightMargin: c.Surface.HeightMargin,
			HubY:         c.Surface.HubY,
			BaseX:        c.Surface.BaseX,
			BaseY:        c.Surface.BaseY,
			Spacing:      c.Surface.Spacing,
		},
		NodeRadius:    c.Render.NodeRadius,
		InnerRadius:   c.Render.InnerRadius,
		HubRadius:     c.Render.HubRadius,
		HitRadius:     c.Render.HitRadius,
		PanelOffset:   c.Render.PanelOffset,
		PanelMaxTasks: c.Render.PanelMaxTasks,
		LegendOffset:  c.Render.LegendOffset,
		HubTaskType:   c.Tasks.HubType,
		CableTaskType: c.Tasks.CableType,
		Palette:       c.Palette,
	}
}
