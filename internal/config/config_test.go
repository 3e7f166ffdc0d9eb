package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topology.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	opts := cfg.RenderOptions()
	if opts.HitRadius != 35 || opts.PanelOffset != 45 || opts.Layout.Width != 1600 {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.HubTaskType != "operations" || opts.CableTaskType != "cable-laying" {
		t.Errorf("unexpected task types: %+v", cfg.Tasks)
	}
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
surface:
  width: 1920
tasks:
  hub_type: substation
palette: ["#112233", "#abc"]
data:
  kind: file
  path: farm.yaml
  project: Hai Long
log_level: debug
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Surface.Width != 1920 || cfg.Surface.MinHeight != 900 {
		t.Errorf("surface = %+v", cfg.Surface)
	}
	if cfg.Tasks.HubType != "substation" || cfg.Tasks.CableType != "cable-laying" {
		t.Errorf("tasks = %+v", cfg.Tasks)
	}
	if len(cfg.Palette) != 2 || cfg.Data.Project != "Hai Long" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad color":      "palette: [\"red\"]\n",
		"empty palette":  "palette: []\n",
		"file sans path": "data:\n  kind: file\n",
		"bad level":      "log_level: loud\n",
		"zero radius":    "render:\n  hit_radius: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body), "")
			if err == nil || !strings.Contains(err.Error(), "schema validation failed") {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TOPOLOGY_ADDR", ":9999")
	t.Setenv("GREPTIMEDB_HOST", "greptime")
	cfg, err := Load("", "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" || !cfg.Greptime.Enabled || cfg.Greptime.Host != "greptime" {
		t.Fatalf("env not applied: %+v %+v", cfg.Server, cfg.Greptime)
	}
}
