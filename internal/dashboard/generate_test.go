package dashboard

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestRenderDashboards(t *testing.T) {
	dir := t.TempDir()
	paths, err := Render(dir, Params{Table: "turbine_progress", Project: "Hai Long 2A + 2B"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("expected at least one dashboard")
	}
	for _, p := range paths {
		if strings.HasSuffix(p, ".tmpl") {
			t.Fatalf("output %s keeps the template suffix", p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("%s is not valid JSON: %v", p, err)
		}
		if !strings.Contains(string(data), "FROM turbine_progress") {
			t.Fatalf("%s does not query the progress table", p)
		}
		if !strings.Contains(string(data), "project = 'Hai Long 2A + 2B'") {
			t.Fatalf("%s does not filter by project", p)
		}
	}
}

func TestRenderQuotesProject(t *testing.T) {
	dir := t.TempDir()
	paths, err := Render(dir, Params{Table: "turbine_progress", Project: `O'Brien "North"`})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("quoted project broke JSON: %v", err)
	}
	if !strings.Contains(string(data), "O''Brien") {
		t.Fatalf("expected SQL-escaped quote in output")
	}
}

func TestRenderRequiresTable(t *testing.T) {
	if _, err := Render(t.TempDir(), Params{}); err == nil {
		t.Fatal("expected error without table name")
	}
}

func TestRenderDatasourceFromEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")
	paths, err := Render(t.TempDir(), Params{Table: "turbine_progress"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"uid": "uid1"`) {
		t.Fatalf("datasource uid not rendered")
	}
	if strings.Contains(string(data), "project =") {
		t.Fatalf("unexpected project filter without project")
	}
}
