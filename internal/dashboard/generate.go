// Package dashboard renders Grafana dashboards over the exported turbine
// progress table.
package dashboard

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.json.tmpl
var templateFS embed.FS

// Params fill the dashboard templates.
type Params struct {
	Table      string
	Datasource string
	Project    string
}

var funcMap = template.FuncMap{
	"json": jsonString,
	// sql escapes a value for a single-quoted SQL literal inside a JSON string.
	"sql": func(s string) string { return jsonString(strings.ReplaceAll(s, "'", "''")) },
}

// jsonString escapes s for use inside a JSON string literal.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}

// Render writes one rendered dashboard per embedded template into outDir and
// returns the written paths.
func Render(outDir string, p Params) ([]string, error) {
	if p.Table == "" {
		return nil, fmt.Errorf("dashboard: table name required")
	}
	if p.Datasource == "" {
		p.Datasource = os.Getenv("GREPTIMEDB_DATASOURCE_UID")
	}
	if p.Datasource == "" {
		p.Datasource = "greptimedb"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	names, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	var written []string
	for _, e := range names {
		t, err := template.New(e.Name()).Funcs(funcMap).ParseFS(templateFS, "templates/"+e.Name())
		if err != nil {
			return nil, err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(e.Name(), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return nil, err
		}
		if err := t.Execute(f, p); err != nil {
			f.Close()
			return nil, fmt.Errorf("render %s: %w", e.Name(), err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		written = append(written, outPath)
	}
	return written, nil
}
