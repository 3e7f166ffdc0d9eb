package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"turbine-topology/internal/config"
	"turbine-topology/internal/store"
	"turbine-topology/internal/topology"
)

func demoInput(t *testing.T) topology.Input {
	t.Helper()
	b, err := store.Load(context.Background(), store.Demo(), "")
	if err != nil {
		t.Fatalf("load demo: %v", err)
	}
	return topology.Input{
		ProjectName: b.Project.Name,
		Turbines:    b.Turbines,
		Tasks:       b.Tasks,
		CurrentDate: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	n, err := render(&buf, "png", config.Default().RenderOptions(), demoInput(t), "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n != int64(buf.Len()) || n == 0 {
		t.Fatalf("byte count %d, buffer %d", n, buf.Len())
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
}

func TestRenderSVGWithHover(t *testing.T) {
	var plain, hovered bytes.Buffer
	if _, err := render(&plain, "svg", config.Default().RenderOptions(), demoInput(t), ""); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := render(&hovered, "svg", config.Default().RenderOptions(), demoInput(t), "wtg-001"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(hovered.String(), "<svg") {
		t.Fatalf("output is not an SVG")
	}
	if hovered.Len() <= plain.Len() {
		t.Fatalf("expected hover panel to add elements: %d <= %d", hovered.Len(), plain.Len())
	}
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	if _, err := render(&buf, "gif", config.Default().RenderOptions(), demoInput(t), ""); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := render(&buf, "svg", config.Default().RenderOptions(), demoInput(t), "nope"); err == nil {
		t.Fatal("expected error for unknown hover turbine")
	}
}
