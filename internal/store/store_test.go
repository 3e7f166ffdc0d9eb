package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"turbine-topology/internal/farm"
)

const sampleYAML = `
projects:
  - id: p1
    name: Hai Long 2A + 2B
turbines:
  - id: t-30
    code: WB030
    display_name: WTG 30
tasks:
  - id: k1
    name: Pile Installation
    status: completed
    start_date: "2023-01-20"
    end_date: "2023-02-01"
    type: installation
    turbine_ids: [t-30]
`

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := Load(context.Background(), m, "hai long 2a + 2b")
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if b.Project.ID != "p1" || len(b.Turbines) != 1 || len(b.Tasks) != 1 {
		t.Fatalf("bundle = %+v", b)
	}
	if b.Tasks[0].TurbineIDs[0] != "t-30" || !b.Tasks[0].Completed() {
		t.Fatalf("task = %+v", b.Tasks[0])
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.json")
	doc := `{"projects":[{"id":"p2","name":"Formosa 2"}],"turbines":[{"id":"f1","code":"F2-01","location":{"x":1,"y":2}}],"tasks":[]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ts, _ := m.Turbines(context.Background(), "p2")
	if len(ts) != 1 || ts[0].Location.Y != 2 {
		t.Fatalf("turbines = %+v", ts)
	}
}

func TestFindMissing(t *testing.T) {
	_, err := Find(context.Background(), NewMemory(Dataset{}), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDemoDataset(t *testing.T) {
	b, err := Load(context.Background(), Demo(), "")
	if err != nil {
		t.Fatal(err)
	}
	if b.Project.ID != DemoProjectID || len(b.Turbines) != 40 {
		t.Fatalf("demo = %s with %d turbines", b.Project.ID, len(b.Turbines))
	}
	hub := 0
	for _, task := range b.Tasks {
		if task.Type == "operations" {
			hub++
		}
		if _, ok := task.End(); !ok {
			t.Fatalf("bad end date in %+v", task)
		}
	}
	if hub != 3 {
		t.Fatalf("hub tasks = %d", hub)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "farm.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	d := Dataset{
		Projects: []farm.Project{{ID: "p1", Name: "Hai Long 2A + 2B"}},
		Turbines: []farm.Turbine{
			{ID: "t2", ProjectID: "p1", Code: "WB002"},
			{ID: "t1", ProjectID: "p1", Code: "WB001", Location: farm.Location{X: 0.5}},
		},
		Tasks: []farm.Task{
			{ID: "k1", ProjectID: "p1", Name: "Cable", Status: farm.StatusCompleted, EndDate: "2023-02-01", Type: "cable-laying", TurbineIDs: []string{"t2", "t1"}},
			{ID: "k2", ProjectID: "p1", Name: "Survey", Status: farm.StatusPending},
		},
	}
	if err := db.Import(ctx, d); err != nil {
		t.Fatalf("import: %v", err)
	}
	// Importing twice is an upsert.
	if err := db.Import(ctx, d); err != nil {
		t.Fatalf("reimport: %v", err)
	}

	b, err := Load(ctx, db, "p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(b.Turbines) != 2 || b.Turbines[0].ID != "t2" || b.Turbines[1].Location.X != 0.5 {
		t.Fatalf("turbines = %+v", b.Turbines)
	}
	if len(b.Tasks) != 2 {
		t.Fatalf("tasks = %+v", b.Tasks)
	}
	links := b.Tasks[0].TurbineIDs
	if len(links) != 2 || links[0] != "t2" || links[1] != "t1" {
		t.Fatalf("links = %v", links)
	}
	if len(b.Tasks[1].TurbineIDs) != 0 {
		t.Fatalf("unlinked task got %v", b.Tasks[1].TurbineIDs)
	}

	if _, err := db.Project(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing project err = %v", err)
	}
}
