package topology

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"turbine-topology/internal/canvas"
	"turbine-topology/internal/farm"
)

func haiLongSnapshot(t *testing.T, tasks ...farm.Task) (*HoverController, *Scene) {
	t.Helper()
	sc := newRenderer().Prepare(Input{ProjectName: "Hai Long", Tasks: tasks, CurrentDate: day(2023, 3, 1)})
	h := NewHoverController(35, 45)
	h.Publish(sc.Snapshot())
	return h, sc
}

func TestHitRadius(t *testing.T) {
	h, _ := haiLongSnapshot(t)
	if p, ok := h.Hit(Point{X: 220, Y: 300}); !ok || p.ID != "WB001" {
		t.Fatalf("center hit = %+v %v", p, ok)
	}
	if _, ok := h.Hit(Point{X: 255, Y: 300}); !ok {
		t.Fatal("distance 35 should hit")
	}
	if _, ok := h.Hit(Point{X: 256, Y: 300}); ok {
		t.Fatal("distance 36 should miss")
	}
}

func TestSampleScalesDisplayToSurface(t *testing.T) {
	h, sc := haiLongSnapshot(t)
	st, changed := h.Sample(PointerSample{X: 110, Y: 150, DisplayWidth: 800, DisplayHeight: float64(sc.Layout.Height) / 2})
	if !changed || st.TurbineID != "WB001" {
		t.Fatalf("scaled sample = %+v changed=%v", st, changed)
	}
	if st.Anchor != (Point{X: 220, Y: 255}) {
		t.Fatalf("anchor = %+v", st.Anchor)
	}
	// Zero display size means no scaling.
	st, _ = h.Sample(PointerSample{X: 385, Y: 300})
	if st.TurbineID != "WB006" {
		t.Fatalf("unscaled sample = %+v", st)
	}
}

func TestSampleChangesOnlyOnTransitions(t *testing.T) {
	h, _ := haiLongSnapshot(t)
	steps := []struct {
		x, y    float64
		outside bool
		id      string
		changed bool
	}{
		{50, 500, false, "", false},
		{220, 300, false, "WB001", true},
		{230, 310, false, "WB001", false},
		{60, 60, false, "", true},
		{70, 70, false, "", false},
		{220, 420, false, "WB002", true},
		{220, 420, true, "", true},
	}
	for i, s := range steps {
		st, changed := h.Sample(PointerSample{X: s.x, Y: s.y, Outside: s.outside})
		if st.TurbineID != s.id || changed != s.changed {
			t.Fatalf("step %d: got %q changed=%v, want %q changed=%v", i, st.TurbineID, changed, s.id, s.changed)
		}
	}
}

func TestPublishRevalidatesHover(t *testing.T) {
	h, _ := haiLongSnapshot(t)
	h.Sample(PointerSample{X: 220, Y: 300})

	task := farm.Task{Name: "Pile Installation", TurbineIDs: []string{"WB001"}}
	sc := newRenderer().Prepare(Input{ProjectName: "Hai Long", Tasks: []farm.Task{task}, CurrentDate: day(2023, 3, 1)})
	st, cleared := h.Publish(sc.Snapshot())
	if cleared || st.TurbineID != "WB001" || len(st.Tasks) != 1 {
		t.Fatalf("surviving hover = %+v cleared=%v", st, cleared)
	}

	other := newRenderer().Prepare(Input{ProjectName: "Elsewhere", Turbines: []farm.Turbine{{ID: "x1", Code: "X1"}}})
	st, cleared = h.Publish(other.Snapshot())
	if !cleared || st.Active() {
		t.Fatalf("stale hover kept: %+v", st)
	}
}

func TestConcurrentSamplesAndPublishes(t *testing.T) {
	h, sc := haiLongSnapshot(t)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h.Sample(PointerSample{X: float64(200 + (i*j)%400), Y: 300})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish(sc.Snapshot())
			}
		}()
	}
	wg.Wait()
}

func TestSampleNeverRestoresUnpublishedTurbine(t *testing.T) {
	h, with := haiLongSnapshot(t)
	without := newRenderer().Prepare(Input{ProjectName: "Elsewhere", Turbines: []farm.Turbine{{ID: "x1", Code: "X1"}}})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				h.Sample(PointerSample{X: 220, Y: 300})
			}
		}
	}()
	for i := 0; i < 500; i++ {
		h.Publish(with.Snapshot())
		h.Publish(without.Snapshot())
	}
	close(stop)
	wg.Wait()

	st := h.State()
	if st.Active() {
		if _, ok := without.Position(st.TurbineID); !ok {
			t.Fatalf("hover on %q survived a snapshot without it", st.TurbineID)
		}
	}
}

func TestPanelTasksOrder(t *testing.T) {
	tasks := []farm.Task{
		{Name: "c", StartDate: "2023-03-01"},
		{Name: "x", StartDate: "soon"},
		{Name: "a", StartDate: "2023-01-01"},
		{Name: "b", StartDate: "2023-02-01T08:00:00Z"},
	}
	got := PanelTasks(tasks)
	var names []string
	for _, t := range got {
		names = append(names, t.Name)
	}
	if strings.Join(names, "") != "abcx" {
		t.Fatalf("order = %v", names)
	}
	if tasks[0].Name != "c" {
		t.Fatal("input reordered")
	}
}

func TestPanelOverflowAndEmpty(t *testing.T) {
	var tasks []farm.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, farm.Task{Name: fmt.Sprintf("Task %d", i), StartDate: fmt.Sprintf("2023-01-%02d", i+1), EndDate: "2023-02-01", Status: farm.StatusCompleted, TurbineIDs: []string{"WB001"}})
	}
	h, sc := haiLongSnapshot(t, tasks...)
	st, _ := h.Sample(PointerSample{X: 220, Y: 300})

	r := newRenderer()
	rec := canvas.NewRecorder(0, 0)
	r.Draw(rec, sc, st)
	texts := strings.Join(rec.Texts(), "|")
	if !strings.Contains(texts, "+2 more") {
		t.Fatalf("panel texts = %s", texts)
	}
	bullets := 0
	for _, op := range rec.Find(canvas.OpFillCircle) {
		if op.Args[2] == panelBullet {
			bullets++
			if op.Color != colorDone {
				t.Fatalf("bullet of completed task colored %v", op.Color)
			}
		}
	}
	if bullets != 5 {
		t.Fatalf("bullets = %d, want one per listed task", bullets)
	}

	st, _ = h.Sample(PointerSample{X: 385, Y: 300})
	r.Draw(rec, sc, st)
	if !strings.Contains(strings.Join(rec.Texts(), "|"), "No tasks assigned") {
		t.Fatal("empty panel should say so")
	}
}

func TestPanelClampedToSurface(t *testing.T) {
	r := newRenderer()
	sc := r.Prepare(Input{ProjectName: "Edge", Turbines: []farm.Turbine{{ID: "e1", Code: "E1", Location: farm.Location{X: -1, Y: -2}}}})
	h := NewHoverController(35, 45)
	h.Publish(sc.Snapshot())
	st, _ := h.Sample(PointerSample{X: 60, Y: 20})
	if st.TurbineID != "e1" {
		t.Fatalf("hover = %+v", st)
	}
	x, y, w, _ := r.PanelRect(sc, st)
	if x != 0 || y != 0 {
		t.Fatalf("panel at %v,%v, want clamped to origin", x, y)
	}
	if x+w > float64(sc.Layout.Width) {
		t.Fatal("panel overflows right edge")
	}
}
