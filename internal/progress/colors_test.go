package progress

import (
	"testing"

	"turbine-topology/internal/farm"
)

func TestAssignColorsCycles(t *testing.T) {
	var names []string
	for i := 0; i < 12; i++ {
		names = append(names, string(rune('a'+i)))
	}
	m := AssignColors(names, nil)
	if m["a"] != DefaultPalette[0] || m["k"] != DefaultPalette[0] || m["l"] != DefaultPalette[1] {
		t.Fatalf("palette does not cycle: %v", m)
	}
}

func TestColorsStableUnderTaskReorder(t *testing.T) {
	a := []farm.Task{{Name: "Pile"}, {Name: "Jacket"}, {Name: "Pile"}, {Name: "Cable"}}
	b := []farm.Task{{Name: "Pile"}, {Name: "Jacket"}, {Name: "Cable"}, {Name: "Jacket"}}
	ca := NewColorCache(nil).Colors(DistinctNames(a))
	cb := NewColorCache(nil).Colors(DistinctNames(b))
	for n, c := range ca {
		if cb[n] != c {
			t.Fatalf("color for %q changed: %s vs %s", n, c, cb[n])
		}
	}
}

func TestColorCacheMemoises(t *testing.T) {
	c := NewColorCache(nil)
	first := c.Colors([]string{"x", "y"})
	first["marker"] = "#000000"
	again := c.Colors([]string{"x", "y"})
	if again["marker"] != "#000000" {
		t.Fatalf("expected memoised map for unchanged names")
	}
	changed := c.Colors([]string{"y", "x"})
	if _, ok := changed["marker"]; ok {
		t.Fatalf("expected recompute when name order changes")
	}
	if changed["y"] != DefaultPalette[0] {
		t.Fatalf("y = %s, want %s", changed["y"], DefaultPalette[0])
	}
}

func TestColorCachesAreIndependent(t *testing.T) {
	a := NewColorCache(nil)
	b := NewColorCache([]string{"#111111"})
	a.Colors([]string{"x"})
	if got := b.Colors([]string{"x"})["x"]; got != "#111111" {
		t.Fatalf("caches share state: %s", got)
	}
}
