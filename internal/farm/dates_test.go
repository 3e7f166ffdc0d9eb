package farm

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := map[string]bool{
		"2023-02-01":                true,
		"2023-02-01T10:00:00Z":      true,
		"2023-02-01T10:00:00+08:00": true,
		"2023-02-01T10:00:00":       true,
		"":                          false,
		"not-a-date":                false,
		"2023-13-45":                false,
	}
	for in, ok := range cases {
		if _, got := ParseDate(in); got != ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", in, got, ok)
		}
	}
}

func TestReferenceUsesRangeEnd(t *testing.T) {
	cur := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	rng := &DateRange{Start: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), End: end}
	if got := Reference(cur, rng); !got.Equal(end) {
		t.Fatalf("Reference with range = %v, want %v", got, end)
	}
	if got := Reference(cur, nil); !got.Equal(cur) {
		t.Fatalf("Reference without range = %v, want %v", got, cur)
	}
}

func TestTaskHelpers(t *testing.T) {
	task := Task{Status: " Completed ", TurbineIDs: []string{"a", "b"}}
	if !task.Completed() {
		t.Errorf("expected status to normalize to completed")
	}
	if !task.LinkedTo("b") || task.LinkedTo("c") {
		t.Errorf("unexpected LinkedTo result")
	}
}
