package progress

import (
	"strings"
	"sync"
)

// ColorMap assigns a hex color to each task name.
type ColorMap map[string]string

// DefaultPalette is the ten-entry palette task names cycle through.
var DefaultPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// AssignColors maps names to palette[i%len(palette)] in list order.
func AssignColors(names []string, palette []string) ColorMap {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	m := make(ColorMap, len(names))
	for i, n := range names {
		m[n] = palette[i%len(palette)]
	}
	return m
}

// ColorCache memoises the color map for the last seen name list. One cache
// belongs to one visualization session.
type ColorCache struct {
	mu      sync.Mutex
	palette []string
	key     string
	colors  ColorMap
}

// NewColorCache creates a cache over the given palette (DefaultPalette if empty).
func NewColorCache(palette []string) *ColorCache {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	p := make([]string, len(palette))
	copy(p, palette)
	return &ColorCache{palette: p}
}

// Colors returns the color map for names, recomputing only when the ordered
// name list differs from the previous call.
func (c *ColorCache) Colors(names []string) ColorMap {
	key := strings.Join(names, "\x00")
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.colors != nil && key == c.key {
		return c.colors
	}
	c.key = key
	c.colors = AssignColors(names, c.palette)
	return c.colors
}
