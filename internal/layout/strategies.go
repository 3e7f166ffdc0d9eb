package layout

import (
	"fmt"

	"turbine-topology/internal/farm"
)

// Generic places every turbine on a grid derived from its abstract location.
type Generic struct {
	BaseX, BaseY, Spacing float64
}

// Key implements Strategy.
func (Generic) Key() string { return "GENERIC" }

// Aliases implements Strategy.
func (Generic) Aliases() []string { return nil }

// Positions implements Strategy.
func (g Generic) Positions(turbines []farm.Turbine) []Position {
	out := make([]Position, 0, len(turbines))
	for _, t := range turbines {
		name := t.DisplayName
		if name == "" {
			name = t.Code
		}
		out = append(out, Position{
			ID:          t.ID,
			X:           g.BaseX + t.Location.X*g.Spacing,
			Y:           g.BaseY + t.Location.Y*g.Spacing,
			Code:        t.Code,
			DisplayName: name,
		})
	}
	return out
}

// Curated is a hand-authored position table for a known project.
type Curated struct {
	key     string
	aliases []string
	table   []Position
}

// Key implements Strategy.
func (c *Curated) Key() string { return c.key }

// Aliases implements Strategy.
func (c *Curated) Aliases() []string { return c.aliases }

// Positions returns a copy of the table; live turbines are ignored here and
// attached by the registry.
func (c *Curated) Positions([]farm.Turbine) []Position {
	out := make([]Position, len(c.table))
	copy(out, c.table)
	return out
}

// Table exposes the curated slots.
func (c *Curated) Table() []Position { return c.Positions(nil) }

// strings of a hub-and-spoke array are columns; numbering runs down each
// string before moving to the next one.
func stringTable(format string, count, perString int, x0, dx, y0, dy float64) []Position {
	table := make([]Position, 0, count*perString)
	n := 1
	for s := 0; s < count; s++ {
		for i := 0; i < perString; i++ {
			code := fmt.Sprintf(format, n)
			table = append(table, Position{ID: code, Code: code, X: x0 + float64(s)*dx, Y: y0 + float64(i)*dy})
			n++
		}
	}
	return table
}

// rowTable numbers a rectangular grid row by row.
func rowTable(format string, cols, rows int, x0, dx, y0, dy float64) []Position {
	table := make([]Position, 0, cols*rows)
	n := 1
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			code := fmt.Sprintf(format, n)
			table = append(table, Position{ID: code, Code: code, X: x0 + float64(c)*dx, Y: y0 + float64(r)*dy})
			n++
		}
	}
	return table
}

// HaiLong is the offshore hub-and-spoke array: 8 strings of 5 turbines
// hanging from the offshore substation, WB001..WB040.
func HaiLong() *Curated {
	return &Curated{
		key:     "HAI LONG 2A + 2B",
		aliases: []string{"HAI LONG"},
		table:   stringTable("WB%03d", 8, 5, 220, 165, 300, 120),
	}
}

// GreaterChanghua1 is a 7 x 5 rectangular grid, CH01..CH35.
func GreaterChanghua1() *Curated {
	return &Curated{
		key:     "GREATER CHANGHUA 1",
		aliases: []string{"CHANGHUA"},
		table:   rowTable("CH%02d", 7, 5, 260, 180, 300, 140),
	}
}

// Formosa2 is an 8 x 4 grid, F2-01..F2-32.
func Formosa2() *Curated {
	return &Curated{
		key:     "FORMOSA 2",
		aliases: []string{"FORMOSA"},
		table:   stringTable("F2-%02d", 8, 4, 240, 160, 300, 150),
	}
}
