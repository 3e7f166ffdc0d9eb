// Package tui shows the topology in a terminal: the scene sampled onto a
// character grid, mouse hover, and date scrubbing.
package tui

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"turbine-topology/internal/canvas"
	"turbine-topology/internal/farm"
	"turbine-topology/internal/progress"
	"turbine-topology/internal/topology"
)

const (
	headerLines = 1
	footerLines = 1
	tableLines  = 7
)

// Model is the bubbletea model.
type Model struct {
	session *topology.Session
	grid    *canvas.Grid
	input   topology.Input
	start   time.Time
	table   table.Model
	hover   topology.HoverState
	width   int
	height  int
	help    bool
	log     *slog.Logger
}

// New creates a model rendering in. The initial date is in.CurrentDate.
func New(opts topology.Options, in topology.Input, log *slog.Logger) Model {
	if log == nil {
		log = slog.Default()
	}
	grid := canvas.NewGrid(80, 20, opts.Layout.Width, opts.Layout.MinHeight)
	cols := []table.Column{
		{Title: "Task", Width: 28},
		{Title: "Start", Width: 10},
		{Title: "End", Width: 10},
		{Title: "Status", Width: 12},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(tableLines-1))
	m := Model{
		session: topology.NewSession(opts, grid, log),
		grid:    grid,
		input:   in,
		start:   in.CurrentDate,
		table:   t,
		log:     log,
	}
	m.session.Update(in)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) mapRows() int {
	rows := m.height - headerLines - footerLines - tableLines
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.SetCells(m.width, m.mapRows())
		m.table.SetWidth(m.width)
		m.session.Update(m.input)
		m.setHover(m.session.Hover())
	case tea.MouseMsg:
		m.setHover(m.session.Pointer(m.sample(msg)))
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc", "q":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left":
			m.shift(-1)
		case "right":
			m.shift(1)
		case "shift+left":
			m.shift(-7)
		case "shift+right":
			m.shift(7)
		case "r":
			m.input.CurrentDate = m.start
			m.session.Update(m.input)
			m.setHover(m.session.Hover())
		case "h", "?":
			m.help = true
		}
	}
	return m, nil
}

// sample converts a terminal mouse event into a pointer sample over the
// map area; events outside it clear the hover.
func (m Model) sample(msg tea.MouseMsg) topology.PointerSample {
	cols, rows := m.grid.Cells()
	col, row := msg.X, msg.Y-headerLines
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return topology.PointerSample{Outside: true}
	}
	return topology.PointerSample{
		X:             float64(col) + 0.5,
		Y:             float64(row) + 0.5,
		DisplayWidth:  float64(cols),
		DisplayHeight: float64(rows),
	}
}

func (m *Model) shift(days int) {
	m.input.CurrentDate = m.input.CurrentDate.AddDate(0, 0, days)
	m.session.Update(m.input)
	m.setHover(m.session.Hover())
}

func (m *Model) setHover(h topology.HoverState) {
	m.hover = h
	sc := m.session.Scene()
	rows := make([]table.Row, 0, len(h.Tasks))
	for _, t := range h.Tasks {
		status := string(t.Status.Normalize())
		if sc != nil && progress.TaskComplete(t, sc.Reference) {
			status = "done"
		}
		rows = append(rows, table.Row{truncate.StringWithTail(t.Name, 28, "…"), t.StartDate, t.EndDate, status})
	}
	m.table.SetRows(rows)
}

// Hover returns the current hover.
func (m Model) Hover() topology.HoverState { return m.hover }

// Date returns the date being shown.
func (m Model) Date() time.Time { return m.input.CurrentDate }

func (m Model) View() string {
	if m.help {
		return m.renderHelp()
	}
	sections := []string{m.renderHeader(), m.renderMap(), m.table.View(), m.renderFooter()}
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.input.ProjectName)
	date := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Render(farm.FormatDate(m.input.CurrentDate))
	hover := "-"
	if m.hover.Active() {
		hover = m.hover.TurbineID
		if sc := m.session.Scene(); sc != nil {
			if p, ok := sc.Position(m.hover.TurbineID); ok && p.DisplayName != "" {
				hover = p.DisplayName
			}
		}
	}
	return fmt.Sprintf("%s │ %s │ hover %s", title, date, hover)
}

// renderMap turns grid cells into styled runs, merging neighbours that
// share colors.
func (m Model) renderMap() string {
	cols, rows := m.grid.Cells()
	var b strings.Builder
	for row := 0; row < rows; row++ {
		var run []rune
		var cur canvas.Cell
		flush := func() {
			if len(run) == 0 {
				return
			}
			st := lipgloss.NewStyle().Foreground(lipColor(cur.FG)).Background(lipColor(cur.BG))
			b.WriteString(st.Render(string(run)))
			run = run[:0]
		}
		for col := 0; col < cols; col++ {
			c := m.grid.At(col, row)
			if c.Rune == 0 {
				c.Rune = ' '
			}
			if len(run) > 0 && (c.FG != cur.FG || c.BG != cur.BG) {
				flush()
			}
			cur = c
			run = append(run, c.Rune)
		}
		flush()
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func lipColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(canvas.Hex(c))
}

func (m Model) renderFooter() string {
	keys := "←/→ day  shift+←/→ week  r reset  ? help  q quit"
	sc := m.session.Scene()
	if sc == nil {
		return keys
	}
	done := 0
	for _, c := range sc.Completion {
		if len(sc.Names) > 0 && c.CompletedCount() == len(sc.Names) {
			done++
		}
	}
	stats := fmt.Sprintf("%d/%d turbines complete, hub %d/%d", done, len(sc.Layout.Positions), sc.HubDone, progress.HubSegmentCount)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(stats + " │ " + keys)
}

func (m Model) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" ←/→             previous/next day",
		" shift+←/→       previous/next week",
		" r               back to the start date",
		" mouse           hover a turbine to list its tasks",
		" h/?             toggle this help view",
		" q               quit",
	}
	text := strings.Join(lines, "\n")
	if m.width > 0 {
		text = wordwrap.String(text, m.width)
	}
	return text
}
