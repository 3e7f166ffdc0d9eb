package tui

import (
	"context"
	"errors"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"turbine-topology/internal/topology"
)

// ErrNotTerminal is returned when stdout is not a terminal.
var ErrNotTerminal = errors.New("tui: stdout is not a terminal")

// Run starts the viewer and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts topology.Options, in topology.Input, log *slog.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}
	p := tea.NewProgram(New(opts, in, log),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
