package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"turbine-topology/internal/logging"
	"turbine-topology/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore the topology in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		src, closeSrc, err := openSource(cfg, log)
		if err != nil {
			return err
		}
		defer closeSrc()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		in, err := loadInput(ctx, src, cfg.Data.Project, time.Now())
		if err != nil {
			return err
		}
		// The alternate screen owns the terminal; keep logs out of it.
		lvl, _ := logging.ParseLevel(cfg.LogLevel)
		return tui.Run(ctx, cfg.RenderOptions(), in, logging.NewWithLevel(io.Discard, lvl))
	},
}
