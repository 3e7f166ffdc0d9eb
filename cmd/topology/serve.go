package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"turbine-topology/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive topology viewer over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		src, closeSrc, err := openSource(cfg, log)
		if err != nil {
			return err
		}
		defer closeSrc()

		current, rng, err := viewDates(time.Now())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(src, cfg.RenderOptions(), server.Options{
			PointerRate:  cfg.Server.PointerRate,
			PointerBurst: cfg.Server.PointerBurst,
			Heartbeat:    time.Duration(cfg.Server.HeartbeatSeconds) * time.Second,
		}, log)
		if err := srv.Load(ctx, server.View{Project: cfg.Data.Project, Date: current, Range: rng}); err != nil {
			return err
		}
		err = srv.Start(ctx, cfg.Server.Addr)
		log.Info("topology viewer stopped")
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}
