package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"turbine-topology/internal/export"
	"turbine-topology/internal/farm"
	"turbine-topology/internal/topology"
)

var (
	exportFrom      string
	exportTo        string
	exportPrintOnly bool
	exportLogFile   string
	exportReplay    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export daily turbine progress rows",
	Long:  "export evaluates the project once per day in [--from, --to] and writes per-turbine, per-task progress to stdout, a JSONL file or GreptimeDB. With --replay it re-sends a previously written JSONL file instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		w, cleanup, err := newWriters(cfg, exportPrintOnly, exportLogFile, log)
		if err != nil {
			return err
		}
		defer cleanup()

		if exportReplay != "" {
			n, err := export.ReplayFile(exportReplay, w)
			if err != nil {
				return err
			}
			log.Info("replayed progress rows", "file", exportReplay, "rows", n)
			return nil
		}

		src, closeSrc, err := openSource(cfg, log)
		if err != nil {
			return err
		}
		defer closeSrc()

		in, err := loadInput(cmd.Context(), src, cfg.Data.Project, time.Now())
		if err != nil {
			return err
		}
		from, to, err := exportWindow(in, time.Now())
		if err != nil {
			return err
		}
		r := topology.NewRenderer(cfg.RenderOptions(), nil, log)
		rows := export.Build(r, in, from, to)
		if err := export.WriteAll(w, rows); err != nil {
			return err
		}
		log.Info("exported progress", "project", in.ProjectName, "from", farm.FormatDate(from), "to", farm.FormatDate(to), "rows", len(rows))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day (earliest task start when empty)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day (today when empty)")
	exportCmd.Flags().BoolVar(&exportPrintOnly, "print-only", false, "Print rows to STDOUT even when GreptimeDB is enabled")
	exportCmd.Flags().StringVar(&exportLogFile, "log-file", "", "Also write rows to this JSONL file")
	exportCmd.Flags().StringVar(&exportReplay, "replay", "", "Replay rows from a JSONL file instead of computing them")
}

// exportWindow resolves --from and --to, defaulting to the earliest task
// start and today.
func exportWindow(in topology.Input, now time.Time) (time.Time, time.Time, error) {
	to := now
	if exportTo != "" {
		d, ok := export.ParseDay(exportTo)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q", exportTo)
		}
		to = d
	}
	from := to
	if exportFrom != "" {
		d, ok := export.ParseDay(exportFrom)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q", exportFrom)
		}
		from = d
	} else {
		for _, t := range in.Tasks {
			if s, ok := t.Start(); ok && s.Before(from) {
				from = s
			}
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s before --from %s", farm.FormatDate(to), farm.FormatDate(from))
	}
	return from, to, nil
}
