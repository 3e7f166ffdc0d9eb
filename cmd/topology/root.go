package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"turbine-topology/internal/config"
	"turbine-topology/internal/farm"
	"turbine-topology/internal/logging"
)

var (
	configPath string
	schemaPath string
	logLevel   string
	dataPath   string
	projectRef string
	dateFlag   string
	rangeFlag  []string
)

var rootCmd = &cobra.Command{
	Use:          "topology",
	Short:        "Wind farm topology renderer",
	Long:         "topology renders turbine-farm progress diagrams as images, in the browser or in the terminal.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to topology configuration YAML (defaults when empty)")
	pf.StringVar(&schemaPath, "schema", "", "Path to a CUE schema overriding the built-in one")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&dataPath, "data", "", "Dataset path (.yaml, .json or .db); overrides config data source")
	pf.StringVar(&projectRef, "project", "", "Project id or name (first project when empty)")
	pf.StringVar(&dateFlag, "date", "", "Current date YYYY-MM-DD (today when empty)")
	pf.StringSliceVar(&rangeFlag, "range", nil, "Date range start,end; its end replaces the current date for completion")

	rootCmd.AddCommand(renderCmd, serveCmd, tuiCmd, exportCmd, importCmd, dashboardCmd)
}

// setup loads config and builds the logger shared by every subcommand. The
// logger is also stored in cmd's context.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath, schemaPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dataPath != "" {
		cfg.Data.Path = dataPath
		cfg.Data.Kind = kindForPath(dataPath)
	}
	if projectRef != "" {
		cfg.Data.Project = projectRef
	}
	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	log := logging.NewWithLevel(os.Stderr, lvl)
	slog.SetDefault(log)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, log))
	return cfg, log, nil
}

// viewDates parses --date and --range.
func viewDates(now time.Time) (time.Time, *farm.DateRange, error) {
	current := now
	if dateFlag != "" {
		d, ok := farm.ParseDate(dateFlag)
		if !ok {
			return time.Time{}, nil, fmt.Errorf("invalid --date %q", dateFlag)
		}
		current = d
	}
	if len(rangeFlag) == 0 {
		return current, nil, nil
	}
	if len(rangeFlag) != 2 {
		return time.Time{}, nil, fmt.Errorf("--range wants start,end")
	}
	start, ok1 := farm.ParseDate(rangeFlag[0])
	end, ok2 := farm.ParseDate(rangeFlag[1])
	if !ok1 || !ok2 || end.Before(start) {
		return time.Time{}, nil, fmt.Errorf("invalid --range %v", rangeFlag)
	}
	return current, &farm.DateRange{Start: start, End: end}, nil
}
