package main

import (
	"log/slog"

	"turbine-topology/internal/config"
	"turbine-topology/internal/export"
)

// newWriters picks the export sink: GreptimeDB when enabled, stdout JSON
// otherwise, fanned out to a JSONL log file when logFile is set. The
// returned func closes any files.
func newWriters(cfg *config.Config, printOnly bool, logFile string, log *slog.Logger) (export.Writer, func(), error) {
	cleanup := func() {}
	base, err := baseWriter(cfg, printOnly, log)
	if err != nil {
		return nil, nil, err
	}
	if logFile == "" {
		return base, cleanup, nil
	}
	fw, err := export.NewFileWriter(logFile)
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() { fw.Close() }
	return export.NewMultiWriter(base, fw), cleanup, nil
}

func baseWriter(cfg *config.Config, printOnly bool, log *slog.Logger) (export.Writer, error) {
	if printOnly || cfg == nil || !cfg.Greptime.Enabled {
		return export.NewJSONWriter(nil), nil
	}
	return export.NewGreptimeWriter(cfg.Greptime.Host, cfg.Greptime.Port, cfg.Greptime.Database, log)
}
