package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"turbine-topology/internal/config"
	"turbine-topology/internal/store"
	"turbine-topology/internal/topology"
)

func kindForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	}
	return "file"
}

// openSource opens the configured data source. The returned func releases it.
func openSource(cfg *config.Config, log *slog.Logger) (store.Source, func(), error) {
	switch cfg.Data.Kind {
	case "", "demo":
		log.Debug("using built-in demo dataset")
		return store.Demo(), func() {}, nil
	case "file":
		m, err := store.LoadFile(cfg.Data.Path)
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	case "sqlite":
		db, err := store.OpenSQLite(cfg.Data.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown data source kind %q", cfg.Data.Kind)
}

// loadInput resolves the project and dates into a render input.
func loadInput(ctx context.Context, src store.Source, ref string, now time.Time) (topology.Input, error) {
	current, rng, err := viewDates(now)
	if err != nil {
		return topology.Input{}, err
	}
	b, err := store.Load(ctx, src, ref)
	if err != nil {
		return topology.Input{}, err
	}
	return topology.Input{
		ProjectName: b.Project.Name,
		Turbines:    b.Turbines,
		Tasks:       b.Tasks,
		CurrentDate: current,
		DateRange:   rng,
	}, nil
}
