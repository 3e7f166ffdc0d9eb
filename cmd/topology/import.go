package main

import (
	"github.com/spf13/cobra"

	"turbine-topology/internal/store"
)

var importDB string

var importCmd = &cobra.Command{
	Use:   "import [dataset.yaml]",
	Short: "Load a YAML/JSON dataset (or the demo data) into a SQLite database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, err := setup(cmd)
		if err != nil {
			return err
		}
		src := store.Demo()
		if len(args) == 1 {
			if src, err = store.LoadFile(args[0]); err != nil {
				return err
			}
		}
		db, err := store.OpenSQLite(importDB)
		if err != nil {
			return err
		}
		defer db.Close()
		d := src.Dataset()
		if err := db.Import(cmd.Context(), d); err != nil {
			return err
		}
		log.Info("imported dataset", "db", importDB, "projects", len(d.Projects), "turbines", len(d.Turbines), "tasks", len(d.Tasks))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "topology.db", "SQLite database path")
}
