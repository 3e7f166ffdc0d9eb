package main

import (
	"github.com/spf13/cobra"

	"turbine-topology/internal/dashboard"
	"turbine-topology/internal/export"
	"turbine-topology/internal/store"
)

var (
	dashboardOut        string
	dashboardDatasource string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards for the exported progress table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		// Rows are keyed by project name; resolve an id reference to it.
		var project string
		if cfg.Data.Project != "" {
			src, closeSrc, err := openSource(cfg, log)
			if err != nil {
				return err
			}
			p, err := store.Find(cmd.Context(), src, cfg.Data.Project)
			closeSrc()
			if err != nil {
				return err
			}
			project = p.Name
		}
		paths, err := dashboard.Render(dashboardOut, dashboard.Params{
			Table:      export.DefaultTable,
			Datasource: dashboardDatasource,
			Project:    project,
		})
		if err != nil {
			return err
		}
		for _, p := range paths {
			log.Info("wrote dashboard", "path", p)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardOut, "out", "dashboards", "Output directory")
	dashboardCmd.Flags().StringVar(&dashboardDatasource, "datasource", "", "Grafana datasource uid (GREPTIMEDB_DATASOURCE_UID when empty)")
}
