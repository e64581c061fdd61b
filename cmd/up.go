package cmd

import (
	"github.com/spf13/cobra"

	"github.com/devobox/devobox/internal/orchestrator"
)

var (
	dbsOnlyFlag      bool
	servicesOnlyFlag bool
)

func resolveFilter() orchestrator.ServiceFilter {
	switch {
	case dbsOnlyFlag:
		return orchestrator.FilterDatabase
	case servicesOnlyFlag:
		return orchestrator.FilterGeneric
	default:
		return orchestrator.FilterAll
	}
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start spokes and the hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		return withSpinner("waiting for services to become healthy", func() error {
			return app.orch.Up(cmd.Context(), app.services, resolveFilter(), app.hubSpec)
		})
	},
}

func init() {
	upCmd.Flags().BoolVar(&dbsOnlyFlag, "dbs-only", false, "start only kind=database services")
	upCmd.Flags().BoolVar(&servicesOnlyFlag, "services-only", false, "start only kind=generic services")
	rootCmd.AddCommand(upCmd)
}
