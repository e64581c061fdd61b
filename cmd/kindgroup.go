package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devobox/devobox/internal/domain"
)

// selectByKindAndName filters services to kind, then further narrows
// to name if one was given; name may be empty, meaning "every service
// of this kind".
func selectByKindAndName(services []domain.Service, kind domain.ServiceKind, name string) ([]domain.Service, error) {
	var out []domain.Service
	for _, svc := range services {
		if svc.Kind != kind {
			continue
		}
		if name != "" && svc.Name != name {
			continue
		}
		out = append(out, svc)
	}
	if name != "" && len(out) == 0 {
		return nil, domain.NewConfigError("no %s service named %q", kind, name)
	}
	return out, nil
}

// newKindGroupCommand builds the `db` / `service` command group: four
// subcommands (start/stop/restart/status) operating on every service
// of kind, or the single one named by an optional NAME argument.
func newKindGroupCommand(use string, kind domain.ServiceKind) *cobra.Command {
	group := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Manage %s services", kind),
	}

	nameArg := func(args []string) string {
		if len(args) > 0 {
			return args[0]
		}
		return ""
	}

	group.AddCommand(&cobra.Command{
		Use:  "start [NAME]",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			selected, err := selectByKindAndName(app.services, kind, nameArg(args))
			if err != nil {
				return err
			}
			return withSpinner(fmt.Sprintf("waiting for %s services to become healthy", kind), func() error {
				return app.orch.StartServices(cmd.Context(), selected)
			})
		},
	})

	group.AddCommand(&cobra.Command{
		Use:  "stop [NAME]",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			selected, err := selectByKindAndName(app.services, kind, nameArg(args))
			if err != nil {
				return err
			}
			app.orch.StopServices(cmd.Context(), selected)
			return nil
		},
	})

	group.AddCommand(&cobra.Command{
		Use:  "restart [NAME]",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			selected, err := selectByKindAndName(app.services, kind, nameArg(args))
			if err != nil {
				return err
			}
			app.orch.StopServices(cmd.Context(), selected)
			return withSpinner(fmt.Sprintf("waiting for %s services to become healthy", kind), func() error {
				return app.orch.StartServices(cmd.Context(), selected)
			})
		},
	})

	group.AddCommand(&cobra.Command{
		Use:  "status [NAME]",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			selected, err := selectByKindAndName(app.services, kind, nameArg(args))
			if err != nil {
				return err
			}
			return renderStatusTable(cmd.Context(), app.eng, selected)
		},
	})

	return group
}

var dbCmd = newKindGroupCommand("db", domain.KindDatabase)
var serviceCmd = newKindGroupCommand("service", domain.KindGeneric)

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serviceCmd)
}
