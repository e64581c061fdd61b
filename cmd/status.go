package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/devobox/devobox/internal/boundaries/out"
	"github.com/devobox/devobox/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Tabular list of hub + closure containers with state and health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		return printStatus(cmd.Context(), app)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// printStatus queries state and health for every container in the
// closure plus the hub and renders them as a lipgloss table.
func printStatus(ctx context.Context, app *appContext) error {
	services := append(append([]domain.Service{}, app.services...), hubAsService(app))
	return renderStatusTable(ctx, app.eng, services)
}

// renderStatusTable queries state and health for each of services and
// renders them as a lipgloss table. Shared by the full status command
// and the db/service command groups' narrower status subcommand.
func renderStatusTable(ctx context.Context, eng out.Engine, services []domain.Service) error {
	rows := make([][]string, 0, len(services))
	for _, svc := range services {
		state, err := eng.State(ctx, svc.Name)
		if err != nil {
			return err
		}
		health := "-"
		if svc.Healthcheck != nil {
			h, err := eng.Health(ctx, svc.Name)
			if err == nil {
				health = string(h)
			}
		}
		rows = append(rows, []string{svc.Name, string(svc.Kind), string(state), health})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("NAME", "KIND", "STATE", "HEALTH").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Println(tbl.String())
	return nil
}

func hubAsService(app *appContext) domain.Service {
	return domain.Service{Name: app.hubSpec.Name, Kind: "hub"}
}
