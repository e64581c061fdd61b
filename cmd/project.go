package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/runtimectx"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Discover and attach multi-project sessions under the code root",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every project discovered under the code root",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		projects, err := app.disc.DiscoverAll()
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("no projects found under", app.disc.BaseDir())
			return nil
		}
		for _, p := range projects {
			fmt.Printf("%-24s %s\n", p.Name, p.Path)
		}
		return nil
	},
}

var projectUpCmd = &cobra.Command{
	Use:   "up NAME",
	Short: "Bring up a project's service closure and open its session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runtimectx.Detect().IsHost() {
			return domain.NewConfigError("project up must be run from inside the hub; run `devobox shell` first")
		}
		app, err := loadApp()
		if err != nil {
			return err
		}
		return withSpinner(fmt.Sprintf("waiting for %s's services to become healthy", args[0]), func() error {
			return app.orch.ProjectUp(cmd.Context(), args[0], resolvedConfigDir(), app.hubSpec.Name, app.disc)
		})
	},
}

var projectInfoCmd = &cobra.Command{
	Use:   "info NAME",
	Short: "Show a project's manifest settings and direct dependencies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		project, err := app.disc.FindProject(args[0])
		if err != nil {
			return err
		}
		if project == nil {
			return domain.NewConfigError("project %q not found under %s", args[0], app.disc.BaseDir())
		}

		fmt.Printf("name:    %s\n", project.Name)
		fmt.Printf("path:    %s\n", project.Path)
		if project.Config.Project != nil {
			fmt.Printf("shell:   %s\n", project.Shell())
			if startup := project.StartupCommand(); startup != "" {
				fmt.Printf("startup: %s\n", startup)
			}
		}
		if len(project.Config.Dependencies.IncludeProjects) == 0 {
			fmt.Println("dependencies: none")
			return nil
		}
		fmt.Println("dependencies:")
		for _, dep := range project.Config.Dependencies.IncludeProjects {
			fmt.Printf("  - %s\n", dep)
		}
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectListCmd, projectUpCmd, projectInfoCmd)
	rootCmd.AddCommand(projectCmd)
}
