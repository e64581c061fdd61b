package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/devobox/devobox/internal/orchestrator"
)

var (
	withDbsFlag  bool
	autoStopFlag bool
)

// autoInit runs install then build, the sequence shell() triggers when
// the hub has never been created.
func autoInit(cmd *cobra.Command) orchestrator.InitFunc {
	return func(ctx context.Context) error {
		if err := installCmd.RunE(cmd, nil); err != nil {
			return err
		}
		return runBuild(cmd, nil)
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	return app.orch.Shell(
		cmd.Context(),
		app.hubSpec,
		app.services,
		app.codeRoot,
		cwd,
		withDbsFlag,
		autoStopFlag,
		app.containerNames(),
		autoInit(cmd),
	)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Attach to the hub (the default command)",
	RunE:  runShell,
}

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Alias for shell --with-dbs",
	RunE: func(cmd *cobra.Command, args []string) error {
		withDbsFlag = true
		return runShell(cmd, args)
	},
}

func init() {
	shellCmd.Flags().BoolVar(&withDbsFlag, "with-dbs", false, "bring up database services before attaching")
	shellCmd.Flags().BoolVar(&autoStopFlag, "auto-stop", false, "stop everything once the shell exits")
	devCmd.Flags().BoolVar(&autoStopFlag, "auto-stop", false, "stop everything once the shell exits")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(devCmd)

	rootCmd.RunE = runShell
	rootCmd.Flags().BoolVar(&withDbsFlag, "with-dbs", false, "bring up database services before attaching")
	rootCmd.Flags().BoolVar(&autoStopFlag, "auto-stop", false, "stop everything once the shell exits")
}
