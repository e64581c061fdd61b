package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

var skipCleanupFlag bool

func runBuild(cmd *cobra.Command, args []string) error {
	app, err := loadApp()
	if err != nil {
		return err
	}

	configDir := resolvedConfigDir()
	containerfile := filepath.Join(configDir, app.cfg.Paths.Containerfile)

	return app.orch.Build(
		cmd.Context(),
		skipCleanupFlag,
		app.cfg.Build.ImageName,
		containerfile,
		configDir,
		app.services,
		app.hubSpec,
	)
}

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"rebuild"},
	Short:   "Build the image and (re)create every container",
	RunE:    runBuild,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install default manifests and build",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := installCmd.RunE(cmd, args); err != nil {
			return err
		}
		return runBuild(cmd, args)
	},
}

func init() {
	buildCmd.Flags().BoolVar(&skipCleanupFlag, "skip-cleanup", false, "skip pruning stopped containers and dangling images before building")
	initCmd.Flags().BoolVar(&skipCleanupFlag, "skip-cleanup", false, "skip pruning stopped containers and dangling images before building")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(initCmd)
}
