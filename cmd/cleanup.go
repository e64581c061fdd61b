package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/orchestrator"
)

var (
	cleanupContainersFlag bool
	cleanupImagesFlag     bool
	cleanupVolumesFlag    bool
	cleanupBuildCacheFlag bool
	cleanupNukeFlag       bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune engine state; with no flags, the conservative default",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}

		opts := resolveCleanupOptions()
		if opts.Nuke {
			confirmed, err := confirmNuke()
			if err != nil {
				return err
			}
			if !confirmed {
				return domain.NewUserAbortError()
			}
		}

		return app.orch.Cleanup(cmd.Context(), opts)
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupContainersFlag, "containers", false, "remove stopped containers")
	cleanupCmd.Flags().BoolVar(&cleanupImagesFlag, "images", false, "remove dangling images")
	cleanupCmd.Flags().BoolVar(&cleanupVolumesFlag, "volumes", false, "remove unused named volumes")
	cleanupCmd.Flags().BoolVar(&cleanupBuildCacheFlag, "build-cache", false, "prune the engine build cache")
	cleanupCmd.Flags().BoolVar(&cleanupNukeFlag, "nuke", false, "remove everything devobox touched, including named volumes")
	rootCmd.AddCommand(cleanupCmd)
}

// resolveCleanupOptions turns the cleanup flags into a CleanupOptions;
// with none set, it falls back to the conservative default.
func resolveCleanupOptions() orchestrator.CleanupOptions {
	if cleanupNukeFlag {
		return orchestrator.CleanupOptions{Nuke: true}
	}
	if !cleanupContainersFlag && !cleanupImagesFlag && !cleanupVolumesFlag && !cleanupBuildCacheFlag {
		return orchestrator.DefaultCleanup()
	}
	return orchestrator.CleanupOptions{
		Containers: cleanupContainersFlag,
		Images:     cleanupImagesFlag,
		Volumes:    cleanupVolumesFlag,
		BuildCache: cleanupBuildCacheFlag,
	}
}

// confirmNuke asks for explicit confirmation before a nuke, which also
// removes named volumes and so can destroy data a service owns.
func confirmNuke() (bool, error) {
	var proceed bool
	prompt := &survey.Confirm{
		Message: "This removes every container, image, volume, and build cache devobox owns, including database data. Continue?",
		Default: false,
	}
	if err := survey.AskOne(prompt, &proceed); err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return proceed, nil
}
