// Package cmd implements devobox's cobra-based command surface, one
// file per command group per spec §6. Grounded on bnema-gordon's
// cmd/root.go + cmd/*.go idiom: a package-level rootCmd, a persistent
// --config-dir flag, and one init() per subcommand file registering
// itself on rootCmd.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/logging"
)

var configDirFlag string

var rootCmd = &cobra.Command{
	Use:   "devobox",
	Short: "A persistent development container and its spoke services",
	Long: `devobox orchestrates a persistent hub development container plus
auxiliary spoke service containers (databases, caches, ...) on top of
a rootless OCI engine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	logging.ConfigureFromEnv()
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "override the config directory")
}

// Execute runs the root command, printing a colored glyph and error
// category for any returned *domain.Error before exiting non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints err with a category-specific glyph, the way the
// teacher's CLI surfaces its own sentinel error categories.
func reportError(err error) {
	de, ok := domain.AsDevoboxError(err)
	if !ok {
		fmt.Fprintln(os.Stderr, color.RedString("✗"), err)
		return
	}

	glyph := glyphFor(de.Category)
	fmt.Fprintln(os.Stderr, glyph, de.Error())
	if de.Category == domain.CategoryMissingContainer {
		fmt.Fprintln(os.Stderr, color.YellowString("  hint: run `devobox build` or `devobox rebuild`"))
	}
}

func glyphFor(category domain.Category) string {
	switch category {
	case domain.CategoryConfig:
		return color.RedString("✗ config:")
	case domain.CategoryEngine:
		return color.RedString("✗ engine:")
	case domain.CategoryStartupFailed:
		return color.RedString("✗ startup:")
	case domain.CategoryUserAbort:
		return color.YellowString("⚠ aborted:")
	case domain.CategoryMissingContainer:
		return color.RedString("✗ missing:")
	default:
		return color.RedString("✗")
	}
}
