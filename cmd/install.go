package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devobox/devobox/internal/assets"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Copy default manifests into the config directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := resolvedConfigDir()
		if err := assets.Install(dir); err != nil {
			return err
		}
		fmt.Println("installed default manifests into", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
