package cmd

import (
	"github.com/spf13/cobra"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop everything known",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		app.orch.Down(cmd.Context(), app.containerNames())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downCmd)
}
