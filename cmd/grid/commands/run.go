package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/grid/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Provision the matrix and run all phases in every environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			return c.app.Run(cmd.Context(), app.RunOptions{
				ConfigPath: configPath,
				NoCache:    noCache,
			})
		},
	}
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the environment cache and provision cold")
	return cmd
}
