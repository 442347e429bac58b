package cmd

import "github.com/spf13/cobra"

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lightnode",
		Short:        "DA light node maintenance daemon",
		SilenceUsage: true,
	}

	cmd.AddCommand(startCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}
