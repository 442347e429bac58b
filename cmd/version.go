package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/initia-labs/lightnode/config"
)

func SetVersion(version, commit string) {
	config.SetBuildInfo(version, commit)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", config.Version, config.CommitHash)
		},
	}
}
