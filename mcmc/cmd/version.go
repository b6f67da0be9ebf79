package cmd

import (
	"fmt"

	"github.com/APanico12/MCMC/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the mcmc version",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Version.String())
		return err
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
