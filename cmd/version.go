package cmd

import (
	"fmt"

	"github.com/bitrise-io/pr-review-bot/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the version of the PR review bot`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "PR Review Bot v%s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
