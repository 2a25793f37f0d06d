package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/coda/internal/agents"
)

var commitCmd = &cobra.Command{
	Use:   "commit [context...]",
	Short: "Draft a commit message",
	Long: `Run the commit agent: the model drafts a commit message which is
validated (subject length, no trailing period) and extracted as a
structured plan. Pass a short description of the change as arguments.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgentTurn(cmd, args, agents.NewCommit, false)
	},
}

func init() {
	addAgentFlags(commitCmd)
	rootCmd.AddCommand(commitCmd)
}
