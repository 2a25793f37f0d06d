package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/coda/internal/agents"
)

var codeCmd = &cobra.Command{
	Use:   "code <request>",
	Short: "Apply an edit request to the project",
	Long: `Run the coder agent: the model replies with search/replace edit
blocks, which are applied to the working tree and linted. Recoverable
failures (unparsable reply, search content not found, lint errors) are
fed back to the model for another attempt, up to retry.max_iterations.

Files named in --file are included editable; --read-only files are
included for context but rejected for edits. The project's .coda.yaml
can declare both lists plus lint commands.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgentTurn(cmd, args, agents.NewCoder, true)
	},
}

func init() {
	addAgentFlags(codeCmd)
	rootCmd.AddCommand(codeCmd)
}
