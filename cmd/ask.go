package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/coda/internal/agents"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the project",
	Long: `Run the ask agent: a question-answering loop over the project
files. The model may call the read_file and list_files tools; it never
edits anything.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgentTurn(cmd, args, agents.NewAsk, false)
	},
}

func init() {
	addAgentFlags(askCmd)
	rootCmd.AddCommand(askCmd)
}
