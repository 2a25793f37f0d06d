package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List stored conversation threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		return threadsListRun(cmd)
	},
}

var threadsDeleteCmd = &cobra.Command{
	Use:   "delete <thread-id>",
	Short: "Delete a stored thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return threadsDeleteRun(cmd, args[0])
	},
}

func init() {
	threadsCmd.AddCommand(threadsDeleteCmd)
	rootCmd.AddCommand(threadsCmd)
}

func threadsListRun(cmd *cobra.Command) error {
	store, err := getStore()
	if err != nil {
		return err
	}

	threads, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(threads) == 0 {
		ui.Info("No stored threads")
		return nil
	}

	table := ui.Table([]string{"Thread", "Messages", "Updated"})
	for _, t := range threads {
		table.Append([]string{
			t.ID,
			fmt.Sprintf("%d", t.MessageCount),
			t.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return table.Render()
}

func threadsDeleteRun(cmd *cobra.Command, id string) error {
	store, err := getStore()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete thread %s", id)
		return nil
	}

	if err := store.Delete(cmd.Context(), id); err != nil {
		return err
	}
	ui.Success("Deleted thread %s", id)
	return nil
}
