package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/coda/internal/editblock"
	"github.com/joescharf/coda/internal/filectx"
	"github.com/joescharf/coda/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This exposes the project's file and edit operations to external agents.
Configure in a client with:

  {
    "mcpServers": {
      "coda": { "command": "coda", "args": ["mcp"] }
    }
  }

Available tools: coda_read_file, coda_list_files, coda_apply_blocks,
coda_list_threads`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		root, err := filepath.Abs(dir)
		if err != nil {
			return err
		}

		files, err := filectx.New(root)
		if err != nil {
			return err
		}
		cfg, err := filectx.LoadProjectConfig(root)
		if err != nil {
			return err
		}
		if err := filectx.ApplyProjectConfig(files, cfg); err != nil {
			return err
		}

		applier := &editblock.Applier{Files: files}
		if viper.GetBool("shell.enable") {
			applier.Shell = &editblock.ExecShell{Dir: root}
		}

		store, err := getStore()
		if err != nil {
			return err
		}

		return mcp.NewServer(files, applier, store).ServeStdio(cmd.Context())
	},
}

func init() {
	mcpCmd.Flags().String("dir", ".", "Project root directory")
	rootCmd.AddCommand(mcpCmd)
}
