package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/coda/internal/agents"
	"github.com/joescharf/coda/internal/checkpoint"
	"github.com/joescharf/coda/internal/editblock"
	"github.com/joescharf/coda/internal/events"
	"github.com/joescharf/coda/internal/filectx"
	"github.com/joescharf/coda/internal/graph"
	"github.com/joescharf/coda/internal/lint"
	"github.com/joescharf/coda/internal/llm"
	"github.com/joescharf/coda/internal/nodes"
	"github.com/joescharf/coda/internal/tools"
)

// addAgentFlags registers the flags shared by the agent commands.
func addAgentFlags(cmd *cobra.Command) {
	cmd.Flags().String("thread", "", "Resume the given conversation thread")
	cmd.Flags().String("dir", ".", "Project root directory")
	cmd.Flags().StringArray("file", nil, "Editable file to include in the prompt (repeatable)")
	cmd.Flags().StringArray("read-only", nil, "Read-only file to include in the prompt (repeatable)")
}

// buildFileContext assembles the file-context provider from the --dir flag,
// the project's .coda.yaml, and any --file/--read-only flags.
func buildFileContext(cmd *cobra.Command) (*filectx.Provider, *filectx.ProjectConfig, error) {
	dir, _ := cmd.Flags().GetString("dir")
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve project dir: %w", err)
	}

	files, err := filectx.New(root)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := filectx.LoadProjectConfig(root)
	if err != nil {
		return nil, nil, err
	}
	if err := filectx.ApplyProjectConfig(files, cfg); err != nil {
		return nil, nil, err
	}

	editable, _ := cmd.Flags().GetStringArray("file")
	for _, path := range editable {
		if err := files.AddEditable(path); err != nil {
			return nil, nil, err
		}
	}
	readOnly, _ := cmd.Flags().GetStringArray("read-only")
	for _, path := range readOnly {
		if err := files.AddReadOnly(path); err != nil {
			return nil, nil, err
		}
	}
	return files, cfg, nil
}

// lintRunner builds the lint runner from flags, project config, and the
// global config. Returns nil when linting is disabled or unconfigured.
func lintRunner(root string, cfg *filectx.ProjectConfig) lint.Runner {
	enable := viper.GetBool("lint.enable") || cfg.Lint.Enable
	commands := viper.GetStringSlice("lint.commands")
	if len(cfg.Lint.Commands) > 0 {
		commands = cfg.Lint.Commands
	}
	if !enable || len(commands) == 0 {
		return nil
	}
	return &lint.CommandRunner{Dir: root, Commands: commands}
}

// runAgentTurn wires the collaborators, runs one conversation turn through
// the given agent, and renders the result.
func runAgentTurn(cmd *cobra.Command, args []string, build func(*nodes.Context) (*agents.Agent, error), withEdits bool) error {
	request := strings.TrimSpace(strings.Join(args, " "))
	if request == "" {
		return fmt.Errorf("empty request")
	}

	files, projectCfg, err := buildFileContext(cmd)
	if err != nil {
		return err
	}

	store, err := getStore()
	if err != nil {
		return err
	}

	threadID, _ := cmd.Flags().GetString("thread")
	state := &graph.State{}
	if threadID != "" {
		loaded, err := store.Load(cmd.Context(), threadID)
		if err != nil {
			return err
		}
		if loaded == nil {
			return fmt.Errorf("thread not found: %s", threadID)
		}
		state = loaded
		ui.VerboseLog("resumed thread %s (%d messages)", threadID, len(state.HistoryMessages))
	} else {
		threadID = checkpoint.NewThreadID()
	}
	state.UserRequest = request

	applier := &editblock.Applier{Files: files}
	if withEdits && viper.GetBool("shell.enable") {
		applier.Shell = &editblock.ExecShell{Dir: files.Root()}
	}

	dispatcher := events.NewDispatcher(ui.Warning,
		&events.ReplyCache{Dir: viper.GetString("state_dir")},
	)
	defer dispatcher.Close()

	nodeCtx := &nodes.Context{
		Model:       llm.NewClient(viper.GetString("anthropic.api_key"), viper.GetString("anthropic.model")),
		Tools:       tools.NewRegistry(&tools.ReadFile{Files: files}, &tools.ListFiles{Files: files}),
		Files:       files,
		Applier:     applier,
		Validators:  nil,
		UI:          ui,
		Checkpoints: store,
		Events:      dispatcher,
		ThreadID:    threadID,
		MaxTokens:   viper.GetInt64("anthropic.max_tokens"),

		MaxIterations:   viper.GetInt("retry.max_iterations"),
		MaxEmptyReplies: viper.GetInt("retry.max_empty_replies"),
	}
	if withEdits {
		nodeCtx.Lint = lintRunner(files.Root(), projectCfg)
	}

	agent, err := build(nodeCtx)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would run %s agent on thread %s", agent.Name, threadID)
		return nil
	}

	if err := agent.Run(cmd.Context(), state); err != nil {
		return err
	}

	renderTurn(state, threadID)
	return nil
}

// renderTurn prints the assistant's reply, the block summary, and the
// thread id for resuming.
func renderTurn(state *graph.State, threadID string) {
	if plan, ok := state.Extracted.(agents.CommitPlan); ok {
		ui.Panel("Commit message", plan.Message())
	} else {
		reply := ""
		for i := len(state.HistoryMessages) - 1; i >= 0; i-- {
			if state.HistoryMessages[i].Role == graph.RoleAssistant {
				reply = state.HistoryMessages[i].Content
				break
			}
		}
		if reply != "" {
			ui.Panel("Reply", reply)
		}
	}

	if len(state.ParsedBlocks) > 0 {
		fmt.Fprintln(ui.Out)
		if err := ui.BlockTable(state.ParsedBlocks); err != nil {
			ui.Warning("render block table: %v", err)
		}
	}

	fmt.Fprintln(ui.Out)
	ui.Info("Thread: %s (resume with --thread %s)", threadID, threadID)
}
