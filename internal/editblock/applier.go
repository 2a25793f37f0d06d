package editblock

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FileInfo is the resolution of a block path against the active file context.
type FileInfo struct {
	AbsPath   string
	Content   string
	Exists    bool
	ReadOnly  bool
	InProject bool
}

// FileContext resolves block paths. Implemented by filectx.Provider.
type FileContext interface {
	Resolve(path string) (FileInfo, error)
}

// ShellRunner executes one shell command line.
type ShellRunner interface {
	Run(ctx context.Context, command string) (exitCode int, output string, err error)
}

// ExecShell runs commands through `sh -c` in Dir.
type ExecShell struct {
	Dir string
}

func (e *ExecShell) Run(ctx context.Context, command string) (int, string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), string(out), nil
		}
		return -1, string(out), fmt.Errorf("run %q: %w", command, err)
	}
	return 0, string(out), nil
}

// Applier applies parsed blocks to the file system. Side effects are
// confined to files under the resolved paths and, for shell blocks, the
// configured runner.
type Applier struct {
	Files FileContext
	Shell ShellRunner // nil disables shell block execution
}

// ApplyAll applies blocks strictly in parsed order, setting each block's
// status. Edit failures are per-block data, not errors: remaining edit
// blocks are still attempted. Shell blocks run only after every edit block
// applied cleanly; if any edit failed they are skipped and left pending.
func (a *Applier) ApplyAll(ctx context.Context, blocks []Block) []Block {
	editsFailed := false
	for _, b := range blocks {
		sr, ok := b.(*SearchReplaceBlock)
		if !ok {
			continue
		}
		a.applyEdit(sr)
		if sr.Status == StatusFailed {
			editsFailed = true
		}
	}

	for _, b := range blocks {
		sh, ok := b.(*ShellCommandBlock)
		if !ok {
			continue
		}
		if editsFailed {
			sh.StatusMessage = "skipped: one or more edit blocks failed"
			continue
		}
		a.applyShell(ctx, sh)
	}

	return blocks
}

// applyEdit performs the per-block algorithm: resolve, pre-flight, locate,
// first-match replace, full read-modify-write.
func (a *Applier) applyEdit(b *SearchReplaceBlock) {
	info, err := a.Files.Resolve(b.FilePath)
	if err != nil {
		b.Status = StatusFailed
		b.StatusMessage = err.Error()
		return
	}

	if !info.InProject {
		b.Status = StatusFailed
		b.StatusMessage = (&FileOutsideProjectError{Path: b.FilePath}).Error()
		return
	}
	if info.ReadOnly {
		b.Status = StatusFailed
		b.StatusMessage = (&ReadOnlyFileError{Path: b.FilePath}).Error()
		return
	}

	// Empty search against a missing file is file creation.
	if b.SearchContent == "" && !info.Exists {
		if err := os.MkdirAll(filepath.Dir(info.AbsPath), 0755); err != nil {
			b.Status = StatusFailed
			b.StatusMessage = fmt.Sprintf("create directory for %s: %v", b.FilePath, err)
			return
		}
		if err := os.WriteFile(info.AbsPath, []byte(b.ReplaceContent), 0644); err != nil {
			b.Status = StatusFailed
			b.StatusMessage = fmt.Sprintf("create %s: %v", b.FilePath, err)
			return
		}
		b.Status = StatusApplied
		return
	}

	if !info.Exists {
		b.Status = StatusFailed
		b.StatusMessage = (&SearchContentNotFoundError{Path: b.FilePath}).Error()
		return
	}

	idx := strings.Index(info.Content, b.SearchContent)
	if b.SearchContent != "" && idx < 0 {
		b.Status = StatusFailed
		b.StatusMessage = (&SearchContentNotFoundError{Path: b.FilePath}).Error()
		return
	}

	var updated string
	if b.SearchContent == "" {
		// Existing file, empty search: append.
		updated = info.Content + b.ReplaceContent
	} else {
		// First occurrence only. Repeated search content matches the
		// earliest instance; callers are told so in the prompt.
		updated = info.Content[:idx] + b.ReplaceContent + info.Content[idx+len(b.SearchContent):]
	}

	if err := os.WriteFile(info.AbsPath, []byte(updated), 0644); err != nil {
		b.Status = StatusFailed
		b.StatusMessage = fmt.Sprintf("write %s: %v", b.FilePath, err)
		return
	}
	b.Status = StatusApplied
}

func (a *Applier) applyShell(ctx context.Context, b *ShellCommandBlock) {
	if a.Shell == nil {
		b.StatusMessage = "shell execution disabled"
		return
	}
	var outputs []string
	for _, command := range b.Commands {
		exitCode, out, err := a.Shell.Run(ctx, command)
		if err != nil {
			b.Status = StatusFailed
			b.StatusMessage = err.Error()
			return
		}
		if out != "" {
			outputs = append(outputs, out)
		}
		if exitCode != 0 {
			b.Status = StatusFailed
			b.StatusMessage = fmt.Sprintf("%q exited %d: %s", command, exitCode, strings.TrimSpace(out))
			return
		}
	}
	b.Status = StatusApplied
	b.StatusMessage = strings.TrimSpace(strings.Join(outputs, "\n"))
}

// FormatFailures renders failed blocks as corrective feedback for the model.
// Returns "" when nothing failed.
func FormatFailures(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch blk := b.(type) {
		case *SearchReplaceBlock:
			if blk.Status == StatusFailed {
				fmt.Fprintf(&sb, "- %s: %s\n", blk.FilePath, blk.StatusMessage)
			}
		case *ShellCommandBlock:
			if blk.Status == StatusFailed {
				fmt.Fprintf(&sb, "- shell: %s\n", blk.StatusMessage)
			}
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "Some edit blocks could not be applied:\n" + sb.String() +
		"Resend corrected blocks for the failed edits only."
}
