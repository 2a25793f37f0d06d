// Package lint runs the project's configured lint commands over edited
// files and formats failures as model-facing feedback.
package lint

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FilePlaceholder in a configured command is substituted with the file path.
const FilePlaceholder = "{file}"

// Result is one command run against one file.
type Result struct {
	File     string
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Failed reports whether the command flagged the file.
func (r Result) Failed() bool { return r.ExitCode != 0 }

// Runner executes lint commands over files.
type Runner interface {
	Lint(ctx context.Context, files []string) ([]Result, error)
}

// CommandRunner runs each configured shell command once per file through
// `sh -c`, in Dir.
type CommandRunner struct {
	Dir      string
	Commands []string
}

func (r *CommandRunner) Lint(ctx context.Context, files []string) ([]Result, error) {
	var results []Result
	for _, file := range files {
		for _, command := range r.Commands {
			full := strings.ReplaceAll(command, FilePlaceholder, file)

			cmd := exec.CommandContext(ctx, "sh", "-c", full)
			cmd.Dir = r.Dir
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			exitCode := 0
			if err := cmd.Run(); err != nil {
				exitErr, ok := err.(*exec.ExitError)
				if !ok {
					return nil, fmt.Errorf("run lint command %q: %w", full, err)
				}
				exitCode = exitErr.ExitCode()
			}

			results = append(results, Result{
				File:     file,
				Command:  full,
				ExitCode: exitCode,
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			})
		}
	}
	return results, nil
}

// Failures filters results down to failing commands.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// FormatFailures renders failing results as corrective feedback for the
// model. Returns "" when everything passed.
func FormatFailures(results []Result) string {
	failed := Failures(results)
	if len(failed) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("The following lint commands failed after your edits:\n")
	for _, r := range failed {
		fmt.Fprintf(&sb, "\n`%s` (exit %d)\n", r.Command, r.ExitCode)
		output := strings.TrimSpace(r.Stdout + "\n" + r.Stderr)
		if output != "" {
			fmt.Fprintf(&sb, "```\n%s\n```\n", output)
		}
	}
	sb.WriteString("\nFix the reported problems and resend the corrected edit blocks.")
	return sb.String()
}
