package events

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joescharf/coda/internal/editblock"
)

// ReplyCache writes the last reply and a block summary to the state dir so
// the user can grab them after the turn (the clipboard-extraction analog).
type ReplyCache struct {
	Dir string
}

func (c *ReplyCache) Handle(e TurnCompleted) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "thread: %s\nagent: %s\n\n", e.ThreadID, e.Agent)
	if e.Request != "" {
		fmt.Fprintf(&sb, "request:\n%s\n\n", e.Request)
	}
	sb.WriteString("reply:\n")
	sb.WriteString(e.Reply)
	sb.WriteString("\n")

	if len(e.Blocks) > 0 {
		sb.WriteString("\nblocks:\n")
		for _, b := range e.Blocks {
			switch blk := b.(type) {
			case *editblock.SearchReplaceBlock:
				fmt.Fprintf(&sb, "- edit %s [%s]\n", blk.FilePath, blk.Status)
			case *editblock.ShellCommandBlock:
				fmt.Fprintf(&sb, "- shell %q [%s]\n", strings.Join(blk.Commands, "; "), blk.Status)
			}
		}
	}

	path := filepath.Join(c.Dir, "last-reply.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
