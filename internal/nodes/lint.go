package nodes

import (
	"context"
	"fmt"

	"github.com/joescharf/coda/internal/editblock"
	"github.com/joescharf/coda/internal/graph"
	"github.com/joescharf/coda/internal/lint"
)

// Lint runs the configured lint commands over the files named by the parsed
// blocks. Failures loop back to Retry with the command output as feedback;
// with no runner or no edited files it passes straight through.
type Lint struct {
	Ctx   *Context
	Next  graph.NodeID
	Retry graph.NodeID
}

func (n *Lint) Run(ctx context.Context, s *graph.State) (graph.Command, error) {
	if n.Ctx.Lint == nil {
		return graph.Command{Goto: n.Next}, nil
	}

	files := editblock.EditedFiles(s.ParsedBlocks)
	if len(files) == 0 {
		return graph.Command{Goto: n.Next}, nil
	}

	results, err := n.Ctx.Lint.Lint(ctx, files)
	if err != nil {
		return graph.Command{}, fmt.Errorf("lint: %w", err)
	}

	if feedback := lint.FormatFailures(results); feedback != "" {
		return n.Ctx.corrective(s, n.Retry, feedback)
	}
	return graph.Command{Goto: n.Next, Update: graph.Update{Errors: graph.String("")}}, nil
}
