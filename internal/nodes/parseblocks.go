package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/joescharf/coda/internal/editblock"
	"github.com/joescharf/coda/internal/graph"
)

// ParseBlocks lexes the last assistant reply into edit blocks and applies
// them. Parse failures and per-block apply failures are corrective feedback
// routed back to Retry; a clean apply routes to Next with the blocks stored
// in state.
type ParseBlocks struct {
	Ctx   *Context
	Next  graph.NodeID
	Retry graph.NodeID
}

func (n *ParseBlocks) Run(ctx context.Context, s *graph.State) (graph.Command, error) {
	last := s.LastAssistant()
	if last == nil {
		return graph.Command{}, fmt.Errorf("no assistant reply to parse")
	}

	blocks, err := editblock.ParseRequired(last.Content)
	if err != nil {
		var noBlocks *editblock.NoBlocksFoundError
		var unparsable *editblock.PreFlightUnparsableError
		if errors.As(err, &noBlocks) || errors.As(err, &unparsable) {
			feedback := err.Error() + "\n\nReply again using properly fenced search/replace blocks."
			return n.Ctx.corrective(s, n.Retry, feedback)
		}
		return graph.Command{}, err
	}

	applied := n.Ctx.Applier.ApplyAll(ctx, blocks)
	n.Ctx.verbosef("applied %d edit blocks across %d files",
		len(applied), len(editblock.EditedFiles(applied)))

	if feedback := editblock.FormatFailures(applied); feedback != "" {
		cmd, err := n.Ctx.corrective(s, n.Retry, feedback)
		if err != nil {
			return graph.Command{}, err
		}
		// Failed blocks stay in state so the console can report them.
		cmd.Update.Blocks = applied
		cmd.Update.SetBlocks = true
		return cmd, nil
	}

	return graph.Command{
		Goto: n.Next,
		Update: graph.Update{
			Blocks:    applied,
			SetBlocks: true,
			Errors:    graph.String(""),
		},
	}, nil
}
