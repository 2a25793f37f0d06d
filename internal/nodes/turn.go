package nodes

import (
	"context"
	"fmt"

	"github.com/joescharf/coda/internal/events"
	"github.com/joescharf/coda/internal/graph"
)

// Start seeds per-turn scaffolding: the iteration counter and transient
// error/block fields are reset, then control moves to the first real node.
type Start struct {
	Next graph.NodeID
}

func (n *Start) Run(ctx context.Context, s *graph.State) (graph.Command, error) {
	return graph.Command{
		Goto: n.Next,
		Update: graph.Update{
			Iteration: graph.Int(0),
			Errors:    graph.String(""),
			SetBlocks: true,
		},
	}, nil
}

// End closes the turn: scratch messages are promoted to durable history
// behind a synthesized user message, the checkpoint is saved, and side
// effects go out as a detached event. A turn with no scratch messages
// produces no history delta.
type End struct {
	Ctx *Context
}

func (n *End) Run(ctx context.Context, s *graph.State) (graph.Command, error) {
	var delta []graph.Message
	if len(s.ScratchMessages) > 0 {
		if s.UserRequest != "" {
			delta = append(delta, graph.Message{Role: graph.RoleUser, Content: s.UserRequest})
		}
		delta = append(delta, s.ScratchMessages...)
	}

	if n.Ctx.Checkpoints != nil && n.Ctx.ThreadID != "" {
		snapshot := &graph.State{
			HistoryMessages: append(append([]graph.Message{}, s.HistoryMessages...), delta...),
		}
		if err := n.Ctx.Checkpoints.Save(ctx, n.Ctx.ThreadID, snapshot); err != nil {
			return graph.Command{}, fmt.Errorf("checkpoint save: %w", err)
		}
	}

	if n.Ctx.Events != nil {
		reply := ""
		if last := s.LastAssistant(); last != nil {
			reply = last.Content
		}
		n.Ctx.Events.Emit(events.TurnCompleted{
			ThreadID: n.Ctx.ThreadID,
			Agent:    n.Ctx.Agent,
			Request:  s.UserRequest,
			Reply:    reply,
			Blocks:   s.ParsedBlocks,
		})
	}

	return graph.Command{
		Goto: graph.End,
		Update: graph.Update{
			UserRequest:    graph.String(""),
			ReplaceScratch: true,
			History:        delta,
		},
	}, nil
}
