package nodes

import (
	"context"
	"fmt"

	"github.com/joescharf/coda/internal/graph"
	"github.com/joescharf/coda/internal/validation"
)

// Validate runs the agent's validators over the state. Any finding becomes
// corrective feedback routed to Retry; an empty result proceeds to Next.
type Validate struct {
	Ctx   *Context
	Next  graph.NodeID
	Retry graph.NodeID
}

func (n *Validate) Run(ctx context.Context, s *graph.State) (graph.Command, error) {
	errs := validation.Run(s, n.Ctx.Validators)
	if len(errs) == 0 {
		return graph.Command{Goto: n.Next, Update: graph.Update{Errors: graph.String("")}}, nil
	}
	return n.Ctx.corrective(s, n.Retry, validation.FormatList(errs))
}

// Extract projects the latest model message into structured output via the
// agent-declared projection. Without one, the raw reply text is used.
type Extract struct {
	Next    graph.NodeID
	Project func(s *graph.State) (any, error)
}

func (n *Extract) Run(ctx context.Context, s *graph.State) (graph.Command, error) {
	var value any
	if n.Project != nil {
		v, err := n.Project(s)
		if err != nil {
			return graph.Command{}, fmt.Errorf("extract: %w", err)
		}
		value = v
	} else if last := s.LastAssistant(); last != nil {
		value = last.Content
	}
	return graph.Command{Goto: n.Next, Update: graph.Update{Extracted: value, SetExtracted: true}}, nil
}
