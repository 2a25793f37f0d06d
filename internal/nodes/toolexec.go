package nodes

import (
	"context"

	"github.com/joescharf/coda/internal/graph"
	"github.com/joescharf/coda/internal/tools"
)

// ToolExec resolves and runs the tool calls from the last scratch message,
// appending one tool-result message per call in call order, then returns
// control to the Assistant. An unknown tool name is a wiring error and
// aborts the turn; a tool execution failure is returned to the model as
// result content.
type ToolExec struct {
	Ctx  *Context
	Next graph.NodeID
}

func (n *ToolExec) Run(ctx context.Context, s *graph.State) (graph.Command, error) {
	last := s.LastScratch()
	if last == nil || len(last.ToolCalls) == 0 {
		return graph.Command{Goto: n.Next}, nil
	}
	if n.Ctx.Tools == nil || n.Ctx.Tools.Len() == 0 {
		return graph.Command{Goto: n.Next}, nil
	}

	results := make([]graph.Message, 0, len(last.ToolCalls))
	for _, call := range last.ToolCalls {
		tool, ok := n.Ctx.Tools.Get(call.Name)
		if !ok {
			return graph.Command{}, &tools.UnknownToolError{Name: call.Name}
		}

		n.Ctx.verbosef("running tool %s", call.Name)
		content, err := tool.Invoke(ctx, call.Args)
		if err != nil {
			content = "tool error: " + err.Error()
		}

		results = append(results, graph.Message{
			Role:       graph.RoleTool,
			Content:    content,
			ToolCallID: call.ID,
			ToolName:   call.Name,
		})
	}

	return graph.Command{Goto: n.Next, Update: graph.Update{Scratch: results}}, nil
}
