package nodes

import (
	"context"
	"fmt"

	"github.com/joescharf/coda/internal/graph"
	"github.com/joescharf/coda/internal/llm"
	"github.com/joescharf/coda/internal/tools"
)

// Assistant invokes the model with the accumulated conversation. Replies
// carrying tool calls route to ToolNode; everything else routes to Next.
// Degenerate empty completions are re-invoked with a nudge instruction, up
// to the configured cap.
type Assistant struct {
	Ctx      *Context
	Next     graph.NodeID
	ToolNode graph.NodeID
}

func (n *Assistant) Run(ctx context.Context, s *graph.State) (graph.Command, error) {
	msgs, err := n.buildMessages(s)
	if err != nil {
		return graph.Command{}, err
	}

	req := llm.Request{
		System:    n.Ctx.SystemPrompt,
		Messages:  msgs,
		Tools:     toolSchemas(n.Ctx.Tools),
		MaxTokens: n.Ctx.MaxTokens,
	}

	reply, err := n.Ctx.Model.Invoke(ctx, req)
	if err != nil {
		return graph.Command{}, err
	}

	attempts := 0
	for reply.Content == "" && len(reply.ToolCalls) == 0 {
		attempts++
		if attempts > n.Ctx.maxEmptyReplies() {
			return graph.Command{}, fmt.Errorf("%d empty completions: %w", attempts, ErrEmptyReplyLimit)
		}
		n.Ctx.verbosef("empty model reply, re-invoking (attempt %d)", attempts)

		req.Messages = append(append([]graph.Message{}, msgs...), graph.Message{
			Role:    graph.RoleUser,
			Content: "Your previous reply was empty. Respond to the request above with real content.",
		})
		reply, err = n.Ctx.Model.Invoke(ctx, req)
		if err != nil {
			return graph.Command{}, err
		}
	}

	next := n.Next
	if len(reply.ToolCalls) > 0 && n.ToolNode != "" {
		next = n.ToolNode
	}
	return graph.Command{Goto: next, Update: graph.Update{Scratch: []graph.Message{reply}}}, nil
}

// buildMessages assembles the prompt: durable history, then the current
// turn's user message (request plus file context), then the turn's scratch
// messages (prior replies, tool results, corrective prompts).
func (n *Assistant) buildMessages(s *graph.State) ([]graph.Message, error) {
	msgs := make([]graph.Message, 0, len(s.HistoryMessages)+len(s.ScratchMessages)+1)
	msgs = append(msgs, s.HistoryMessages...)

	if s.UserRequest != "" {
		content := s.UserRequest
		if n.Ctx.Files != nil {
			prompt, err := n.Ctx.Files.ContextPrompt()
			if err != nil {
				return nil, fmt.Errorf("build file context: %w", err)
			}
			if prompt != "" {
				content = prompt + "\n\n" + content
			}
		}
		msgs = append(msgs, graph.Message{Role: graph.RoleUser, Content: content})
	}

	msgs = append(msgs, s.ScratchMessages...)
	return msgs, nil
}

func toolSchemas(r *tools.Registry) []llm.ToolSchema {
	if r == nil {
		return nil
	}
	var schemas []llm.ToolSchema
	for _, t := range r.List() {
		schemas = append(schemas, llm.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return schemas
}
