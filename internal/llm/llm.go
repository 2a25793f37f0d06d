// Package llm is the model gateway: it converts conversation messages to
// Anthropic Messages API calls and normalizes replies, including tool use.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/coda/internal/graph"
)

// ToolSchema describes one tool offered to the model.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Request is one model invocation.
type Request struct {
	System    string
	Messages  []graph.Message
	Tools     []ToolSchema
	MaxTokens int64
}

// Gateway produces assistant messages that may include tool calls.
// Infrastructure failures propagate as errors and abort the turn.
type Gateway interface {
	Invoke(ctx context.Context, req Request) (graph.Message, error)
}

// Client wraps the Anthropic API.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// Invoke sends the conversation to the model and returns the normalized
// assistant reply.
func (c *Client) Invoke(ctx context.Context, req Request) (graph.Message, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  convertMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	for _, tool := range req.Tools {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.InputSchema,
				},
			},
		})
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return graph.Message{}, fmt.Errorf("anthropic API call: %w", err)
	}

	reply := graph.Message{Role: graph.RoleAssistant}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if reply.Content != "" {
				reply.Content += "\n"
			}
			reply.Content += block.Text
		case "tool_use":
			reply.ToolCalls = append(reply.ToolCalls, graph.ToolCall{
				ID:   block.ID,
				Name: block.Name,
				Args: json.RawMessage(block.Input),
			})
		}
	}
	return reply, nil
}

// convertMessages maps conversation messages onto API params. Tool results
// become user messages carrying tool_result blocks, per the Messages API.
func convertMessages(messages []graph.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case graph.RoleAssistant:
			blocks := []anthropic.ContentBlockParamUnion{}
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, call := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, call.Args, call.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case graph.RoleTool:
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
			))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}
