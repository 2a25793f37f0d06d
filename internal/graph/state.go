// Package graph is the agent execution runtime: a statically-declared node
// graph iterated over a single mutable conversation state. Nodes return
// routing commands; the runtime owns only orchestration.
package graph

import (
	"encoding/json"

	"github.com/joescharf/coda/internal/editblock"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Message is one conversation entry. Tool results carry the originating
// call id so the gateway can pair them back up.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// State is the single mutable record threaded through every node invocation.
// Ownership is exclusive to the runtime for the duration of one turn.
type State struct {
	// UserRequest is the current turn's raw input; cleared on the terminal
	// node.
	UserRequest string

	// ScratchMessages are ephemeral messages for the current turn: model
	// replies, tool results, correction prompts. Cleared on the terminal
	// node.
	ScratchMessages []Message

	// HistoryMessages is the durable conversation log, appended once per
	// completed turn.
	HistoryMessages []Message

	// ParsedBlocks is the parser output consumed by lint, apply and
	// extraction.
	ParsedBlocks []editblock.Block

	// Errors holds formatted validation feedback injected into the next
	// model prompt. Empty means none.
	Errors string

	// Extracted is structured output for non-edit agents.
	Extracted any

	// Iteration counts returns to the Assistant from Validate/Lint/Parse
	// corrective loops.
	Iteration int
}

// LastScratch returns the most recent scratch message, or nil.
func (s *State) LastScratch() *Message {
	if len(s.ScratchMessages) == 0 {
		return nil
	}
	return &s.ScratchMessages[len(s.ScratchMessages)-1]
}

// LastAssistant returns the most recent assistant scratch message, or nil.
func (s *State) LastAssistant() *Message {
	for i := len(s.ScratchMessages) - 1; i >= 0; i-- {
		if s.ScratchMessages[i].Role == RoleAssistant {
			return &s.ScratchMessages[i]
		}
	}
	return nil
}

// Apply merges an update into the state using per-field reducers: message
// sequences append unless the replace sentinel is set, scalar fields replace
// when present.
func (s *State) Apply(u Update) {
	if u.UserRequest != nil {
		s.UserRequest = *u.UserRequest
	}

	if u.ReplaceScratch {
		s.ScratchMessages = u.Scratch
	} else if len(u.Scratch) > 0 {
		s.ScratchMessages = append(s.ScratchMessages, u.Scratch...)
	}

	if len(u.History) > 0 {
		s.HistoryMessages = append(s.HistoryMessages, u.History...)
	}

	if u.SetBlocks {
		s.ParsedBlocks = u.Blocks
	}

	if u.Errors != nil {
		s.Errors = *u.Errors
	}

	if u.SetExtracted {
		s.Extracted = u.Extracted
	}

	if u.Iteration != nil {
		s.Iteration = *u.Iteration
	}
	if u.BumpIteration {
		s.Iteration++
	}
}
