// Package tools defines the tool capability exposed to the model and the
// per-agent registry the ToolExec node resolves calls against.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is a named capability the model may invoke. Results must be
// serializable into a tool-result message.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Invoke(ctx context.Context, args json.RawMessage) (string, error)
}

// UnknownToolError reports a model call naming a tool absent from the
// agent's registry. This is a programming/config error and aborts the turn.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// Registry holds an agent's tool set in registration order.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry creates a registry pre-loaded with the given tools. Duplicate
// names panic: the tool set is static per agent and a duplicate is a wiring
// bug.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: map[string]Tool{}}
	for _, t := range tools {
		if _, exists := r.byName[t.Name()]; exists {
			panic(fmt.Sprintf("duplicate tool registered: %s", t.Name()))
		}
		r.byName[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r
}

// Get resolves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// List returns tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }
