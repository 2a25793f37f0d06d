package graph

import "github.com/joescharf/coda/internal/editblock"

// NodeID names a node in the graph.
type NodeID string

// End is the terminal marker: a Command routing here closes the turn.
const End NodeID = "__end__"

// Update is a partial state mutation. Nil pointer fields mean "no change";
// message slices append unless the replace sentinel is set.
type Update struct {
	UserRequest *string

	Scratch        []Message
	ReplaceScratch bool

	History []Message

	Blocks    []editblock.Block
	SetBlocks bool

	Errors *string

	Extracted    any
	SetExtracted bool

	Iteration     *int
	BumpIteration bool
}

// Command is the only way a node communicates with the runtime.
type Command struct {
	Goto   NodeID
	Update Update
}

// String returns a pointer for Update fields. Keeps node code terse.
func String(s string) *string { return &s }

// Int returns a pointer for Update fields.
func Int(n int) *int { return &n }
