package graph

import (
	"context"
	"fmt"
)

// Node is a named behavior in the graph: a pure function of state to a
// routing command. Uncaught errors abort the turn and propagate to the
// caller.
type Node interface {
	Run(ctx context.Context, s *State) (Command, error)
}

// NodeFunc adapts a function to the Node interface.
type NodeFunc func(ctx context.Context, s *State) (Command, error)

func (f NodeFunc) Run(ctx context.Context, s *State) (Command, error) {
	return f(ctx, s)
}

// Graph is a statically-declared node graph with one entry node. Each agent
// builds its own at construction time; there is no name-based discovery.
type Graph struct {
	entry NodeID
	nodes map[NodeID]Node
}

// Builder accumulates nodes and declared edges, then validates the wiring.
type Builder struct {
	entry NodeID
	nodes map[NodeID]Node
	edges [][2]NodeID
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{nodes: map[NodeID]Node{}}
}

// AddNode registers a node behavior under an id.
func (b *Builder) AddNode(id NodeID, n Node) *Builder {
	b.nodes[id] = n
	return b
}

// AddEdge declares an intended route. Edges are documentation plus build-time
// validation; routing itself happens through returned Commands.
func (b *Builder) AddEdge(from, to NodeID) *Builder {
	b.edges = append(b.edges, [2]NodeID{from, to})
	return b
}

// SetEntry marks the node the runtime starts from.
func (b *Builder) SetEntry(id NodeID) *Builder {
	b.entry = id
	return b
}

// Build validates the declared wiring and returns the immutable graph.
func (b *Builder) Build() (*Graph, error) {
	if len(b.nodes) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}
	if b.entry == "" {
		return nil, fmt.Errorf("graph has no entry node")
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("entry node %q is not registered", b.entry)
	}
	for _, e := range b.edges {
		if _, ok := b.nodes[e[0]]; !ok {
			return nil, fmt.Errorf("edge source %q is not registered", e[0])
		}
		if e[1] != End {
			if _, ok := b.nodes[e[1]]; !ok {
				return nil, fmt.Errorf("edge target %q is not registered", e[1])
			}
		}
	}
	return &Graph{entry: b.entry, nodes: b.nodes}, nil
}

// UnknownNodeError reports a Command routing to an unregistered node.
type UnknownNodeError struct {
	ID NodeID
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("route to unknown node: %s", e.ID)
}

// Run executes the graph against the state: invoke the current node, merge
// its update, follow its goto, until the terminal marker. Exactly one node
// runs at a time; a node error aborts the turn without rollback.
func (g *Graph) Run(ctx context.Context, s *State) error {
	current := g.entry
	for current != End {
		if err := ctx.Err(); err != nil {
			return err
		}
		node, ok := g.nodes[current]
		if !ok {
			return &UnknownNodeError{ID: current}
		}
		cmd, err := node.Run(ctx, s)
		if err != nil {
			return fmt.Errorf("node %s: %w", current, err)
		}
		s.Apply(cmd.Update)
		current = cmd.Goto
	}
	return nil
}
