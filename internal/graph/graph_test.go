package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/coda/internal/editblock"
)

func TestBuilder_Validation(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.ErrorContains(t, err, "no nodes")

	noop := NodeFunc(func(ctx context.Context, s *State) (Command, error) {
		return Command{Goto: End}, nil
	})

	_, err = NewBuilder().AddNode("a", noop).Build()
	assert.ErrorContains(t, err, "no entry")

	_, err = NewBuilder().AddNode("a", noop).SetEntry("missing").Build()
	assert.ErrorContains(t, err, "not registered")

	_, err = NewBuilder().
		AddNode("a", noop).
		AddEdge("a", "ghost").
		SetEntry("a").
		Build()
	assert.ErrorContains(t, err, `edge target "ghost"`)

	g, err := NewBuilder().
		AddNode("a", noop).
		AddEdge("a", End).
		SetEntry("a").
		Build()
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestRun_SequencesNodesUntilEnd(t *testing.T) {
	var order []string

	step := func(name string, next NodeID) Node {
		return NodeFunc(func(ctx context.Context, s *State) (Command, error) {
			order = append(order, name)
			return Command{
				Goto:   next,
				Update: Update{Scratch: []Message{{Role: RoleAssistant, Content: name}}},
			}, nil
		})
	}

	g, err := NewBuilder().
		AddNode("first", step("first", "second")).
		AddNode("second", step("second", End)).
		SetEntry("first").
		Build()
	require.NoError(t, err)

	s := &State{UserRequest: "hi"}
	require.NoError(t, g.Run(context.Background(), s))

	assert.Equal(t, []string{"first", "second"}, order)
	require.Len(t, s.ScratchMessages, 2)
	assert.Equal(t, "second", s.ScratchMessages[1].Content)
}

func TestRun_NodeErrorAbortsAndPropagates(t *testing.T) {
	boom := errors.New("gateway unreachable")
	g, err := NewBuilder().
		AddNode("bad", NodeFunc(func(ctx context.Context, s *State) (Command, error) {
			return Command{}, boom
		})).
		SetEntry("bad").
		Build()
	require.NoError(t, err)

	runErr := g.Run(context.Background(), &State{})
	require.Error(t, runErr)
	assert.ErrorIs(t, runErr, boom)
	assert.ErrorContains(t, runErr, "node bad")
}

func TestRun_UnknownGoto(t *testing.T) {
	g, err := NewBuilder().
		AddNode("a", NodeFunc(func(ctx context.Context, s *State) (Command, error) {
			return Command{Goto: "nowhere"}, nil
		})).
		SetEntry("a").
		Build()
	require.NoError(t, err)

	runErr := g.Run(context.Background(), &State{})
	var unknown *UnknownNodeError
	require.ErrorAs(t, runErr, &unknown)
	assert.Equal(t, NodeID("nowhere"), unknown.ID)
}

func TestRun_CancellationStopsBetweenNodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	g, err := NewBuilder().
		AddNode("loop", NodeFunc(func(ctx context.Context, s *State) (Command, error) {
			calls++
			cancel()
			return Command{Goto: "loop"}, nil
		})).
		SetEntry("loop").
		Build()
	require.NoError(t, err)

	runErr := g.Run(ctx, &State{})
	assert.ErrorIs(t, runErr, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation must stop the loop at the next node boundary")
}

func TestApply_Reducers(t *testing.T) {
	s := &State{
		ScratchMessages: []Message{{Role: RoleUser, Content: "a"}},
		Iteration:       1,
	}

	// Append semantics.
	s.Apply(Update{Scratch: []Message{{Role: RoleAssistant, Content: "b"}}})
	require.Len(t, s.ScratchMessages, 2)

	// Replace-all sentinel.
	s.Apply(Update{ReplaceScratch: true, Scratch: nil})
	assert.Empty(t, s.ScratchMessages)

	// History appends.
	s.Apply(Update{History: []Message{{Role: RoleUser, Content: "h"}}})
	s.Apply(Update{History: []Message{{Role: RoleAssistant, Content: "i"}}})
	assert.Len(t, s.HistoryMessages, 2)

	// Scalars replace only when set.
	s.Apply(Update{})
	assert.Equal(t, 1, s.Iteration)
	s.Apply(Update{BumpIteration: true})
	assert.Equal(t, 2, s.Iteration)
	s.Apply(Update{Iteration: Int(0)})
	assert.Equal(t, 0, s.Iteration)

	s.Apply(Update{Errors: String("- bad output")})
	assert.Equal(t, "- bad output", s.Errors)
	s.Apply(Update{Errors: String("")})
	assert.Equal(t, "", s.Errors)

	s.Apply(Update{SetBlocks: true, Blocks: []editblock.Block{
		&editblock.SearchReplaceBlock{FilePath: "x.go"},
	}})
	require.Len(t, s.ParsedBlocks, 1)
	s.Apply(Update{SetBlocks: true, Blocks: nil})
	assert.Empty(t, s.ParsedBlocks)

	s.Apply(Update{SetExtracted: true, Extracted: map[string]string{"k": "v"}})
	assert.NotNil(t, s.Extracted)

	s.Apply(Update{UserRequest: String("")})
	assert.Equal(t, "", s.UserRequest)
}

func TestLastAssistant(t *testing.T) {
	s := &State{ScratchMessages: []Message{
		{Role: RoleAssistant, Content: "one"},
		{Role: RoleTool, Content: "result"},
	}}
	msg := s.LastAssistant()
	require.NotNil(t, msg)
	assert.Equal(t, "one", msg.Content)

	assert.Nil(t, (&State{}).LastAssistant())
	assert.Nil(t, (&State{}).LastScratch())
}
