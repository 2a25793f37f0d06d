// Package agents builds the shipped agent graphs. Each agent declares its
// concrete nodes and edges at construction time; there is no name-based
// discovery.
package agents

import (
	"context"
	"fmt"

	"github.com/joescharf/coda/internal/graph"
	"github.com/joescharf/coda/internal/nodes"
	"github.com/joescharf/coda/internal/validation"
)

// Node ids shared by the agent graphs.
const (
	nodeStart     graph.NodeID = "start"
	nodeAssistant graph.NodeID = "assistant"
	nodeTools     graph.NodeID = "tools"
	nodeParse     graph.NodeID = "parse_blocks"
	nodeLint      graph.NodeID = "lint"
	nodeValidate  graph.NodeID = "validate"
	nodeExtract   graph.NodeID = "extract"
	nodeEnd       graph.NodeID = "end"
)

// Agent is a constructed graph plus the context its nodes share.
type Agent struct {
	Name  string
	Graph *graph.Graph
	Ctx   *nodes.Context
}

// Run executes one conversation turn against the state.
func (a *Agent) Run(ctx context.Context, s *graph.State) error {
	if err := a.Graph.Run(ctx, s); err != nil {
		return fmt.Errorf("agent %s: %w", a.Name, err)
	}
	return nil
}

// NewCoder builds the edit-block agent: the model reply is parsed into
// blocks, applied to the tree, and linted, with corrective loops back to the
// assistant on every recoverable failure.
func NewCoder(ctx *nodes.Context) (*Agent, error) {
	ctx.Agent = "coder"
	if ctx.SystemPrompt == "" {
		ctx.SystemPrompt = coderPrompt
	}

	g, err := graph.NewBuilder().
		AddNode(nodeStart, &nodes.Start{Next: nodeAssistant}).
		AddNode(nodeAssistant, &nodes.Assistant{Ctx: ctx, Next: nodeParse, ToolNode: nodeTools}).
		AddNode(nodeTools, &nodes.ToolExec{Ctx: ctx, Next: nodeAssistant}).
		AddNode(nodeParse, &nodes.ParseBlocks{Ctx: ctx, Next: nodeLint, Retry: nodeAssistant}).
		AddNode(nodeLint, &nodes.Lint{Ctx: ctx, Next: nodeEnd, Retry: nodeAssistant}).
		AddNode(nodeEnd, &nodes.End{Ctx: ctx}).
		AddEdge(nodeStart, nodeAssistant).
		AddEdge(nodeAssistant, nodeTools).
		AddEdge(nodeAssistant, nodeParse).
		AddEdge(nodeTools, nodeAssistant).
		AddEdge(nodeParse, nodeLint).
		AddEdge(nodeParse, nodeAssistant).
		AddEdge(nodeLint, nodeEnd).
		AddEdge(nodeLint, nodeAssistant).
		AddEdge(nodeEnd, graph.End).
		SetEntry(nodeStart).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build coder graph: %w", err)
	}
	return &Agent{Name: "coder", Graph: g, Ctx: ctx}, nil
}

// NewAsk builds the question-answering agent: a plain tool loop with no
// edits and no validation.
func NewAsk(ctx *nodes.Context) (*Agent, error) {
	ctx.Agent = "ask"
	if ctx.SystemPrompt == "" {
		ctx.SystemPrompt = askPrompt
	}

	g, err := graph.NewBuilder().
		AddNode(nodeStart, &nodes.Start{Next: nodeAssistant}).
		AddNode(nodeAssistant, &nodes.Assistant{Ctx: ctx, Next: nodeEnd, ToolNode: nodeTools}).
		AddNode(nodeTools, &nodes.ToolExec{Ctx: ctx, Next: nodeAssistant}).
		AddNode(nodeEnd, &nodes.End{Ctx: ctx}).
		AddEdge(nodeStart, nodeAssistant).
		AddEdge(nodeAssistant, nodeTools).
		AddEdge(nodeTools, nodeAssistant).
		AddEdge(nodeAssistant, nodeEnd).
		AddEdge(nodeEnd, graph.End).
		SetEntry(nodeStart).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build ask graph: %w", err)
	}
	return &Agent{Name: "ask", Graph: g, Ctx: ctx}, nil
}

// NewCommit builds the commit-plan agent: the reply is validated (subject
// line rules) and projected into a CommitPlan.
func NewCommit(ctx *nodes.Context) (*Agent, error) {
	ctx.Agent = "commit"
	if ctx.SystemPrompt == "" {
		ctx.SystemPrompt = commitPrompt
	}
	if len(ctx.Validators) == 0 {
		ctx.Validators = []validation.Validator{
			&validation.CommitSubject{},
		}
	}

	g, err := graph.NewBuilder().
		AddNode(nodeStart, &nodes.Start{Next: nodeAssistant}).
		AddNode(nodeAssistant, &nodes.Assistant{Ctx: ctx, Next: nodeValidate}).
		AddNode(nodeValidate, &nodes.Validate{Ctx: ctx, Next: nodeExtract, Retry: nodeAssistant}).
		AddNode(nodeExtract, &nodes.Extract{Next: nodeEnd, Project: projectCommitPlan}).
		AddNode(nodeEnd, &nodes.End{Ctx: ctx}).
		AddEdge(nodeStart, nodeAssistant).
		AddEdge(nodeAssistant, nodeValidate).
		AddEdge(nodeValidate, nodeExtract).
		AddEdge(nodeValidate, nodeAssistant).
		AddEdge(nodeExtract, nodeEnd).
		AddEdge(nodeEnd, graph.End).
		SetEntry(nodeStart).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build commit graph: %w", err)
	}
	return &Agent{Name: "commit", Graph: g, Ctx: ctx}, nil
}
