// Package nodes implements the standard node behaviors the agent graphs are
// built from. Every node receives its collaborators through an explicit
// Context; there is no ambient service lookup.
package nodes

import (
	"errors"
	"fmt"

	"github.com/joescharf/coda/internal/checkpoint"
	"github.com/joescharf/coda/internal/editblock"
	"github.com/joescharf/coda/internal/events"
	"github.com/joescharf/coda/internal/filectx"
	"github.com/joescharf/coda/internal/graph"
	"github.com/joescharf/coda/internal/lint"
	"github.com/joescharf/coda/internal/llm"
	"github.com/joescharf/coda/internal/output"
	"github.com/joescharf/coda/internal/tools"
	"github.com/joescharf/coda/internal/validation"
)

const (
	defaultMaxIterations   = 3
	defaultMaxEmptyReplies = 2
)

// ErrEmptyReplyLimit is returned when the model keeps producing replies with
// no content and no tool calls until the retry cap.
var ErrEmptyReplyLimit = errors.New("model returned only empty replies")

// RetryLimitExceededError is returned when corrective loops (parse, apply,
// lint, validate) exhaust the configured iteration cap.
type RetryLimitExceededError struct {
	Limit    int
	Feedback string
}

func (e *RetryLimitExceededError) Error() string {
	return fmt.Sprintf("retry limit of %d corrective iterations exceeded; last feedback:\n%s",
		e.Limit, e.Feedback)
}

// Context carries the external collaborators a node may use. Nil optional
// fields disable the corresponding behavior (no lint runner means the Lint
// node passes through).
type Context struct {
	Model       llm.Gateway
	Tools       *tools.Registry
	Files       *filectx.Provider
	Applier     *editblock.Applier
	Lint        lint.Runner
	Validators  []validation.Validator
	UI          *output.UI
	Checkpoints checkpoint.Store
	Events      *events.Dispatcher

	Agent        string
	ThreadID     string
	SystemPrompt string
	MaxTokens    int64

	// MaxIterations caps the corrective loops that return control to the
	// Assistant. MaxEmptyReplies caps empty-completion re-invocations.
	// Zero means the default.
	MaxIterations   int
	MaxEmptyReplies int
}

func (c *Context) maxIterations() int {
	if c.MaxIterations > 0 {
		return c.MaxIterations
	}
	return defaultMaxIterations
}

func (c *Context) maxEmptyReplies() int {
	if c.MaxEmptyReplies > 0 {
		return c.MaxEmptyReplies
	}
	return defaultMaxEmptyReplies
}

func (c *Context) verbosef(format string, a ...any) {
	if c.UI != nil {
		c.UI.VerboseLog(format, a...)
	}
}

// corrective routes feedback back to the retry node as data: the feedback is
// stored in the state's error field, appended as a user scratch message for
// the next prompt, and the iteration counter is bumped. Once the cap is hit
// the loop becomes a fatal RetryLimitExceededError instead.
func (c *Context) corrective(s *graph.State, retry graph.NodeID, feedback string) (graph.Command, error) {
	if s.Iteration >= c.maxIterations() {
		return graph.Command{}, &RetryLimitExceededError{Limit: c.maxIterations(), Feedback: feedback}
	}
	c.verbosef("routing corrective feedback to %s (iteration %d)", retry, s.Iteration+1)
	return graph.Command{
		Goto: retry,
		Update: graph.Update{
			Errors:        graph.String(feedback),
			Scratch:       []graph.Message{{Role: graph.RoleUser, Content: feedback}},
			BumpIteration: true,
		},
	}, nil
}
