// Package validation runs pluggable validators over produced content and
// aggregates structured errors. Validation failures are data routed back to
// the model, never control-flow errors inside the graph.
package validation

import (
	"fmt"
	"strings"

	"github.com/joescharf/coda/internal/graph"
)

// Error is a single validation finding. Pure data.
type Error struct {
	Message string
	Code    string
	Context string
}

// Format renders the error for model-facing feedback.
func (e *Error) Format() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\n```\n%s\n```", e.Message, e.Context)
}

// Validator checks produced content. A nil entry in the result means pass;
// validators must not mutate state — only the calling node does, via the
// returned error list.
type Validator interface {
	Validate(s *graph.State) []*Error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(s *graph.State) []*Error

func (f ValidatorFunc) Validate(s *graph.State) []*Error { return f(s) }

// Run executes each validator in declaration order, flattens the results and
// drops nils. An empty validator list always passes.
func Run(s *graph.State, validators []Validator) []*Error {
	var all []*Error
	for _, v := range validators {
		for _, err := range v.Validate(s) {
			if err != nil {
				all = append(all, err)
			}
		}
	}
	return all
}

// FormatList renders errors as the corrective feedback block injected into
// the next prompt.
func FormatList(errs []*Error) string {
	var sb strings.Builder
	sb.WriteString("Fix the following issues:\n")
	for _, e := range errs {
		sb.WriteString("- " + e.Format() + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
