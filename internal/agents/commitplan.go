package agents

import (
	"fmt"
	"strings"

	"github.com/joescharf/coda/internal/graph"
)

// CommitPlan is the structured output of the commit agent.
type CommitPlan struct {
	Subject string
	Body    string
}

// Message renders the plan as a complete commit message.
func (p CommitPlan) Message() string {
	if p.Body == "" {
		return p.Subject
	}
	return p.Subject + "\n\n" + p.Body
}

// projectCommitPlan splits the validated reply into subject and body. The
// subject is the first non-blank line; everything after it is the body.
func projectCommitPlan(s *graph.State) (any, error) {
	msg := s.LastAssistant()
	if msg == nil {
		return nil, fmt.Errorf("no assistant reply to project into a commit plan")
	}

	lines := strings.Split(strings.TrimSpace(msg.Content), "\n")
	subject := strings.TrimSpace(lines[0])
	body := strings.TrimSpace(strings.Join(lines[1:], "\n"))
	return CommitPlan{Subject: subject, Body: body}, nil
}
