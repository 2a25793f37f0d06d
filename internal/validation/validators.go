package validation

import (
	"fmt"
	"strings"

	"github.com/joescharf/coda/internal/graph"
)

// MaxLines rejects replies whose non-blank line count exceeds Max.
type MaxLines struct {
	Max int
}

func (v *MaxLines) Validate(s *graph.State) []*Error {
	msg := s.LastAssistant()
	if msg == nil {
		return nil
	}

	count := 0
	for _, line := range strings.Split(msg.Content, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	if count > v.Max {
		return []*Error{{
			Message: fmt.Sprintf("reply exceeds maximum line limit: %d lines (max %d)", count, v.Max),
			Code:    "max_lines_exceeded",
		}}
	}
	return nil
}

// CommitSubject checks the first non-blank reply line against commit-message
// conventions: subject length and no trailing period.
type CommitSubject struct {
	MaxLen int
}

func (v *CommitSubject) Validate(s *graph.State) []*Error {
	msg := s.LastAssistant()
	if msg == nil {
		return nil
	}

	subject := ""
	for _, line := range strings.Split(msg.Content, "\n") {
		if strings.TrimSpace(line) != "" {
			subject = strings.TrimSpace(line)
			break
		}
	}
	if subject == "" {
		return []*Error{{Message: "commit message is empty", Code: "empty_commit"}}
	}

	var errs []*Error
	maxLen := v.MaxLen
	if maxLen == 0 {
		maxLen = 72
	}
	if len(subject) > maxLen {
		errs = append(errs, &Error{
			Message: fmt.Sprintf("commit subject is %d characters (max %d)", len(subject), maxLen),
			Code:    "subject_too_long",
			Context: subject,
		})
	}
	if strings.HasSuffix(subject, ".") {
		errs = append(errs, &Error{
			Message: "commit subject must not end with a period",
			Code:    "subject_trailing_period",
			Context: subject,
		})
	}
	return errs
}
