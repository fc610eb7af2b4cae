package query

import (
	"errors"
	"fmt"

	"cupilot/internal/nlp"
)

var (
	ErrUnknownIntent      = errors.New("unknown intent")
	ErrUnresolvedAssignee = errors.New("unresolved assignee")
	ErrUpstream           = errors.New("task service failure")
)

// UnresolvedAssigneeError reports a person name that matched no team
// member. It satisfies errors.Is(err, ErrUnresolvedAssignee) and keeps
// the attempted name so it can be surfaced verbatim.
type UnresolvedAssigneeError struct {
	Name    string
	Command nlp.Command
}

func (e *UnresolvedAssigneeError) Error() string {
	return fmt.Sprintf("no team member matches %q (understood: %s)", e.Name, e.Command)
}

func (e *UnresolvedAssigneeError) Is(target error) bool {
	return target == ErrUnresolvedAssignee
}

// UpstreamError wraps a failed task-service call. Never retried here;
// retry policy belongs to the transport layer.
type UpstreamError struct {
	Op      string
	Command nlp.Command
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed (understood: %s): %v", e.Op, e.Command, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
