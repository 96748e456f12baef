package domain

import "fmt"

// Status represents the lifecycle state of a task.
// This is a value object that enforces the forward-only state machine:
// pending -> in_progress -> {completed | blocked | skipped}. A status never
// regresses except through an explicit operator reset.
type Status string

// Valid task statuses
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
	StatusSkipped    Status = "skipped"
)

// NewStatus creates a new Status value object with validation
func NewStatus(value string) (Status, error) {
	s := Status(value)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked, StatusSkipped:
		return nil
	default:
		return fmt.Errorf("invalid status %q: must be pending, in_progress, completed, blocked, or skipped", string(s))
	}
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the task will not be automatically rescheduled
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusBlocked, StatusSkipped:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the forward-only state machine permits
// moving from s to next. Operator resets bypass this check deliberately.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusInProgress || next.IsTerminal()
	case StatusInProgress:
		return next.IsTerminal()
	default:
		return false
	}
}
