package worker

import (
	"context"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
)

// PayloadFile is one declared footprint entry passed to a worker.
type PayloadFile struct {
	Path   string `json:"path"`
	Action string `json:"action"`
}

// Payload is the self-contained invocation input for one task. It carries
// everything a worker needs; workers share no state with each other.
type Payload struct {
	TaskID        string        `json:"task_id"`
	Title         string        `json:"title"`
	VerifyCommand string        `json:"verify_command"`
	Files         []PayloadFile `json:"files"`

	// Learnings is the accumulated global learnings log so far.
	Learnings string `json:"learnings,omitempty"`

	// ScratchLog is a private log path unique to this task. Workers must
	// write progress notes only here.
	ScratchLog string `json:"scratch_log"`

	Tier string `json:"tier"`
}

// Learnings are the structured notes a worker produced for one task.
type Learnings struct {
	Patterns    []string `json:"patterns,omitempty"`
	Discoveries []string `json:"discoveries,omitempty"`
	Issues      []string `json:"issues_resolved,omitempty"`
}

// Result is the structured output of one worker invocation.
type Result struct {
	TaskID      string    `json:"task_id"`
	FinalStatus string    `json:"final_status"`
	CommitRef   string    `json:"commit_ref,omitempty"`
	Learnings   Learnings `json:"learnings,omitempty"`
	ErrorDetail string    `json:"error_detail,omitempty"`
}

// Completed reports whether the worker claims success. The claim is not
// trusted: verification happens separately.
func (r *Result) Completed() bool {
	return r != nil && r.FinalStatus == string(domain.StatusCompleted)
}

// Invoker runs one task to termination and returns its structured result.
// An error return means the invocation itself failed (crash, timeout,
// malformed output); a Result with a non-completed status is a worker-level
// failure, not an Invoker error.
type Invoker interface {
	Invoke(ctx context.Context, p Payload, t tier.Tier) (*Result, error)
}
