package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	wmerrors "github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
)

// Executable wraps any executable that speaks JSON over stdin/stdout: the
// payload is written to stdin, a single Result object is expected on stdout.
// The requested tier is passed both in the payload and as a --tier argument
// so simple shell workers can switch on it without parsing JSON.
type Executable struct {
	command []string
	timeout time.Duration
	workdir string
}

// NewExecutable creates an executable-backed worker invoker.
func NewExecutable(command []string, timeout time.Duration, workdir string) *Executable {
	return &Executable{
		command: command,
		timeout: timeout,
		workdir: workdir,
	}
}

// Invoke runs the worker for one task and waits for termination: a result on
// stdout, an explicit failure, a non-zero exit, or the configured timeout.
func (e *Executable) Invoke(ctx context.Context, p Payload, t tier.Tier) (*Result, error) {
	if len(e.command) == 0 {
		return nil, wmerrors.New(wmerrors.ErrCodeWorkerNotFound, "worker command is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	p.Tier = t.String()
	input, err := json.Marshal(p)
	if err != nil {
		return nil, wmerrors.Wrap(wmerrors.ErrCodeWorkerBadOutput, "marshal worker payload", err)
	}

	args := append(append([]string(nil), e.command[1:]...), "--tier", t.String())
	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Dir = e.workdir
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, wmerrors.NewWorkerTimeoutError(p.TaskID, e.timeout.String())
	}
	if ctx.Err() == context.Canceled {
		return nil, wmerrors.Wrap(wmerrors.ErrCodeRunInterrupted, fmt.Sprintf("worker for task %s cancelled", p.TaskID), ctx.Err())
	}

	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if isCapacityFailure(detail) {
			return nil, wmerrors.New(wmerrors.ErrCodeWorkerCapacity,
				fmt.Sprintf("worker for task %s hit a capacity limit: %s", p.TaskID, detail))
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, wmerrors.New(wmerrors.ErrCodeWorkerCrashed,
				fmt.Sprintf("worker for task %s exited %d: %s", p.TaskID, exitErr.ExitCode(), detail))
		}
		return nil, wmerrors.Wrap(wmerrors.ErrCodeWorkerCrashed,
			fmt.Sprintf("worker for task %s failed to start", p.TaskID), runErr)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, wmerrors.NewWorkerBadOutputError(p.TaskID, err)
	}
	if result.TaskID == "" {
		result.TaskID = p.TaskID
	}
	if result.TaskID != p.TaskID {
		return nil, wmerrors.NewWorkerBadOutputError(p.TaskID,
			fmt.Errorf("result is for task %s", result.TaskID))
	}

	return &result, nil
}

// isCapacityFailure detects quota and capacity exhaustion from worker stderr.
func isCapacityFailure(detail string) bool {
	lower := strings.ToLower(detail)
	for _, marker := range []string{"rate limit", "quota", "capacity", "overloaded", "too many requests"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
