package worker

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// VerifyResult captures the outcome of a task's verify command. Exit code 0
// means success; stdout and stderr are kept verbatim for diagnostics.
type VerifyResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the verify command confirmed the task.
func (v *VerifyResult) Success() bool {
	return v != nil && v.ExitCode == 0
}

// Detail renders the captured output for error reporting.
func (v *VerifyResult) Detail() string {
	var b strings.Builder
	if out := strings.TrimSpace(v.Stdout); out != "" {
		b.WriteString("stdout: ")
		b.WriteString(out)
	}
	if errOut := strings.TrimSpace(v.Stderr); errOut != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("stderr: ")
		b.WriteString(errOut)
	}
	return b.String()
}

// Verifier executes verify commands.
type Verifier interface {
	Verify(ctx context.Context, command string) (*VerifyResult, error)
}

// ShellVerifier runs verify commands through the shell in a fixed working
// directory.
type ShellVerifier struct {
	workdir string
}

// NewShellVerifier creates a verifier rooted at workdir.
func NewShellVerifier(workdir string) *ShellVerifier {
	return &ShellVerifier{workdir: workdir}
}

// Verify runs the command and captures its exit code and output. A non-zero
// exit is reported through the result, not as an error; errors are reserved
// for invocations that could not run at all.
func (s *ShellVerifier) Verify(ctx context.Context, command string) (*VerifyResult, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = s.workdir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &VerifyResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, err
	}

	return result, nil
}
