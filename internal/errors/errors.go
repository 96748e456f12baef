package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Ledger errors (LEDGER-001 to LEDGER-099)
	ErrCodeLedgerNotFound    ErrorCode = "LEDGER-001"
	ErrCodeLedgerInvalid     ErrorCode = "LEDGER-002"
	ErrCodeLedgerUnmarshal   ErrorCode = "LEDGER-003"
	ErrCodeLedgerMarshal     ErrorCode = "LEDGER-004"
	ErrCodeLedgerWriteFailed ErrorCode = "LEDGER-005"
	ErrCodeLedgerTaskUnknown ErrorCode = "LEDGER-006"
	ErrCodeLedgerTransition  ErrorCode = "LEDGER-007"

	// Conflict analysis errors (CONFLICT-001 to CONFLICT-099)
	ErrCodeConflictScanFailed ErrorCode = "CONFLICT-001"
	ErrCodeConflictBadMode    ErrorCode = "CONFLICT-002"

	// Wave errors (WAVE-001 to WAVE-099)
	ErrCodeWaveEmptyPool ErrorCode = "WAVE-001"

	// Worker errors (WORKER-001 to WORKER-099)
	ErrCodeWorkerNotFound  ErrorCode = "WORKER-001"
	ErrCodeWorkerCrashed   ErrorCode = "WORKER-002"
	ErrCodeWorkerTimeout   ErrorCode = "WORKER-003"
	ErrCodeWorkerBadOutput ErrorCode = "WORKER-004"
	ErrCodeWorkerCapacity  ErrorCode = "WORKER-005"

	// Verification errors (VERIFY-001 to VERIFY-099)
	ErrCodeVerifyFailed     ErrorCode = "VERIFY-001"
	ErrCodeVerifyNoCommit   ErrorCode = "VERIFY-002"
	ErrCodeVerifyBadCommand ErrorCode = "VERIFY-003"

	// Run errors (RUN-001 to RUN-099)
	ErrCodeRunTaskBlocked  ErrorCode = "RUN-001"
	ErrCodeRunSystemicHalt ErrorCode = "RUN-002"
	ErrCodeRunInterrupted  ErrorCode = "RUN-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
)

// WavemakerError represents an enhanced error with code, suggestions, and documentation
type WavemakerError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *WavemakerError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *WavemakerError) Unwrap() error {
	return e.Cause
}

// New creates a new WavemakerError
func New(code ErrorCode, message string) *WavemakerError {
	return &WavemakerError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new WavemakerError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *WavemakerError {
	return &WavemakerError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *WavemakerError) WithSuggestion(suggestion string) *WavemakerError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *WavemakerError) WithSuggestions(suggestions ...string) *WavemakerError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *WavemakerError) WithDocs(url string) *WavemakerError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewLedgerNotFoundError creates a ledger file not found error
func NewLedgerNotFoundError(path string) *WavemakerError {
	return New(ErrCodeLedgerNotFound, fmt.Sprintf("task ledger not found: %s", path)).
		WithSuggestion("Run 'wavemaker init' to create a new ledger").
		WithSuggestion("Check if the file path is correct")
}

// NewLedgerInvalidError creates a localized ledger validation error.
// The location names the task and field that failed so the operator can fix
// the document directly.
func NewLedgerInvalidError(location, details string) *WavemakerError {
	return New(ErrCodeLedgerInvalid, fmt.Sprintf("invalid task ledger at %s: %s", location, details)).
		WithSuggestion("Fix the named field in the ledger document").
		WithSuggestion("Run 'wavemaker status' after fixing to confirm the ledger loads")
}

// NewLedgerTaskUnknownError creates an unknown task error
func NewLedgerTaskUnknownError(taskID string) *WavemakerError {
	return New(ErrCodeLedgerTaskUnknown, fmt.Sprintf("task %s not found in ledger", taskID)).
		WithSuggestion("Run 'wavemaker status' to list known task IDs")
}

// NewWorkerTimeoutError creates a worker timeout error
func NewWorkerTimeoutError(taskID string, timeout string) *WavemakerError {
	return New(ErrCodeWorkerTimeout, fmt.Sprintf("worker for task %s exceeded timeout of %s", taskID, timeout)).
		WithSuggestion("Increase worker.timeout in .wavemaker/config.yaml").
		WithSuggestion("Split the task into smaller subtasks")
}

// NewWorkerBadOutputError creates a malformed worker output error
func NewWorkerBadOutputError(taskID string, cause error) *WavemakerError {
	return Wrap(ErrCodeWorkerBadOutput, fmt.Sprintf("worker for task %s returned malformed output", taskID), cause).
		WithSuggestion("Check the worker command emits a single JSON result on stdout")
}

// NewVerifyFailedError creates a verification failure error
func NewVerifyFailedError(taskID string, exitCode int, stderr string) *WavemakerError {
	msg := fmt.Sprintf("verify command for task %s exited %d", taskID, exitCode)
	err := New(ErrCodeVerifyFailed, msg).
		WithSuggestion("Inspect the captured verify output in the error detail")
	if stderr != "" {
		err = err.WithSuggestion(fmt.Sprintf("stderr: %s", strings.TrimSpace(stderr)))
	}
	return err
}

// NewSystemicHaltError creates a systemic halt error
func NewSystemicHaltError(blocked int, threshold int) *WavemakerError {
	return New(ErrCodeRunSystemicHalt, fmt.Sprintf("%d tasks blocked in one run (threshold %d); halting", blocked, threshold)).
		WithSuggestion("Review the consolidated failure report above").
		WithSuggestion("Resolve or explicitly skip the blocked tasks, then re-run 'wavemaker run'")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *WavemakerError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}
