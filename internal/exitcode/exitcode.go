package exitcode

import (
	"errors"
	"os"
	"strings"

	wmerrors "github.com/felixgeelhaar/wavemaker/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// InputError indicates a malformed task definition or ledger
	InputError = 3

	// BlockedTasks indicates the run finished with tasks in blocked state
	BlockedTasks = 4

	// SystemicHalt indicates the blocked-task threshold was exceeded
	SystemicHalt = 5

	// Interrupted indicates the process was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	// Coded errors map directly
	var wErr *wmerrors.WavemakerError
	if errors.As(err, &wErr) {
		switch wErr.Code {
		case wmerrors.ErrCodeLedgerNotFound,
			wmerrors.ErrCodeLedgerInvalid,
			wmerrors.ErrCodeLedgerUnmarshal:
			return InputError
		case wmerrors.ErrCodeRunSystemicHalt:
			return SystemicHalt
		case wmerrors.ErrCodeRunTaskBlocked:
			return BlockedTasks
		case wmerrors.ErrCodeRunInterrupted:
			return Interrupted
		}
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case InputError:
		return "Malformed task definition or ledger"
	case BlockedTasks:
		return "Run finished with blocked tasks"
	case SystemicHalt:
		return "Blocked-task threshold exceeded"
	case Interrupted:
		return "Cancelled by user"
	default:
		return "Unknown error"
	}
}
