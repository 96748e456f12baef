package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeLedgerNotFound, "test error message")

	if err.Code != ErrCodeLedgerNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeLedgerNotFound, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	// Test unwrapping
	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *WavemakerError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeLedgerInvalid, "invalid ledger"),
			wantCode: "LEDGER-002",
			wantMsg:  "invalid ledger",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeFileReadFailed, "read failed", fmt.Errorf("permission denied")),
			wantCode: "IO-002",
			wantMsg:  "permission denied",
		},
		{
			name:     "worker timeout",
			err:      NewWorkerTimeoutError("2.0", "5m"),
			wantCode: "WORKER-003",
			wantMsg:  "task 2.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrCodeLedgerInvalid, "bad field").
		WithSuggestion("fix the field").
		WithSuggestion("re-run status")

	if len(err.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") {
		t.Errorf("error string should contain suggestions header, got: %s", errStr)
	}
	if !strings.Contains(errStr, "fix the field") {
		t.Errorf("error string should contain suggestion text, got: %s", errStr)
	}
}

func TestLedgerInvalidErrorLocation(t *testing.T) {
	err := NewLedgerInvalidError("task 2.0, field complexity", "must be between 1 and 5")

	errStr := err.Error()
	if !strings.Contains(errStr, "task 2.0, field complexity") {
		t.Errorf("error should name the task and field, got: %s", errStr)
	}
	if !strings.Contains(errStr, "must be between 1 and 5") {
		t.Errorf("error should carry the reason, got: %s", errStr)
	}
}
