package ledger

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
)

// Validate checks the whole task set and rejects malformed input with a
// localized diagnostic naming the offending task and field. Nothing is ever
// silently coerced.
func (s *TaskSet) Validate() error {
	if strings.TrimSpace(s.Version) == "" {
		return errors.NewLedgerInvalidError("document header, field version", "version is required")
	}

	if len(s.Tasks) == 0 {
		return errors.NewLedgerInvalidError("document body, field tasks", "at least one task is required")
	}

	seen := make(map[domain.TaskID]int)
	for i := range s.Tasks {
		t := &s.Tasks[i]
		loc := taskLocation(i, t.ID)

		if err := t.ID.Validate(); err != nil {
			return errors.NewLedgerInvalidError(loc+", field id", err.Error())
		}
		if prev, dup := seen[t.ID]; dup {
			return errors.NewLedgerInvalidError(loc+", field id",
				fmt.Sprintf("duplicate of task at index %d", prev))
		}
		seen[t.ID] = i

		if strings.TrimSpace(t.Title) == "" {
			return errors.NewLedgerInvalidError(loc+", field title", "title cannot be empty")
		}
		if err := t.Complexity.Validate(); err != nil {
			return errors.NewLedgerInvalidError(loc+", field complexity", err.Error())
		}
		if err := t.Status.Validate(); err != nil {
			return errors.NewLedgerInvalidError(loc+", field status", err.Error())
		}
		if strings.TrimSpace(t.VerifyCommand) == "" {
			return errors.NewLedgerInvalidError(loc+", field verify_command", "verify_command cannot be empty")
		}
		if len(t.Files) == 0 {
			return errors.NewLedgerInvalidError(loc+", field files", "declared file footprint cannot be empty")
		}

		for j, f := range t.Files {
			floc := fmt.Sprintf("%s, files[%d]", loc, j)
			if strings.TrimSpace(f.Path) == "" {
				return errors.NewLedgerInvalidError(floc+".path", "file path cannot be empty")
			}
			if err := f.Action.Validate(); err != nil {
				return errors.NewLedgerInvalidError(floc+".action", err.Error())
			}
		}

		for j, sub := range t.Subtasks {
			sloc := fmt.Sprintf("%s, subtasks[%d]", loc, j)
			if err := sub.ID.Validate(); err != nil {
				return errors.NewLedgerInvalidError(sloc+".id", err.Error())
			}
			if strings.TrimSpace(sub.Title) == "" {
				return errors.NewLedgerInvalidError(sloc+".title", "title cannot be empty")
			}
			if err := sub.Status.Validate(); err != nil {
				return errors.NewLedgerInvalidError(sloc+".status", err.Error())
			}
		}

		if t.Tier != "" && t.Tier != "baseline" && t.Tier != "elevated" && t.Tier != "maximal" {
			return errors.NewLedgerInvalidError(loc+", field tier",
				fmt.Sprintf("invalid tier %q: must be baseline, elevated, or maximal", t.Tier))
		}
	}

	return nil
}

func taskLocation(index int, id domain.TaskID) string {
	if id != "" {
		return fmt.Sprintf("task %s (index %d)", id, index)
	}
	return fmt.Sprintf("task at index %d", index)
}
