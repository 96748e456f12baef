package ledger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
)

// TaskLearnings are the structured notes one worker produced for one task.
type TaskLearnings struct {
	TaskID      domain.TaskID
	CommitRef   string
	Patterns    []string
	Discoveries []string
	Issues      []string
}

// LearningsLog is the append-only, human-readable companion to the ledger.
// Sections are appended in wave order and never reordered or overwritten.
type LearningsLog struct {
	path string
}

// NewLearningsLog creates a learnings log at path.
func NewLearningsLog(path string) *LearningsLog {
	return &LearningsLog{path: path}
}

// Path returns the log path.
func (l *LearningsLog) Path() string {
	return l.path
}

// Read returns the full current contents, or empty if the log does not exist.
func (l *LearningsLog) Read() (string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read learnings log %s", l.path), err)
	}
	return string(data), nil
}

// AppendWave appends a wave-numbered section with each task's learnings.
// The append is done through the same temp-and-rename discipline as the
// ledger so the log is never observed half-written.
func (l *LearningsLog) AppendWave(wave int, entries []TaskLearnings) error {
	existing, err := l.Read()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing == "" {
		b.WriteString("# Learnings Log\n")
	}

	b.WriteString(fmt.Sprintf("\n## Wave %d (%s)\n", wave, time.Now().UTC().Format(time.RFC3339)))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("\n### Task %s\n", e.TaskID))
		if e.CommitRef != "" {
			b.WriteString(fmt.Sprintf("- commit: %s\n", e.CommitRef))
		}
		writeList(&b, "Patterns applied", e.Patterns)
		writeList(&b, "Discoveries", e.Discoveries)
		writeList(&b, "Issues resolved", e.Issues)
	}

	return atomicWrite(l.path, []byte(b.String()))
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("- %s:\n", heading))
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  - %s\n", item))
	}
}
