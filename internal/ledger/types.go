package ledger

import (
	"time"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
)

// FileRef is one entry in a task's declared file footprint.
type FileRef struct {
	Path   string            `yaml:"path"`
	Action domain.FileAction `yaml:"action"`
}

// Subtask is a smaller unit inside a task. Subtasks are not independently
// schedulable; they exist for progress bookkeeping only.
type Subtask struct {
	ID     domain.TaskID `yaml:"id"`
	Title  string        `yaml:"title"`
	Status domain.Status `yaml:"status"`
}

// Task is one unit of work in the ledger.
type Task struct {
	ID            domain.TaskID     `yaml:"id"`
	Title         string            `yaml:"title"`
	Complexity    domain.Complexity `yaml:"complexity"`
	Status        domain.Status     `yaml:"status"`
	VerifyCommand string            `yaml:"verify_command"`
	Files         []FileRef         `yaml:"files"`
	Subtasks      []Subtask         `yaml:"subtasks,omitempty"`

	// Tier optionally overrides the complexity-derived worker tier.
	Tier string `yaml:"tier,omitempty"`

	// Execution bookkeeping, written only by the orchestrator after a wave.
	Attempts    int    `yaml:"attempts,omitempty"`
	CommitRef   string `yaml:"commit_ref,omitempty"`
	ErrorDetail string `yaml:"error_detail,omitempty"`
}

// Footprint returns the task's declared file paths.
func (t *Task) Footprint() []string {
	paths := make([]string, 0, len(t.Files))
	for _, f := range t.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// TaskSet is the full persisted ledger document.
type TaskSet struct {
	Version     string    `yaml:"version"`
	Project     string    `yaml:"project"`
	LastUpdated time.Time `yaml:"last_updated"`

	// WavesMerged counts merged waves across the whole run history; it
	// numbers the sections appended to the learnings log.
	WavesMerged int `yaml:"waves_merged"`

	// Checksum is the blake3 hash of the canonicalized task list, refreshed
	// on every atomic update.
	Checksum string `yaml:"checksum,omitempty"`

	Tasks []Task `yaml:"tasks"`
}

// Find returns the task with the given ID, or nil.
func (s *TaskSet) Find(id domain.TaskID) *Task {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

// Incomplete returns the tasks that are not in a terminal status, in
// declared order.
func (s *TaskSet) Incomplete() []Task {
	var out []Task
	for _, t := range s.Tasks {
		if !t.Status.IsTerminal() {
			out = append(out, t)
		}
	}
	return out
}

// AllTerminal reports whether every task has reached a terminal status.
func (s *TaskSet) AllTerminal() bool {
	for _, t := range s.Tasks {
		if !t.Status.IsTerminal() {
			return false
		}
	}
	return len(s.Tasks) > 0
}

// FullySucceeded reports whether every task is completed or explicitly
// skipped, i.e. the run finished with nothing blocked.
func (s *TaskSet) FullySucceeded() bool {
	for _, t := range s.Tasks {
		if t.Status != domain.StatusCompleted && t.Status != domain.StatusSkipped {
			return false
		}
	}
	return len(s.Tasks) > 0
}

// CountByStatus returns the number of tasks per status.
func (s *TaskSet) CountByStatus() map[domain.Status]int {
	counts := make(map[domain.Status]int)
	for _, t := range s.Tasks {
		counts[t.Status]++
	}
	return counts
}
