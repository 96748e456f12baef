package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/wavemaker/internal/errors"
)

// Mutation is one change applied to the task set inside an atomic update.
type Mutation func(*TaskSet) error

// Store is the single durable home of the task ledger. The orchestrator loop
// is its only writer; every other component works from read-only snapshots.
type Store struct {
	path string
}

// NewStore creates a store for the ledger document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the ledger document path.
func (st *Store) Path() string {
	return st.path
}

// Load reads and validates the ledger document. Malformed input is rejected
// with a localized diagnostic, never coerced.
func (st *Store) Load() (*TaskSet, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewLedgerNotFoundError(st.path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read ledger %s", st.path), err)
	}

	var set TaskSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		// yaml.v3 errors carry line numbers, which is the localization we
		// want for syntax-level failures.
		return nil, errors.Wrap(errors.ErrCodeLedgerUnmarshal, fmt.Sprintf("parse ledger %s", st.path), err)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	return &set, nil
}

// Save renders the full document and writes it atomically: marshal to a
// temporary file in the same directory, then rename over the original. A
// reader never observes a partially-written ledger.
func (st *Store) Save(set *TaskSet) error {
	set.LastUpdated = time.Now().UTC()
	set.Checksum = checksum(set.Tasks)

	data, err := yaml.Marshal(set)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerMarshal, "marshal ledger", err)
	}

	return atomicWrite(st.path, data)
}

// Update loads the current document, applies every mutation, validates the
// result, and saves it atomically. The whole batch succeeds or none of it
// reaches disk.
func (st *Store) Update(mutations ...Mutation) (*TaskSet, error) {
	set, err := st.Load()
	if err != nil {
		return nil, err
	}

	for _, m := range mutations {
		if err := m(set); err != nil {
			return nil, err
		}
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	if err := st.Save(set); err != nil {
		return nil, err
	}
	return set, nil
}

// atomicWrite writes data to path via a temp file and rename in the same
// directory.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "create temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "close temp file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, fmt.Sprintf("rename over %s", path), err)
	}
	return nil
}

// checksum computes the blake3 hash of the canonicalized task list: id,
// status, attempts, and commit ref per task, in sorted ID order.
func checksum(tasks []Task) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("%s|%s|%d|%s", t.ID, t.Status, t.Attempts, t.CommitRef))
	}
	sort.Strings(lines)

	hasher := blake3.New()
	for _, line := range lines {
		hasher.Write([]byte(line))
		hasher.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
