package merge

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/log"
	"github.com/felixgeelhaar/wavemaker/internal/retry"
)

// Merger lands the results of one wave: every final status in a single
// atomic ledger update, the wave's learnings appended under its wave number,
// and the wave's scratch logs removed. The ledger update is the commit
// point; a crash before it leaves the tasks pending and the next run simply
// redoes the wave.
type Merger struct {
	store     *ledger.Store
	learnings *ledger.LearningsLog
	logger    *log.Logger
}

// New creates a merger writing through the given store and learnings log.
func New(store *ledger.Store, learnings *ledger.LearningsLog, logger *log.Logger) *Merger {
	return &Merger{
		store:     store,
		learnings: learnings,
		logger:    logger,
	}
}

// MergeWave applies all resolutions of one wave and returns the updated set
// and the wave's number. Every resolution must be terminal and must target a
// task that is not already terminal; otherwise nothing reaches disk.
func (m *Merger) MergeWave(resolutions []retry.Resolution) (*ledger.TaskSet, int, error) {
	var waveNumber int
	set, err := m.store.Update(func(set *ledger.TaskSet) error {
		for _, r := range resolutions {
			if !r.Status.IsTerminal() {
				return errors.New(errors.ErrCodeLedgerTransition,
					fmt.Sprintf("cannot merge non-terminal status %q for task %s", r.Status, r.TaskID))
			}
			t := set.Find(r.TaskID)
			if t == nil {
				return errors.NewLedgerTaskUnknownError(string(r.TaskID))
			}
			if t.Status == r.Status || !t.Status.CanTransitionTo(r.Status) {
				return errors.New(errors.ErrCodeLedgerTransition,
					fmt.Sprintf("cannot move task %s from %s to %s; statuses never regress", t.ID, t.Status, r.Status))
			}
			t.Status = r.Status
			t.Attempts = r.Attempts
			t.CommitRef = r.CommitRef
			t.ErrorDetail = r.ErrorDetail
		}
		set.WavesMerged++
		waveNumber = set.WavesMerged
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// The ledger update above is the commit point. A crash between it and
	// the append below loses this wave's learnings; the reverse order would
	// instead duplicate the wave's section every time a crashed wave re-ran,
	// and the append-only log has no way to repair that.
	if entries := learningsEntries(resolutions); len(entries) > 0 {
		if err := m.learnings.AppendWave(waveNumber, entries); err != nil {
			return nil, 0, err
		}
	}

	cleanScratch(resolutions)

	m.logger.Info("wave merged",
		"wave", waveNumber,
		"tasks", len(resolutions),
		"blocked", retry.CountBlocked(resolutions),
	)
	return set, waveNumber, nil
}

// learningsEntries collects the non-empty learnings of a wave in resolution
// order.
func learningsEntries(resolutions []retry.Resolution) []ledger.TaskLearnings {
	var entries []ledger.TaskLearnings
	for _, r := range resolutions {
		l := r.Learnings
		if len(l.Patterns) == 0 && len(l.Discoveries) == 0 && len(l.Issues) == 0 {
			continue
		}
		entries = append(entries, ledger.TaskLearnings{
			TaskID:      r.TaskID,
			CommitRef:   r.CommitRef,
			Patterns:    l.Patterns,
			Discoveries: l.Discoveries,
			Issues:      l.Issues,
		})
	}
	return entries
}

// cleanScratch removes the wave's private worker logs. Their durable content
// has already been folded into the learnings log.
func cleanScratch(resolutions []retry.Resolution) {
	for _, r := range resolutions {
		for _, path := range r.ScratchLogs {
			if path != "" {
				os.Remove(path)
			}
		}
	}
}
