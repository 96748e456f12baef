package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wavemaker/internal/conflict"
	"github.com/felixgeelhaar/wavemaker/internal/dispatch"
	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/log"
	"github.com/felixgeelhaar/wavemaker/internal/merge"
	"github.com/felixgeelhaar/wavemaker/internal/retry"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
	"github.com/felixgeelhaar/wavemaker/internal/wave"
)

// Orchestrator drives the full run loop: load the ledger, build the next
// wave from on-disk status, dispatch it, resolve retries, merge, repeat.
// Waves execute strictly sequentially; the wave partition is recomputed from
// the persisted ledger before every wave, which is what makes an interrupted
// run resumable by simply running again.
type Orchestrator struct {
	store        *ledger.Store
	learnings    *ledger.LearningsLog
	analyzer     *conflict.Analyzer
	dispatcher   *dispatch.Dispatcher
	retries      *retry.Manager
	merger       *merge.Merger
	tierOverride map[string]string
	archiveDir   string
	logger       *log.Logger
}

// Options wires an orchestrator.
type Options struct {
	Store        *ledger.Store
	Learnings    *ledger.LearningsLog
	Analyzer     *conflict.Analyzer
	Dispatcher   *dispatch.Dispatcher
	Retries      *retry.Manager
	TierOverride map[string]string
	ArchiveDir   string
	Logger       *log.Logger
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Orchestrator{
		store:        opts.Store,
		learnings:    opts.Learnings,
		analyzer:     opts.Analyzer,
		dispatcher:   opts.Dispatcher,
		retries:      opts.Retries,
		merger:       merge.New(opts.Store, opts.Learnings, logger),
		tierOverride: opts.TierOverride,
		archiveDir:   opts.ArchiveDir,
		logger:       logger,
	}
}

// WavePreview is one planned wave with its tier selections.
type WavePreview struct {
	Number int
	Tasks  []TaskPreview
}

// TaskPreview is one task's planned execution.
type TaskPreview struct {
	ID   domain.TaskID
	Tier tier.Tier
}

// PlanPreview is the computed partition of all incomplete tasks, for dry runs
// and the plan command. Only the first wave of a preview is guaranteed to
// execute as shown; later waves are recomputed after each merge.
type PlanPreview struct {
	Waves         []WavePreview
	NoParallelism bool
}

// Summary is the final accounting of one run invocation.
type Summary struct {
	RunID         string
	WavesRun      int
	Completed     int
	Blocked       int
	NoParallelism bool
	AlreadyDone   bool
	ArchivePath   string
}

// Plan loads the ledger and computes the wave partition without executing
// anything.
func (o *Orchestrator) Plan() (*PlanPreview, error) {
	set, err := o.store.Load()
	if err != nil {
		return nil, err
	}
	return o.preview(set), nil
}

func (o *Orchestrator) preview(set *ledger.TaskSet) *PlanPreview {
	plan := wave.Build(set, o.analyzer)
	out := &PlanPreview{NoParallelism: plan.NoParallelism}
	for _, w := range plan.Waves {
		wp := WavePreview{Number: w.Number}
		for _, id := range w.TaskIDs {
			t := set.Find(id)
			wp.Tasks = append(wp.Tasks, TaskPreview{ID: id, Tier: o.tierFor(t)})
		}
		out.Waves = append(out.Waves, wp)
	}
	return out
}

// tierFor resolves a task's tier: the task's own override wins, then a
// configured per-task override, then the complexity mapping.
func (o *Orchestrator) tierFor(t *ledger.Task) tier.Tier {
	override := t.Tier
	if override == "" {
		override = o.tierOverride[string(t.ID)]
	}
	return tier.Select(t.Complexity, override)
}

// Run executes waves until every task is terminal, a systemic halt fires, or
// the context is cancelled. Re-running after full success is a no-op.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	set, err := o.store.Load()
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.NewString()}

	if set.FullySucceeded() {
		o.logger.Info("all tasks already completed, nothing to do")
		summary.AlreadyDone = true
		o.fillCounts(summary, set)
		return summary, nil
	}

	blockedThisRun := 0
	for {
		if err := ctx.Err(); err != nil {
			return summary, errors.Wrap(errors.ErrCodeRunInterrupted, "run interrupted", err)
		}

		pool := set.Incomplete()
		if len(pool) == 0 {
			break
		}

		plan := wave.Build(set, o.analyzer)
		if plan.NoParallelism {
			summary.NoParallelism = true
			o.logger.Warn("no parallelism available, every wave has a single task",
				"incomplete_tasks", len(pool))
		}

		// Only the first wave executes; everything after it is recomputed
		// from the merged ledger on the next pass.
		current := plan.Waves[0]
		set, blockedThisRun, err = o.runWave(ctx, set, current, summary, blockedThisRun)
		if err != nil {
			return summary, err
		}

		if err := o.retries.HaltCheck(blockedThisRun); err != nil {
			o.fillCounts(summary, set)
			return summary, err
		}
	}

	o.fillCounts(summary, set)

	if set.FullySucceeded() {
		dest, err := ledger.Archive(o.store, o.learnings, o.archiveDir, summary.RunID)
		if err != nil {
			return summary, err
		}
		summary.ArchivePath = dest
		o.logger.Info("run fully succeeded", "archive", dest, "waves", summary.WavesRun)
		return summary, nil
	}

	return summary, errors.New(errors.ErrCodeRunTaskBlocked,
		fmt.Sprintf("run finished with %d blocked task(s)", summary.Blocked)).
		WithSuggestion("Run 'wavemaker status' to inspect the blocked tasks").
		WithSuggestion("Reset or skip blocked tasks, then re-run 'wavemaker run'")
}

// runWave dispatches one wave, resolves retries, and merges the results.
func (o *Orchestrator) runWave(ctx context.Context, set *ledger.TaskSet, w wave.Wave, summary *Summary, blockedSoFar int) (*ledger.TaskSet, int, error) {
	tasks := make([]ledger.Task, 0, len(w.TaskIDs))
	tiers := make(map[domain.TaskID]tier.Tier, len(w.TaskIDs))
	for _, id := range w.TaskIDs {
		t := set.Find(id)
		if t == nil {
			return nil, blockedSoFar, errors.NewLedgerTaskUnknownError(string(id))
		}
		tasks = append(tasks, *t)
		tiers[id] = o.tierFor(t)
	}

	o.logger.Info("starting wave", "tasks", len(tasks), "task_ids", w.TaskIDs)

	prior, err := o.learnings.Read()
	if err != nil {
		return nil, blockedSoFar, err
	}

	outcomes, err := o.dispatcher.Dispatch(ctx, tasks, tiers, prior)
	if err != nil {
		return nil, blockedSoFar, err
	}

	resolutions, err := o.retries.Process(ctx, tasks, outcomes, prior)
	if err != nil {
		return nil, blockedSoFar, err
	}

	merged, waveNumber, err := o.merger.MergeWave(resolutions)
	if err != nil {
		return nil, blockedSoFar, err
	}

	summary.WavesRun++
	blocked := retry.CountBlocked(resolutions)
	o.logger.Info("wave complete",
		"wave", waveNumber,
		"completed", len(resolutions)-blocked,
		"blocked", blocked,
	)
	return merged, blockedSoFar + blocked, nil
}

func (o *Orchestrator) fillCounts(summary *Summary, set *ledger.TaskSet) {
	counts := set.CountByStatus()
	summary.Completed = counts[domain.StatusCompleted]
	summary.Blocked = counts[domain.StatusBlocked]
}
