package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/log"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
	"github.com/felixgeelhaar/wavemaker/internal/worker"
)

// Outcome is the termination record of one worker in a wave. Exactly one of
// Result and Err is meaningful: Err covers crashes, timeouts, and malformed
// output; Result covers workers that terminated with a parseable answer.
type Outcome struct {
	TaskID     domain.TaskID
	Tier       tier.Tier
	Result     *worker.Result
	Err        error
	ScratchLog string
}

// Failed reports whether the worker terminated without a completed result.
func (o Outcome) Failed() bool {
	return o.Err != nil || !o.Result.Completed()
}

// Dispatcher runs every task of a wave concurrently, one worker per task,
// and waits for all of them to terminate before returning. Workers share
// nothing: each gets a self-contained payload and a private scratch log.
type Dispatcher struct {
	invoker    worker.Invoker
	scratchDir string
	logger     *log.Logger
}

// New creates a dispatcher writing scratch logs under scratchDir.
func New(invoker worker.Invoker, scratchDir string, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		invoker:    invoker,
		scratchDir: scratchDir,
		logger:     logger,
	}
}

// Dispatch invokes one worker per task and collects every termination. The
// returned slice is ordered like the input wave. Dispatch itself only errors
// when it cannot prepare the scratch directory; per-worker failures live in
// the outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, tasks []ledger.Task, tiers map[domain.TaskID]tier.Tier, learnings string) ([]Outcome, error) {
	if err := os.MkdirAll(d.scratchDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("create scratch directory %s", d.scratchDir), err)
	}

	outcomes := make([]Outcome, len(tasks))

	var wg conc.WaitGroup
	for i, t := range tasks {
		wg.Go(func() {
			outcomes[i] = d.runOne(ctx, t, tiers[t.ID], learnings)
		})
	}
	wg.Wait()

	return outcomes, nil
}

// runOne drives a single worker to termination.
func (d *Dispatcher) runOne(ctx context.Context, t ledger.Task, tr tier.Tier, learnings string) Outcome {
	scratch := filepath.Join(d.scratchDir, fmt.Sprintf("%s-%s.log", t.ID, uuid.NewString()))

	outcome := Outcome{
		TaskID:     t.ID,
		Tier:       tr,
		ScratchLog: scratch,
	}

	files := make([]worker.PayloadFile, 0, len(t.Files))
	for _, f := range t.Files {
		files = append(files, worker.PayloadFile{Path: f.Path, Action: string(f.Action)})
	}

	payload := worker.Payload{
		TaskID:        string(t.ID),
		Title:         t.Title,
		VerifyCommand: t.VerifyCommand,
		Files:         files,
		Learnings:     learnings,
		ScratchLog:    scratch,
	}

	d.logger.Info("dispatching worker",
		"task_id", t.ID,
		"tier", tr.String(),
		"scratch_log", scratch,
	)

	result, err := d.invoker.Invoke(ctx, payload, tr)
	if err != nil {
		d.logger.WithError(err).Error("worker terminated abnormally", "task_id", t.ID)
		outcome.Err = err
		return outcome
	}

	d.logger.Info("worker terminated",
		"task_id", t.ID,
		"final_status", result.FinalStatus,
	)
	outcome.Result = result
	return outcome
}
