package dispatch

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/log"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
	"github.com/felixgeelhaar/wavemaker/internal/worker"
)

// fakeInvoker scripts per-task results and records concurrency.
type fakeInvoker struct {
	mu       sync.Mutex
	active   int
	peak     int
	delay    time.Duration
	results  map[string]*worker.Result
	errs     map[string]error
	payloads map[string]worker.Payload
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		results:  map[string]*worker.Result{},
		errs:     map[string]error{},
		payloads: map[string]worker.Payload{},
	}
}

func (f *fakeInvoker) Invoke(_ context.Context, p worker.Payload, _ tier.Tier) (*worker.Result, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.payloads[p.TaskID] = p
	f.mu.Unlock()

	time.Sleep(f.delay)

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	if err, ok := f.errs[p.TaskID]; ok {
		return nil, err
	}
	if r, ok := f.results[p.TaskID]; ok {
		return r, nil
	}
	return &worker.Result{TaskID: p.TaskID, FinalStatus: string(domain.StatusCompleted), CommitRef: "c-" + p.TaskID}, nil
}

func waveTasks(ids ...string) []ledger.Task {
	tasks := make([]ledger.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, ledger.Task{
			ID:            domain.TaskID(id),
			Title:         "task " + id,
			VerifyCommand: "true",
			Files:         []ledger.FileRef{{Path: id + ".go", Action: domain.FileActionModify}},
		})
	}
	return tasks
}

func uniformTiers(tasks []ledger.Task, tr tier.Tier) map[domain.TaskID]tier.Tier {
	out := make(map[domain.TaskID]tier.Tier, len(tasks))
	for _, t := range tasks {
		out[t.ID] = tr
	}
	return out
}

func TestDispatchRunsWholeWaveConcurrently(t *testing.T) {
	inv := newFakeInvoker()
	inv.delay = 50 * time.Millisecond

	d := New(inv, filepath.Join(t.TempDir(), "scratch"), log.Default())
	tasks := waveTasks("a", "b", "c")

	outcomes, err := d.Dispatch(context.Background(), tasks, uniformTiers(tasks, tier.Baseline), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, 3, inv.peak, "all workers in a wave should run concurrently")
	for i, o := range outcomes {
		assert.Equal(t, tasks[i].ID, o.TaskID, "outcomes keep wave order")
		assert.False(t, o.Failed())
		assert.Equal(t, "c-"+string(o.TaskID), o.Result.CommitRef)
	}
}

func TestDispatchWaitsForEveryTermination(t *testing.T) {
	inv := newFakeInvoker()
	inv.errs["b"] = errors.NewWorkerTimeoutError("b", "1s")

	d := New(inv, filepath.Join(t.TempDir(), "scratch"), log.Default())
	tasks := waveTasks("a", "b", "c")

	outcomes, err := d.Dispatch(context.Background(), tasks, uniformTiers(tasks, tier.Baseline), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 3, "a failing worker must not short-circuit the wave")

	assert.False(t, outcomes[0].Failed())
	assert.True(t, outcomes[1].Failed())
	assert.Error(t, outcomes[1].Err)
	assert.False(t, outcomes[2].Failed())
}

func TestDispatchIsolatesScratchLogs(t *testing.T) {
	inv := newFakeInvoker()
	d := New(inv, filepath.Join(t.TempDir(), "scratch"), log.Default())
	tasks := waveTasks("a", "b")

	outcomes, err := d.Dispatch(context.Background(), tasks, uniformTiers(tasks, tier.Baseline), "prior learnings")
	require.NoError(t, err)

	assert.NotEqual(t, outcomes[0].ScratchLog, outcomes[1].ScratchLog)
	for _, o := range outcomes {
		p := inv.payloads[string(o.TaskID)]
		assert.Equal(t, o.ScratchLog, p.ScratchLog, "payload carries the private scratch log")
		assert.Equal(t, "prior learnings", p.Learnings)
		assert.Equal(t, "true", p.VerifyCommand)
	}
}

func TestDispatchNonCompletedResultIsFailure(t *testing.T) {
	inv := newFakeInvoker()
	inv.results["a"] = &worker.Result{TaskID: "a", FinalStatus: "failed", ErrorDetail: "boom"}

	d := New(inv, filepath.Join(t.TempDir(), "scratch"), log.Default())
	tasks := waveTasks("a")

	outcomes, err := d.Dispatch(context.Background(), tasks, uniformTiers(tasks, tier.Baseline), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Failed())
	assert.Equal(t, "boom", outcomes[0].Result.ErrorDetail)
}
