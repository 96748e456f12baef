package retry

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/wavemaker/internal/dispatch"
	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/log"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
	"github.com/felixgeelhaar/wavemaker/internal/worker"
)

// scriptedInvoker returns per-task results in call order and counts calls.
type scriptedInvoker struct {
	mu      sync.Mutex
	scripts map[string][]invocation
	calls   map[string]int
	tiers   map[string][]tier.Tier
}

type invocation struct {
	result *worker.Result
	err    error
}

func newScriptedInvoker() *scriptedInvoker {
	return &scriptedInvoker{
		scripts: map[string][]invocation{},
		calls:   map[string]int{},
		tiers:   map[string][]tier.Tier{},
	}
}

func (s *scriptedInvoker) script(taskID string, invs ...invocation) {
	s.scripts[taskID] = invs
}

func (s *scriptedInvoker) Invoke(_ context.Context, p worker.Payload, t tier.Tier) (*worker.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.calls[p.TaskID]
	s.calls[p.TaskID] = n + 1
	s.tiers[p.TaskID] = append(s.tiers[p.TaskID], t)

	script := s.scripts[p.TaskID]
	if n >= len(script) {
		return nil, errors.New(errors.ErrCodeWorkerCrashed, "no scripted invocation left")
	}
	inv := script[n]
	return inv.result, inv.err
}

// passVerifier always succeeds.
type passVerifier struct{}

func (passVerifier) Verify(context.Context, string) (*worker.VerifyResult, error) {
	return &worker.VerifyResult{ExitCode: 0, Stdout: "ok\n"}, nil
}

// failVerifier always reports a non-zero exit.
type failVerifier struct{}

func (failVerifier) Verify(context.Context, string) (*worker.VerifyResult, error) {
	return &worker.VerifyResult{ExitCode: 1, Stderr: "tests failed\n"}, nil
}

func completed(id, ref string) *worker.Result {
	return &worker.Result{TaskID: id, FinalStatus: string(domain.StatusCompleted), CommitRef: ref}
}

func failed(id, detail string) *worker.Result {
	return &worker.Result{TaskID: id, FinalStatus: "failed", ErrorDetail: detail}
}

func task(id string, complexity domain.Complexity) ledger.Task {
	return ledger.Task{
		ID:            domain.TaskID(id),
		Title:         "task " + id,
		Complexity:    complexity,
		Status:        domain.StatusPending,
		VerifyCommand: "true",
		Files:         []ledger.FileRef{{Path: id + ".go", Action: domain.FileActionModify}},
	}
}

func newManager(t *testing.T, inv worker.Invoker, v worker.Verifier, maxBlocked int) *Manager {
	t.Helper()
	d := dispatch.New(inv, filepath.Join(t.TempDir(), "scratch"), log.Default())
	return New(d, v, maxBlocked, log.Default())
}

// processOne dispatches and processes a single-task wave.
func processOne(t *testing.T, m *Manager, inv worker.Invoker, tk ledger.Task, tr tier.Tier) Resolution {
	t.Helper()
	d := dispatch.New(inv, filepath.Join(t.TempDir(), "scratch"), log.Default())
	outcomes, err := d.Dispatch(context.Background(), []ledger.Task{tk},
		map[domain.TaskID]tier.Tier{tk.ID: tr}, "")
	require.NoError(t, err)
	resolutions, err := m.Process(context.Background(), []ledger.Task{tk}, outcomes, "")
	require.NoError(t, err)
	require.Len(t, resolutions, 1)
	return resolutions[0]
}

func TestVerifiedSuccessFirstAttempt(t *testing.T) {
	inv := newScriptedInvoker()
	inv.script("a", invocation{result: completed("a", "abc123")})

	m := newManager(t, inv, passVerifier{}, 3)
	res := processOne(t, m, inv, task("a", 2), tier.Baseline)

	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, "abc123", res.CommitRef)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, inv.calls["a"], "a verified success must not be retried")
}

func TestFailureRetriedExactlyOnceEscalated(t *testing.T) {
	inv := newScriptedInvoker()
	inv.script("a",
		invocation{result: failed("a", "first failure")},
		invocation{result: completed("a", "def456")},
	)

	m := newManager(t, inv, passVerifier{}, 3)
	res := processOne(t, m, inv, task("a", 2), tier.Baseline)

	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, "def456", res.CommitRef)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, tier.Elevated, res.Tier, "retry runs at the next-higher tier")
	require.Equal(t, 2, inv.calls["a"])
	assert.Equal(t, []tier.Tier{tier.Baseline, tier.Elevated}, inv.tiers["a"])
}

func TestDoubleFailureBlocksWithFullDetail(t *testing.T) {
	inv := newScriptedInvoker()
	inv.script("a",
		invocation{result: failed("a", "compile error")},
		invocation{err: errors.NewWorkerTimeoutError("a", "15m")},
	)

	m := newManager(t, inv, passVerifier{}, 3)
	res := processOne(t, m, inv, task("a", 2), tier.Baseline)

	assert.Equal(t, domain.StatusBlocked, res.Status)
	assert.Equal(t, 2, res.Attempts)
	assert.Contains(t, res.ErrorDetail, "attempt 1 (baseline): compile error")
	assert.Contains(t, res.ErrorDetail, "attempt 2 (elevated)")
	assert.Contains(t, res.ErrorDetail, "exceeded timeout")
	assert.Equal(t, 2, inv.calls["a"], "exactly one escalated retry, never a third attempt")
}

func TestCompletedWithoutCommitRefIsVerificationFailure(t *testing.T) {
	inv := newScriptedInvoker()
	inv.script("a",
		invocation{result: &worker.Result{TaskID: "a", FinalStatus: string(domain.StatusCompleted)}},
		invocation{result: completed("a", "ref2")},
	)

	m := newManager(t, inv, passVerifier{}, 3)
	res := processOne(t, m, inv, task("a", 2), tier.Baseline)

	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, 2, inv.calls["a"], "missing commit ref must trigger the retry path")
}

func TestFailedVerifyCommandIsVerificationFailure(t *testing.T) {
	inv := newScriptedInvoker()
	inv.script("a",
		invocation{result: completed("a", "ref1")},
		invocation{result: completed("a", "ref2")},
	)

	m := newManager(t, inv, failVerifier{}, 3)
	res := processOne(t, m, inv, task("a", 2), tier.Baseline)

	assert.Equal(t, domain.StatusBlocked, res.Status)
	assert.Contains(t, res.ErrorDetail, "exited 1")
	assert.Contains(t, res.ErrorDetail, "tests failed")
}

func TestMaximalTierEscalatesToItself(t *testing.T) {
	inv := newScriptedInvoker()
	inv.script("a",
		invocation{result: failed("a", "boom")},
		invocation{result: completed("a", "ref")},
	)

	m := newManager(t, inv, passVerifier{}, 3)
	res := processOne(t, m, inv, task("a", 5), tier.Maximal)

	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, []tier.Tier{tier.Maximal, tier.Maximal}, inv.tiers["a"])
}

func TestHaltCheck(t *testing.T) {
	m := newManager(t, newScriptedInvoker(), passVerifier{}, 3)

	assert.NoError(t, m.HaltCheck(0))
	assert.NoError(t, m.HaltCheck(2))
	assert.NoError(t, m.HaltCheck(3), "exactly the threshold finishes the run and reports blocked tasks")

	err := m.HaltCheck(4)
	require.Error(t, err)
	var werr *errors.WavemakerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, errors.ErrCodeRunSystemicHalt, werr.Code)

	assert.Error(t, m.HaltCheck(5))
}

func TestCountBlocked(t *testing.T) {
	resolutions := []Resolution{
		{TaskID: "a", Status: domain.StatusCompleted},
		{TaskID: "b", Status: domain.StatusBlocked},
		{TaskID: "c", Status: domain.StatusBlocked},
	}
	assert.Equal(t, 2, CountBlocked(resolutions))
	assert.Equal(t, 0, CountBlocked(nil))
}
