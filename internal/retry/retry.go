package retry

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/wavemaker/internal/dispatch"
	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/log"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
	"github.com/felixgeelhaar/wavemaker/internal/worker"
)

// Resolution is the final, merge-ready verdict for one task after retries.
type Resolution struct {
	TaskID      domain.TaskID
	Status      domain.Status
	Tier        tier.Tier
	Attempts    int
	CommitRef   string
	ErrorDetail string
	Learnings   worker.Learnings
	ScratchLogs []string
}

// Blocked reports whether the task ended the wave blocked.
func (r Resolution) Blocked() bool {
	return r.Status == domain.StatusBlocked
}

// Manager turns raw wave outcomes into final task resolutions. A worker's
// success claim is never trusted: a completed result must carry a commit ref
// and pass the task's verify command. A failed task gets exactly one retry at
// the next-higher tier; a second failure blocks the task with the full error
// detail of both attempts.
type Manager struct {
	dispatcher *dispatch.Dispatcher
	verifier   worker.Verifier
	maxBlocked int
	logger     *log.Logger
}

// New creates a retry manager. maxBlocked is the number of blocked tasks
// tolerated in one run; one more triggers a systemic halt.
func New(dispatcher *dispatch.Dispatcher, verifier worker.Verifier, maxBlocked int, logger *log.Logger) *Manager {
	return &Manager{
		dispatcher: dispatcher,
		verifier:   verifier,
		maxBlocked: maxBlocked,
		logger:     logger,
	}
}

// Process verifies and, where needed, retries every outcome of a wave. The
// returned resolutions are ordered like the input and are all terminal.
func (m *Manager) Process(ctx context.Context, tasks []ledger.Task, outcomes []dispatch.Outcome, learnings string) ([]Resolution, error) {
	byID := make(map[domain.TaskID]ledger.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	resolutions := make([]Resolution, 0, len(outcomes))
	for _, o := range outcomes {
		t, ok := byID[o.TaskID]
		if !ok {
			return nil, errors.NewLedgerTaskUnknownError(string(o.TaskID))
		}
		res, err := m.resolve(ctx, t, o, learnings)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, res)
	}
	return resolutions, nil
}

// resolve drives one task to a terminal verdict: verify the first outcome,
// retry once escalated on failure, block on a second failure.
func (m *Manager) resolve(ctx context.Context, t ledger.Task, first dispatch.Outcome, learnings string) (Resolution, error) {
	res := Resolution{
		TaskID:      t.ID,
		Tier:        first.Tier,
		Attempts:    t.Attempts + 1,
		ScratchLogs: []string{first.ScratchLog},
	}

	firstDetail, ok := m.evaluate(ctx, t, first)
	if ok {
		res.Status = domain.StatusCompleted
		res.CommitRef = first.Result.CommitRef
		res.Learnings = first.Result.Learnings
		return res, nil
	}

	escalated := first.Tier.Escalate()
	m.logger.Warn("task failed, retrying escalated",
		"task_id", t.ID,
		"failed_tier", first.Tier.String(),
		"retry_tier", escalated.String(),
		"detail", firstDetail,
	)

	retryOutcomes, err := m.dispatcher.Dispatch(ctx, []ledger.Task{t},
		map[domain.TaskID]tier.Tier{t.ID: escalated}, learnings)
	if err != nil {
		return Resolution{}, err
	}
	second := retryOutcomes[0]

	res.Tier = escalated
	res.Attempts++
	res.ScratchLogs = append(res.ScratchLogs, second.ScratchLog)

	secondDetail, ok := m.evaluate(ctx, t, second)
	if ok {
		res.Status = domain.StatusCompleted
		res.CommitRef = second.Result.CommitRef
		res.Learnings = second.Result.Learnings
		return res, nil
	}

	res.Status = domain.StatusBlocked
	res.ErrorDetail = fmt.Sprintf("attempt 1 (%s): %s; attempt 2 (%s): %s",
		first.Tier, firstDetail, escalated, secondDetail)
	if second.Result != nil {
		res.Learnings = second.Result.Learnings
	}
	m.logger.WithError(errors.New(errors.ErrCodeRunTaskBlocked, res.ErrorDetail)).
		Error("task blocked after escalated retry", "task_id", t.ID)
	return res, nil
}

// evaluate decides whether one outcome is a genuine success. A completed
// claim without a commit ref, or one whose verify command exits non-zero,
// counts as a verification failure.
func (m *Manager) evaluate(ctx context.Context, t ledger.Task, o dispatch.Outcome) (detail string, ok bool) {
	if o.Err != nil {
		return o.Err.Error(), false
	}
	if !o.Result.Completed() {
		detail := strings.TrimSpace(o.Result.ErrorDetail)
		if detail == "" {
			detail = fmt.Sprintf("worker reported status %q", o.Result.FinalStatus)
		}
		return detail, false
	}
	if o.Result.CommitRef == "" {
		return "worker claimed completion without a commit ref", false
	}

	vr, err := m.verifier.Verify(ctx, t.VerifyCommand)
	if err != nil {
		return fmt.Sprintf("verify command could not run: %v", err), false
	}
	if !vr.Success() {
		verr := errors.NewVerifyFailedError(string(t.ID), vr.ExitCode, vr.Stderr)
		return fmt.Sprintf("%s; %s", verr.Message, vr.Detail()), false
	}
	return "", true
}

// HaltCheck returns a systemic halt error when the number of tasks blocked in
// this run exceeds the configured threshold. A run with exactly the threshold
// blocked still finishes and reports them. Blocked statuses are merged before
// the halt so the operator report matches the persisted state.
func (m *Manager) HaltCheck(blockedThisRun int) error {
	if blockedThisRun > m.maxBlocked {
		return errors.NewSystemicHaltError(blockedThisRun, m.maxBlocked)
	}
	return nil
}

// CountBlocked counts blocked resolutions.
func CountBlocked(resolutions []Resolution) int {
	n := 0
	for _, r := range resolutions {
		if r.Blocked() {
			n++
		}
	}
	return n
}
