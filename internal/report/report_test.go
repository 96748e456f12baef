package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/orchestrator"
	"github.com/felixgeelhaar/wavemaker/internal/tier"
)

func sampleSet() *ledger.TaskSet {
	return &ledger.TaskSet{
		Version:     "1",
		Project:     "demo",
		LastUpdated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Tasks: []ledger.Task{
			{ID: "a", Title: "first", Complexity: 2, Status: domain.StatusCompleted, Attempts: 1, CommitRef: "abc"},
			{ID: "b", Title: "second", Complexity: 4, Status: domain.StatusBlocked, Attempts: 2,
				ErrorDetail: "attempt 1 (baseline): boom; attempt 2 (elevated): boom"},
			{ID: "c", Title: "third", Complexity: 1, Status: domain.StatusPending},
		},
	}
}

func TestWriteStatusTable(t *testing.T) {
	var b strings.Builder
	WriteStatusTable(&b, sampleSet())
	out := b.String()

	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "blocked")
	assert.Contains(t, out, "1 pending")
}

func TestWritePlan(t *testing.T) {
	var b strings.Builder
	WritePlan(&b, &orchestrator.PlanPreview{
		Waves: []orchestrator.WavePreview{
			{Number: 1, Tasks: []orchestrator.TaskPreview{
				{ID: "a", Tier: tier.Baseline},
				{ID: "b", Tier: tier.Maximal},
			}},
			{Number: 2, Tasks: []orchestrator.TaskPreview{
				{ID: "c", Tier: tier.Elevated},
			}},
		},
	})
	out := b.String()

	assert.Contains(t, out, "Wave 1 (2 task(s))")
	assert.Contains(t, out, "Wave 2 (1 task(s))")
	assert.Contains(t, out, "tier=maximal")
}

func TestWritePlanEmpty(t *testing.T) {
	var b strings.Builder
	WritePlan(&b, &orchestrator.PlanPreview{})
	assert.Contains(t, b.String(), "Nothing to do")
}

func TestWritePlanNoParallelism(t *testing.T) {
	var b strings.Builder
	WritePlan(&b, &orchestrator.PlanPreview{
		Waves: []orchestrator.WavePreview{
			{Number: 1, Tasks: []orchestrator.TaskPreview{{ID: "a"}}},
			{Number: 2, Tasks: []orchestrator.TaskPreview{{ID: "b"}}},
		},
		NoParallelism: true,
	})
	assert.Contains(t, b.String(), "No parallelism available")
}

func TestWriteSummary(t *testing.T) {
	var b strings.Builder
	WriteSummary(&b, &orchestrator.Summary{
		WavesRun:    3,
		Completed:   5,
		Blocked:     1,
		ArchivePath: "",
	})
	out := b.String()

	assert.Contains(t, out, "Waves run: 3")
	assert.Contains(t, out, "5")
	assert.Contains(t, out, "Blocked")
}

func TestWriteSummaryAlreadyDone(t *testing.T) {
	var b strings.Builder
	WriteSummary(&b, &orchestrator.Summary{AlreadyDone: true})
	assert.Contains(t, b.String(), "Nothing to do")
}

func TestWriteBlockedReport(t *testing.T) {
	var b strings.Builder
	WriteBlockedReport(&b, sampleSet())
	out := b.String()

	assert.Contains(t, out, "Blocked tasks (1)")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "attempt 2 (elevated)")
}

func TestWriteBlockedReportEmpty(t *testing.T) {
	var b strings.Builder
	set := sampleSet()
	set.Tasks[1].Status = domain.StatusCompleted
	WriteBlockedReport(&b, set)
	assert.Empty(t, b.String())
}
