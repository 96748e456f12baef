package wave

import (
	"github.com/felixgeelhaar/wavemaker/internal/conflict"
	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
)

// Wave is an ordered group of task IDs that may execute concurrently. Waves
// are recomputed from the ledger on every orchestrator invocation and never
// persisted.
type Wave struct {
	Number  int
	TaskIDs []domain.TaskID
}

// Size returns the number of tasks in the wave.
func (w Wave) Size() int {
	return len(w.TaskIDs)
}

// Plan is the full partition of incomplete tasks into waves.
type Plan struct {
	Waves []Wave

	// NoParallelism is set when every wave has size 1 despite more than one
	// incomplete task: the task set degenerates to fully sequential
	// execution. This is a reportable condition, not an error.
	NoParallelism bool
}

// TotalTasks returns the number of tasks across all waves.
func (p Plan) TotalTasks() int {
	n := 0
	for _, w := range p.Waves {
		n += w.Size()
	}
	return n
}

// Build partitions the incomplete tasks of the set into waves using a greedy
// single pass per wave: walk the pending pool in declared order and admit a
// task when its footprint and closure are disjoint from everything already
// admitted. Skipped tasks stay in the pool for the next wave. Deterministic
// for a fixed task list and file state.
func Build(set *ledger.TaskSet, analyzer *conflict.Analyzer) Plan {
	pool := set.Incomplete()
	footprints := analyzer.Footprints(pool)

	byID := make(map[domain.TaskID]*conflict.Footprint, len(footprints))
	for _, fp := range footprints {
		byID[fp.TaskID] = fp
	}

	var plan Plan
	for len(pool) > 0 {
		wave := Wave{Number: len(plan.Waves) + 1}
		var admitted []*conflict.Footprint
		var remaining []ledger.Task

		for _, t := range pool {
			fp := byID[t.ID]
			if conflictsWithAny(analyzer, fp, admitted) {
				remaining = append(remaining, t)
				continue
			}
			wave.TaskIDs = append(wave.TaskIDs, t.ID)
			admitted = append(admitted, fp)
		}

		plan.Waves = append(plan.Waves, wave)
		pool = remaining
	}

	if plan.TotalTasks() > 1 && len(plan.Waves) == plan.TotalTasks() {
		plan.NoParallelism = true
	}
	return plan
}

func conflictsWithAny(analyzer *conflict.Analyzer, fp *conflict.Footprint, admitted []*conflict.Footprint) bool {
	for _, other := range admitted {
		if analyzer.Conflicts(fp, other) {
			return true
		}
	}
	return false
}
