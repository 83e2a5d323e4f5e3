package executor

import (
	"sync"

	"suri/internal/types"
)

// statusTable is the executor-owned projection of in-flight progress,
// keyed by action id. The executor is the only writer; observers poll.
type statusTable struct {
	mu      sync.RWMutex
	entries map[string]types.ExecutionStatus
	// cancelled ids are bookkeeping only: a dispatch already in progress is
	// not interrupted, but its status will not advance further.
	cancelled map[string]bool
}

func newStatusTable() *statusTable {
	return &statusTable{
		entries:   make(map[string]types.ExecutionStatus),
		cancelled: make(map[string]bool),
	}
}

// set writes the status projection unless the action was cancelled.
func (t *statusTable) set(actionID string, stage types.ExecutionStage, percent int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled[actionID] {
		return
	}
	t.entries[actionID] = types.ExecutionStatus{Stage: stage, Percent: percent, Message: message}
}

func (t *statusTable) get(actionID string) (types.ExecutionStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.entries[actionID]
	return s, ok
}

// cancel removes the entry and, for an in-flight action, blocks further
// writes for this id. Untracked ids are a no-op: marking them would poison a
// later execution under the same id. A finished action is just dropped from
// tracking.
func (t *statusTable) cancel(actionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[actionID]
	if !ok {
		return false
	}
	delete(t.entries, actionID)
	if entry.Stage != types.StageCompleted && entry.Stage != types.StageFailed {
		t.cancelled[actionID] = true
	}
	return true
}

func (t *statusTable) isCancelled(actionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cancelled[actionID]
}

// clear drops terminal bookkeeping for an action once its result is final.
func (t *statusTable) clearCancelled(actionID string) {
	t.mu.Lock()
	delete(t.cancelled, actionID)
	t.mu.Unlock()
}
