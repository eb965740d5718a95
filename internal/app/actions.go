package app

import (
	"sync"

	"github.com/eletroorca/quote-service/internal/domain"
)

// ActionStatus is the lifecycle state of an asynchronous assistant action.
type ActionStatus string

const (
	ActionIdle      ActionStatus = "idle"
	ActionInFlight  ActionStatus = "in_flight"
	ActionSucceeded ActionStatus = "succeeded"
	ActionFailed    ActionStatus = "failed"
)

// actionState holds the tracked state of one named action.
type actionState struct {
	status     ActionStatus
	generation uint64
}

// actionTracker serializes assistant actions. Each named action moves
// through idle → in-flight → succeeded/failed, and carries a generation
// counter: a completion whose generation is no longer current is stale and
// must be discarded by the caller.
//
// Duplicate concurrent invocations of the same action are rejected with
// domain.ErrConflict; distinct actions run independently.
type actionTracker struct {
	mu      sync.Mutex
	actions map[string]*actionState
}

func newActionTracker() *actionTracker {
	return &actionTracker{actions: make(map[string]*actionState)}
}

// begin marks the action in-flight and returns its generation token.
func (t *actionTracker) begin(action string) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.actions[action]
	if !ok {
		state = &actionState{status: ActionIdle}
		t.actions[action] = state
	}

	if state.status == ActionInFlight {
		return 0, domain.NewConflictError(action, "already in flight")
	}

	state.generation++
	state.status = ActionInFlight

	return state.generation, nil
}

// finish records the action's outcome. It reports false when the given
// generation has been superseded, in which case the result must be
// discarded and the tracked state is left to the newer invocation.
func (t *actionTracker) finish(action string, generation uint64, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.actions[action]
	if !ok || state.generation != generation {
		return false
	}

	if err != nil {
		state.status = ActionFailed
	} else {
		state.status = ActionSucceeded
	}

	return true
}

// status returns the action's current lifecycle state.
func (t *actionTracker) status(action string) ActionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.actions[action]
	if !ok {
		return ActionIdle
	}

	return state.status
}
