// pkg/transformer/unique.go
package transformer

import (
	"strconv"
	"sync"
)

// Key scopes uniqueness bookkeeping to one column of one table.
type Key struct {
	Table  string
	Column string
}

// Tracker guarantees that no two values issued for the same Key collide.
// State is scoped to a single run: create one Tracker per run and discard it
// afterwards so concurrent or repeated runs never share bookkeeping.
//
// Locking is per key. The registry mutex only guards the key map, so columns
// never contend with each other.
type Tracker struct {
	mu     sync.Mutex
	states map[Key]*keyState
}

type keyState struct {
	mu     sync.Mutex
	issued map[string]struct{}
	suffix int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[Key]*keyState)}
}

func (t *Tracker) forKey(key Key) *keyState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[key]
	if !ok {
		state = &keyState{issued: make(map[string]struct{})}
		t.states[key] = state
	}
	return state
}

// Reserve records candidate for key if it has not been issued before.
// It returns false on a collision, leaving the state unchanged.
func (t *Tracker) Reserve(key Key, candidate string) bool {
	state := t.forKey(key)
	state.mu.Lock()
	defer state.mu.Unlock()

	if _, taken := state.issued[candidate]; taken {
		return false
	}
	state.issued[candidate] = struct{}{}
	return true
}

// Ensure returns candidate if it is unused for key, otherwise candidate with
// a strictly increasing integer suffix appended until an unused value is
// found. The returned value is recorded as issued. Suffixes depend on arrival
// order, so callers needing deterministic output must feed rows in a stable
// order (table order, then row order as emitted by the dump source).
func (t *Tracker) Ensure(key Key, candidate string) string {
	state := t.forKey(key)
	state.mu.Lock()
	defer state.mu.Unlock()

	value := candidate
	for {
		if _, taken := state.issued[value]; !taken {
			state.issued[value] = struct{}{}
			return value
		}
		state.suffix++
		value = candidate + strconv.Itoa(state.suffix)
	}
}

// Issued returns how many values have been recorded for key.
func (t *Tracker) Issued(key Key) int {
	state := t.forKey(key)
	state.mu.Lock()
	defer state.mu.Unlock()
	return len(state.issued)
}
