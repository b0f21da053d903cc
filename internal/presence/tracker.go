package presence

import (
	"sync"
	"time"
)

// State describes a participant's cursor presence. Absence here is advisory:
// the server never enforces a liveness timeout, clients decide when a stale
// cursor marker should be hidden.
type State int

const (
	Absent State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "absent"
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type key struct {
	room string
	name string
}

type entry struct {
	pos      Position
	hasPos   bool
	lastSeen time.Time
}

// Tracker keeps the last known cursor position per (room, displayName).
// Display names are client-supplied and not unique; two participants sharing
// a name collapse into one presence entity.
type Tracker struct {
	mu      sync.RWMutex
	entries map[key]*entry

	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[key]*entry),
		now:     time.Now,
	}
}

// Activate marks a participant present without a known position yet. Used on
// join, before the first cursor move arrives.
func (t *Tracker) Activate(room, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{room, name}
	e, ok := t.entries[k]
	if !ok {
		e = &entry{}
		t.entries[k] = e
	}
	e.lastSeen = t.now()
}

// Touch records a cursor move, refreshing the last-seen timestamp.
func (t *Tracker) Touch(room, name string, x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{room, name}
	e, ok := t.entries[k]
	if !ok {
		e = &entry{}
		t.entries[k] = e
	}
	e.pos = Position{X: x, Y: y}
	e.hasPos = true
	e.lastSeen = t.now()
}

// Position returns the last known cursor position, if one was ever reported.
func (t *Tracker) Position(room, name string) (Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[key{room, name}]
	if !ok || !e.hasPos {
		return Position{}, false
	}
	return e.pos, true
}

// Remove drops the participant on explicit disconnect.
func (t *Tracker) Remove(room, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key{room, name})
}

// State reports Active while the participant was seen within staleAfter.
// A zero staleAfter means presence never goes stale on time alone.
func (t *Tracker) State(room, name string, staleAfter time.Duration) State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[key{room, name}]
	if !ok {
		return Absent
	}
	if staleAfter > 0 && t.now().Sub(e.lastSeen) > staleAfter {
		return Absent
	}
	return Active
}
