package canvas

import (
	"encoding/json"
	"sync"
	"time"
)

// Record is one opaque unit of drawing data. The server never interprets its
// structure; whatever the drawing tool emits is stored and replayed verbatim.
type Record = json.RawMessage

// Store keeps the accumulated drawing history per room. It is the single
// source of truth for "current canvas state": every record relayed to a room
// is appended here first, so late joiners can reconstruct the canvas.
//
// Rooms are created lazily on first reference and retain records at most
// maxRecordsPerRoom deep; the oldest records are dropped past the cap. History
// survives every disconnect and is only removed by Clear, Drop or the idle
// sweep in the hub.
type Store struct {
	mu                sync.RWMutex
	rooms             map[string]*roomHistory
	maxRecordsPerRoom int

	now func() time.Time
}

type roomHistory struct {
	records      []Record
	lastActivity time.Time
}

const DefaultMaxRecordsPerRoom = 10000

func NewStore(maxRecordsPerRoom int) *Store {
	if maxRecordsPerRoom <= 0 {
		maxRecordsPerRoom = DefaultMaxRecordsPerRoom
	}
	return &Store{
		rooms:             make(map[string]*roomHistory),
		maxRecordsPerRoom: maxRecordsPerRoom,
		now:               time.Now,
	}
}

func (s *Store) room(roomID string) *roomHistory {
	h, ok := s.rooms[roomID]
	if !ok {
		h = &roomHistory{}
		s.rooms[roomID] = h
	}
	h.lastActivity = s.now()
	return h
}

// Ensure creates the room's history entry if absent. Joining a room counts as
// activity even before the first stroke.
func (s *Store) Ensure(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room(roomID)
}

// Append adds a record to the room's sequence, creating the room if needed.
// It never fails; malformed payloads are stored verbatim.
func (s *Store) Append(roomID string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.room(roomID)
	h.records = append(h.records, rec)
	if overflow := len(h.records) - s.maxRecordsPerRoom; overflow > 0 {
		h.records = h.records[overflow:]
	}
}

// History returns a copy of the room's record sequence in receipt order.
// Unknown rooms yield an empty (non-nil) slice, never an error.
func (s *Store) History(roomID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.rooms[roomID]
	if !ok {
		return []Record{}
	}
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Clear discards the room's sequence but keeps the room entry alive, so a
// cleared room is still distinguishable from one that was swept.
func (s *Store) Clear(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room(roomID).records = nil
}

// Drop removes the room entirely. Used by the idle sweep only.
func (s *Store) Drop(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

func (s *Store) Len(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.rooms[roomID]
	if !ok {
		return 0
	}
	return len(h.records)
}

func (s *Store) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		out = append(out, id)
	}
	return out
}

// IdleRooms lists rooms whose last activity is older than the cutoff.
func (s *Store) IdleRooms(cutoff time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for id, h := range s.rooms {
		if h.lastActivity.Before(cutoff) {
			out = append(out, id)
		}
	}
	return out
}
