package canvas

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestHistoryKeepsReceiptOrder(t *testing.T) {
	store := NewStore(0)

	for i := 0; i < 5; i++ {
		store.Append("demo", json.RawMessage(fmt.Sprintf(`{"seq":%d}`, i)))
	}

	history := store.History("demo")
	if len(history) != 5 {
		t.Fatalf("expected 5 records, got %d", len(history))
	}
	for i, rec := range history {
		expected := fmt.Sprintf(`{"seq":%d}`, i)
		if string(rec) != expected {
			t.Fatalf("record %d out of order: %s", i, rec)
		}
	}
}

func TestHistoryUnknownRoomIsEmpty(t *testing.T) {
	store := NewStore(0)

	history := store.History("never-seen")
	if history == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(history) != 0 {
		t.Fatalf("expected no records, got %d", len(history))
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	store := NewStore(0)
	store.Append("demo", json.RawMessage(`{"a":1}`))

	history := store.History("demo")
	history[0] = json.RawMessage(`{"tampered":true}`)

	if string(store.History("demo")[0]) != `{"a":1}` {
		t.Fatal("mutating a returned history leaked into the store")
	}
}

func TestAppendEnforcesRoomCap(t *testing.T) {
	store := NewStore(3)

	for i := 0; i < 5; i++ {
		store.Append("demo", json.RawMessage(fmt.Sprintf(`{"seq":%d}`, i)))
	}

	history := store.History("demo")
	if len(history) != 3 {
		t.Fatalf("expected cap of 3 records, got %d", len(history))
	}
	if string(history[0]) != `{"seq":2}` {
		t.Fatalf("expected oldest records dropped, got %s first", history[0])
	}
	if string(history[2]) != `{"seq":4}` {
		t.Fatalf("expected newest record kept, got %s last", history[2])
	}
}

func TestClearDiscardsRecordsButKeepsRoom(t *testing.T) {
	store := NewStore(0)
	store.Append("demo", json.RawMessage(`{"a":1}`))

	store.Clear("demo")

	if got := store.Len("demo"); got != 0 {
		t.Fatalf("expected empty history after clear, got %d records", got)
	}
	rooms := store.Rooms()
	if len(rooms) != 1 || rooms[0] != "demo" {
		t.Fatalf("expected room entry to survive clear, got %v", rooms)
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	store := NewStore(0)
	store.Append("alpha", json.RawMessage(`{"room":"alpha"}`))
	store.Append("beta", json.RawMessage(`{"room":"beta"}`))

	store.Clear("alpha")

	if store.Len("alpha") != 0 {
		t.Fatal("alpha should be empty after clear")
	}
	if store.Len("beta") != 1 {
		t.Fatal("clearing alpha must not touch beta")
	}
}

func TestIdleRooms(t *testing.T) {
	store := NewStore(0)
	current := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.Append("old", json.RawMessage(`{}`))
	current = current.Add(2 * time.Hour)
	store.Append("fresh", json.RawMessage(`{}`))

	idle := store.IdleRooms(current.Add(-time.Hour))
	if len(idle) != 1 || idle[0] != "old" {
		t.Fatalf("expected only the old room to be idle, got %v", idle)
	}

	store.Drop("old")
	if len(store.History("old")) != 0 {
		t.Fatal("dropped room should have no history")
	}
}
