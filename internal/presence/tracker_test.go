package presence

import (
	"testing"
	"time"
)

func TestAbsentUntilSeen(t *testing.T) {
	tracker := NewTracker()

	if state := tracker.State("demo", "alice", 0); state != Absent {
		t.Fatalf("expected absent before any activity, got %s", state)
	}

	tracker.Activate("demo", "alice")
	if state := tracker.State("demo", "alice", 0); state != Active {
		t.Fatalf("expected active after join, got %s", state)
	}
	if _, ok := tracker.Position("demo", "alice"); ok {
		t.Fatal("join alone should not report a position")
	}
}

func TestTouchRecordsPosition(t *testing.T) {
	tracker := NewTracker()

	tracker.Touch("demo", "alice", 5, 7)

	pos, ok := tracker.Position("demo", "alice")
	if !ok {
		t.Fatal("expected a position after a cursor move")
	}
	if pos.X != 5 || pos.Y != 7 {
		t.Fatalf("unexpected position: %+v", pos)
	}

	tracker.Touch("demo", "alice", 9, 1)
	pos, _ = tracker.Position("demo", "alice")
	if pos.X != 9 || pos.Y != 1 {
		t.Fatalf("expected last write to win, got %+v", pos)
	}
}

func TestStaleness(t *testing.T) {
	tracker := NewTracker()
	current := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return current }

	tracker.Touch("demo", "alice", 1, 1)

	current = current.Add(10 * time.Second)
	if state := tracker.State("demo", "alice", 5*time.Second); state != Absent {
		t.Fatalf("expected stale cursor to read absent, got %s", state)
	}
	if state := tracker.State("demo", "alice", 0); state != Active {
		t.Fatalf("zero threshold should never expire, got %s", state)
	}

	tracker.Touch("demo", "alice", 2, 2)
	if state := tracker.State("demo", "alice", 5*time.Second); state != Active {
		t.Fatalf("expected refresh to reactivate, got %s", state)
	}
}

func TestRemoveAndRoomScoping(t *testing.T) {
	tracker := NewTracker()

	tracker.Touch("alpha", "alice", 1, 1)
	tracker.Touch("beta", "alice", 2, 2)

	tracker.Remove("alpha", "alice")

	if state := tracker.State("alpha", "alice", 0); state != Absent {
		t.Fatal("expected removal in alpha")
	}
	if state := tracker.State("beta", "alice", 0); state != Active {
		t.Fatal("removal in alpha must not affect beta")
	}
}

func TestSharedNameCollapses(t *testing.T) {
	tracker := NewTracker()

	tracker.Touch("demo", "alice", 1, 1)
	tracker.Touch("demo", "alice", 3, 3)

	pos, _ := tracker.Position("demo", "alice")
	if pos.X != 3 || pos.Y != 3 {
		t.Fatalf("name collision should collapse to one entity, got %+v", pos)
	}
}
