package queue

import (
	"testing"

	"github.com/playrps/backend/internal/protocol"
)

func TestJoinQueueIsIdempotent(t *testing.T) {
	s := NewState()
	id := protocol.NewId()
	sink := make(chan protocol.QueueClientResponse, 1)

	s.JoinQueue(Player{Id: id, PushSink: sink})
	s.JoinQueue(Player{Id: id, PushSink: sink})

	working := s.drain()
	if len(working) != 1 {
		t.Fatalf("expected exactly one queue entry after duplicate JoinQueue, got %d", len(working))
	}
	if _, present := s.members[id]; !present {
		t.Errorf("expected %s to remain a member after drain", id)
	}
}

func TestLeaveQueueRemovesFromBothStructures(t *testing.T) {
	s := NewState()
	id := protocol.NewId()
	sink := make(chan protocol.QueueClientResponse, 1)

	s.JoinQueue(Player{Id: id, PushSink: sink})
	s.LeaveQueue(id)

	if _, present := s.members[id]; present {
		t.Errorf("expected %s to be removed from the membership set", id)
	}
	working := s.drain()
	if len(working) != 0 {
		t.Errorf("expected an empty queue after LeaveQueue, got %d entries", len(working))
	}
}

func TestLeaveQueueOfAbsentIdIsANoop(t *testing.T) {
	s := NewState()
	s.LeaveQueue(protocol.NewId()) // must not panic
}

func TestRestoreToHeadPreservesOrder(t *testing.T) {
	s := NewState()
	a, b, c := protocol.NewId(), protocol.NewId(), protocol.NewId()
	sink := make(chan protocol.QueueClientResponse, 1)
	s.JoinQueue(Player{Id: c, PushSink: sink})

	s.restoreToHead(Player{Id: a, PushSink: sink}, Player{Id: b, PushSink: sink})

	working := s.drain()
	if len(working) != 3 || working[0].Id != a || working[1].Id != b || working[2].Id != c {
		t.Fatalf("unexpected order after restoreToHead: %+v", working)
	}
}

func TestAppendToTailPreservesOrder(t *testing.T) {
	s := NewState()
	a, b := protocol.NewId(), protocol.NewId()
	sink := make(chan protocol.QueueClientResponse, 1)
	s.JoinQueue(Player{Id: a, PushSink: sink})

	s.appendToTail(Player{Id: b, PushSink: sink})

	working := s.drain()
	if len(working) != 2 || working[0].Id != a || working[1].Id != b {
		t.Fatalf("unexpected order after appendToTail: %+v", working)
	}
}
