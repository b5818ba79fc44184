// Package queue implements the matchmaking service: the FIFO pairing queue,
// the periodic pairing tick, the HTTP result-ingest surface, and the socket
// handler that plugs into the generic session framework. Grounded on the
// teacher's internal/game/manager.go's single-mutex, narrow-scope style
// (REDESIGN FLAG in spec.md §9: no I/O under lock, no two locks held at once).
package queue

import (
	"log"
	"sync"

	"github.com/playrps/backend/internal/protocol"
)

// Player is one FIFO entry: an enqueued user and the sink that reaches its
// live session (spec.md §3 Player, queue form).
type Player struct {
	Id       protocol.Id
	PushSink chan<- protocol.QueueClientResponse
}

// State is the matchmaking queue: a FIFO of Players plus a membership set.
// Invariant: set membership ⇔ queue membership; no Id appears twice. All
// mutation happens through JoinQueue/LeaveQueue/drain/restoreToHead/
// appendToTail/remove, each of which holds mu
// for the duration of a single operation only — no I/O while locked.
type State struct {
	mu      sync.Mutex
	fifo    []Player
	members map[protocol.Id]struct{}
}

// NewState returns an empty queue.
func NewState() *State {
	return &State{members: make(map[protocol.Id]struct{})}
}

// JoinQueue enqueues player if not already present. Already-enqueued is a
// no-op with a warning (not an error), per spec.md §4.2.
func (s *State) JoinQueue(player Player) {
	s.mu.Lock()
	_, already := s.members[player.Id]
	if !already {
		s.members[player.Id] = struct{}{}
		s.fifo = append(s.fifo, player)
	}
	s.mu.Unlock()

	if already {
		log.Printf("[QUEUE] join_queue: %s already enqueued", player.Id)
	}
}

// LeaveQueue removes id from the queue if present; otherwise warns.
func (s *State) LeaveQueue(id protocol.Id) {
	s.mu.Lock()
	_, present := s.members[id]
	if present {
		delete(s.members, id)
		for i, p := range s.fifo {
			if p.Id == id {
				s.fifo = append(s.fifo[:i], s.fifo[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !present {
		log.Printf("[QUEUE] leave_queue: %s not enqueued", id)
	}
}

// drain atomically takes the entire current FIFO, leaving the queue empty and
// the membership set untouched (callers must remove matched members
// themselves; unmatched members stay in the set and are restored to the
// queue head by caller via restoreToHead).
func (s *State) drain() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := s.fifo
	s.fifo = nil
	return taken
}

// restoreToHead puts players back at the head of the FIFO, preserving their
// relative order. Used for the single leftover "holder" after a pairing tick.
func (s *State) restoreToHead(players ...Player) {
	if len(players) == 0 {
		return
	}
	s.mu.Lock()
	s.fifo = append(append([]Player{}, players...), s.fifo...)
	s.mu.Unlock()
}

// appendToTail puts players back at the tail of the FIFO, membership already
// intact (they were never removed from the set). Used to re-enqueue a pair
// whose CreateGame call exhausted its retries (spec.md §7 RPC failure
// policy: "re-enqueue both players at the tail of the MM queue").
func (s *State) appendToTail(players ...Player) {
	if len(players) == 0 {
		return
	}
	s.mu.Lock()
	s.fifo = append(s.fifo, players...)
	s.mu.Unlock()
}

// remove drops id from the membership set only (the FIFO entry has already
// been popped by drain). Called once a drained player is successfully paired.
func (s *State) remove(id protocol.Id) {
	s.mu.Lock()
	delete(s.members, id)
	s.mu.Unlock()
}
