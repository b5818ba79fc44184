package arena

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/playrps/backend/internal/protocol"
)

// toActorCapacity is the bounded channel capacity for a match's inbox
// (spec.md §4.3, §4.5: "bounded to_actor channel of capacity 100").
const toActorCapacity = 100

// ErrPlayerAlreadyAssigned is returned by CreateGame when either requested
// player is already assigned to a live match (spec.md §4.3: "409 CONFLICT").
var ErrPlayerAlreadyAssigned = fmt.Errorf("arena: player already assigned to a match")

// matchRecord is spec.md §3 MatchRecord: {match_id, players, to_actor_sink}.
// The actor_handle is the goroutine itself, observed via actor.done.
type matchRecord struct {
	players [2]protocol.Id
	toActor chan GameRequest
	actor   *actor
}

// Manager owns games and playerAssignment (spec.md §4.3), guarded by a
// single mutex acquired narrowly — no I/O while held.
type Manager struct {
	ctx context.Context

	mu         sync.Mutex
	games      map[protocol.Id]*matchRecord
	assignment map[protocol.Id]protocol.Id
}

// NewManager returns an empty Manager. ctx is passed to every spawned actor
// so process shutdown terminates all of them (the REDESIGN FLAG substitute
// for a cloned broadcast::Receiver per actor — ctx.Done() already broadcasts).
func NewManager(ctx context.Context) *Manager {
	return &Manager{
		ctx:        ctx,
		games:      make(map[protocol.Id]*matchRecord),
		assignment: make(map[protocol.Id]protocol.Id),
	}
}

// CreateGame allocates a fresh match id, records both player assignments,
// and spawns the actor goroutine. Returns ErrPlayerAlreadyAssigned if either
// player is already assigned elsewhere.
func (m *Manager) CreateGame(players [2]protocol.Id, gamesToWin uint8) (protocol.Id, error) {
	m.mu.Lock()
	if _, ok := m.assignment[players[0]]; ok {
		m.mu.Unlock()
		return protocol.Id{}, ErrPlayerAlreadyAssigned
	}
	if _, ok := m.assignment[players[1]]; ok {
		m.mu.Unlock()
		return protocol.Id{}, ErrPlayerAlreadyAssigned
	}

	matchID := protocol.NewId()
	toActor := make(chan GameRequest, toActorCapacity)
	a := newActor(matchID, players, gamesToWin, toActor)
	rec := &matchRecord{players: players, toActor: toActor, actor: a}

	m.games[matchID] = rec
	m.assignment[players[0]] = matchID
	m.assignment[players[1]] = matchID
	m.mu.Unlock()

	go a.run(m.ctx)
	go m.watchCompletion(matchID, a)

	return matchID, nil
}

// watchCompletion reclaims games[matchID] and both player assignments once
// the actor terminates — the eager half of spec.md §4.3's cleanup
// requirement (Open Question 4 resolution).
func (m *Manager) watchCompletion(matchID protocol.Id, a *actor) {
	<-a.done
	m.mu.Lock()
	if rec, ok := m.games[matchID]; ok {
		delete(m.assignment, rec.players[0])
		delete(m.assignment, rec.players[1])
		delete(m.games, matchID)
	}
	m.mu.Unlock()
	log.Printf("[ARENA] match %s reclaimed after completion", matchID)
}

// GetGame returns the two players of matchID, or ok=false if unknown.
func (m *Manager) GetGame(matchID protocol.Id) (players [2]protocol.Id, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[matchID]
	if !ok {
		return [2]protocol.Id{}, false
	}
	return rec.players, true
}

// Forward routes one inbound client message to the actor owning player's
// match (spec.md §4.3 "Router task"). It blocks if the actor's inbox is
// momentarily full (bounded-channel backpressure), matching spec.md §7's
// Capacity policy, and logs+drops on a lookup miss or an actor that has
// already terminated.
func (m *Manager) Forward(player Player, body protocol.GameClientRequest) {
	m.mu.Lock()
	matchID, assigned := m.assignment[player.Id]
	if !assigned {
		m.mu.Unlock()
		log.Printf("[ARENA] no assignment for player %s, dropping message", player.Id)
		return
	}
	rec, present := m.games[matchID]
	m.mu.Unlock()
	if !present {
		log.Printf("[ARENA] match %s not found for player %s (race with termination), dropping message", matchID, player.Id)
		return
	}

	select {
	case rec.toActor <- GameRequest{Player: player, Body: body}:
	case <-rec.actor.done:
		log.Printf("[ARENA] match %s actor already terminated, dropping message from %s", matchID, player.Id)
	case <-m.ctx.Done():
	}
}
