package arena

import (
	"context"
	"log"

	"github.com/playrps/backend/internal/protocol"
)

// phase mirrors spec.md §3 MatchState.phase: WaitingForPlayers{connected},
// PendingMoves{moves}, Done.
type phase int

const (
	phaseWaitingForPlayers phase = iota
	phasePendingMoves
	phaseDone
)

type playerState struct {
	pushSink chan<- protocol.GameClientResponse
	wins     uint8
}

// actor runs the phase machine for exactly one match, alone on its own
// goroutine — this is the REDESIGN FLAG realization for per-match state: a
// single owner, no mutex, no shared access from anywhere else.
type actor struct {
	matchID    protocol.Id
	configured [2]protocol.Id
	gamesToWin uint8

	phase        phase
	connected    map[protocol.Id]struct{}
	moves        map[protocol.Id]protocol.Move
	players      map[protocol.Id]*playerState
	roundsPlayed uint8

	inbox <-chan GameRequest
	done  chan struct{}
}

func newActor(matchID protocol.Id, players [2]protocol.Id, gamesToWin uint8, inbox <-chan GameRequest) *actor {
	return &actor{
		matchID:    matchID,
		configured: players,
		gamesToWin: gamesToWin,
		phase:      phaseWaitingForPlayers,
		connected:  make(map[protocol.Id]struct{}, 2),
		moves:      make(map[protocol.Id]protocol.Move, 2),
		players:    make(map[protocol.Id]*playerState, 2),
		inbox:      inbox,
		done:       make(chan struct{}),
	}
}

// isConfigured reports whether id is one of this match's two assigned
// players (spec.md §4.4: JoinGame from an id outside config.players is
// dropped).
func (a *actor) isConfigured(id protocol.Id) bool {
	return id == a.configured[0] || id == a.configured[1]
}

// run drives the actor until it reaches Done or ctx is cancelled (process
// shutdown), then closes done so the owning GameManager can reclaim this
// match's entries (spec.md §4.3 Lifecycle, Open Question 4 resolution: eager
// completion-watcher cleanup).
func (a *actor) run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-a.inbox:
			if !ok {
				return
			}
			a.handle(req)
			if a.phase == phaseDone {
				return
			}
		}
	}
}

func (a *actor) handle(req GameRequest) {
	switch a.phase {
	case phaseWaitingForPlayers:
		a.handleWaitingForPlayers(req)
	case phasePendingMoves:
		a.handlePendingMoves(req)
	case phaseDone:
		log.Printf("[ARENA] match %s: dropping message after completion", a.matchID)
	}
}

func (a *actor) handleWaitingForPlayers(req GameRequest) {
	if req.Body.Type != protocol.GameRequestJoinGame {
		log.Printf("[ARENA] match %s: non-JoinGame message in WaitingForPlayers phase", a.matchID)
		return
	}
	playerID := req.Player.Id
	if !a.isConfigured(playerID) {
		log.Printf("[ARENA] match %s: JoinGame from unassigned player %s", a.matchID, playerID)
		return
	}
	if _, already := a.connected[playerID]; already {
		log.Printf("[ARENA] match %s: duplicate JoinGame from %s", a.matchID, playerID)
		return
	}

	a.players[playerID] = &playerState{pushSink: req.Player.PushSink}
	a.connected[playerID] = struct{}{}
	a.send(req.Player.PushSink, playerID, protocol.GameJoined())

	if len(a.connected) == 2 {
		for id, p := range a.players {
			a.send(p.pushSink, id, protocol.PendingMove())
		}
		a.phase = phasePendingMoves
	}
}

func (a *actor) handlePendingMoves(req GameRequest) {
	if req.Body.Type != protocol.GameRequestMove {
		log.Printf("[ARENA] match %s: non-Move message in PendingMoves phase", a.matchID)
		return
	}
	playerID := req.Player.Id
	if _, already := a.moves[playerID]; already {
		log.Printf("[ARENA] match %s: duplicate move from %s", a.matchID, playerID)
		return
	}

	a.moves[playerID] = req.Body.Value
	if len(a.moves) < 2 {
		return
	}

	a.evaluateRound()
}

// evaluateRound runs spec.md §4.4's "Round evaluation (when both moves
// present)" once this match's two configured players have both moved.
func (a *actor) evaluateRound() {
	idA, idB := a.configured[0], a.configured[1]
	moveA, moveB := a.moves[idA], a.moves[idB]

	aWon, decisive := protocol.Beats(moveA, moveB)
	a.moves = make(map[protocol.Id]protocol.Move, 2)

	if !decisive {
		// Draw: increment rounds_played, no RoundResult, stay in PendingMoves.
		a.roundsPlayed++
		return
	}

	winner, loser := idB, idA
	winnerMove, loserMove := moveB, moveA
	if aWon {
		winner, loser = idA, idB
		winnerMove, loserMove = moveA, moveB
	}
	a.players[winner].wins++
	a.roundsPlayed++

	a.send(a.players[winner].pushSink, winner, protocol.RoundResult(protocol.Win, loserMove))
	a.send(a.players[loser].pushSink, loser, protocol.RoundResult(protocol.Loss, winnerMove))

	if a.players[winner].wins >= a.gamesToWin {
		a.send(a.players[winner].pushSink, winner, protocol.MatchResult(protocol.Win, a.players[winner].wins, a.roundsPlayed))
		a.send(a.players[loser].pushSink, loser, protocol.MatchResult(protocol.Loss, a.players[loser].wins, a.roundsPlayed))
		a.phase = phaseDone
		return
	}
}

// send delivers resp to sink without blocking, logging (not failing) when the
// channel is full. Push sinks are never closed, so a departed session's sink
// simply fills up —
// spec.md §7: "Channel-send errors from internal services to a player's
// sink are non-fatal and logged."
func (a *actor) send(sink chan<- protocol.GameClientResponse, playerID protocol.Id, resp protocol.GameClientResponse) {
	select {
	case sink <- resp:
	default:
		log.Printf("[ARENA] match %s: push sink full/closed for %s, dropping %s", a.matchID, playerID, resp.ResponseType())
	}
}
