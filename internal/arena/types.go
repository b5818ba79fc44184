// Package arena implements the game service: the game manager (creation,
// lookup, routing) and the per-match actor running the best-of-N rally phase
// machine (spec.md §4.3, §4.4). Grounded on the original's
// game-server/src/service/{manager,game_thread}.rs, generalized per spec.md
// to emit the full GameJoined/RoundResult/MatchResult notification set the
// original's incomplete reference left as a todo!().
package arena

import (
	"github.com/playrps/backend/internal/protocol"
)

// Player is a connected match participant: an id and the sink reaching its
// live session (spec.md §3 Player, reused from the queue form).
type Player struct {
	Id       protocol.Id
	PushSink chan<- protocol.GameClientResponse
}

// GameRequest is the actor's inbound message: a player plus the body they
// sent (spec.md §4.4 "a private from_socket receiver carrying
// GameRequest{player, body}").
type GameRequest struct {
	Player Player
	Body   protocol.GameClientRequest
}
