package arena

import (
	"context"

	"github.com/playrps/backend/internal/protocol"
)

// Socket implements session.Handler[protocol.GameClientRequest,
// protocol.GameClientResponse, GameRequest] for the arena game socket. Each
// inbound request is simply forwarded onto the process-wide router channel
// (spec.md §4.3 "Router task. Consumes a single process-wide channel fed by
// the game socket sessions"); the phase machine itself lives entirely in the
// per-match actor.
type Socket struct{}

// NewSocket returns the (stateless) game socket handler.
func NewSocket() *Socket { return &Socket{} }

func (Socket) RespondToRequest(
	_ context.Context,
	userID protocol.Id,
	req protocol.GameClientRequest,
	pushSink chan<- protocol.GameClientResponse,
	internalTx chan<- GameRequest,
) *protocol.GameClientResponse {
	internalTx <- GameRequest{Player: Player{Id: userID, PushSink: pushSink}, Body: req}
	return nil
}

func (Socket) DropAfterSend(resp protocol.GameClientResponse) bool {
	return resp.ResponseType() == protocol.GameResponseMatchResult
}
