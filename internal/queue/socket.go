package queue

import (
	"context"

	"github.com/playrps/backend/internal/protocol"
)

// Socket implements session.Handler[protocol.QueueClientRequest,
// protocol.QueueClientResponse, MatchmakingRequest] for the matchmaking
// queue socket, grounded directly on the original's queue_socket.rs
// respond_to_request/drop_after_send pair.
type Socket struct{}

// NewSocket returns the (stateless) queue socket handler.
func NewSocket() *Socket { return &Socket{} }

func (Socket) RespondToRequest(
	_ context.Context,
	userID protocol.Id,
	req protocol.QueueClientRequest,
	pushSink chan<- protocol.QueueClientResponse,
	internalTx chan<- MatchmakingRequest,
) *protocol.QueueClientResponse {
	switch req.Type {
	case protocol.QueueRequestJoinQueue:
		internalTx <- MatchmakingRequest{JoinQueue: &Player{Id: userID, PushSink: pushSink}}
		return nil

	case protocol.QueueRequestPing:
		resp := protocol.QueuePing(0)
		return &resp

	case protocol.QueueRequestGetServer:
		resp := protocol.JoinServer()
		return &resp
	}
	return nil
}

func (Socket) DropAfterSend(resp protocol.QueueClientResponse) bool {
	switch resp.ResponseType() {
	case protocol.QueueResponseMatchFound, protocol.QueueResponseJoinServer:
		return true
	default:
		return false
	}
}
