package queue

import (
	"context"
	"log"
	"time"

	"github.com/playrps/backend/internal/protocol"
)

// MatchmakingRequest is the internal request channel's payload (spec.md
// §4.2 "Inputs (internal queue messages)"). It is this package's InternalRQ
// type parameter for session.Serve.
type MatchmakingRequest struct {
	JoinQueue  *Player
	LeaveQueue *protocol.Id
}

// Service owns the queue State and drives the periodic pairing tick plus the
// single consumer of MatchmakingRequest. One Service per MM process.
type Service struct {
	state      *State
	gameClient GameClient
	store      *Store

	gamesToWin        uint8
	createGameRetries int
	createGameBackoff time.Duration
	gameServerAddr    string
}

// NewService wires a Service from its collaborators.
func NewService(gameClient GameClient, store *Store, gamesToWin uint8, retries int, backoff time.Duration, gameServerAddr string) *Service {
	return &Service{
		state:             NewState(),
		gameClient:        gameClient,
		store:             store,
		gamesToWin:        gamesToWin,
		createGameRetries: retries,
		createGameBackoff: backoff,
		gameServerAddr:    gameServerAddr,
	}
}

// HandleRequests consumes internal queue messages until ctx is cancelled or
// requests is closed.
func (s *Service) HandleRequests(ctx context.Context, requests <-chan MatchmakingRequest) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			s.handleOne(req)
		}
	}
}

func (s *Service) handleOne(req MatchmakingRequest) {
	switch {
	case req.JoinQueue != nil:
		s.state.JoinQueue(*req.JoinQueue)
		select {
		case req.JoinQueue.PushSink <- protocol.JoinedQueue():
		default:
			log.Printf("[QUEUE] push sink full for %s, dropping JoinedQueue ack", req.JoinQueue.Id)
		}
	case req.LeaveQueue != nil:
		s.state.LeaveQueue(*req.LeaveQueue)
	}
}

// RunPairingTick runs the pairing tick every period until ctx is cancelled.
func (s *Service) RunPairingTick(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pairingTick(ctx)
		}
	}
}

// pairingTick implements spec.md §4.2's single-holder FIFO pairing walk:
// drain the queue into a working buffer, walk it front-to-back keeping one
// unmatched "holder" slot; pairing the holder with the next arrival. Any
// leftover holder is restored to the queue head.
func (s *Service) pairingTick(ctx context.Context) {
	working := s.state.drain()
	if len(working) == 0 {
		return
	}

	var holder *Player
	var pairs [][2]Player
	for i := range working {
		current := working[i]
		if holder == nil {
			holder = &current
			continue
		}
		pairs = append(pairs, [2]Player{*holder, current})
		holder = nil
	}
	if holder != nil {
		s.state.restoreToHead(*holder)
	}

	for _, pair := range pairs {
		s.announcePair(ctx, pair)
	}
}

func (s *Service) announcePair(ctx context.Context, pair [2]Player) {
	players := [2]protocol.Id{pair[0].Id, pair[1].Id}
	gameID, err := createGameWithRetry(ctx, s.gameClient, players, s.gamesToWin, s.createGameRetries, s.createGameBackoff)
	if err != nil {
		log.Printf("[QUEUE] create_game exhausted retries for %s/%s: %v — re-enqueueing", players[0], players[1], err)
		s.state.appendToTail(pair[0], pair[1])
		return
	}

	s.state.remove(pair[0].Id)
	s.state.remove(pair[1].Id)
	s.store.RecordMatch(gameID, players, s.gamesToWin)

	for _, p := range pair {
		select {
		case p.PushSink <- protocol.MatchFound(gameID, s.gameServerAddr):
		default:
			log.Printf("[QUEUE] push sink full/closed for %s announcing match %s", p.Id, gameID)
		}
	}
}
