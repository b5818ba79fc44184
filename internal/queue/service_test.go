package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/playrps/backend/internal/protocol"
)

// fakeGameClient lets tests control CreateGame's success/failure per call.
type fakeGameClient struct {
	mu        sync.Mutex
	failNext  int // number of upcoming calls to fail before succeeding
	callCount int
}

func (f *fakeGameClient) CreateGame(_ context.Context, players [2]protocol.Id, _ uint8) (protocol.Id, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	if f.failNext > 0 {
		f.failNext--
		return protocol.Id{}, fmt.Errorf("simulated create_game failure")
	}
	return protocol.NewId(), nil
}

func newTestService(gc GameClient) *Service {
	return NewService(gc, NewStore(nil), 1, 3, time.Millisecond, "game-server:3002")
}

func TestPairingTickPairsInFIFOOrder(t *testing.T) {
	svc := newTestService(&fakeGameClient{})
	a, b, c, d := protocol.NewId(), protocol.NewId(), protocol.NewId(), protocol.NewId()
	sinkA, sinkB, sinkC, sinkD := make(chan protocol.QueueClientResponse, 1), make(chan protocol.QueueClientResponse, 1), make(chan protocol.QueueClientResponse, 1), make(chan protocol.QueueClientResponse, 1)

	svc.state.JoinQueue(Player{Id: a, PushSink: sinkA})
	svc.state.JoinQueue(Player{Id: b, PushSink: sinkB})
	svc.state.JoinQueue(Player{Id: c, PushSink: sinkC})
	svc.state.JoinQueue(Player{Id: d, PushSink: sinkD})

	svc.pairingTick(context.Background())

	var found [4]protocol.QueueClientResponse
	for i, sink := range []chan protocol.QueueClientResponse{sinkA, sinkB, sinkC, sinkD} {
		select {
		case resp := <-sink:
			if resp.ResponseType() != protocol.QueueResponseMatchFound {
				t.Errorf("expected MatchFound, got %s", resp.ResponseType())
			}
			found[i] = resp
		default:
			t.Errorf("expected a MatchFound push, got none")
		}
	}

	// FIFO pairing: a with b, c with d.
	if found[0].GameId == nil || found[1].GameId == nil || *found[0].GameId != *found[1].GameId {
		t.Errorf("expected %s and %s to be paired into the same game", a, b)
	}
	if found[2].GameId == nil || found[3].GameId == nil || *found[2].GameId != *found[3].GameId {
		t.Errorf("expected %s and %s to be paired into the same game", c, d)
	}

	if len(svc.state.members) != 0 {
		t.Errorf("expected queue to be empty after pairing all four, got %d members", len(svc.state.members))
	}
}

func TestPairingTickLeavesOddPlayerInQueue(t *testing.T) {
	svc := newTestService(&fakeGameClient{})
	a, b, c := protocol.NewId(), protocol.NewId(), protocol.NewId()
	sink := make(chan protocol.QueueClientResponse, 1)

	svc.state.JoinQueue(Player{Id: a, PushSink: sink})
	svc.state.JoinQueue(Player{Id: b, PushSink: sink})
	svc.state.JoinQueue(Player{Id: c, PushSink: sink})

	svc.pairingTick(context.Background())

	working := svc.state.drain()
	if len(working) != 1 || working[0].Id != c {
		t.Fatalf("expected only %s left in queue, got %+v", c, working)
	}
}

func TestPairingTickReenqueuesOnCreateGameExhaustion(t *testing.T) {
	gc := &fakeGameClient{failNext: 3}
	svc := newTestService(gc)
	a, b := protocol.NewId(), protocol.NewId()
	sink := make(chan protocol.QueueClientResponse, 1)

	svc.state.JoinQueue(Player{Id: a, PushSink: sink})
	svc.state.JoinQueue(Player{Id: b, PushSink: sink})

	svc.pairingTick(context.Background())

	select {
	case resp := <-sink:
		t.Errorf("expected no push after create_game exhaustion, got %s", resp.ResponseType())
	default:
	}

	working := svc.state.drain()
	if len(working) != 2 {
		t.Fatalf("expected both players re-enqueued, got %d", len(working))
	}
	if _, present := svc.state.members[a]; !present {
		t.Errorf("expected %s to remain a queue member after re-enqueue", a)
	}
}

func TestHandleRequestsJoinQueueAcks(t *testing.T) {
	svc := newTestService(&fakeGameClient{})
	requests := make(chan MatchmakingRequest, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.HandleRequests(ctx, requests)

	id := protocol.NewId()
	sink := make(chan protocol.QueueClientResponse, 1)
	requests <- MatchmakingRequest{JoinQueue: &Player{Id: id, PushSink: sink}}

	select {
	case resp := <-sink:
		if resp.ResponseType() != protocol.QueueResponseJoinedQueue {
			t.Errorf("expected JoinedQueue ack, got %s", resp.ResponseType())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for JoinedQueue ack")
	}
}
