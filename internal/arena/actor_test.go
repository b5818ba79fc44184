package arena

import (
	"testing"

	"github.com/playrps/backend/internal/protocol"
)

func newTestActor(gamesToWin uint8) (*actor, protocol.Id, protocol.Id, chan protocol.GameClientResponse, chan protocol.GameClientResponse) {
	a, b := protocol.NewId(), protocol.NewId()
	act := newActor(protocol.NewId(), [2]protocol.Id{a, b}, gamesToWin, nil)
	sinkA := make(chan protocol.GameClientResponse, 8)
	sinkB := make(chan protocol.GameClientResponse, 8)
	return act, a, b, sinkA, sinkB
}

func mustReceive(t *testing.T, sink chan protocol.GameClientResponse, want string) protocol.GameClientResponse {
	t.Helper()
	select {
	case resp := <-sink:
		if resp.ResponseType() != want {
			t.Fatalf("expected %s, got %s", want, resp.ResponseType())
		}
		return resp
	default:
		t.Fatalf("expected a %s push, got none", want)
		return protocol.GameClientResponse{}
	}
}

func mustBeEmpty(t *testing.T, sink chan protocol.GameClientResponse) {
	t.Helper()
	select {
	case resp := <-sink:
		t.Fatalf("expected no push, got %s", resp.ResponseType())
	default:
	}
}

func TestActorTransitionsToPendingMovesOnceBothJoin(t *testing.T) {
	act, a, b, sinkA, sinkB := newTestActor(1)

	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestJoinGame}})
	mustReceive(t, sinkA, protocol.GameResponseGameJoined)
	if act.phase != phaseWaitingForPlayers {
		t.Fatalf("expected to still be waiting for the second player")
	}

	act.handle(GameRequest{Player: Player{Id: b, PushSink: sinkB}, Body: protocol.GameClientRequest{Type: protocol.GameRequestJoinGame}})
	mustReceive(t, sinkB, protocol.GameResponseGameJoined)
	mustReceive(t, sinkA, protocol.GameResponsePendingMove)
	mustReceive(t, sinkB, protocol.GameResponsePendingMove)
	if act.phase != phasePendingMoves {
		t.Fatalf("expected PendingMoves phase, got %v", act.phase)
	}
}

func TestActorRejectsJoinFromUnconfiguredPlayer(t *testing.T) {
	act, a, _, sinkA, _ := newTestActor(1)
	stranger := protocol.NewId()
	strangerSink := make(chan protocol.GameClientResponse, 1)

	act.handle(GameRequest{Player: Player{Id: stranger, PushSink: strangerSink}, Body: protocol.GameClientRequest{Type: protocol.GameRequestJoinGame}})
	mustBeEmpty(t, strangerSink)
	if len(act.connected) != 0 {
		t.Fatalf("expected stranger's join to be ignored")
	}

	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestJoinGame}})
	mustReceive(t, sinkA, protocol.GameResponseGameJoined)
}

func TestActorRejectsDuplicateJoin(t *testing.T) {
	act, a, _, sinkA, _ := newTestActor(1)

	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestJoinGame}})
	mustReceive(t, sinkA, protocol.GameResponseGameJoined)

	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestJoinGame}})
	mustBeEmpty(t, sinkA)
	if len(act.connected) != 1 {
		t.Fatalf("expected duplicate join to be ignored")
	}
}

func joinBoth(t *testing.T, act *actor, a, b protocol.Id, sinkA, sinkB chan protocol.GameClientResponse) {
	t.Helper()
	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestJoinGame}})
	act.handle(GameRequest{Player: Player{Id: b, PushSink: sinkB}, Body: protocol.GameClientRequest{Type: protocol.GameRequestJoinGame}})
	mustReceive(t, sinkA, protocol.GameResponseGameJoined)
	mustReceive(t, sinkB, protocol.GameResponseGameJoined)
	mustReceive(t, sinkA, protocol.GameResponsePendingMove)
	mustReceive(t, sinkB, protocol.GameResponsePendingMove)
}

func TestActorDrawStaysInPendingMovesSilently(t *testing.T) {
	act, a, b, sinkA, sinkB := newTestActor(3)
	joinBoth(t, act, a, b, sinkA, sinkB)

	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Rock}})
	act.handle(GameRequest{Player: Player{Id: b, PushSink: sinkB}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Rock}})

	mustBeEmpty(t, sinkA)
	mustBeEmpty(t, sinkB)
	if act.phase != phasePendingMoves {
		t.Fatalf("expected to remain in PendingMoves after a draw")
	}
	if act.roundsPlayed != 1 {
		t.Fatalf("expected roundsPlayed=1 after a draw, got %d", act.roundsPlayed)
	}
	if len(act.moves) != 0 {
		t.Fatalf("expected moves to be cleared after evaluation")
	}
}

func TestActorRejectsDuplicateMove(t *testing.T) {
	act, a, b, sinkA, sinkB := newTestActor(3)
	joinBoth(t, act, a, b, sinkA, sinkB)

	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Rock}})
	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Paper}})

	if mv := act.moves[a]; mv != protocol.Rock {
		t.Fatalf("expected the first move to stick, got %s", mv)
	}
	mustBeEmpty(t, sinkA)
	mustBeEmpty(t, sinkB)
}

func TestActorDecisiveRoundAwardsWinAndContinuesBelowTarget(t *testing.T) {
	act, a, b, sinkA, sinkB := newTestActor(3)
	joinBoth(t, act, a, b, sinkA, sinkB)

	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Rock}})
	act.handle(GameRequest{Player: Player{Id: b, PushSink: sinkB}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Scissors}})

	winResp := mustReceive(t, sinkA, protocol.GameResponseRoundResult)
	if winResp.Result != protocol.Win || winResp.OtherMove != protocol.Scissors {
		t.Fatalf("unexpected winner RoundResult: %+v", winResp)
	}
	lossResp := mustReceive(t, sinkB, protocol.GameResponseRoundResult)
	if lossResp.Result != protocol.Loss || lossResp.OtherMove != protocol.Rock {
		t.Fatalf("unexpected loser RoundResult: %+v", lossResp)
	}
	mustBeEmpty(t, sinkA)
	mustBeEmpty(t, sinkB)

	if act.phase != phasePendingMoves {
		t.Fatalf("expected to remain in PendingMoves below gamesToWin, got %v", act.phase)
	}
	if act.players[a].wins != 1 {
		t.Fatalf("expected winner to have 1 win, got %d", act.players[a].wins)
	}
}

func TestActorMatchResultOnceGamesToWinReached(t *testing.T) {
	act, a, b, sinkA, sinkB := newTestActor(1)
	joinBoth(t, act, a, b, sinkA, sinkB)

	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Paper}})
	act.handle(GameRequest{Player: Player{Id: b, PushSink: sinkB}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Rock}})

	mustReceive(t, sinkA, protocol.GameResponseRoundResult)
	mustReceive(t, sinkB, protocol.GameResponseRoundResult)

	winResult := mustReceive(t, sinkA, protocol.GameResponseMatchResult)
	if winResult.Result != protocol.Win || winResult.Wins != 1 || winResult.Total != 1 {
		t.Fatalf("unexpected winner MatchResult: %+v", winResult)
	}
	lossResult := mustReceive(t, sinkB, protocol.GameResponseMatchResult)
	if lossResult.Result != protocol.Loss || lossResult.Wins != 0 || lossResult.Total != 1 {
		t.Fatalf("unexpected loser MatchResult: %+v", lossResult)
	}

	if act.phase != phaseDone {
		t.Fatalf("expected Done phase, got %v", act.phase)
	}
}

func TestActorDropsMessagesAfterDone(t *testing.T) {
	act, a, b, sinkA, sinkB := newTestActor(1)
	joinBoth(t, act, a, b, sinkA, sinkB)
	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Paper}})
	act.handle(GameRequest{Player: Player{Id: b, PushSink: sinkB}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Rock}})
	mustReceive(t, sinkA, protocol.GameResponseRoundResult)
	mustReceive(t, sinkB, protocol.GameResponseRoundResult)
	mustReceive(t, sinkA, protocol.GameResponseMatchResult)
	mustReceive(t, sinkB, protocol.GameResponseMatchResult)

	// Any further message once Done must be silently dropped, not panic.
	act.handle(GameRequest{Player: Player{Id: a, PushSink: sinkA}, Body: protocol.GameClientRequest{Type: protocol.GameRequestMove, Value: protocol.Rock}})
	mustBeEmpty(t, sinkA)
}
