// Package session implements the generic duplex-session framework described
// in spec.md §4.1: a single reusable lifecycle (identify, then multiplex
// inbound client frames against a periodic push-tick) instantiated once for
// the matchmaking queue socket and once for the arena game socket.
//
// This generalizes the teacher repo's ws.Hub/ws.Client (internal/ws/handler.go,
// internal/ws/pool_handler.go), which hand-duplicates the same lifecycle per
// feature, into a single generic implementation — the REDESIGN FLAG in
// spec.md §9 calls for exactly this: "an interface with free functions
// taking an identity, two channel endpoints, and a respond_to_request
// callback — no virtual dispatch in hot paths."
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playrps/backend/internal/protocol"
)

// PushSinkCapacity is the bounded capacity of every session's push channel
// (spec.md §3 SessionConnection, §4.5 interconnect fabric).
const PushSinkCapacity = 100

// Typed is implemented by every ExternalRS variant so the session framework
// can fill in the envelope's "type" field without a type switch per service.
type Typed interface {
	ResponseType() string
}

// Handler implements the protocol-specific logic for one socket kind. RQ is
// ExternalRQ, RS is ExternalRS, IRQ is InternalRQ in spec.md's naming.
type Handler[RQ any, RS Typed, IRQ any] interface {
	// RespondToRequest handles one inbound client request. It may enqueue
	// work for the owning service via internalTx (which can itself capture
	// pushSink, e.g. to join a queue) and may return an immediate reply.
	// A nil return means "no immediate reply" (one may arrive later via
	// pushSink, or never).
	RespondToRequest(ctx context.Context, userID protocol.Id, req RQ, pushSink chan<- RS, internalTx chan<- IRQ) *RS
	// DropAfterSend is a pure predicate: once true for a response actually
	// sent (immediate or pushed), the session closes the socket afterward.
	DropAfterSend(resp RS) bool
}

// ActivityHook is called whenever a session receives or sends a frame. It
// backs the optional liveness tracking described in SPEC_FULL.md §2.1; pass
// nil to disable.
type ActivityHook func(userID protocol.Id)

var errSessionClosing = errors.New("session: closed after drop_after_send response")

type requestEnvelope[RQ any] struct {
	UserID *protocol.Id    `json:"userId,omitempty"`
	Body   json.RawMessage `json:"body"`
}

type responseEnvelope[RS Typed] struct {
	Type   string `json:"type"`
	UserID protocol.Id `json:"userId"`
	Body   RS          `json:"body"`
}

type identifyFrame struct {
	UserID protocol.Id `json:"userId"`
}

type frame struct {
	data []byte
	err  error
}

// Serve runs one connection's full lifecycle: identify, then the serve loop
// (inbound frames + push tick) until the context is cancelled, the socket
// closes, or the handler decides to drop the connection. It never returns
// until the connection is finished being handled.
func Serve[RQ any, RS Typed, IRQ any](
	ctx context.Context,
	conn *websocket.Conn,
	pushInterval time.Duration,
	parseRequest func(json.RawMessage) (RQ, error),
	handler Handler[RQ, RS, IRQ],
	internalTx chan<- IRQ,
	onActivity ActivityHook,
) error {
	userID, err := identify(ctx, conn)
	if err != nil {
		return err
	}
	if onActivity != nil {
		onActivity(userID)
	}

	pushSink := make(chan RS, PushSinkCapacity)
	frames := make(chan frame, 1)
	go readLoop(conn, frames)

	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()

	send := func(body RS) error {
		env := responseEnvelope[RS]{Type: body.ResponseType(), UserID: userID, Body: body}
		data, err := json.Marshal(env)
		if err != nil {
			// Serializing a known-valid response failing is a programmer
			// invariant violation (spec.md §7): fatal to this session only.
			return fmt.Errorf("session: serialize response for %s: %w", userID, err)
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
		if onActivity != nil {
			onActivity(userID)
		}
		if handler.DropAfterSend(body) {
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing after terminal response"),
				time.Now().Add(2*time.Second),
			)
			return errSessionClosing
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			select {
			case resp := <-pushSink:
				if err := send(resp); err != nil {
					if errors.Is(err, errSessionClosing) {
						return nil
					}
					return err
				}
			default:
				// Nothing queued this tick.
			}

		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if f.err != nil {
				return f.err
			}
			if onActivity != nil {
				onActivity(userID)
			}

			var env requestEnvelope[RQ]
			if err := json.Unmarshal(f.data, &env); err != nil {
				// Malformed JSON: drop the frame and the session.
				return fmt.Errorf("session: malformed request from %s: %w", userID, err)
			}

			body, err := parseRequest(env.Body)
			if err != nil {
				// Unknown variant: log and drop just this frame.
				log.Printf("[SESSION] dropping unparseable request from %s: %v", userID, err)
				continue
			}

			reply := handler.RespondToRequest(ctx, userID, body, pushSink, internalTx)
			if reply != nil {
				if err := send(*reply); err != nil {
					if errors.Is(err, errSessionClosing) {
						return nil
					}
					return err
				}
			}
		}
	}
}

func identify(ctx context.Context, conn *websocket.Conn) (protocol.Id, error) {
	for {
		select {
		case <-ctx.Done():
			return protocol.Id{}, ctx.Err()
		default:
		}

		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return protocol.Id{}, fmt.Errorf("session: connection closed before identify: %w", err)
		}
		if messageType != websocket.TextMessage {
			log.Printf("[SESSION] ignoring non-text frame during identify")
			continue
		}
		var id identifyFrame
		if err := json.Unmarshal(data, &id); err != nil {
			log.Printf("[SESSION] ignoring malformed identify frame: %v", err)
			continue
		}
		return id.UserID, nil
	}
}

func readLoop(conn *websocket.Conn, out chan<- frame) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			out <- frame{err: err}
			close(out)
			return
		}
		if messageType != websocket.TextMessage {
			out <- frame{err: fmt.Errorf("session: received non-text frame (type %d)", messageType)}
			close(out)
			return
		}
		out <- frame{data: data}
	}
}
