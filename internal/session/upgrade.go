package session

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// Upgrader is shared by both the queue socket and the arena socket, mirroring
// the teacher's single package-level ws.upgrader (internal/ws/handler.go).
// Origin checking is done by the caller via httpmw.AllowedWebSocketOrigin
// ahead of the upgrade, so this stays permissive at the transport layer.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
