package arena

import "context"

// RunRouter consumes the process-wide channel fed by every game socket
// session (spec.md §4.3 "Router task") and forwards each request to the
// actor owning that player's match.
func RunRouter(ctx context.Context, manager *Manager, requests <-chan GameRequest) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			manager.Forward(req.Player, req.Body)
		}
	}
}
