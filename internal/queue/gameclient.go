package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/playrps/backend/internal/protocol"
)

// GameClient is MM's view of the GS RPC surface (spec.md §6 MM→GS RPC): a
// single CreateGame call per pairing-tick match.
type GameClient interface {
	CreateGame(ctx context.Context, players [2]protocol.Id, gamesToWin uint8) (protocol.Id, error)
}

// HTTPGameClient calls a live GS's POST /create_game over HTTP.
type HTTPGameClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPGameClient returns a client pointed at baseURL (e.g. http://gs:8082).
func NewHTTPGameClient(baseURL string) *HTTPGameClient {
	return &HTTPGameClient{BaseURL: baseURL, Client: &http.Client{Timeout: 5 * time.Second}}
}

func (c *HTTPGameClient) CreateGame(ctx context.Context, players [2]protocol.Id, gamesToWin uint8) (protocol.Id, error) {
	body, err := json.Marshal(protocol.CreateGameRequest{Players: players, GamesToWin: gamesToWin})
	if err != nil {
		return protocol.Id{}, fmt.Errorf("queue: encode create_game request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/create_game", bytes.NewReader(body))
	if err != nil {
		return protocol.Id{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return protocol.Id{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return protocol.Id{}, fmt.Errorf("queue: create_game returned status %d", resp.StatusCode)
	}

	var out protocol.CreateGameResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return protocol.Id{}, fmt.Errorf("queue: decode create_game response: %w", err)
	}
	return out.GameId, nil
}

// createGameWithRetry retries CreateGame up to attempts times with a fixed
// backoff between tries, per spec.md §7's RPC failure policy.
func createGameWithRetry(ctx context.Context, gc GameClient, players [2]protocol.Id, gamesToWin uint8, attempts int, backoff time.Duration) (protocol.Id, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		gameID, err := gc.CreateGame(ctx, players, gamesToWin)
		if err == nil {
			return gameID, nil
		}
		lastErr = err
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return protocol.Id{}, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return protocol.Id{}, fmt.Errorf("queue: create_game exhausted %d attempts: %w", attempts, lastErr)
}
