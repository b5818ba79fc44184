package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Client re-exports go-redis's client type so callers that import this
// package under a local alias (rd "github.com/playrps/backend/internal/redis")
// can name it without also importing go-redis directly.
type Client = redis.Client

// Connect establishes a connection to Redis
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
