// Package config loads runtime configuration for both the matchmaking and
// arena services, following the teacher's internal/config/config.go shape:
// environment variables with sane defaults, loaded once via godotenv.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting either service might need. Each binary reads
// only the fields relevant to it (spec.md §6 Configuration: socket bind
// address, HTTP bind address, peer service URL, DB URL for MM).
type Config struct {
	Environment string

	// Matchmaking service
	QueueSocketAddress   string
	MatchmakingHTTPAddr  string
	GameServerURL        string
	GameServerPublicAddr string
	DatabaseURL          string

	// Arena (game) service
	GameSocketAddress string
	ArenaHTTPAddr     string

	// Shared tuning knobs
	GamesToWin         uint8
	PairingTickPeriod  time.Duration
	QueuePushTick      time.Duration
	GamePushTick       time.Duration
	SessionIdleTimeout time.Duration
	LivenessSweepEvery time.Duration
	CreateGameRetries  int
	CreateGameBackoff  time.Duration

	// Redis (optional; empty disables liveness tracking)
	RedisURL string

	// CORS
	FrontendURL string
}

// Load reads configuration from the environment, applying defaults that
// mirror the teacher's getEnv/getEnvInt helpers.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),

		QueueSocketAddress:   getEnv("QUEUE_SOCKET_ADDRESS", "0.0.0.0:3001"),
		MatchmakingHTTPAddr:  getEnv("MATCHMAKING_HTTP_ADDRESS", "0.0.0.0:8081"),
		GameServerURL:        getEnv("GAME_SERVER_URL", "http://0.0.0.0:8082"),
		GameServerPublicAddr: getEnv("GAME_SERVER_PUBLIC_ADDRESS", "0.0.0.0:3002"),
		DatabaseURL:          getEnv("DATABASE_URL", "postgres://localhost:5432/rps?sslmode=disable"),

		GameSocketAddress: getEnv("GAME_SOCKET_ADDRESS", "0.0.0.0:3002"),
		ArenaHTTPAddr:     getEnv("ARENA_HTTP_ADDRESS", "0.0.0.0:8082"),

		GamesToWin:         uint8(getEnvInt("GAMES_TO_WIN", 1)),
		PairingTickPeriod:  getEnvMillis("PAIRING_TICK_MS", 50*time.Millisecond),
		QueuePushTick:      getEnvMillis("QUEUE_PUSH_TICK_MS", 50*time.Millisecond),
		GamePushTick:       getEnvMillis("GAME_PUSH_TICK_MS", time.Second),
		SessionIdleTimeout: getEnvSeconds("SESSION_IDLE_TIMEOUT_SECONDS", 60*time.Second),
		LivenessSweepEvery: getEnvSeconds("LIVENESS_SWEEP_SECONDS", 5*time.Second),
		CreateGameRetries:  getEnvInt("CREATE_GAME_RETRIES", 3),
		CreateGameBackoff:  getEnvMillis("CREATE_GAME_BACKOFF_MS", 200*time.Millisecond),

		RedisURL: getEnv("REDIS_URL", ""),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	if v := getEnvInt(key, -1); v >= 0 {
		return time.Duration(v) * time.Millisecond
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if v := getEnvInt(key, -1); v >= 0 {
		return time.Duration(v) * time.Second
	}
	return defaultValue
}
