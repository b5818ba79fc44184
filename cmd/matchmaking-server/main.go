package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/playrps/backend/internal/config"
	"github.com/playrps/backend/internal/database"
	"github.com/playrps/backend/internal/httpmw"
	"github.com/playrps/backend/internal/liveness"
	"github.com/playrps/backend/internal/migrations"
	"github.com/playrps/backend/internal/protocol"
	"github.com/playrps/backend/internal/queue"
	rd "github.com/playrps/backend/internal/redis"
	"github.com/playrps/backend/internal/session"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[MM] shutting down (signal %v)", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatalf("[MM] fatal: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Printf("[MM] database unavailable, persistence disabled: %v", err)
		db = nil
	} else {
		defer db.Close()
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Printf("[MM] migrations failed: %v", err)
		}
	}

	var rdb *rd.Client
	if cfg.RedisURL != "" {
		client, err := rd.Connect(cfg.RedisURL)
		if err != nil {
			log.Printf("[MM] redis unavailable, liveness tracking disabled: %v", err)
		} else {
			rdb = client
			defer rdb.Close()
		}
	}

	store := queue.NewStore(db)
	gameClient := queue.NewHTTPGameClient(cfg.GameServerURL)
	svc := queue.NewService(gameClient, store, cfg.GamesToWin, cfg.CreateGameRetries, cfg.CreateGameBackoff, cfg.GameServerPublicAddr)
	socket := queue.NewSocket()
	tracker := liveness.New(rdb, "mm", cfg.SessionIdleTimeout)

	requests := make(chan queue.MatchmakingRequest, 100)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), httpmw.CORS(cfg))
	queue.RegisterRoutes(router, store)

	socketMux := http.NewServeMux()
	socketMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handleQueueConn(ctx, w, r, cfg, socket, requests, tracker)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[MM] pairing tick starting (period=%s)", cfg.PairingTickPeriod)
		svc.RunPairingTick(gctx, cfg.PairingTickPeriod)
		return nil
	})

	g.Go(func() error {
		svc.HandleRequests(gctx, requests)
		return nil
	})

	g.Go(func() error {
		tracker.Run(gctx, cfg.LivenessSweepEvery, func(id protocol.Id) {
			log.Printf("[MM] liveness evicted idle session %s", id)
		})
		return nil
	})

	g.Go(func() error {
		log.Printf("[MM] queue socket listening on %s", cfg.QueueSocketAddress)
		return runHTTPServer(gctx, cfg.QueueSocketAddress, socketMux)
	})

	g.Go(func() error {
		log.Printf("[MM] HTTP listening on %s", cfg.MatchmakingHTTPAddr)
		return runHTTPServer(gctx, cfg.MatchmakingHTTPAddr, router)
	})

	return g.Wait()
}

// handleQueueConn upgrades one client connection and runs its session
// lifecycle to completion, logging any failure but never crashing the
// listener.
func handleQueueConn(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	cfg *config.Config,
	socket *queue.Socket,
	requests chan<- queue.MatchmakingRequest,
	tracker *liveness.Tracker,
) {
	if !httpmw.AllowedWebSocketOrigin(cfg, r.Header.Get("Origin")) {
		log.Printf("[MM] rejecting websocket upgrade from disallowed origin %q", r.Header.Get("Origin"))
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := session.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[MM] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	err = session.Serve(ctx, conn, cfg.QueuePushTick, protocol.ParseQueueClientRequest, socket, requests, tracker.Touch)
	if err != nil {
		log.Printf("[MM] session ended: %v", err)
	}
}

// runHTTPServer runs an http.Server on addr until ctx is cancelled, then
// shuts it down gracefully.
func runHTTPServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
