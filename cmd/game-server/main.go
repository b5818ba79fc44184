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

	"github.com/playrps/backend/internal/arena"
	"github.com/playrps/backend/internal/config"
	"github.com/playrps/backend/internal/httpmw"
	"github.com/playrps/backend/internal/liveness"
	"github.com/playrps/backend/internal/protocol"
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
		log.Printf("[ARENA] shutting down (signal %v)", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatalf("[ARENA] fatal: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()

	var rdb *rd.Client
	if cfg.RedisURL != "" {
		client, err := rd.Connect(cfg.RedisURL)
		if err != nil {
			log.Printf("[ARENA] redis unavailable, liveness tracking disabled: %v", err)
		} else {
			rdb = client
			defer rdb.Close()
		}
	}

	manager := arena.NewManager(ctx)
	socket := arena.NewSocket()
	tracker := liveness.New(rdb, "arena", cfg.SessionIdleTimeout)

	requests := make(chan arena.GameRequest, 100)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), httpmw.CORS(cfg))
	arena.RegisterRoutes(router, manager)

	socketMux := http.NewServeMux()
	socketMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handleGameConn(ctx, w, r, cfg, socket, requests, tracker)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		arena.RunRouter(gctx, manager, requests)
		return nil
	})

	g.Go(func() error {
		tracker.Run(gctx, cfg.LivenessSweepEvery, func(id protocol.Id) {
			log.Printf("[ARENA] liveness evicted idle session %s", id)
		})
		return nil
	})

	g.Go(func() error {
		log.Printf("[ARENA] game socket listening on %s", cfg.GameSocketAddress)
		return runHTTPServer(gctx, cfg.GameSocketAddress, socketMux)
	})

	g.Go(func() error {
		log.Printf("[ARENA] HTTP listening on %s", cfg.ArenaHTTPAddr)
		return runHTTPServer(gctx, cfg.ArenaHTTPAddr, router)
	})

	return g.Wait()
}

func handleGameConn(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	cfg *config.Config,
	socket *arena.Socket,
	requests chan<- arena.GameRequest,
	tracker *liveness.Tracker,
) {
	if !httpmw.AllowedWebSocketOrigin(cfg, r.Header.Get("Origin")) {
		log.Printf("[ARENA] rejecting websocket upgrade from disallowed origin %q", r.Header.Get("Origin"))
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := session.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ARENA] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	err = session.Serve(ctx, conn, cfg.GamePushTick, protocol.ParseGameClientRequest, socket, requests, tracker.Touch)
	if err != nil {
		log.Printf("[ARENA] session ended: %v", err)
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
