// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/florets/hanabi/internal/cache"
	"github.com/florets/hanabi/internal/handlers"
	"github.com/florets/hanabi/internal/middleware"
	"github.com/florets/hanabi/internal/service"
	"github.com/florets/hanabi/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	st, err := selectStore(context.Background())
	if err != nil {
		log.Fatalf("store init: %v", err)
	}

	svc := service.New(st, logger)
	if ms := os.Getenv("LOCK_WAIT_MS"); ms != "" {
		v, err := strconv.Atoi(ms)
		if err != nil || v <= 0 {
			log.Fatalf("LOCK_WAIT_MS must be a positive integer, got %q", ms)
		}
		svc.SetLockWait(time.Duration(v) * time.Millisecond)
	}

	// Optional action feed for external history tooling.
	if os.Getenv("HANABI_ACTION_QUEUE") != "" {
		publisher, err := cache.NewPublisher(context.Background())
		if err != nil {
			log.Fatalf("action queue init: %v", err)
		}
		svc.Publisher = publisher
	}

	api := handlers.NewServer(svc, logger)
	watch := handlers.NewWatchHub(svc, logger)
	svc.Notify = watch.Notify

	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()
	mux.Handle("/game", logged(http.HandlerFunc(api.GameHandler)))
	mux.Handle("/game/ws/", logged(http.HandlerFunc(watch.Handler)))
	mux.Handle("/game/", logged(http.HandlerFunc(api.GameHandler)))
	mux.Handle("/play/", logged(http.HandlerFunc(api.PlayHandler)))
	mux.Handle("/discard/", logged(http.HandlerFunc(api.DiscardHandler)))
	mux.Handle("/inform/", logged(http.HandlerFunc(api.InformHandler)))
	mux.Handle("/history/", logged(http.HandlerFunc(api.HistoryHandler)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// selectStore picks the durable store from HANABI_STORE: file (default),
// postgres, redis, or memory.
func selectStore(ctx context.Context) (store.Store, error) {
	switch os.Getenv("HANABI_STORE") {
	case "postgres":
		return store.NewPostgresStore(ctx)
	case "redis":
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		return store.NewRedisStore(ctx, addr, 0)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		dir := os.Getenv("HANABI_DATA_DIR")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(home, ".hanabigames")
		}
		return store.NewFileStore(dir)
	}
}
