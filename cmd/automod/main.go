package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openbarrio/automod/internal/backlog"
	"github.com/openbarrio/automod/internal/server"
	"github.com/openbarrio/automod/internal/store"
)

func main() {
	listenAddr := flag.String("listen", envOr("AUTOMOD_LISTEN", ":8080"), "HTTP listen address")
	dbPath := flag.String("db", envOr("AUTOMOD_DB_PATH", "./automod.db"), "SQLite database path")
	backlogMaxAge := flag.Duration("backlog-max-age", envDurationOr("AUTOMOD_BACKLOG_MAX_AGE", 24*time.Hour),
		"how long a report may sit pending before the backlog watcher warns")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	db, err := store.NewSQLiteStore(ctx, *dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		ListenAddr: *listenAddr,
		DBPath:     *dbPath,
	}
	srv := server.NewServer(cfg, db, logger)
	defer srv.Stop()

	// Start backlog watcher.
	watcher := backlog.NewWatcher(db, *backlogMaxAge, logger)
	go func() {
		if err := watcher.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("ERROR: backlog watcher: %v", err)
		}
	}()
	log.Println("Backlog watcher started")

	httpSrv := &http.Server{
		Addr:    *listenAddr,
		Handler: srv.Handler(),
	}

	go func() {
		log.Printf("Listening on %s", *listenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("Invalid %s %q: %v", key, v, err)
	}
	return d
}
