// Package main is the entry point for the planner calendar server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tbsheff/notion-clone/internal/api"
	"github.com/Tbsheff/notion-clone/internal/api/middleware"
	"github.com/Tbsheff/notion-clone/internal/calendar"
	"github.com/Tbsheff/notion-clone/internal/config"
	"github.com/Tbsheff/notion-clone/internal/feed"
	appLog "github.com/Tbsheff/notion-clone/internal/log"
	"github.com/Tbsheff/notion-clone/internal/storage"
	"github.com/Tbsheff/notion-clone/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "/data/config.yaml", "Path to the YAML config file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	dataDir := flag.String("data", "", "Data directory for SQLite database (overrides config)")
	staticDir := flag.String("static", "", "Directory for static frontend files (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	issueToken := flag.String("issue-token", "", "Print a bearer token for the given owner id and exit")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "Lifetime of tokens printed by -issue-token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config", err, "path", *configPath)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *staticDir != "" {
		cfg.StaticDir = *staticDir
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			fatal("health check failed", err)
		}
		os.Exit(0)
	}

	if cfg.Auth.JWTSecret == "" {
		fatal("no token secret configured", errors.New("set auth.jwt_secret or JWT_SECRET"))
	}

	if *issueToken != "" {
		token, err := middleware.IssueToken([]byte(cfg.Auth.JWTSecret), *issueToken, *tokenTTL)
		if err != nil {
			fatal("failed to issue token", err)
		}
		fmt.Println(token)
		os.Exit(0)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}
	appLog.Info("starting planner server", "version", version, "timezone", cfg.Location().String())

	// Initialize database
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fatal("failed to create data directory", err, "dir", cfg.DataDir)
	}
	db, err := storage.Open(cfg.DataDir)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		fatal("failed to run migrations", err)
	}
	appLog.Info("database migrations complete", "path", db.Path())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The hub outlives the signal context so clients hear about the shutdown.
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	// Feed sync
	feedRepo := storage.NewFeedRepository(db)
	eventRepo := storage.NewEventRepository(db)
	syncService := feed.NewSyncService(feedRepo, eventRepo, feed.NewParser())
	scheduler := feed.NewScheduler(syncService, feedRepo, hub, cfg.Feeds.DefaultSyncIntervalMin)
	if err := scheduler.Start(ctx); err != nil {
		appLog.Error("failed to start feed scheduler", err)
	}
	go func() {
		results, err := syncService.SyncAllEnabled(ctx)
		if err != nil {
			appLog.Error("initial feed sync failed", err)
			return
		}
		appLog.Info("initial feed sync complete", "feeds", len(results))
	}()

	calendarService := calendar.NewService(storage.NewStore(db), cfg.Location(), calendar.IndexOptions{
		MonthCapacity: cfg.Calendar.MonthCellCapacity,
		Chronological: cfg.Calendar.MonthCellOrder == config.MonthCellOrderChronological,
	})

	router := api.NewRouter(api.Services{
		DB:        db,
		Config:    cfg,
		Calendar:  calendarService,
		Hub:       hub,
		Scheduler: scheduler,
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info("server listening", "addr", cfg.Listen)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("shutting down server")
	websocket.NewEventBroadcaster(hub).BroadcastNotification("", "warning",
		"Server restarting", "Live updates will resume when the server is back.")

	scheduler.Stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server shutdown error", err)
	}
	stopHub()
	appLog.Info("server stopped")
}

func fatal(msg string, err error, kv ...any) {
	appLog.Error(msg, err, kv...)
	os.Exit(1)
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned %s", resp.Status)
	}
	return nil
}
