package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/inboxpilot/inboxpilot-backend/internal/api"
	"github.com/inboxpilot/inboxpilot-backend/internal/config"
	"github.com/inboxpilot/inboxpilot-backend/internal/database"
	"github.com/inboxpilot/inboxpilot-backend/internal/mailsync"
	"github.com/inboxpilot/inboxpilot-backend/internal/websocket"
)

func main() {
	// Load configuration first so the log level is known
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting inboxpilot backend")
	cfg.LogConfig(logger)

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// WebSocket hub for sync progress broadcasts
	hub := websocket.NewHub(logger)
	go hub.Run()

	// HTTP router
	var origins []string
	if cfg.AllowedOrigins != "" {
		for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	e := api.NewRouter(&api.RouterConfig{
		DB:              db,
		Hub:             hub,
		Logger:          logger,
		TokenServiceURL: cfg.TokenServiceURL,
		SyncOptions: mailsync.Options{
			BatchSize:      cfg.SyncBatchSize,
			MaxRetries:     cfg.SyncMaxRetries,
			BaseRetryDelay: cfg.SyncBaseRetryDelay,
			BatchDelay:     cfg.SyncBatchDelay,
		},
		APIKey:         cfg.APIKey,
		AllowedOrigins: origins,
		RateLimit:      int(cfg.RateLimitRequests),
		RateBurst:      cfg.RateLimitBurst,
		EnableAuth:     cfg.APIKey != "",
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
