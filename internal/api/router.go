package api

import (
	"log/slog"
	"os"
	"strings"

	"github.com/inboxpilot/inboxpilot-backend/internal/api/handlers"
	"github.com/inboxpilot/inboxpilot-backend/internal/api/middleware"
	"github.com/inboxpilot/inboxpilot-backend/internal/auth"
	"github.com/inboxpilot/inboxpilot-backend/internal/classify"
	"github.com/inboxpilot/inboxpilot-backend/internal/gmailapi"
	"github.com/inboxpilot/inboxpilot-backend/internal/mailsync"
	"github.com/inboxpilot/inboxpilot-backend/internal/repository"
	"github.com/inboxpilot/inboxpilot-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB     *gorm.DB
	Hub    *websocket.Hub
	Logger *slog.Logger
	// Token service resolving per-user OAuth credentials
	TokenServiceURL string
	// Sync tuning knobs
	SyncOptions mailsync.Options
	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS origins
	RateLimit      int      // Requests per second (0 = use env default)
	RateBurst      int      // Burst size for rate limiter
	EnableAuth     bool     // Enable API key authentication
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Security Middleware (applied in correct order)
	// 1. Recover from panics
	e.Use(middleware.Recover())

	// 2. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 3. CORS - Set environment variable if origins provided in config
	if len(cfg.AllowedOrigins) > 0 {
		os.Setenv("ALLOWED_ORIGINS", strings.Join(cfg.AllowedOrigins, ","))
	}
	e.Use(middleware.SecureCORS())

	// 4. Rate limiting - use RateLimiterWithConfig if custom values provided
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(float64(cfg.RateLimit), cfg.RateBurst, cfg.Logger))
	} else {
		e.Use(middleware.RateLimiter(cfg.Logger))
	}

	// 5. Request logging
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Initialize repositories
	messageRepo := repository.NewMessageRepository(cfg.DB)
	senderRepo := repository.NewSenderRepository(cfg.DB)

	// Initialize provider access and the sync pipeline
	tokens := auth.NewTokenServiceClient(cfg.TokenServiceURL)
	gmailFactory := gmailapi.NewFactory(tokens)
	classifier := classify.NewDomainClassifier()
	syncService := mailsync.NewService(
		gmailFactory, messageRepo, senderRepo, classifier,
		cfg.Hub, cfg.Logger, cfg.SyncOptions)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	messageHandler := handlers.NewMessageHandler(messageRepo)
	syncHandler := handlers.NewSyncHandler(syncService)
	senderHandler := handlers.NewSenderHandler(messageRepo, classifier)
	gmailHandler := handlers.NewGmailHandler(gmailFactory)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// WebSocket route (user resolution, no API key: browser clients)
	if cfg.Hub != nil {
		wsHandler := handlers.NewWSHandler(cfg.Hub, websocket.NewSecureUpgrader(cfg.Logger), cfg.Logger)
		e.GET("/ws", wsHandler.Connect, middleware.ResolveUser(cfg.Logger))
	}

	// API routes
	api := e.Group("/api")

	// Apply API key authentication if enabled
	// Set API_KEY env var if provided in config
	if cfg.EnableAuth && cfg.APIKey != "" {
		os.Setenv("API_KEY", cfg.APIKey)
	}
	api.Use(middleware.APIKeyAuth(cfg.Logger))
	api.Use(middleware.ResolveUser(cfg.Logger))

	// Sync routes
	sync := api.Group("/sync")
	sync.POST("", syncHandler.SyncAll)
	sync.POST("/batch", syncHandler.SyncBatch)
	sync.GET("/status", syncHandler.Status)

	// Message routes
	messages := api.Group("/messages")
	messages.GET("", messageHandler.List)
	messages.GET("/:id", messageHandler.Get)

	// Sender and provider passthrough routes
	api.GET("/senders", senderHandler.List)
	api.GET("/labels", gmailHandler.Labels)
	api.GET("/profile", gmailHandler.Profile)

	return e
}
