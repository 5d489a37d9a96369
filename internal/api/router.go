// Package api wires the HTTP surface: JSON API, admin HTML table,
// websocket endpoint and operational routes.
package api

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/guildlog/guildlog-backend/internal/api/handlers"
	"github.com/guildlog/guildlog-backend/internal/api/middleware"
	"github.com/guildlog/guildlog-backend/internal/backfill"
	"github.com/guildlog/guildlog-backend/internal/config"
	"github.com/guildlog/guildlog-backend/internal/consent"
	"github.com/guildlog/guildlog-backend/internal/logger"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/storage"
	"github.com/guildlog/guildlog-backend/internal/tableview"
	ws "github.com/guildlog/guildlog-backend/internal/websocket"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	Config      *config.Config
	DB          *gorm.DB
	FileStorage storage.FileStorage
	Hub         *ws.Hub
	Consents    *consent.Service
	Backfills   *backfill.Service // nil when no bot session exists
	GatewayUp   func() bool       // nil when no bot session exists
	Logger      *slog.Logger
	Audit       *logger.AuditLogger
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.Config.AllowedOrigins, cfg.Config.AppEnv))
	e.Use(middleware.RateLimiter(cfg.Config.RateLimitRequests, cfg.Config.RateLimitBurst, cfg.Audit))
	e.Use(middleware.Metrics())
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Repositories
	guildRepo := repository.NewGuildRepository(cfg.DB)
	channelRepo := repository.NewChannelRepository(cfg.DB)
	messageRepo := repository.NewMessageRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB, cfg.FileStorage)
	adminRepo := repository.NewAdminRepository(cfg.DB)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.GatewayUp)
	guildHandler := handlers.NewGuildHandler(guildRepo)
	channelHandler := handlers.NewChannelHandler(channelRepo, guildRepo)
	messageHandler := handlers.NewMessageHandler(messageRepo, channelRepo)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentRepo, messageRepo, cfg.FileStorage)
	consentHandler := handlers.NewConsentHandler(cfg.Consents)
	backfillHandler := handlers.NewBackfillHandler(cfg.Backfills)

	tableHandler, err := handlers.NewTableHandler(messageRepo, tableview.NewView())
	if err != nil {
		return nil, fmt.Errorf("failed to build table handler: %w", err)
	}

	upgrader := ws.DefaultUpgrader()
	if cfg.Config.AppEnv == "production" {
		upgrader = ws.NewSecureUpgrader(cfg.Config.AllowedOrigins, cfg.Logger)
	}
	wsHandler := handlers.NewWebSocketHandler(cfg.Hub, upgrader, cfg.Logger)

	// Operational routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Admin HTML table view (basic auth against seeded admin accounts)
	messagesView := e.Group("/messages")
	messagesView.Use(middleware.BasicAuth(adminRepo, cfg.Audit))
	messagesView.GET("", tableHandler.List)
	messagesView.POST("/:id/toggle-details", tableHandler.ToggleDetails)
	messagesView.POST("/:id/toggle-content", tableHandler.ToggleContent)

	// Live updates
	e.GET("/ws", wsHandler.Serve)

	// JSON API routes
	api := e.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.Config.APIKey, cfg.Audit, cfg.Logger))

	// Guild routes
	guilds := api.Group("/guilds")
	guilds.GET("", guildHandler.List)
	guilds.GET("/:id", guildHandler.Get)
	guilds.PATCH("/:id/monitored", guildHandler.SetMonitored)
	guilds.DELETE("/:id", guildHandler.Delete)

	// Channel routes (nested under guilds)
	guilds.GET("/:guild_id/channels", channelHandler.ListByGuild)

	// Consent routes (nested under guilds)
	guilds.GET("/:guild_id/consent", consentHandler.List)
	guilds.GET("/:guild_id/consent/:user_id", consentHandler.Get)
	guilds.PUT("/:guild_id/consent/:user_id", consentHandler.Grant)
	guilds.DELETE("/:guild_id/consent/:user_id", consentHandler.Revoke)
	guilds.POST("/:guild_id/consent/:user_id/erase", consentHandler.Erase)

	// Channel routes (standalone)
	channels := api.Group("/channels")
	channels.GET("/:id", channelHandler.Get)
	channels.PATCH("/:id/monitored", channelHandler.SetMonitored)
	channels.DELETE("/:id", channelHandler.Delete)

	// Message routes
	messages := api.Group("/messages")
	messages.GET("", messageHandler.List)
	messages.POST("", messageHandler.Ingest)
	messages.GET("/:id", messageHandler.Get)
	messages.PATCH("/:id/deleted", messageHandler.MarkDeleted)
	messages.DELETE("/:id", messageHandler.Delete)

	// Attachment routes (nested under messages)
	messages.GET("/:message_id/attachments", attachmentHandler.List)

	// Attachment routes (standalone)
	attachments := api.Group("/attachments")
	attachments.GET("/:id", attachmentHandler.Get)
	attachments.GET("/:id/download", attachmentHandler.Download)
	attachments.DELETE("/:id", attachmentHandler.Delete)

	// Backfill
	api.POST("/backfill", backfillHandler.Run)

	return e, nil
}
