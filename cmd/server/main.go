package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/guildlog/guildlog-backend/internal/api"
	"github.com/guildlog/guildlog-backend/internal/backfill"
	"github.com/guildlog/guildlog-backend/internal/config"
	"github.com/guildlog/guildlog-backend/internal/consent"
	"github.com/guildlog/guildlog-backend/internal/database"
	"github.com/guildlog/guildlog-backend/internal/ingest"
	"github.com/guildlog/guildlog-backend/internal/logger"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/storage"
	ws "github.com/guildlog/guildlog-backend/internal/websocket"
)

func main() {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)

	log.Info("starting guildlog backend")
	cfg.LogConfig(log)

	audit := logger.NewAuditLogger()

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Repositories
	guildRepo := repository.NewGuildRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Attachment storage
	fileStorage, err := storage.NewLocalStorage(cfg.AttachmentStoragePath)
	if err != nil {
		log.Error("failed to initialize file storage", slog.Any("error", err))
		os.Exit(1)
	}
	attachmentRepo := repository.NewAttachmentRepository(db, fileStorage)

	// Admin account bootstrap from environment credentials
	if err := seedAdmin(cfg, adminRepo, audit, log); err != nil {
		log.Error("failed to seed admin account", slog.Any("error", err))
		os.Exit(1)
	}

	// WebSocket hub
	hub := ws.NewHub(log)
	go hub.Run()

	// Consent
	consents := consent.NewService(consentRepo, messageRepo, attachmentRepo, audit, log, cfg.AutoConsentEnabled)

	// Discord gateway (only when a bot token is configured, the API
	// can run standalone)
	var (
		gateway   *ingest.Gateway
		backfills *backfill.Service
		gatewayUp func() bool
	)
	if cfg.IngestEnabled() {
		downloader := ingest.NewDownloader(attachmentRepo, fileStorage, cfg.DownloadImagesOnly, log)
		ingestor := ingest.NewService(messageRepo, guildRepo, channelRepo, consents, downloader, hub, log, cfg.GuildID)

		gateway, err = ingest.NewGateway(cfg.BotToken, ingestor, consents, cfg.BootMarkPath, log)
		if err != nil {
			log.Error("failed to build discord gateway", slog.Any("error", err))
			os.Exit(1)
		}
		if err := gateway.Open(); err != nil {
			log.Error("failed to connect discord gateway", slog.Any("error", err))
			os.Exit(1)
		}

		backfills = backfill.NewService(gateway.Session(), ingestor, channelRepo, log)
		gatewayUp = func() bool { return gateway.Session().DataReady }
		log.Info("discord ingest enabled")
	} else {
		log.Info("BOT_TOKEN not set, running API only")
	}

	// HTTP server
	router, err := api.NewRouter(&api.RouterConfig{
		Config:      cfg,
		DB:          db,
		FileStorage: fileStorage,
		Hub:         hub,
		Consents:    consents,
		Backfills:   backfills,
		GatewayUp:   gatewayUp,
		Logger:      log,
		Audit:       audit,
	})
	if err != nil {
		log.Error("failed to build router", slog.Any("error", err))
		os.Exit(1)
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		if err := router.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("http server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()
	log.Info("http server listening", slog.Int("port", cfg.APIPort))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	// Disconnect the gateway first so the boot marker records the
	// moment ingest stopped
	if gateway != nil {
		if err := gateway.Close(); err != nil {
			log.Error("failed to close discord gateway", slog.Any("error", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Shutdown(ctx); err != nil {
		log.Error("failed to shut down http server", slog.Any("error", err))
	}

	if err := database.Close(db); err != nil {
		log.Error("failed to close database", slog.Any("error", err))
	}

	log.Info("server stopped")
}

// seedAdmin creates the admin account from environment credentials on
// first boot. Existing accounts are left alone.
func seedAdmin(cfg *config.Config, admins repository.AdminRepository, audit *logger.AuditLogger, log *slog.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Warn("admin credentials not configured, HTML view is inaccessible")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := admins.GetByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if err := admins.Create(ctx, &models.AdminUser{
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
	}); err != nil {
		return err
	}

	audit.AdminSeeded(cfg.AdminUsername)
	return nil
}

func logLevel(level string) slog.Level {
	switch level {
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
