package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server
	APIPort int

	// Discord ingest
	BotToken     string
	GuildID      int64 // 0 = record every guild the bot is in
	BootMarkPath string

	// Features
	AutoConsentEnabled bool
	DownloadImagesOnly bool

	// Storage
	AttachmentStoragePath string

	// Admin bootstrap
	AdminUsername string
	AdminPassword string

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first, without overriding variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required: DATABASE_URL (sqlite file path or postgres URL)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	// API_PORT (default: 8080)
	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		cfg.APIPort = 8080
	} else {
		port, err := strconv.Atoi(apiPort)
		if err != nil {
			return nil, fmt.Errorf("API_PORT must be a valid integer: %w", err)
		}
		cfg.APIPort = port
	}

	// BOT_TOKEN (empty = ingest disabled, API only)
	cfg.BotToken = os.Getenv("BOT_TOKEN")

	// GUILD_ID (optional single-guild filter)
	if gid := os.Getenv("GUILD_ID"); gid != "" {
		id, err := strconv.ParseInt(gid, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("GUILD_ID must be a valid snowflake: %w", err)
		}
		cfg.GuildID = id
	}

	// BOOT_MARK_PATH (default: ./previous_boot.json)
	cfg.BootMarkPath = os.Getenv("BOOT_MARK_PATH")
	if cfg.BootMarkPath == "" {
		cfg.BootMarkPath = "./previous_boot.json"
	}

	// AUTO_CONSENT_ENABLED (default: true, the opt-out model)
	autoConsent := os.Getenv("AUTO_CONSENT_ENABLED")
	if autoConsent == "" {
		cfg.AutoConsentEnabled = true
	} else {
		enabled, err := strconv.ParseBool(autoConsent)
		if err != nil {
			return nil, fmt.Errorf("AUTO_CONSENT_ENABLED must be a valid boolean: %w", err)
		}
		cfg.AutoConsentEnabled = enabled
	}

	// DOWNLOAD_IMAGES_ONLY (default: true, matches the bot's original behavior)
	imagesOnly := os.Getenv("DOWNLOAD_IMAGES_ONLY")
	if imagesOnly == "" {
		cfg.DownloadImagesOnly = true
	} else {
		enabled, err := strconv.ParseBool(imagesOnly)
		if err != nil {
			return nil, fmt.Errorf("DOWNLOAD_IMAGES_ONLY must be a valid boolean: %w", err)
		}
		cfg.DownloadImagesOnly = enabled
	}

	// ATTACHMENT_STORAGE_PATH (default: ./attachments)
	cfg.AttachmentStoragePath = os.Getenv("ATTACHMENT_STORAGE_PATH")
	if cfg.AttachmentStoragePath == "" {
		cfg.AttachmentStoragePath = "./attachments"
	}

	// Admin bootstrap credentials
	cfg.AdminUsername = os.Getenv("ADMIN_USERNAME")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 10.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 20
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.AttachmentStoragePath == "" {
		return fmt.Errorf("AttachmentStoragePath cannot be empty")
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AdminUsername == "" || c.AdminPassword == "" {
		return fmt.Errorf("admin credentials are required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	return nil
}

// IngestEnabled reports whether the Discord ingest side should start
func (c *Config) IngestEnabled() bool {
	return c.BotToken != ""
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Bool("ingest_enabled", c.IngestEnabled()),
		slog.Int64("guild_id", c.GuildID),
		slog.String("boot_mark_path", c.BootMarkPath),
		slog.Bool("auto_consent", c.AutoConsentEnabled),
		slog.Bool("download_images_only", c.DownloadImagesOnly),
		slog.String("storage_path", c.AttachmentStoragePath),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Bool("admin_seeded", c.AdminUsername != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
