package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/guildlog/guildlog-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

// Connect opens the database named by databaseURL. A postgres:// URL selects
// the postgres driver; anything else is treated as a SQLite file path, the
// default deployment.
func Connect(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(openDialector(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if IsSQLite(databaseURL) {
		// Cascade deletes on attachments/embeds/edits need this
		db.Exec("PRAGMA foreign_keys = ON")
	}

	if err := configureConnectionPool(db, databaseURL); err != nil {
		return nil, err
	}

	slog.Info("Connected to database successfully")
	return db, nil
}

// IsSQLite reports whether the URL selects the SQLite driver
func IsSQLite(databaseURL string) bool {
	return !strings.HasPrefix(databaseURL, "postgres://") &&
		!strings.HasPrefix(databaseURL, "postgresql://")
}

func openDialector(databaseURL string) gorm.Dialector {
	if IsSQLite(databaseURL) {
		return sqlite.Open(databaseURL)
	}
	return postgres.Open(databaseURL)
}

// configureConnectionPool sets up connection pool limits
func configureConnectionPool(db *gorm.DB, databaseURL string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if IsSQLite(databaseURL) {
		// SQLite allows a single writer; keep the pool small to avoid
		// SQLITE_BUSY under concurrent gateway events
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return nil
	}

	sqlDB.SetMaxIdleConns(DefaultMaxIdleConns)
	sqlDB.SetMaxOpenConns(DefaultMaxOpenConns)
	sqlDB.SetConnMaxLifetime(DefaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	return nil
}

// Migrate runs auto-migration for all models
func Migrate(db *gorm.DB) error {
	slog.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.Guild{},
		&models.Channel{},
		&models.Message{},
		&models.Attachment{},
		&models.Embed{},
		&models.EmbedField{},
		&models.Sticker{},
		&models.MessageEdit{},
		&models.ReactionEvent{},
		&models.ConsentRecord{},
		&models.AdminUser{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
