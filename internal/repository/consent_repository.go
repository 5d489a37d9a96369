package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guildlog/guildlog-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConsentRepository defines the interface for consent record data access
type ConsentRepository interface {
	Get(ctx context.Context, guildID, userID int64) (*models.ConsentRecord, error)
	Upsert(ctx context.Context, record *models.ConsentRecord) error
	Revoke(ctx context.Context, guildID, userID int64) error
	ListByGuild(ctx context.Context, guildID int64, limit, offset int) ([]models.ConsentRecord, int64, error)
}

// consentRepository implements ConsentRepository using GORM
type consentRepository struct {
	db *gorm.DB
}

// NewConsentRepository creates a new ConsentRepository instance
func NewConsentRepository(db *gorm.DB) ConsentRepository {
	return &consentRepository{db: db}
}

// Get retrieves the consent record for a user in a guild
func (r *consentRepository) Get(ctx context.Context, guildID, userID int64) (*models.ConsentRecord, error) {
	var record models.ConsentRecord
	result := r.db.WithContext(ctx).Where("guild_id = ? AND user_id = ?", guildID, userID).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get consent record: %w", result.Error)
	}
	return &record, nil
}

// Upsert inserts or replaces the consent record for (guild, user)
func (r *consentRepository) Upsert(ctx context.Context, record *models.ConsentRecord) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_name", "level", "active", "initials", "auto_granted",
			"backfill_historical", "revoked_at", "updated_at",
		}),
	}).Create(record)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert consent record: %w", result.Error)
	}
	return nil
}

// Revoke marks a user's consent inactive (explicit opt-out)
func (r *consentRepository) Revoke(ctx context.Context, guildID, userID int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.ConsentRecord{}).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Updates(map[string]interface{}{
			"active":     false,
			"level":      int(models.ConsentNone),
			"revoked_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke consent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByGuild retrieves consent records for a guild with pagination
func (r *consentRepository) ListByGuild(ctx context.Context, guildID int64, limit, offset int) ([]models.ConsentRecord, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ConsentRecord{}).Where("guild_id = ?", guildID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count consent records: %w", err)
	}

	var records []models.ConsentRecord
	if err := r.db.WithContext(ctx).Where("guild_id = ?", guildID).
		Order("user_name ASC").Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list consent records: %w", err)
	}

	return records, total, nil
}
