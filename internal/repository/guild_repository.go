package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/guildlog/guildlog-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuildRepository defines the interface for guild data access
type GuildRepository interface {
	Upsert(ctx context.Context, guild *models.Guild) error
	GetByID(ctx context.Context, id int64) (*models.Guild, error)
	List(ctx context.Context, monitoredOnly bool) ([]models.Guild, error)
	SetMonitored(ctx context.Context, id int64, monitored bool) error
	Delete(ctx context.Context, id int64) error
}

// guildRepository implements GuildRepository using GORM
type guildRepository struct {
	db *gorm.DB
}

// NewGuildRepository creates a new GuildRepository instance
func NewGuildRepository(db *gorm.DB) GuildRepository {
	return &guildRepository{db: db}
}

// Upsert inserts a guild or refreshes its name. Monitored state is never
// overwritten by gateway events, only by the API.
func (r *guildRepository) Upsert(ctx context.Context, guild *models.Guild) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(guild)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert guild: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a guild by its snowflake
func (r *guildRepository) GetByID(ctx context.Context, id int64) (*models.Guild, error) {
	var guild models.Guild
	result := r.db.WithContext(ctx).First(&guild, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get guild by ID: %w", result.Error)
	}
	return &guild, nil
}

// List retrieves all guilds, optionally only monitored ones
func (r *guildRepository) List(ctx context.Context, monitoredOnly bool) ([]models.Guild, error) {
	var guilds []models.Guild
	query := r.db.WithContext(ctx).Order("name ASC")
	if monitoredOnly {
		query = query.Where("monitored = ?", true)
	}
	if err := query.Find(&guilds).Error; err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	return guilds, nil
}

// SetMonitored enables or disables recording for a guild
func (r *guildRepository) SetMonitored(ctx context.Context, id int64, monitored bool) error {
	result := r.db.WithContext(ctx).Model(&models.Guild{}).Where("id = ?", id).Update("monitored", monitored)
	if result.Error != nil {
		return fmt.Errorf("failed to update guild: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a guild by its snowflake (cascade deletes channels)
func (r *guildRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Guild{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete guild: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
