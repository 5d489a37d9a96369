package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guildlog/guildlog-backend/internal/models"
	"gorm.io/gorm"
)

// ChannelRepository defines the interface for channel data access
type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id int64) (*models.Channel, error)
	GetOrCreate(ctx context.Context, id, guildID int64, name string) (*models.Channel, bool, error)
	ListByGuild(ctx context.Context, guildID int64, limit, offset int) ([]models.ChannelWithMessageCount, int64, error)
	SetMonitored(ctx context.Context, id int64, monitored bool) error
	TouchLastMessage(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// channelRepository implements ChannelRepository using GORM
type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a new ChannelRepository instance
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

// Create creates a new channel
func (r *channelRepository) Create(ctx context.Context, channel *models.Channel) error {
	result := r.db.WithContext(ctx).Create(channel)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("channel %d already exists: %w", channel.ID, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create channel: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a channel by its snowflake
func (r *channelRepository) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	var channel models.Channel
	result := r.db.WithContext(ctx).First(&channel, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get channel by ID: %w", result.Error)
	}
	return &channel, nil
}

// GetOrCreate retrieves a channel or auto-provisions it on first sight.
// Returns the channel, a boolean indicating if it was created, and any error.
func (r *channelRepository) GetOrCreate(ctx context.Context, id, guildID int64, name string) (*models.Channel, bool, error) {
	channel, err := r.GetByID(ctx, id)
	if err == nil {
		return channel, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	channel = &models.Channel{
		ID:        id,
		GuildID:   guildID,
		Name:      name,
		Monitored: true,
	}

	if err := r.Create(ctx, channel); err != nil {
		// Another gateway event may have created it concurrently
		if errors.Is(err, ErrDuplicateEntry) {
			channel, err = r.GetByID(ctx, id)
			if err != nil {
				return nil, false, err
			}
			return channel, false, nil
		}
		return nil, false, err
	}

	return channel, true, nil
}

// ListByGuild retrieves all channels for a guild with pagination and message count
func (r *channelRepository) ListByGuild(ctx context.Context, guildID int64, limit, offset int) ([]models.ChannelWithMessageCount, int64, error) {
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Channel{}).Where("guild_id = ?", guildID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count channels: %w", err)
	}

	var results []models.ChannelWithMessageCount

	query := `
		SELECT
			c.*,
			COALESCE((SELECT COUNT(*) FROM messages m WHERE m.channel_id = c.id), 0) as message_count
		FROM channels c
		WHERE c.guild_id = ?
		ORDER BY c.name ASC
		LIMIT ? OFFSET ?
	`

	if err := r.db.WithContext(ctx).Raw(query, guildID, limit, offset).Scan(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list channels: %w", err)
	}

	return results, total, nil
}

// SetMonitored enables or disables recording for a channel
func (r *channelRepository) SetMonitored(ctx context.Context, id int64, monitored bool) error {
	result := r.db.WithContext(ctx).Model(&models.Channel{}).Where("id = ?", id).Update("monitored", monitored)
	if result.Error != nil {
		return fmt.Errorf("failed to update channel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastMessage records the time of the most recent message in a channel
func (r *channelRepository) TouchLastMessage(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Channel{}).Where("id = ?", id).Update("last_message_at", now)
	if result.Error != nil {
		return fmt.Errorf("failed to touch channel: %w", result.Error)
	}
	return nil
}

// Delete deletes a channel by its snowflake (cascade deletes messages)
func (r *channelRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Channel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete channel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
