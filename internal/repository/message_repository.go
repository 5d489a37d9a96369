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

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Upsert(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	List(ctx context.Context, filter models.MessageFilter, limit, offset int) ([]models.MessageListItem, int64, error)
	ListDetailed(ctx context.Context, filter models.MessageFilter, limit, offset int) ([]models.Message, int64, error)
	AppendEdit(ctx context.Context, messageID int64, oldContent, newContent string) error
	AddReactionEvent(ctx context.Context, event *models.ReactionEvent) error
	MarkDeleted(ctx context.Context, id int64) error
	MarkBulkDeleted(ctx context.Context, ids []int64) (int64, error)
	CountByAuthor(ctx context.Context, guildID, authorID int64) (int64, error)
	DeleteByAuthor(ctx context.Context, guildID, authorID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Upsert inserts or replaces a message together with its attachments, embeds
// and stickers. Gateway events and catch-up runs can both deliver the same
// snowflake; the last write wins, edit history is kept separately.
func (r *messageRepository) Upsert(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attachments := message.Attachments
		embeds := message.Embeds
		stickers := message.Stickers
		message.Attachments = nil
		message.Embeds = nil
		message.Stickers = nil

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "channel_name", "guild_name", "author_name",
				"author_discriminator", "pinned", "tts", "consent_level",
				"edited_at", "is_catchup", "logged_at",
			}),
		}).Create(message).Error; err != nil {
			return fmt.Errorf("failed to upsert message: %w", err)
		}

		// Attachments and embeds are replaced wholesale on re-upsert
		if err := tx.Where("message_id = ?", message.ID).Delete(&models.Attachment{}).Error; err != nil {
			return fmt.Errorf("failed to clear attachments: %w", err)
		}
		for i := range attachments {
			attachments[i].MessageID = message.ID
			if err := tx.Create(&attachments[i]).Error; err != nil {
				return fmt.Errorf("failed to create attachment: %w", err)
			}
		}

		var embedIDs []uint
		if err := tx.Model(&models.Embed{}).Where("message_id = ?", message.ID).Pluck("id", &embedIDs).Error; err != nil {
			return fmt.Errorf("failed to list embeds: %w", err)
		}
		if len(embedIDs) > 0 {
			if err := tx.Where("embed_id IN ?", embedIDs).Delete(&models.EmbedField{}).Error; err != nil {
				return fmt.Errorf("failed to clear embed fields: %w", err)
			}
			if err := tx.Where("message_id = ?", message.ID).Delete(&models.Embed{}).Error; err != nil {
				return fmt.Errorf("failed to clear embeds: %w", err)
			}
		}
		for i := range embeds {
			embeds[i].ID = 0
			embeds[i].MessageID = message.ID
			if err := tx.Create(&embeds[i]).Error; err != nil {
				return fmt.Errorf("failed to create embed: %w", err)
			}
		}

		for i := range stickers {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stickers[i]).Error; err != nil {
				return fmt.Errorf("failed to upsert sticker: %w", err)
			}
		}
		if len(stickers) > 0 {
			if err := tx.Model(message).Association("Stickers").Replace(stickers); err != nil {
				return fmt.Errorf("failed to link stickers: %w", err)
			}
		}

		message.Attachments = attachments
		message.Embeds = embeds
		message.Stickers = stickers
		return nil
	})
}

// GetByID retrieves a message by its snowflake with all detail relations preloaded
func (r *messageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).
		Preload("Attachments").
		Preload("Embeds").
		Preload("Embeds.Fields").
		Preload("Edits").
		Preload("Stickers").
		First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// List retrieves messages with pagination, newest first
func (r *messageRepository) List(ctx context.Context, filter models.MessageFilter, limit, offset int) ([]models.MessageListItem, int64, error) {
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&models.Message{})
	countQuery = applyFilter(countQuery, filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	where := "1=1"
	args := []interface{}{}
	if filter.ChannelID != 0 {
		where += " AND m.channel_id = ?"
		args = append(args, filter.ChannelID)
	}
	if filter.GuildID != 0 {
		where += " AND m.guild_id = ?"
		args = append(args, filter.GuildID)
	}
	if filter.AuthorID != 0 {
		where += " AND m.author_id = ?"
		args = append(args, filter.AuthorID)
	}
	if !filter.IncludeDeleted {
		where += " AND m.deleted = ?"
		args = append(args, false)
	}

	var results []models.MessageListItem

	query := fmt.Sprintf(`
		SELECT
			m.id,
			m.channel_id,
			m.channel_name,
			m.author_id,
			m.author_name,
			m.content,
			m.created_at,
			m.edited_at,
			m.deleted,
			COALESCE((SELECT COUNT(*) FROM attachments a WHERE a.message_id = m.id), 0) as attachment_count,
			COALESCE((SELECT COUNT(*) FROM embeds e WHERE e.message_id = m.id), 0) as embed_count,
			COALESCE((SELECT COUNT(*) FROM message_edits me WHERE me.message_id = m.id), 0) as edit_count
		FROM messages m
		WHERE %s
		ORDER BY m.created_at DESC
		LIMIT ? OFFSET ?
	`, where)
	args = append(args, limit, offset)

	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	return results, total, nil
}

// ListDetailed retrieves messages with their detail relations preloaded,
// newest first. The HTML table view packs these relations into row
// attributes.
func (r *messageRepository) ListDetailed(ctx context.Context, filter models.MessageFilter, limit, offset int) ([]models.Message, int64, error) {
	var total int64

	countQuery := r.db.WithContext(ctx).Model(&models.Message{})
	countQuery = applyFilter(countQuery, filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var messages []models.Message
	query := r.db.WithContext(ctx).
		Preload("Attachments").
		Preload("Embeds").
		Preload("Embeds.Fields").
		Preload("Edits")
	query = applyFilter(query, filter)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list messages with details: %w", err)
	}

	return messages, total, nil
}

func applyFilter(q *gorm.DB, filter models.MessageFilter) *gorm.DB {
	if filter.ChannelID != 0 {
		q = q.Where("channel_id = ?", filter.ChannelID)
	}
	if filter.GuildID != 0 {
		q = q.Where("guild_id = ?", filter.GuildID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted = ?", false)
	}
	return q
}

// AppendEdit records an edit in the message's history and updates the live content
func (r *messageRepository) AppendEdit(ctx context.Context, messageID int64, oldContent, newContent string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Message{}).Where("id = ?", messageID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to check message: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}

		edit := models.MessageEdit{
			MessageID:  messageID,
			OldContent: oldContent,
			NewContent: newContent,
		}
		if err := tx.Create(&edit).Error; err != nil {
			return fmt.Errorf("failed to create edit record: %w", err)
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.Message{}).Where("id = ?", messageID).
			Updates(map[string]interface{}{"content": newContent, "edited_at": now}).Error; err != nil {
			return fmt.Errorf("failed to update message content: %w", err)
		}
		return nil
	})
}

// AddReactionEvent appends a reaction add/remove event for a message.
// Events for unknown messages are dropped, matching the gateway's raw events
// for messages that predate the archive.
func (r *messageRepository) AddReactionEvent(ctx context.Context, event *models.ReactionEvent) error {
	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", event.MessageID).Count(&exists).Error; err != nil {
		return fmt.Errorf("failed to check message: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create reaction event: %w", err)
	}
	return nil
}

// MarkDeleted flags a message as deleted without removing the row
func (r *messageRepository) MarkDeleted(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{"deleted": true, "deleted_at": now})
	if result.Error != nil {
		return fmt.Errorf("failed to mark message deleted: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkBulkDeleted flags many messages as deleted in one statement and
// returns how many rows were affected. Unknown snowflakes are ignored.
func (r *messageRepository) MarkBulkDeleted(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{"deleted": true, "deleted_at": now, "bulk_deleted": true})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages bulk deleted: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountByAuthor counts messages by one author in one guild
func (r *messageRepository) CountByAuthor(ctx context.Context, guildID, authorID int64) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("guild_id = ? AND author_id = ?", guildID, authorID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count messages: %w", result.Error)
	}
	return count, nil
}

// DeleteByAuthor permanently removes all messages by one author in one
// guild. Used by consent erasure; cascades to attachments, embeds and edits.
func (r *messageRepository) DeleteByAuthor(ctx context.Context, guildID, authorID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("guild_id = ? AND author_id = ?", guildID, authorID).
		Delete(&models.Message{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete messages: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete permanently removes a message by its snowflake
func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
