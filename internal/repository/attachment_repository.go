package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/storage"
	"gorm.io/gorm"
)

// AttachmentRepository defines the interface for attachment data access
type AttachmentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Attachment, error)
	ListByMessage(ctx context.Context, messageID int64) ([]models.Attachment, error)
	MarkDownloaded(ctx context.Context, id int64, filePath string) error
	Delete(ctx context.Context, id int64) error
	DeleteFilesByAuthor(ctx context.Context, guildID, authorID int64) (int64, error)
}

// attachmentRepository implements AttachmentRepository using GORM
type attachmentRepository struct {
	db          *gorm.DB
	fileStorage storage.FileStorage
}

// NewAttachmentRepository creates a new AttachmentRepository instance
func NewAttachmentRepository(db *gorm.DB, fileStorage storage.FileStorage) AttachmentRepository {
	return &attachmentRepository{
		db:          db,
		fileStorage: fileStorage,
	}
}

// GetByID retrieves an attachment by its snowflake
func (r *attachmentRepository) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	var attachment models.Attachment
	result := r.db.WithContext(ctx).First(&attachment, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attachment by ID: %w", result.Error)
	}
	return &attachment, nil
}

// ListByMessage retrieves all attachments for a message
func (r *attachmentRepository) ListByMessage(ctx context.Context, messageID int64) ([]models.Attachment, error) {
	var attachments []models.Attachment
	result := r.db.WithContext(ctx).Where("message_id = ?", messageID).Find(&attachments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", result.Error)
	}
	return attachments, nil
}

// MarkDownloaded records where an attachment's content was stored locally
func (r *attachmentRepository) MarkDownloaded(ctx context.Context, id int64, filePath string) error {
	result := r.db.WithContext(ctx).Model(&models.Attachment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"file_path": filePath, "downloaded": true})
	if result.Error != nil {
		return fmt.Errorf("failed to mark attachment downloaded: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes an attachment by its snowflake and removes the stored file
func (r *attachmentRepository) Delete(ctx context.Context, id int64) error {
	attachment, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&models.Attachment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete attachment: %w", result.Error)
	}

	// Ignore storage errors, the file might already be gone
	if attachment.FilePath != "" && r.fileStorage != nil {
		_ = r.fileStorage.Delete(attachment.FilePath)
	}

	return nil
}

// DeleteFilesByAuthor removes the stored files for every downloaded
// attachment on messages by one author in one guild. The rows themselves go
// away with the message cascade; this only reclaims disk space.
func (r *attachmentRepository) DeleteFilesByAuthor(ctx context.Context, guildID, authorID int64) (int64, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&models.Attachment{}).
		Joins("JOIN messages m ON m.id = attachments.message_id").
		Where("m.guild_id = ? AND m.author_id = ? AND attachments.downloaded = ?", guildID, authorID, true).
		Pluck("attachments.file_path", &paths).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list attachment files: %w", err)
	}

	var removed int64
	for _, p := range paths {
		if p == "" || r.fileStorage == nil {
			continue
		}
		if err := r.fileStorage.Delete(p); err == nil {
			removed++
		}
	}
	return removed, nil
}
