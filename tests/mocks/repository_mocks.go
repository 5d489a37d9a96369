// Package mocks provides testify mocks for the repository and storage
// interfaces used by handler tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guildlog/guildlog-backend/internal/models"
)

// MockMessageRepository implements repository.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Upsert inserts or replaces a message
func (m *MockMessageRepository) Upsert(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// GetByID retrieves a message by its snowflake
func (m *MockMessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// List retrieves messages with pagination
func (m *MockMessageRepository) List(ctx context.Context, filter models.MessageFilter, limit, offset int) ([]models.MessageListItem, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.MessageListItem), args.Get(1).(int64), args.Error(2)
}

// ListDetailed retrieves messages with relations preloaded
func (m *MockMessageRepository) ListDetailed(ctx context.Context, filter models.MessageFilter, limit, offset int) ([]models.Message, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Message), args.Get(1).(int64), args.Error(2)
}

// AppendEdit records an edit in the message's history
func (m *MockMessageRepository) AppendEdit(ctx context.Context, messageID int64, oldContent, newContent string) error {
	args := m.Called(ctx, messageID, oldContent, newContent)
	return args.Error(0)
}

// AddReactionEvent appends a reaction event
func (m *MockMessageRepository) AddReactionEvent(ctx context.Context, event *models.ReactionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MarkDeleted flags a message as deleted
func (m *MockMessageRepository) MarkDeleted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MarkBulkDeleted flags many messages as deleted
func (m *MockMessageRepository) MarkBulkDeleted(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// CountByAuthor counts messages by one author in one guild
func (m *MockMessageRepository) CountByAuthor(ctx context.Context, guildID, authorID int64) (int64, error) {
	args := m.Called(ctx, guildID, authorID)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteByAuthor removes all messages by one author in one guild
func (m *MockMessageRepository) DeleteByAuthor(ctx context.Context, guildID, authorID int64) (int64, error) {
	args := m.Called(ctx, guildID, authorID)
	return args.Get(0).(int64), args.Error(1)
}

// Delete permanently removes a message
func (m *MockMessageRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGuildRepository implements repository.GuildRepository
type MockGuildRepository struct {
	mock.Mock
}

// Upsert inserts or updates a guild
func (m *MockGuildRepository) Upsert(ctx context.Context, guild *models.Guild) error {
	args := m.Called(ctx, guild)
	return args.Error(0)
}

// GetByID retrieves a guild by its snowflake
func (m *MockGuildRepository) GetByID(ctx context.Context, id int64) (*models.Guild, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

// List retrieves guilds, optionally monitored only
func (m *MockGuildRepository) List(ctx context.Context, monitoredOnly bool) ([]models.Guild, error) {
	args := m.Called(ctx, monitoredOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Guild), args.Error(1)
}

// SetMonitored updates a guild's monitoring flag
func (m *MockGuildRepository) SetMonitored(ctx context.Context, id int64, monitored bool) error {
	args := m.Called(ctx, id, monitored)
	return args.Error(0)
}

// Delete removes a guild
func (m *MockGuildRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChannelRepository implements repository.ChannelRepository
type MockChannelRepository struct {
	mock.Mock
}

// Create creates a channel
func (m *MockChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

// GetByID retrieves a channel by its snowflake
func (m *MockChannelRepository) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

// GetOrCreate retrieves or auto-provisions a channel
func (m *MockChannelRepository) GetOrCreate(ctx context.Context, id, guildID int64, name string) (*models.Channel, bool, error) {
	args := m.Called(ctx, id, guildID, name)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Channel), args.Bool(1), args.Error(2)
}

// ListByGuild retrieves a guild's channels with message counts
func (m *MockChannelRepository) ListByGuild(ctx context.Context, guildID int64, limit, offset int) ([]models.ChannelWithMessageCount, int64, error) {
	args := m.Called(ctx, guildID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.ChannelWithMessageCount), args.Get(1).(int64), args.Error(2)
}

// SetMonitored updates a channel's monitoring flag
func (m *MockChannelRepository) SetMonitored(ctx context.Context, id int64, monitored bool) error {
	args := m.Called(ctx, id, monitored)
	return args.Error(0)
}

// TouchLastMessage updates a channel's last activity timestamp
func (m *MockChannelRepository) TouchLastMessage(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Delete removes a channel
func (m *MockChannelRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockConsentRepository implements repository.ConsentRepository
type MockConsentRepository struct {
	mock.Mock
}

// Get retrieves the consent record for a user in a guild
func (m *MockConsentRepository) Get(ctx context.Context, guildID, userID int64) (*models.ConsentRecord, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConsentRecord), args.Error(1)
}

// Upsert inserts or replaces a consent record
func (m *MockConsentRepository) Upsert(ctx context.Context, record *models.ConsentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Revoke marks a user's consent inactive
func (m *MockConsentRepository) Revoke(ctx context.Context, guildID, userID int64) error {
	args := m.Called(ctx, guildID, userID)
	return args.Error(0)
}

// ListByGuild retrieves consent records for a guild
func (m *MockConsentRepository) ListByGuild(ctx context.Context, guildID int64, limit, offset int) ([]models.ConsentRecord, int64, error) {
	args := m.Called(ctx, guildID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.ConsentRecord), args.Get(1).(int64), args.Error(2)
}

// MockAttachmentRepository implements repository.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// GetByID retrieves an attachment by its snowflake
func (m *MockAttachmentRepository) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

// ListByMessage retrieves a message's attachments
func (m *MockAttachmentRepository) ListByMessage(ctx context.Context, messageID int64) ([]models.Attachment, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}

// MarkDownloaded records the stored file path for an attachment
func (m *MockAttachmentRepository) MarkDownloaded(ctx context.Context, id int64, filePath string) error {
	args := m.Called(ctx, id, filePath)
	return args.Error(0)
}

// Delete removes an attachment row and its file
func (m *MockAttachmentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DeleteFilesByAuthor removes all downloaded files for one author
func (m *MockAttachmentRepository) DeleteFilesByAuthor(ctx context.Context, guildID, authorID int64) (int64, error) {
	args := m.Called(ctx, guildID, authorID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAdminRepository implements repository.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

// Create creates an admin account
func (m *MockAdminRepository) Create(ctx context.Context, user *models.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// GetByUsername retrieves an admin account by username
func (m *MockAdminRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

// Count counts admin accounts
func (m *MockAdminRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
