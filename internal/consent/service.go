// Package consent implements the opt-out consent model: every guild
// member is logged at full level until they file a record saying
// otherwise, and a revoked record suppresses logging entirely.
package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/guildlog/guildlog-backend/internal/errors"
	"github.com/guildlog/guildlog-backend/internal/logger"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

// RedactedContent replaces message content for users who consented to
// metadata collection only.
const RedactedContent = "[content not logged]"

// Service resolves effective consent levels and handles grant, revoke
// and erasure requests.
type Service struct {
	consents    repository.ConsentRepository
	messages    repository.MessageRepository
	attachments repository.AttachmentRepository
	audit       *logger.AuditLogger
	logger      *slog.Logger
	autoConsent bool
}

// NewService creates a consent Service
func NewService(
	consents repository.ConsentRepository,
	messages repository.MessageRepository,
	attachments repository.AttachmentRepository,
	audit *logger.AuditLogger,
	log *slog.Logger,
	autoConsent bool,
) *Service {
	return &Service{
		consents:    consents,
		messages:    messages,
		attachments: attachments,
		audit:       audit,
		logger:      log,
		autoConsent: autoConsent,
	}
}

// EffectiveLevel resolves the consent level that applies to a user's
// messages in a guild. Bots are always logged at full level. A missing
// record means the opt-out default (full). A revoked record means none.
func (s *Service) EffectiveLevel(ctx context.Context, guildID, userID int64, isBot bool) models.ConsentLevel {
	if isBot {
		return models.ConsentFull
	}

	record, err := s.consents.Get(ctx, guildID, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) && s.logger != nil {
			s.logger.Error("consent lookup failed, applying default",
				slog.Int64("guild_id", guildID),
				slog.Int64("user_id", userID),
				slog.Any("error", err))
		}
		return models.ConsentFull
	}

	if !record.Active {
		return models.ConsentNone
	}
	return record.Level
}

// ShouldLog reports whether any record should be written at this level
func ShouldLog(level models.ConsentLevel) bool {
	return level > models.ConsentNone
}

// AllowContent reports whether message content may be stored
func AllowContent(level models.ConsentLevel) bool {
	return level >= models.ConsentContent
}

// AllowAttachments reports whether attachment files may be downloaded.
// Below full consent only attachment metadata is kept.
func AllowAttachments(level models.ConsentLevel) bool {
	return level == models.ConsentFull
}

// ApplyToContent returns the content as it should be stored for the
// given level
func ApplyToContent(level models.ConsentLevel, content string) string {
	if AllowContent(level) {
		return content
	}
	return RedactedContent
}

// Grant records or updates a user's consent at the given level
func (s *Service) Grant(ctx context.Context, guildID, userID int64, userName string, level int, initials string, backfillHistorical bool) (*models.ConsentRecord, error) {
	if err := validator.ValidateConsentLevel(level); err != nil {
		return nil, err
	}

	record := &models.ConsentRecord{
		GuildID:            guildID,
		UserID:             userID,
		UserName:           validator.SanitizeName(userName),
		Level:              models.ConsentLevel(level),
		Active:             level > 0,
		Initials:           initials,
		BackfillHistorical: backfillHistorical,
	}

	if err := s.consents.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to grant consent: %w", err)
	}

	if s.audit != nil {
		s.audit.ConsentChanged(guildID, userID, level, record.Active)
	}
	return record, nil
}

// Revoke marks the user's consent inactive. Subsequent messages from
// the user are not logged.
func (s *Service) Revoke(ctx context.Context, guildID, userID int64) error {
	if err := s.consents.Revoke(ctx, guildID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No prior record: create a revoked one so the opt-out
			// default stops applying.
			record := &models.ConsentRecord{
				GuildID: guildID,
				UserID:  userID,
				Level:   models.ConsentNone,
				Active:  false,
			}
			if upsertErr := s.consents.Upsert(ctx, record); upsertErr != nil {
				return fmt.Errorf("failed to record revocation: %w", upsertErr)
			}
		} else {
			return fmt.Errorf("failed to revoke consent: %w", err)
		}
	}

	if s.audit != nil {
		s.audit.ConsentChanged(guildID, userID, int(models.ConsentNone), false)
	}
	return nil
}

// EraseResult reports what an erasure request removed
type EraseResult struct {
	MessagesDeleted int64 `json:"messages_deleted"`
	FilesDeleted    int64 `json:"files_deleted"`
}

// EraseUserData deletes everything stored for a user in a guild:
// downloaded attachment files first, then message rows, then the
// consent record is revoked so nothing new is collected.
func (s *Service) EraseUserData(ctx context.Context, guildID, userID int64) (*EraseResult, error) {
	files, err := s.attachments.DeleteFilesByAuthor(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete attachment files: %w", err)
	}

	messages, err := s.messages.DeleteByAuthor(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete messages: %w", err)
	}

	if err := s.Revoke(ctx, guildID, userID); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.UserDataErased(guildID, userID, messages, files)
	}

	return &EraseResult{MessagesDeleted: messages, FilesDeleted: files}, nil
}

// Member is the subset of guild-member data auto-grant needs
type Member struct {
	UserID   int64
	UserName string
	Bot      bool
}

// AutoGrantForMembers files auto-granted full-consent records for
// members who have none yet. Bots are skipped, they are always logged.
// Returns the number of records created.
func (s *Service) AutoGrantForMembers(ctx context.Context, guildID int64, members []Member) (int, error) {
	if !s.autoConsent {
		return 0, nil
	}

	granted := 0
	for _, m := range members {
		if m.Bot {
			continue
		}

		_, err := s.consents.Get(ctx, guildID, m.UserID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return granted, fmt.Errorf("failed to check consent for user %d: %w", m.UserID, err)
		}

		record := &models.ConsentRecord{
			GuildID:     guildID,
			UserID:      m.UserID,
			UserName:    validator.SanitizeName(m.UserName),
			Level:       models.ConsentFull,
			Active:      true,
			AutoGranted: true,
		}
		if err := s.consents.Upsert(ctx, record); err != nil {
			return granted, fmt.Errorf("failed to auto-grant consent for user %d: %w", m.UserID, err)
		}
		granted++
	}

	if granted > 0 && s.logger != nil {
		s.logger.Info("auto-granted consent for guild members",
			slog.Int64("guild_id", guildID),
			slog.Int("granted", granted))
	}
	return granted, nil
}

// Get returns the stored consent record for a user
func (s *Service) Get(ctx context.Context, guildID, userID int64) (*models.ConsentRecord, error) {
	record, err := s.consents.Get(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

// ListByGuild returns the consent records filed for a guild
func (s *Service) ListByGuild(ctx context.Context, guildID int64, limit, offset int) ([]models.ConsentRecord, int64, error) {
	return s.consents.ListByGuild(ctx, guildID, limit, offset)
}
