package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/guildlog/guildlog-backend/internal/consent"
	"github.com/guildlog/guildlog-backend/internal/metrics"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/validator"
	ws "github.com/guildlog/guildlog-backend/internal/websocket"
)

// Sources reported in metrics for where a message came from
const (
	SourceGateway = "gateway"
	SourceCatchup = "catchup"
	SourceAPI     = "api"
)

// Service records gateway traffic: it resolves monitoring and consent
// state, upserts message rows, downloads attachments and fans events
// out to websocket subscribers.
type Service struct {
	messages   repository.MessageRepository
	guilds     repository.GuildRepository
	channels   repository.ChannelRepository
	consents   *consent.Service
	downloader *Downloader
	hub        *ws.Hub
	logger     *slog.Logger

	// Restricts ingest to a single guild when non-zero
	guildFilter int64
}

// NewService creates an ingest Service
func NewService(
	messages repository.MessageRepository,
	guilds repository.GuildRepository,
	channels repository.ChannelRepository,
	consents *consent.Service,
	downloader *Downloader,
	hub *ws.Hub,
	log *slog.Logger,
	guildFilter int64,
) *Service {
	return &Service{
		messages:    messages,
		guilds:      guilds,
		channels:    channels,
		consents:    consents,
		downloader:  downloader,
		hub:         hub,
		logger:      log,
		guildFilter: guildFilter,
	}
}

// LogMessage records one message. It returns true when a row was
// written and false when the message was skipped by the guild filter,
// monitoring flags or consent. channelName and guildName are the names
// as the gateway currently knows them and may be empty.
func (s *Service) LogMessage(ctx context.Context, m *discordgo.Message, channelName, guildName, source string) (bool, error) {
	messageID := parseSnowflake(m.ID)
	channelID := parseSnowflake(m.ChannelID)
	guildID := parseSnowflake(m.GuildID)

	if messageID == 0 || channelID == 0 || m.Author == nil {
		metrics.MessagesSkipped.WithLabelValues("error").Inc()
		return false, fmt.Errorf("message %q has no usable identifiers", m.ID)
	}

	if s.guildFilter != 0 && guildID != s.guildFilter {
		return false, nil
	}

	// DMs carry no guild; those are never recorded
	if guildID == 0 {
		metrics.MessagesSkipped.WithLabelValues("unmonitored").Inc()
		return false, nil
	}

	guild, err := s.ensureGuild(ctx, guildID, guildName)
	if err != nil {
		metrics.MessagesSkipped.WithLabelValues("error").Inc()
		return false, err
	}
	if !guild.Monitored {
		metrics.MessagesSkipped.WithLabelValues("unmonitored").Inc()
		return false, nil
	}

	channel, _, err := s.channels.GetOrCreate(ctx, channelID, guildID, validator.SanitizeName(channelName))
	if err != nil {
		metrics.MessagesSkipped.WithLabelValues("error").Inc()
		return false, err
	}
	if !channel.Monitored {
		metrics.MessagesSkipped.WithLabelValues("unmonitored").Inc()
		return false, nil
	}

	authorID := parseSnowflake(m.Author.ID)
	level := s.consents.EffectiveLevel(ctx, guildID, authorID, m.Author.Bot)
	if !consent.ShouldLog(level) {
		metrics.MessagesSkipped.WithLabelValues("consent").Inc()
		return false, nil
	}

	msg := BuildMessage(m, level, source == SourceCatchup)
	msg.ChannelName = channel.Name
	msg.GuildName = guild.Name

	if err := s.messages.Upsert(ctx, msg); err != nil {
		metrics.MessagesSkipped.WithLabelValues("error").Inc()
		return false, fmt.Errorf("failed to store message %d: %w", messageID, err)
	}

	if err := s.channels.TouchLastMessage(ctx, channelID); err != nil && s.logger != nil {
		s.logger.Warn("failed to update channel activity",
			slog.Int64("channel_id", channelID),
			slog.Any("error", err))
	}

	if s.downloader != nil && consent.AllowAttachments(level) {
		s.downloader.Download(ctx, msg.Attachments)
	}

	if s.hub != nil {
		s.hub.BroadcastNewMessage(channelID, &ws.NewMessagePayload{
			ID:          msg.ID,
			ChannelID:   channelID,
			ChannelName: msg.ChannelName,
			AuthorName:  msg.AuthorName,
			Content:     msg.Content,
			CreatedAt:   msg.CreatedAt.Format(time.RFC3339),
		})
	}

	metrics.MessagesLogged.WithLabelValues(source).Inc()
	return true, nil
}

// ensureGuild loads the guild row, creating it on first contact.
// Gateway events never flip an existing guild's monitored flag.
func (s *Service) ensureGuild(ctx context.Context, guildID int64, name string) (*models.Guild, error) {
	guild, err := s.guilds.GetByID(ctx, guildID)
	if err == nil {
		return guild, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	guild = &models.Guild{
		ID:        guildID,
		Name:      validator.SanitizeName(name),
		Monitored: true,
	}
	if err := s.guilds.Upsert(ctx, guild); err != nil {
		return nil, err
	}
	return guild, nil
}

// RecordEdit appends the old content to the edit history and updates
// the stored message. An edit to a message that was never logged is
// recorded as a fresh message instead.
func (s *Service) RecordEdit(ctx context.Context, m *discordgo.Message, channelName, guildName string) error {
	messageID := parseSnowflake(m.ID)
	if messageID == 0 {
		return fmt.Errorf("edit for message %q has no usable identifier", m.ID)
	}

	existing, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, logErr := s.LogMessage(ctx, m, channelName, guildName, SourceGateway)
			return logErr
		}
		return fmt.Errorf("failed to load message %d for edit: %w", messageID, err)
	}

	level := models.ConsentLevel(existing.ConsentLevel)
	newContent := consent.ApplyToContent(level, validator.SanitizeContent(m.Content))
	if newContent == existing.Content {
		// Discord re-sends update events for pin and embed changes
		return nil
	}

	if err := s.messages.AppendEdit(ctx, messageID, existing.Content, newContent); err != nil {
		return fmt.Errorf("failed to record edit for message %d: %w", messageID, err)
	}

	metrics.EditsRecorded.Inc()
	return nil
}

// RecordDelete marks a message deleted. Rows are never removed, the
// deletion is recorded on the existing row. Unknown messages are
// ignored.
func (s *Service) RecordDelete(ctx context.Context, messageID, channelID int64) error {
	if err := s.messages.MarkDeleted(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to mark message %d deleted: %w", messageID, err)
	}

	metrics.DeletionsMarked.WithLabelValues("single").Inc()
	if s.hub != nil {
		s.hub.BroadcastDeleted(channelID, &ws.DeletedPayload{ID: messageID, Bulk: false})
	}
	return nil
}

// RecordBulkDelete marks a batch of messages deleted in one statement
func (s *Service) RecordBulkDelete(ctx context.Context, channelID int64, messageIDs []int64) error {
	marked, err := s.messages.MarkBulkDeleted(ctx, messageIDs)
	if err != nil {
		return fmt.Errorf("failed to mark bulk deletion: %w", err)
	}

	if marked > 0 {
		metrics.DeletionsMarked.WithLabelValues("bulk").Add(float64(marked))
	}
	if s.hub != nil {
		for _, id := range messageIDs {
			s.hub.BroadcastDeleted(channelID, &ws.DeletedPayload{ID: id, Bulk: true})
		}
	}
	return nil
}

// RecordReaction stores a reaction add or remove event. Reactions to
// messages that were never logged are dropped silently.
func (s *Service) RecordReaction(ctx context.Context, event *models.ReactionEvent) error {
	if err := s.messages.AddReactionEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to record reaction: %w", err)
	}
	return nil
}
