package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/guildlog/guildlog-backend/internal/api/response"
	"github.com/guildlog/guildlog-backend/internal/metrics"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

// MessageHandler handles message-related HTTP requests
type MessageHandler struct {
	messageRepo repository.MessageRepository
	channelRepo repository.ChannelRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repository.MessageRepository, channelRepo repository.ChannelRepository) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
	}
}

// List handles GET /api/messages
func (h *MessageHandler) List(c echo.Context) error {
	filter := models.MessageFilter{}

	if v := c.QueryParam("channel_id"); v != "" {
		id, err := validator.ValidateSnowflake(v)
		if err != nil {
			return response.BadRequest(c, "invalid channel_id")
		}
		filter.ChannelID = id
	}
	if v := c.QueryParam("guild_id"); v != "" {
		id, err := validator.ValidateSnowflake(v)
		if err != nil {
			return response.BadRequest(c, "invalid guild_id")
		}
		filter.GuildID = id
	}
	if v := c.QueryParam("author_id"); v != "" {
		id, err := validator.ValidateSnowflake(v)
		if err != nil {
			return response.BadRequest(c, "invalid author_id")
		}
		filter.AuthorID = id
	}
	filter.IncludeDeleted = c.QueryParam("include_deleted") == "true"

	limit := 20
	offset := 0

	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	messages, total, err := h.messageRepo.List(c.Request().Context(), filter, limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list messages")
	}

	return response.Paginated(c, messages, total, limit, offset)
}

// Get handles GET /api/messages/:id
func (h *MessageHandler) Get(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	message, err := h.messageRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	return response.Success(c, message)
}

// IngestRequest is the payload for messages posted directly to the API
type IngestRequest struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	GuildID     string `json:"guild_id"`
	GuildName   string `json:"guild_name"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
	AuthorBot   bool   `json:"author_bot"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`

	Attachments []struct {
		ID          string `json:"id"`
		Filename    string `json:"filename"`
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
		SizeBytes   int64  `json:"size_bytes"`
	} `json:"attachments"`
}

// Ingest handles POST /api/messages. It is the HTTP ingest path for
// external scrapers; the stored row is identical to one recorded from
// the gateway.
func (h *MessageHandler) Ingest(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	id, err := validator.ValidateSnowflake(req.ID)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}
	channelID, err := validator.ValidateSnowflake(req.ChannelID)
	if err != nil {
		return response.BadRequest(c, "invalid channel_id")
	}
	guildID, err := validator.ValidateSnowflake(req.GuildID)
	if err != nil {
		return response.BadRequest(c, "invalid guild_id")
	}
	authorID, err := validator.ValidateSnowflake(req.AuthorID)
	if err != nil {
		return response.BadRequest(c, "invalid author_id")
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			return response.BadRequest(c, "created_at must be RFC 3339")
		}
		createdAt = parsed.UTC()
	}

	channel, _, err := h.channelRepo.GetOrCreate(c.Request().Context(), channelID, guildID, validator.SanitizeName(req.ChannelName))
	if err != nil {
		return response.InternalError(c, "failed to resolve channel")
	}

	message := &models.Message{
		ID:           id,
		ChannelID:    channelID,
		ChannelName:  channel.Name,
		GuildID:      guildID,
		GuildName:    validator.SanitizeName(req.GuildName),
		AuthorID:     authorID,
		AuthorName:   validator.SanitizeName(req.AuthorName),
		AuthorBot:    req.AuthorBot,
		Content:      validator.SanitizeContent(req.Content),
		ConsentLevel: int(models.ConsentFull),
		CreatedAt:    createdAt,
		LoggedAt:     time.Now().UTC(),
	}

	for _, a := range req.Attachments {
		attachmentID, err := validator.ValidateSnowflake(a.ID)
		if err != nil {
			return response.BadRequest(c, "invalid attachment ID")
		}
		message.Attachments = append(message.Attachments, models.Attachment{
			ID:          attachmentID,
			MessageID:   id,
			Filename:    a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
			SizeBytes:   a.SizeBytes,
		})
	}

	if err := h.messageRepo.Upsert(c.Request().Context(), message); err != nil {
		return response.InternalError(c, "failed to store message")
	}

	metrics.MessagesLogged.WithLabelValues("api").Inc()
	return response.Created(c, message)
}

// MarkDeleted handles PATCH /api/messages/:id/deleted
func (h *MessageHandler) MarkDeleted(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	if err := h.messageRepo.MarkDeleted(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to mark message deleted")
	}

	return response.SuccessWithMessage(c, nil, "message marked deleted")
}

// Delete handles DELETE /api/messages/:id. This removes the row
// entirely; gateway deletions only mark rows.
func (h *MessageHandler) Delete(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	if err := h.messageRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to delete message")
	}

	return response.NoContent(c)
}
