package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/guildlog/guildlog-backend/internal/api/response"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

// ChannelHandler handles channel-related HTTP requests
type ChannelHandler struct {
	channelRepo repository.ChannelRepository
	guildRepo   repository.GuildRepository
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(channelRepo repository.ChannelRepository, guildRepo repository.GuildRepository) *ChannelHandler {
	return &ChannelHandler{
		channelRepo: channelRepo,
		guildRepo:   guildRepo,
	}
}

// ListByGuild handles GET /api/guilds/:guild_id/channels
func (h *ChannelHandler) ListByGuild(c echo.Context) error {
	guildID, err := validator.ValidateSnowflake(c.Param("guild_id"))
	if err != nil {
		return response.BadRequest(c, "invalid guild ID")
	}

	// Verify guild exists
	if _, err := h.guildRepo.GetByID(c.Request().Context(), guildID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "guild not found")
		}
		return response.InternalError(c, "failed to get guild")
	}

	limit := 50
	offset := 0

	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	channels, total, err := h.channelRepo.ListByGuild(c.Request().Context(), guildID, limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list channels")
	}

	return response.Paginated(c, channels, total, limit, offset)
}

// Get handles GET /api/channels/:id
func (h *ChannelHandler) Get(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid channel ID")
	}

	channel, err := h.channelRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "channel not found")
		}
		return response.InternalError(c, "failed to get channel")
	}

	return response.Success(c, channel)
}

// SetMonitored handles PATCH /api/channels/:id/monitored
func (h *ChannelHandler) SetMonitored(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid channel ID")
	}

	var req MonitorRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.channelRepo.SetMonitored(c.Request().Context(), id, req.Monitored); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "channel not found")
		}
		return response.InternalError(c, "failed to update channel")
	}

	return response.SuccessWithMessage(c, nil, "monitoring flag updated")
}

// Delete handles DELETE /api/channels/:id
func (h *ChannelHandler) Delete(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid channel ID")
	}

	if err := h.channelRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "channel not found")
		}
		return response.InternalError(c, "failed to delete channel")
	}

	return response.NoContent(c)
}
