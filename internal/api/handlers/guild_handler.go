package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/guildlog/guildlog-backend/internal/api/response"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

// GuildHandler handles guild-related HTTP requests
type GuildHandler struct {
	guildRepo repository.GuildRepository
}

// NewGuildHandler creates a new GuildHandler
func NewGuildHandler(guildRepo repository.GuildRepository) *GuildHandler {
	return &GuildHandler{guildRepo: guildRepo}
}

// List handles GET /api/guilds
func (h *GuildHandler) List(c echo.Context) error {
	monitoredOnly := c.QueryParam("monitored") == "true"

	guilds, err := h.guildRepo.List(c.Request().Context(), monitoredOnly)
	if err != nil {
		return response.InternalError(c, "failed to list guilds")
	}

	return response.Success(c, guilds)
}

// Get handles GET /api/guilds/:id
func (h *GuildHandler) Get(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid guild ID")
	}

	guild, err := h.guildRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "guild not found")
		}
		return response.InternalError(c, "failed to get guild")
	}

	return response.Success(c, guild)
}

// MonitorRequest sets a guild or channel monitoring flag
type MonitorRequest struct {
	Monitored bool `json:"monitored"`
}

// SetMonitored handles PATCH /api/guilds/:id/monitored
func (h *GuildHandler) SetMonitored(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid guild ID")
	}

	var req MonitorRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.guildRepo.SetMonitored(c.Request().Context(), id, req.Monitored); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "guild not found")
		}
		return response.InternalError(c, "failed to update guild")
	}

	return response.SuccessWithMessage(c, nil, "monitoring flag updated")
}

// Delete handles DELETE /api/guilds/:id
func (h *GuildHandler) Delete(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid guild ID")
	}

	if err := h.guildRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "guild not found")
		}
		return response.InternalError(c, "failed to delete guild")
	}

	return response.NoContent(c)
}
