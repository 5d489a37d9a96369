package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/guildlog/guildlog-backend/internal/api/response"
	"github.com/guildlog/guildlog-backend/internal/backfill"
)

// BackfillHandler triggers history backfill runs over the API
type BackfillHandler struct {
	// Nil when the process runs without a Discord session
	backfills *backfill.Service
}

// NewBackfillHandler creates a new BackfillHandler
func NewBackfillHandler(backfills *backfill.Service) *BackfillHandler {
	return &BackfillHandler{backfills: backfills}
}

// Run handles POST /api/backfill. The run executes synchronously and
// returns per-channel tallies.
func (h *BackfillHandler) Run(c echo.Context) error {
	if h.backfills == nil {
		return response.ServiceUnavailable(c, "backfill requires a connected bot")
	}

	var req backfill.Request
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	result, err := h.backfills.Run(c.Request().Context(), req)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	return response.Success(c, result)
}
