package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/guildlog/guildlog-backend/internal/api/response"
	"github.com/guildlog/guildlog-backend/internal/consent"
	apperrors "github.com/guildlog/guildlog-backend/internal/errors"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

// ConsentHandler handles consent-related HTTP requests
type ConsentHandler struct {
	consents *consent.Service
}

// NewConsentHandler creates a new ConsentHandler
func NewConsentHandler(consents *consent.Service) *ConsentHandler {
	return &ConsentHandler{consents: consents}
}

// List handles GET /api/guilds/:guild_id/consent
func (h *ConsentHandler) List(c echo.Context) error {
	guildID, err := validator.ValidateSnowflake(c.Param("guild_id"))
	if err != nil {
		return response.BadRequest(c, "invalid guild ID")
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

	records, total, err := h.consents.ListByGuild(c.Request().Context(), guildID, limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list consent records")
	}

	return response.Paginated(c, records, total, limit, offset)
}

// Get handles GET /api/guilds/:guild_id/consent/:user_id
func (h *ConsentHandler) Get(c echo.Context) error {
	guildID, userID, err := consentParams(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	record, err := h.consents.Get(c.Request().Context(), guildID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return response.NotFound(c, "no consent record, opt-out default applies")
		}
		return response.InternalError(c, "failed to get consent record")
	}

	return response.Success(c, record)
}

// GrantRequest is the consent grant payload
type GrantRequest struct {
	UserName           string `json:"user_name"`
	Level              int    `json:"level"`
	Initials           string `json:"initials"`
	BackfillHistorical bool   `json:"backfill_historical"`
}

// Grant handles PUT /api/guilds/:guild_id/consent/:user_id
func (h *ConsentHandler) Grant(c echo.Context) error {
	guildID, userID, err := consentParams(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req GrantRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	record, err := h.consents.Grant(c.Request().Context(), guildID, userID, req.UserName, req.Level, req.Initials, req.BackfillHistorical)
	if err != nil {
		if apperrors.IsInvalidInput(err) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalError(c, "failed to record consent")
	}

	return response.Success(c, record)
}

// Revoke handles DELETE /api/guilds/:guild_id/consent/:user_id
func (h *ConsentHandler) Revoke(c echo.Context) error {
	guildID, userID, err := consentParams(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.consents.Revoke(c.Request().Context(), guildID, userID); err != nil {
		return response.InternalError(c, "failed to revoke consent")
	}

	return response.SuccessWithMessage(c, nil, "consent revoked")
}

// Erase handles POST /api/guilds/:guild_id/consent/:user_id/erase.
// This is the erasure request path: all stored rows and files for the
// user go away and consent is revoked.
func (h *ConsentHandler) Erase(c echo.Context) error {
	guildID, userID, err := consentParams(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.consents.EraseUserData(c.Request().Context(), guildID, userID)
	if err != nil {
		return response.InternalError(c, "failed to erase user data")
	}

	return response.Success(c, result)
}

func consentParams(c echo.Context) (int64, int64, error) {
	guildID, err := validator.ValidateSnowflake(c.Param("guild_id"))
	if err != nil {
		return 0, 0, errors.New("invalid guild ID")
	}
	userID, err := validator.ValidateSnowflake(c.Param("user_id"))
	if err != nil {
		return 0, 0, errors.New("invalid user ID")
	}
	return guildID, userID, nil
}
