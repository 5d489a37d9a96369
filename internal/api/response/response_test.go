package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/guildlog/guildlog-backend/internal/errors"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSuccess(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Success(c, map[string]string{"key": "value"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
}

func TestCreated(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Created(c, map[string]string{"id": "1"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestNoContent(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, NoContent(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestPaginated(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, Paginated(c, []string{"a", "b"}, 42, 20, 0))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.EqualValues(t, 42, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
	assert.Equal(t, 0, resp.Meta.Offset)
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrMessageNotFound, http.StatusNotFound, apperrors.CodeNotFound},
		{apperrors.ErrDuplicateEntry, http.StatusConflict, apperrors.CodeDuplicateEntry},
		{apperrors.ErrInvalidInput, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{apperrors.ErrGuildNotMonitored, http.StatusConflict, apperrors.CodeGuildNotMonitored},
		{apperrors.ErrConsentRevoked, http.StatusForbidden, apperrors.CodeConsentRevoked},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{apperrors.ErrInternal, http.StatusInternalServerError, apperrors.CodeInternalError},
	}

	for _, tt := range tests {
		c, rec := newContext()
		require.NoError(t, Error(c, tt.err))
		assert.Equal(t, tt.status, rec.Code, "error: %v", tt.err)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, tt.code, resp.Code)
	}
}

func TestBadRequest(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, BadRequest(c, "invalid channel_id"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid channel_id")
}

func TestServiceUnavailable(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, ServiceUnavailable(c, "backfill requires a connected bot"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
