package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/tests/mocks"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func runAPIKeyAuth(t *testing.T, apiKey, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := APIKeyAuth(apiKey, nil, nil)(okHandler)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

// ==================== APIKeyAuth Tests ====================

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	rec := runAPIKeyAuth(t, "secret-key", "Bearer secret-key")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	rec := runAPIKeyAuth(t, "secret-key", "Bearer wrong-key")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	rec := runAPIKeyAuth(t, "secret-key", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKeyAuth_EmptyKeySkipsAuth(t *testing.T) {
	// development mode: no key configured, requests pass through
	rec := runAPIKeyAuth(t, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuth_TrimsBearerPrefix(t *testing.T) {
	rec := runAPIKeyAuth(t, "secret-key", "Bearer   secret-key  ")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==================== BasicAuth Tests ====================

func runBasicAuth(t *testing.T, admins repository.AdminRepository, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	req.SetBasicAuth(username, password)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := BasicAuth(admins, nil)(okHandler)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestBasicAuth_ValidCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	adminRepo := new(mocks.MockAdminRepository)
	adminRepo.On("GetByUsername", mock.Anything, "admin").
		Return(&models.AdminUser{Username: "admin", PasswordHash: string(hash)}, nil)

	rec := runBasicAuth(t, adminRepo, "admin", "hunter2")
	assert.Equal(t, http.StatusOK, rec.Code)
	adminRepo.AssertExpectations(t)
}

func TestBasicAuth_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	adminRepo := new(mocks.MockAdminRepository)
	adminRepo.On("GetByUsername", mock.Anything, "admin").
		Return(&models.AdminUser{Username: "admin", PasswordHash: string(hash)}, nil)

	rec := runBasicAuth(t, adminRepo, "admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBasicAuth_UnknownUser(t *testing.T) {
	adminRepo := new(mocks.MockAdminRepository)
	adminRepo.On("GetByUsername", mock.Anything, "nobody").
		Return(nil, repository.ErrNotFound)

	rec := runBasicAuth(t, adminRepo, "nobody", "password")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
