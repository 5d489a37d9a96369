package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrNotFound, "message not found", CodeNotFound)
	assert.Equal(t, "message not found", err.Error())

	bare := NewAppError(ErrNotFound, "", CodeNotFound)
	assert.Equal(t, "resource not found", bare.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewAppError(ErrGuildNotFound, "guild 100 not found", CodeNotFound)
	assert.ErrorIs(t, err, ErrGuildNotFound)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	wrapped := Wrap(ErrNotFound, "loading message")
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Contains(t, wrapped.Error(), "loading message")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(ErrMessageNotFound))
	assert.True(t, IsNotFound(ErrChannelNotFound))
	assert.True(t, IsNotFound(ErrGuildNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", ErrAttachmentNotFound)))
	assert.False(t, IsNotFound(ErrDuplicateEntry))
	assert.False(t, IsNotFound(stderrors.New("other")))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{ErrNotFound, CodeNotFound},
		{ErrMessageNotFound, CodeNotFound},
		{ErrDuplicateEntry, CodeDuplicateEntry},
		{ErrInvalidInput, CodeInvalidInput},
		{ErrGuildNotMonitored, CodeGuildNotMonitored},
		{ErrConsentRevoked, CodeConsentRevoked},
		{ErrUnauthorized, CodeUnauthorized},
		{ErrForbidden, CodeForbidden},
		{stderrors.New("anything else"), CodeInternalError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, GetErrorCode(tt.err), "error: %v", tt.err)
	}
}
