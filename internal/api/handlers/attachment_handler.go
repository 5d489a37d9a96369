package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/guildlog/guildlog-backend/internal/api/response"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/storage"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	attachmentRepo repository.AttachmentRepository
	messageRepo    repository.MessageRepository
	fileStorage    storage.FileStorage
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(
	attachmentRepo repository.AttachmentRepository,
	messageRepo repository.MessageRepository,
	fileStorage storage.FileStorage,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentRepo: attachmentRepo,
		messageRepo:    messageRepo,
		fileStorage:    fileStorage,
	}
}

// List handles GET /api/messages/:message_id/attachments
func (h *AttachmentHandler) List(c echo.Context) error {
	messageID, err := validator.ValidateSnowflake(c.Param("message_id"))
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	// Verify message exists
	if _, err := h.messageRepo.GetByID(c.Request().Context(), messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	attachments, err := h.attachmentRepo.ListByMessage(c.Request().Context(), messageID)
	if err != nil {
		return response.InternalError(c, "failed to list attachments")
	}

	return response.Success(c, attachments)
}

// Get handles GET /api/attachments/:id
func (h *AttachmentHandler) Get(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	return response.Success(c, attachment)
}

// Download handles GET /api/attachments/:id/download
func (h *AttachmentHandler) Download(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	if !attachment.Downloaded || attachment.FilePath == "" {
		return response.NotFound(c, "attachment file was not downloaded")
	}

	file, err := h.fileStorage.Get(attachment.FilePath)
	if err != nil {
		return response.InternalError(c, "failed to retrieve file")
	}
	defer file.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Response().Header().Set("Content-Type", contentType)
	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", attachment.Filename))

	_, err = io.Copy(c.Response().Writer, file)
	return err
}

// Delete handles DELETE /api/attachments/:id
func (h *AttachmentHandler) Delete(c echo.Context) error {
	id, err := validator.ValidateSnowflake(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	if err := h.attachmentRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to delete attachment")
	}

	return response.NoContent(c)
}
