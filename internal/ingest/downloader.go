package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/guildlog/guildlog-backend/internal/metrics"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/repository"
	"github.com/guildlog/guildlog-backend/internal/storage"
)

// Downloader fetches attachment files from the CDN into local storage
type Downloader struct {
	attachments repository.AttachmentRepository
	storage     storage.FileStorage
	client      *http.Client
	imagesOnly  bool
	logger      *slog.Logger
}

// NewDownloader creates a Downloader
func NewDownloader(attachments repository.AttachmentRepository, fileStorage storage.FileStorage, imagesOnly bool, log *slog.Logger) *Downloader {
	return &Downloader{
		attachments: attachments,
		storage:     fileStorage,
		client:      &http.Client{Timeout: 30 * time.Second},
		imagesOnly:  imagesOnly,
		logger:      log,
	}
}

// Download fetches the attachments of a message and marks each stored
// row as downloaded. Failures are logged per attachment and never fail
// the message, the metadata row stays either way.
func (d *Downloader) Download(ctx context.Context, attachments []models.Attachment) {
	for _, a := range attachments {
		if d.imagesOnly && !strings.HasPrefix(a.ContentType, "image/") {
			continue
		}
		if err := storage.ValidateFile(a.Filename, a.SizeBytes); err != nil {
			if d.logger != nil {
				d.logger.Warn("skipping attachment download",
					slog.Int64("attachment_id", a.ID),
					slog.Any("error", err))
			}
			continue
		}

		if err := d.downloadOne(ctx, a); err != nil {
			metrics.AttachmentDownloadFailures.Inc()
			if d.logger != nil {
				d.logger.Error("attachment download failed",
					slog.Int64("attachment_id", a.ID),
					slog.String("url", a.URL),
					slog.Any("error", err))
			}
			continue
		}
		metrics.AttachmentsDownloaded.Inc()
	}
}

func (d *Downloader) downloadOne(ctx context.Context, a models.Attachment) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching attachment", resp.StatusCode)
	}

	filePath, err := d.storage.Save(a.Filename, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to store attachment: %w", err)
	}

	if err := d.attachments.MarkDownloaded(ctx, a.ID, filePath); err != nil {
		return fmt.Errorf("failed to mark attachment downloaded: %w", err)
	}
	return nil
}
