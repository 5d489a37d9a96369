package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// BootMark is the marker the bot persists across restarts so catch-up
// knows how far back to look.
type BootMark struct {
	ShutdownAt    time.Time `json:"shutdown_at"`
	LastMessageID int64     `json:"last_message_id,omitempty"`
}

// ReadBootMark loads the marker from the previous run. A missing file
// means a first boot and returns nil without error. A corrupt file is
// logged and treated the same way, the bot must still come up.
func ReadBootMark(path string, log *slog.Logger) (*BootMark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read boot marker: %w", err)
	}

	var mark BootMark
	if err := json.Unmarshal(data, &mark); err != nil {
		if log != nil {
			log.Warn("boot marker is corrupt, starting without catch-up",
				slog.String("path", path),
				slog.Any("error", err))
		}
		return nil, nil
	}
	return &mark, nil
}

// WriteBootMark persists the marker atomically via rename
func WriteBootMark(path string, mark *BootMark) error {
	data, err := json.MarshalIndent(mark, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode boot marker: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write boot marker: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace boot marker: %w", err)
	}
	return nil
}
