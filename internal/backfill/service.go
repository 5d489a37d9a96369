// Package backfill replays historical channel messages through the
// ingest pipeline on demand, scoped to a channel, a guild or a single
// user, optionally bounded by time cutoffs.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/guildlog/guildlog-backend/internal/ingest"
	"github.com/guildlog/guildlog-backend/internal/metrics"
	"github.com/guildlog/guildlog-backend/internal/repository"
)

const pageSize = 100

// Request scopes one backfill run. Exactly one of ChannelID or GuildID
// must be set; UserID further narrows either scope to one author.
type Request struct {
	GuildID   int64      `json:"guild_id,omitempty"`
	ChannelID int64      `json:"channel_id,omitempty"`
	UserID    int64      `json:"user_id,omitempty"`
	Before    *time.Time `json:"before,omitempty"`
	After     *time.Time `json:"after,omitempty"`

	// Caps the number of messages examined per channel, zero means
	// no cap
	Limit int `json:"limit,omitempty"`
}

// Validate checks the request scope
func (r Request) Validate() error {
	if r.ChannelID == 0 && r.GuildID == 0 {
		return fmt.Errorf("either channel_id or guild_id is required")
	}
	if r.Before != nil && r.After != nil && !r.After.Before(*r.Before) {
		return fmt.Errorf("after cutoff must precede before cutoff")
	}
	return nil
}

// ChannelResult tallies one channel's backfill outcome
type ChannelResult struct {
	ChannelID int64  `json:"channel_id"`
	Logged    int    `json:"logged"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

// Result aggregates a whole run
type Result struct {
	Channels    []ChannelResult `json:"channels"`
	TotalLogged int             `json:"total_logged"`
}

// Service walks channel history and feeds every message through the
// same logging path the live gateway uses, so consent and monitoring
// rules apply identically.
type Service struct {
	history  ingest.HistoryFetcher
	ingestor *ingest.Service
	channels repository.ChannelRepository
	logger   *slog.Logger
}

// NewService creates a backfill Service
func NewService(history ingest.HistoryFetcher, ingestor *ingest.Service, channels repository.ChannelRepository, log *slog.Logger) *Service {
	return &Service{
		history:  history,
		ingestor: ingestor,
		channels: channels,
		logger:   log,
	}
}

// Run executes a backfill request. A channel the bot cannot read is
// recorded in the result and skipped, it never aborts the run.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	channelIDs, err := s.resolveChannels(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, channelID := range channelIDs {
		cr := s.backfillChannel(ctx, channelID, req)
		result.Channels = append(result.Channels, cr)
		result.TotalLogged += cr.Logged
	}

	if s.logger != nil {
		s.logger.Info("backfill run complete",
			slog.Int("channels", len(result.Channels)),
			slog.Int("logged", result.TotalLogged))
	}
	return result, nil
}

func (s *Service) resolveChannels(ctx context.Context, req Request) ([]int64, error) {
	if req.ChannelID != 0 {
		return []int64{req.ChannelID}, nil
	}

	channels, _, err := s.channels.ListByGuild(ctx, req.GuildID, 500, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild channels: %w", err)
	}

	ids := make([]int64, 0, len(channels))
	for _, c := range channels {
		if c.Monitored {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s *Service) backfillChannel(ctx context.Context, channelID int64, req Request) ChannelResult {
	cr := ChannelResult{ChannelID: channelID}
	channelStr := strconv.FormatInt(channelID, 10)

	before := ""
	if req.Before != nil {
		before = strconv.FormatInt(ingest.SnowflakeFromTime(*req.Before), 10)
	}
	var afterCursor int64
	if req.After != nil {
		afterCursor = ingest.SnowflakeFromTime(*req.After)
	}

	examined := 0
	for {
		if err := ctx.Err(); err != nil {
			cr.Error = err.Error()
			return cr
		}

		batch, err := s.history.ChannelMessages(channelStr, pageSize, before, "", "")
		if err != nil {
			// Typically a 403 for channels the bot cannot read
			cr.Error = err.Error()
			metrics.BackfillMessages.WithLabelValues("failed").Inc()
			return cr
		}
		if len(batch) == 0 {
			return cr
		}

		for _, m := range batch {
			examined++

			id, parseErr := strconv.ParseInt(m.ID, 10, 64)
			if parseErr == nil && afterCursor != 0 && id <= afterCursor {
				// Paging backwards crossed the lower cutoff
				return cr
			}

			if req.UserID != 0 && (m.Author == nil || m.Author.ID != strconv.FormatInt(req.UserID, 10)) {
				continue
			}

			stored, err := s.ingestor.LogMessage(ctx, m, "", "", ingest.SourceCatchup)
			if err != nil {
				metrics.BackfillMessages.WithLabelValues("failed").Inc()
				if s.logger != nil {
					s.logger.Warn("backfill failed to log message",
						slog.String("message_id", m.ID),
						slog.Any("error", err))
				}
				continue
			}
			if stored {
				cr.Logged++
				metrics.BackfillMessages.WithLabelValues("logged").Inc()
			} else {
				cr.Skipped++
				metrics.BackfillMessages.WithLabelValues("skipped").Inc()
			}

			if req.Limit > 0 && examined >= req.Limit {
				return cr
			}
		}

		// Oldest message of the page becomes the next "before" cursor
		before = batch[len(batch)-1].ID

		if len(batch) < pageSize {
			return cr
		}
	}
}
