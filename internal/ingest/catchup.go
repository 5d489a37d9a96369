package ingest

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord epoch in milliseconds, snowflake timestamps count from here
const discordEpoch int64 = 1420070400000

const catchupPageSize = 100

// HistoryFetcher is the slice of the Discord session that history
// replay needs. *discordgo.Session satisfies it.
type HistoryFetcher interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// newBootMark captures the current shutdown moment
func newBootMark() *BootMark {
	return &BootMark{ShutdownAt: time.Now().UTC()}
}

// SnowflakeFromTime builds the smallest snowflake for an instant,
// usable as an "after" cursor in history queries
func SnowflakeFromTime(t time.Time) int64 {
	ms := t.UnixMilli() - discordEpoch
	if ms < 0 {
		ms = 0
	}
	return ms << 22
}

// runCatchUp replays messages sent while the bot was down. The previous
// boot marker bounds the scan; without one (first boot or corrupt
// marker) catch-up is skipped entirely.
func (g *Gateway) runCatchUp(ctx context.Context) {
	mark, err := ReadBootMark(g.bootMarkPath, g.logger)
	if err != nil {
		g.logError("failed to read boot marker", err)
		return
	}
	if mark == nil {
		if g.logger != nil {
			g.logger.Info("no boot marker found, skipping catch-up")
		}
		return
	}

	after := SnowflakeFromTime(mark.ShutdownAt)
	if mark.LastMessageID > after {
		after = mark.LastMessageID
	}

	guilds, err := g.service.guilds.List(ctx, true)
	if err != nil {
		g.logError("failed to list guilds for catch-up", err)
		return
	}

	var total int
	for _, guild := range guilds {
		if g.service.guildFilter != 0 && guild.ID != g.service.guildFilter {
			continue
		}

		channels, _, err := g.service.channels.ListByGuild(ctx, guild.ID, 500, 0)
		if err != nil {
			g.logError("failed to list channels for catch-up", err, slog.Int64("guild_id", guild.ID))
			continue
		}

		for _, channel := range channels {
			if !channel.Monitored {
				continue
			}
			logged, err := g.catchUpChannel(ctx, channel.ID, after)
			if err != nil {
				// Missing access or a deleted channel must not stop
				// the rest of the scan
				g.logError("catch-up failed for channel", err, slog.Int64("channel_id", channel.ID))
				continue
			}
			total += logged
		}
	}

	// Advance the marker so a crash before the next clean shutdown does
	// not replay the window just covered
	if err := WriteBootMark(g.bootMarkPath, newBootMark()); err != nil {
		g.logError("failed to advance boot marker after catch-up", err)
	}

	if g.logger != nil {
		g.logger.Info("catch-up complete",
			slog.Int("messages", total),
			slog.Time("since", mark.ShutdownAt))
	}
}

// catchUpChannel pages forward through a channel's history from the
// cursor and logs every message found
func (g *Gateway) catchUpChannel(ctx context.Context, channelID, after int64) (int, error) {
	channelStr := strconv.FormatInt(channelID, 10)
	cursor := strconv.FormatInt(after, 10)

	logged := 0
	for {
		batch, err := g.history.ChannelMessages(channelStr, catchupPageSize, "", cursor, "")
		if err != nil {
			return logged, err
		}
		if len(batch) == 0 {
			return logged, nil
		}

		// The API returns newest first; walk backwards so rows land in
		// chronological order and the cursor advances correctly
		for i := len(batch) - 1; i >= 0; i-- {
			m := batch[i]
			channelName, guildName := g.resolveNames(g.session, m.ChannelID, m.GuildID)

			stored, err := g.service.LogMessage(ctx, m, channelName, guildName, SourceCatchup)
			if err != nil {
				g.logError("failed to log catch-up message", err, slog.String("message_id", m.ID))
				continue
			}
			if stored {
				logged++
			}
			cursor = m.ID
		}

		if len(batch) < catchupPageSize {
			return logged, nil
		}
	}
}
