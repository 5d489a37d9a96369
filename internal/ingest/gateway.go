package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/guildlog/guildlog-backend/internal/consent"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

// Gateway owns the Discord session: it registers the event handlers,
// runs catch-up once the session is ready and closes cleanly on
// shutdown.
type Gateway struct {
	session      *discordgo.Session
	history      HistoryFetcher
	service      *Service
	consents     *consent.Service
	bootMarkPath string
	logger       *slog.Logger
}

// NewGateway builds a Discord session with the intents and handlers the
// ingest pipeline needs. The session is not opened yet.
func NewGateway(token string, service *Service, consents *consent.Service, bootMarkPath string, log *slog.Logger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	g := &Gateway{
		session:      session,
		history:      session,
		service:      service,
		consents:     consents,
		bootMarkPath: bootMarkPath,
		logger:       log,
	}

	session.AddHandler(g.onReady)
	session.AddHandler(g.onGuildCreate)
	session.AddHandler(g.onMessageCreate)
	session.AddHandler(g.onMessageUpdate)
	session.AddHandler(g.onMessageDelete)
	session.AddHandler(g.onMessageDeleteBulk)
	session.AddHandler(g.onReactionAdd)
	session.AddHandler(g.onReactionRemove)

	return g, nil
}

// Session exposes the underlying Discord session for history queries
func (g *Gateway) Session() *discordgo.Session {
	return g.session
}

// Open connects the gateway
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close writes the boot marker and disconnects. The marker lets the
// next boot catch up on messages sent while the bot was down.
func (g *Gateway) Close() error {
	if err := WriteBootMark(g.bootMarkPath, newBootMark()); err != nil && g.logger != nil {
		g.logger.Error("failed to persist boot marker", slog.Any("error", err))
	}
	return g.session.Close()
}

func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if g.logger != nil {
		g.logger.Info("discord gateway connected",
			slog.String("username", r.User.Username),
			slog.Int("guilds", len(r.Guilds)))
	}

	go g.runCatchUp(context.Background())
}

func (g *Gateway) onGuildCreate(s *discordgo.Session, e *discordgo.GuildCreate) {
	ctx := context.Background()

	guildID := parseSnowflake(e.ID)
	if guildID == 0 {
		return
	}
	if g.service.guildFilter != 0 && guildID != g.service.guildFilter {
		return
	}

	if _, err := g.service.ensureGuild(ctx, guildID, e.Name); err != nil {
		g.logError("failed to register guild", err, slog.Int64("guild_id", guildID))
		return
	}

	members := make([]consent.Member, 0, len(e.Members))
	for _, m := range e.Members {
		if m.User == nil {
			continue
		}
		members = append(members, consent.Member{
			UserID:   parseSnowflake(m.User.ID),
			UserName: m.User.Username,
			Bot:      m.User.Bot,
		})
	}
	if _, err := g.consents.AutoGrantForMembers(ctx, guildID, members); err != nil {
		g.logError("failed to auto-grant consent", err, slog.Int64("guild_id", guildID))
	}
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, e *discordgo.MessageCreate) {
	channelName, guildName := g.resolveNames(s, e.ChannelID, e.GuildID)

	if _, err := g.service.LogMessage(context.Background(), e.Message, channelName, guildName, SourceGateway); err != nil {
		g.logError("failed to log message", err, slog.String("message_id", e.ID))
	}
}

func (g *Gateway) onMessageUpdate(s *discordgo.Session, e *discordgo.MessageUpdate) {
	channelName, guildName := g.resolveNames(s, e.ChannelID, e.GuildID)

	if err := g.service.RecordEdit(context.Background(), e.Message, channelName, guildName); err != nil {
		g.logError("failed to record edit", err, slog.String("message_id", e.ID))
	}
}

func (g *Gateway) onMessageDelete(s *discordgo.Session, e *discordgo.MessageDelete) {
	messageID := parseSnowflake(e.ID)
	channelID := parseSnowflake(e.ChannelID)
	if messageID == 0 {
		return
	}

	if err := g.service.RecordDelete(context.Background(), messageID, channelID); err != nil {
		g.logError("failed to record deletion", err, slog.String("message_id", e.ID))
	}
}

func (g *Gateway) onMessageDeleteBulk(s *discordgo.Session, e *discordgo.MessageDeleteBulk) {
	channelID := parseSnowflake(e.ChannelID)

	ids := make([]int64, 0, len(e.Messages))
	for _, raw := range e.Messages {
		if id := parseSnowflake(raw); id != 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	if err := g.service.RecordBulkDelete(context.Background(), channelID, ids); err != nil {
		g.logError("failed to record bulk deletion", err, slog.Int64("channel_id", channelID))
	}
}

func (g *Gateway) onReactionAdd(s *discordgo.Session, e *discordgo.MessageReactionAdd) {
	g.recordReaction(s, e.MessageReaction, "add")
}

func (g *Gateway) onReactionRemove(s *discordgo.Session, e *discordgo.MessageReactionRemove) {
	g.recordReaction(s, e.MessageReaction, "remove")
}

func (g *Gateway) recordReaction(s *discordgo.Session, r *discordgo.MessageReaction, kind string) {
	messageID := parseSnowflake(r.MessageID)
	if messageID == 0 {
		return
	}

	event := &models.ReactionEvent{
		MessageID: messageID,
		Type:      kind,
		Emoji:     r.Emoji.APIName(),
		UserID:    parseSnowflake(r.UserID),
	}
	if user, err := s.User(r.UserID); err == nil {
		event.UserName = validator.SanitizeName(user.Username)
	}

	if err := g.service.RecordReaction(context.Background(), event); err != nil {
		g.logError("failed to record reaction", err, slog.String("message_id", r.MessageID))
	}
}

// resolveNames looks up the human names for a channel and guild from
// the session state cache. Misses return empty strings, the ingest
// service falls back to stored names.
func (g *Gateway) resolveNames(s *discordgo.Session, channelID, guildID string) (string, string) {
	var channelName, guildName string
	if s == nil || s.State == nil {
		return "", ""
	}
	if channel, err := s.State.Channel(channelID); err == nil {
		channelName = channel.Name
	}
	if guild, err := s.State.Guild(guildID); err == nil {
		guildName = guild.Name
	}
	return channelName, guildName
}

func (g *Gateway) logError(msg string, err error, attrs ...slog.Attr) {
	if g.logger == nil {
		return
	}
	args := make([]any, 0, len(attrs)+1)
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.Any("error", err))
	g.logger.Error(msg, args...)
}
