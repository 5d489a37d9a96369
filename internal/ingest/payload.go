// Package ingest turns Discord gateway traffic into stored message
// records: payload conversion, consent filtering, attachment download,
// restart catch-up and the boot marker.
package ingest

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/guildlog/guildlog-backend/internal/consent"
	"github.com/guildlog/guildlog-backend/internal/models"
	"github.com/guildlog/guildlog-backend/internal/validator"
)

// BuildMessage converts a gateway message into the stored model,
// applying the consent level to content and attachments. Snowflakes
// that fail to parse become zero and are caught by the caller's
// validation.
func BuildMessage(m *discordgo.Message, level models.ConsentLevel, isCatchup bool) *models.Message {
	msg := &models.Message{
		ID:           parseSnowflake(m.ID),
		ChannelID:    parseSnowflake(m.ChannelID),
		GuildID:      parseSnowflake(m.GuildID),
		Content:      consent.ApplyToContent(level, validator.SanitizeContent(m.Content)),
		Pinned:       m.Pinned,
		TTS:          m.TTS,
		ConsentLevel: int(level),
		CreatedAt:    m.Timestamp.UTC(),
		IsCatchup:    isCatchup,
		LoggedAt:     time.Now().UTC(),
	}

	if m.Author != nil {
		msg.AuthorID = parseSnowflake(m.Author.ID)
		msg.AuthorName = validator.SanitizeName(m.Author.Username)
		msg.AuthorDiscriminator = m.Author.Discriminator
		msg.AuthorBot = m.Author.Bot
	}

	if m.EditedTimestamp != nil {
		edited := m.EditedTimestamp.UTC()
		msg.EditedAt = &edited
	}

	if m.MessageReference != nil && m.MessageReference.MessageID != "" {
		ref := parseSnowflake(m.MessageReference.MessageID)
		msg.ReferencedMessageID = &ref
	}

	msg.Attachments = buildAttachments(m, msg.ID)

	if consent.AllowContent(level) {
		msg.Embeds = buildEmbeds(m, msg.ID)
		msg.Stickers = buildStickers(m)
	}

	return msg
}

// buildAttachments keeps attachment metadata at every logged level.
// The files themselves are only downloaded at full consent.
func buildAttachments(m *discordgo.Message, messageID int64) []models.Attachment {
	if len(m.Attachments) == 0 {
		return nil
	}

	attachments := make([]models.Attachment, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, models.Attachment{
			ID:          parseSnowflake(a.ID),
			MessageID:   messageID,
			Filename:    a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
			SizeBytes:   int64(a.Size),
		})
	}
	return attachments
}

func buildEmbeds(m *discordgo.Message, messageID int64) []models.Embed {
	if len(m.Embeds) == 0 {
		return nil
	}

	embeds := make([]models.Embed, 0, len(m.Embeds))
	for _, e := range m.Embeds {
		embed := models.Embed{
			MessageID:   messageID,
			Type:        string(e.Type),
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
		}
		if e.Color != 0 {
			color := e.Color
			embed.Color = &color
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, models.EmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		embeds = append(embeds, embed)
	}
	return embeds
}

func buildStickers(m *discordgo.Message) []models.Sticker {
	if len(m.StickerItems) == 0 {
		return nil
	}

	stickers := make([]models.Sticker, 0, len(m.StickerItems))
	for _, s := range m.StickerItems {
		stickers = append(stickers, models.Sticker{
			ID:   parseSnowflake(s.ID),
			Name: s.Name,
			URL:  fmt.Sprintf("https://cdn.discordapp.com/stickers/%s.png", s.ID),
		})
	}
	return stickers
}

// parseSnowflake converts a snowflake string to int64, zero on failure
func parseSnowflake(s string) int64 {
	id, err := validator.ValidateSnowflake(s)
	if err != nil {
		return 0
	}
	return id
}
