package ingest

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/guildlog/guildlog-backend/internal/consent"
	"github.com/guildlog/guildlog-backend/internal/models"
)

func gatewayMessage() *discordgo.Message {
	return &discordgo.Message{
		ID:        "1",
		ChannelID: "200",
		GuildID:   "100",
		Content:   "hello there",
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Author: &discordgo.User{
			ID:            "500",
			Username:      "alice",
			Discriminator: "0",
		},
	}
}

// ==================== BuildMessage Tests ====================

func TestBuildMessage_FullConsent(t *testing.T) {
	m := gatewayMessage()
	m.Attachments = []*discordgo.MessageAttachment{
		{ID: "10", Filename: "a.png", URL: "https://cdn.example/a.png", ContentType: "image/png", Size: 1024},
	}
	m.Embeds = []*discordgo.MessageEmbed{
		{Type: discordgo.EmbedTypeRich, Title: "Title", Description: "Desc"},
	}

	msg := BuildMessage(m, models.ConsentFull, false)

	assert.EqualValues(t, 1, msg.ID)
	assert.EqualValues(t, 200, msg.ChannelID)
	assert.EqualValues(t, 100, msg.GuildID)
	assert.EqualValues(t, 500, msg.AuthorID)
	assert.Equal(t, "alice", msg.AuthorName)
	assert.Equal(t, "hello there", msg.Content)
	assert.Len(t, msg.Attachments, 1)
	assert.EqualValues(t, 1024, msg.Attachments[0].SizeBytes)
	assert.Len(t, msg.Embeds, 1)
	assert.False(t, msg.IsCatchup)
	assert.Equal(t, int(models.ConsentFull), msg.ConsentLevel)
}

func TestBuildMessage_MetadataLevelRedactsContent(t *testing.T) {
	m := gatewayMessage()
	m.Attachments = []*discordgo.MessageAttachment{
		{ID: "10", Filename: "a.png", URL: "https://cdn.example/a.png"},
	}
	m.Embeds = []*discordgo.MessageEmbed{{Title: "Title"}}

	msg := BuildMessage(m, models.ConsentMetadata, false)

	assert.Equal(t, consent.RedactedContent, msg.Content)
	// attachment metadata is kept below full consent, embeds are not
	assert.Len(t, msg.Attachments, 1)
	assert.Empty(t, msg.Embeds)
}

func TestBuildMessage_EditedAndReference(t *testing.T) {
	m := gatewayMessage()
	edited := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	m.EditedTimestamp = &edited
	m.MessageReference = &discordgo.MessageReference{MessageID: "42"}

	msg := BuildMessage(m, models.ConsentFull, false)

	if assert.NotNil(t, msg.EditedAt) {
		assert.Equal(t, edited, *msg.EditedAt)
	}
	if assert.NotNil(t, msg.ReferencedMessageID) {
		assert.EqualValues(t, 42, *msg.ReferencedMessageID)
	}
}

func TestBuildMessage_NilAuthor(t *testing.T) {
	m := gatewayMessage()
	m.Author = nil

	msg := BuildMessage(m, models.ConsentFull, false)

	assert.Zero(t, msg.AuthorID)
	assert.Empty(t, msg.AuthorName)
}

func TestBuildMessage_CatchupFlag(t *testing.T) {
	msg := BuildMessage(gatewayMessage(), models.ConsentFull, true)
	assert.True(t, msg.IsCatchup)
}

func TestBuildMessage_InvalidSnowflakeBecomesZero(t *testing.T) {
	m := gatewayMessage()
	m.ID = "not-a-snowflake"

	msg := BuildMessage(m, models.ConsentFull, false)
	assert.Zero(t, msg.ID)
}

// ==================== Snowflake Tests ====================

func TestSnowflakeFromTime_RoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	id := SnowflakeFromTime(at)

	// decode the timestamp back out of the snowflake
	ms := (id >> 22) + discordEpoch
	assert.Equal(t, at.UnixMilli(), ms)
}

func TestSnowflakeFromTime_Ordering(t *testing.T) {
	earlier := SnowflakeFromTime(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	later := SnowflakeFromTime(time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestSnowflakeFromTime_PreEpochClampsToZero(t *testing.T) {
	assert.Zero(t, SnowflakeFromTime(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)))
}
