package models

import (
	"time"
)

// Message represents a Discord message captured by the ingest pipeline.
// The primary key is the Discord snowflake, so gateway events and catch-up
// runs upsert into the same row.
type Message struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ChannelID           int64      `gorm:"not null;index" json:"channel_id"`
	ChannelName         string     `gorm:"size:100" json:"channel_name"`
	GuildID             int64      `gorm:"index" json:"guild_id"`
	GuildName           string     `gorm:"size:100" json:"guild_name,omitempty"`
	AuthorID            int64      `gorm:"not null;index" json:"author_id"`
	AuthorName          string     `gorm:"size:100" json:"author_name"`
	AuthorDiscriminator string     `gorm:"size:4" json:"author_discriminator,omitempty"`
	AuthorBot           bool       `gorm:"default:false" json:"author_bot"`
	Content             string     `json:"content"`
	Pinned              bool       `gorm:"default:false" json:"pinned"`
	TTS                 bool       `gorm:"default:false" json:"tts"`
	ReferencedMessageID *int64     `json:"referenced_message_id,omitempty"`
	ConsentLevel        int        `gorm:"default:3" json:"consent_level"`
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`
	EditedAt            *time.Time `json:"edited_at,omitempty"`
	Deleted             bool       `gorm:"default:false;index" json:"deleted"`
	DeletedAt           *time.Time `json:"deleted_at,omitempty"`
	BulkDeleted         bool       `gorm:"default:false" json:"bulk_deleted"`
	IsCatchup           bool       `gorm:"default:false" json:"is_catchup"`
	LoggedAt            time.Time  `gorm:"autoCreateTime" json:"logged_at"`

	// Relationships
	Attachments []Attachment    `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Embeds      []Embed         `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"embeds,omitempty"`
	Edits       []MessageEdit   `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"edits,omitempty"`
	Reactions   []ReactionEvent `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
	Stickers    []Sticker       `gorm:"many2many:message_stickers" json:"stickers,omitempty"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// MessageListItem is a lightweight version for list views and the HTML table
type MessageListItem struct {
	ID              int64      `json:"id"`
	ChannelID       int64      `json:"channel_id"`
	ChannelName     string     `json:"channel_name"`
	AuthorID        int64      `json:"author_id"`
	AuthorName      string     `json:"author_name"`
	Content         string     `json:"content"`
	CreatedAt       time.Time  `json:"created_at"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
	Deleted         bool       `json:"deleted"`
	AttachmentCount int        `json:"attachment_count"`
	EmbedCount      int        `json:"embed_count"`
	EditCount       int        `json:"edit_count"`
}

// MessageFilter narrows message list queries
type MessageFilter struct {
	ChannelID      int64
	GuildID        int64
	AuthorID       int64
	IncludeDeleted bool
}
