package models

import (
	"time"
)

// Channel is a text channel within a guild. Channels are auto-provisioned
// the first time a message is seen in them.
type Channel struct {
	ID            int64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	GuildID       int64      `gorm:"not null;index" json:"guild_id"`
	Name          string     `gorm:"size:100" json:"name"`
	Monitored     bool       `gorm:"default:true" json:"monitored"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	// Relationships
	Guild    Guild     `gorm:"foreignKey:GuildID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []Message `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Channel
func (Channel) TableName() string {
	return "channels"
}

// ChannelWithMessageCount is used for API responses that include a message count
type ChannelWithMessageCount struct {
	Channel
	MessageCount int64 `json:"message_count"`
}
