package models

import (
	"time"
)

// Guild is a Discord server the bot has joined. Messages are only recorded
// for guilds with Monitored set.
type Guild struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Monitored bool      `gorm:"default:true" json:"monitored"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Channels []Channel `gorm:"foreignKey:GuildID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Guild
func (Guild) TableName() string {
	return "guilds"
}
