package models

import (
	"time"
)

// ConsentLevel controls how much of a user's activity is recorded
type ConsentLevel int

const (
	ConsentNone     ConsentLevel = 0 // nothing is logged
	ConsentMetadata ConsentLevel = 1 // timestamps and channel only
	ConsentContent  ConsentLevel = 2 // metadata plus message content
	ConsentFull     ConsentLevel = 3 // metadata, content and attachments
)

// String returns a human-readable description of the level
func (l ConsentLevel) String() string {
	switch l {
	case ConsentNone:
		return "no data collection"
	case ConsentMetadata:
		return "metadata only"
	case ConsentContent:
		return "metadata and content"
	case ConsentFull:
		return "metadata, content and attachments"
	default:
		return "unknown"
	}
}

// ConsentRecord stores a user's data-collection consent for one guild.
// Absence of a record means the opt-out default applies (full consent).
type ConsentRecord struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	GuildID            int64        `gorm:"not null;uniqueIndex:idx_consent_guild_user" json:"guild_id"`
	UserID             int64        `gorm:"not null;uniqueIndex:idx_consent_guild_user;index" json:"user_id"`
	UserName           string       `gorm:"size:100" json:"user_name,omitempty"`
	Level              ConsentLevel `gorm:"default:3" json:"level"`
	Active             bool         `gorm:"default:true;index" json:"active"`
	Initials           string       `gorm:"size:10" json:"initials,omitempty"`
	AutoGranted        bool         `gorm:"default:false" json:"auto_granted"`
	BackfillHistorical bool         `gorm:"default:false" json:"backfill_historical"`
	ConsentedAt        time.Time    `gorm:"autoCreateTime" json:"consented_at"`
	RevokedAt          *time.Time   `json:"revoked_at,omitempty"`
	UpdatedAt          time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for ConsentRecord
func (ConsentRecord) TableName() string {
	return "consent_records"
}
