package models

import (
	"time"
)

// MessageEdit is one entry in a message's append-only edit history
type MessageEdit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MessageID  int64     `gorm:"not null;index" json:"message_id"`
	OldContent string    `json:"old_content"`
	NewContent string    `json:"new_content"`
	EditedAt   time.Time `gorm:"autoCreateTime" json:"edited_at"`
}

// TableName returns the table name for MessageEdit
func (MessageEdit) TableName() string {
	return "message_edits"
}

// ReactionEvent records a reaction being added to or removed from a message
type ReactionEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MessageID  int64     `gorm:"not null;index" json:"message_id"`
	Type       string    `gorm:"size:10;not null" json:"type"` // "add" or "remove"
	Emoji      string    `gorm:"size:100" json:"emoji"`
	UserID     int64     `json:"user_id"`
	UserName   string    `gorm:"size:100" json:"user_name,omitempty"`
	OccurredAt time.Time `gorm:"autoCreateTime" json:"occurred_at"`
}

// TableName returns the table name for ReactionEvent
func (ReactionEvent) TableName() string {
	return "reaction_events"
}
