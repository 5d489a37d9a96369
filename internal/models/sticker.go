package models

// Sticker is a Discord sticker, shared across messages via a join table
type Sticker struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:255" json:"name"`
	URL  string `gorm:"size:500" json:"url"`

	Messages []Message `gorm:"many2many:message_stickers" json:"-"`
}

// TableName returns the table name for Sticker
func (Sticker) TableName() string {
	return "stickers"
}
