package models

// Embed represents a rich embed carried by a message
type Embed struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	MessageID   int64  `gorm:"not null;index" json:"message_id"`
	Type        string `gorm:"size:50" json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `gorm:"size:500" json:"url,omitempty"`
	Color       *int   `json:"color,omitempty"`

	// Relationships
	Message Message      `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	Fields  []EmbedField `gorm:"foreignKey:EmbedID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
}

// TableName returns the table name for Embed
func (Embed) TableName() string {
	return "embeds"
}

// EmbedField is a single name/value pair inside an embed
type EmbedField struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	EmbedID uint   `gorm:"not null;index" json:"embed_id"`
	Name    string `json:"name,omitempty"`
	Value   string `json:"value,omitempty"`
	Inline  bool   `gorm:"default:false" json:"inline"`
}

// TableName returns the table name for EmbedField
func (EmbedField) TableName() string {
	return "embed_fields"
}
