package models

// Attachment represents a file attached to a captured message.
// FilePath is empty until the ingest pipeline has downloaded the file
// into local storage.
type Attachment struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	MessageID   int64  `gorm:"not null;index" json:"message_id"`
	Filename    string `gorm:"size:255" json:"filename"`
	URL         string `gorm:"size:500" json:"url"`
	ContentType string `gorm:"size:100" json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
	FilePath    string `gorm:"size:500" json:"file_path,omitempty"`
	Downloaded  bool   `gorm:"default:false" json:"downloaded"`

	// Relationships
	Message Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
