package models

import (
	"time"
)

// AdminUser is an operator account for the HTML admin view.
// The first account is seeded from environment credentials at startup.
type AdminUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for AdminUser
func (AdminUser) TableName() string {
	return "admin_users"
}
