package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/guildlog/guildlog-backend/internal/models"
	"gorm.io/gorm"
)

// AdminRepository defines the interface for admin account data access
type AdminRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}

// adminRepository implements AdminRepository using GORM
type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates a new AdminRepository instance
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

// Create creates a new admin account
func (r *adminRepository) Create(ctx context.Context, user *models.AdminUser) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("admin '%s' already exists: %w", user.Username, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create admin: %w", result.Error)
	}
	return nil
}

// GetByUsername retrieves an admin account by username
func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	result := r.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin by username: %w", result.Error)
	}
	return &user, nil
}

// Count returns the number of admin accounts
func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
