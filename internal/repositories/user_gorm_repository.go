package repositories

import (
	"context"
	"fmt"

	"giftmarket/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	ensureID(&user.ID)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return writeError(err, "create user")
	}
	return nil
}

// CreateVendor creates a vendor user together with its profile.
func (r *GORMUserRepository) CreateVendor(ctx context.Context, user *models.User, profile *models.VendorProfile) error {
	ensureID(&user.ID)
	ensureID(&profile.ID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return writeError(err, "create user")
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create vendor profile: %w", err)
		}
		return nil
	})
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("user with username %s", username))
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("user with email %s", email))
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("user with ID %s", id))
	}
	return &user, nil
}
