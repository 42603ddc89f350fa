package repositories

import (
	"context"

	"giftmarket/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// CreateVendor stores a vendor user and its profile atomically.
	CreateVendor(ctx context.Context, user *models.User, profile *models.VendorProfile) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
