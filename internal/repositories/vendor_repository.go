package repositories

import (
	"context"
	"fmt"

	"giftmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VendorRepository defines the interface for vendor profile data access.
type VendorRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.VendorProfile, error)
	GetByID(ctx context.Context, id string) (*models.VendorProfile, error)
	// Ensure returns the profile of profile.UserID, inserting profile if none exists.
	Ensure(ctx context.Context, profile *models.VendorProfile) (*models.VendorProfile, error)
	Update(ctx context.Context, profile *models.VendorProfile) error
}

// GORMVendorRepository is a GORM implementation of VendorRepository.
type GORMVendorRepository struct {
	db *gorm.DB
}

// NewGORMVendorRepository creates a new instance of GORMVendorRepository.
func NewGORMVendorRepository(db *gorm.DB) *GORMVendorRepository {
	return &GORMVendorRepository{db: db}
}

func (r *GORMVendorRepository) GetByUserID(ctx context.Context, userID string) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("vendor profile for user %s", userID))
	}
	return &profile, nil
}

func (r *GORMVendorRepository) GetByID(ctx context.Context, id string) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("vendor profile with ID %s", id))
	}
	return &profile, nil
}

// Ensure inserts with ON CONFLICT DO NOTHING on the unique user_id and re-reads,
// so concurrent callers all observe the same row.
func (r *GORMVendorRepository) Ensure(ctx context.Context, profile *models.VendorProfile) (*models.VendorProfile, error) {
	ensureID(&profile.ID)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to provision vendor profile: %w", err)
	}
	return r.GetByUserID(ctx, profile.UserID)
}

func (r *GORMVendorRepository) Update(ctx context.Context, profile *models.VendorProfile) error {
	res := r.db.WithContext(ctx).Model(profile).Updates(map[string]interface{}{
		"store_name": profile.StoreName,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update vendor profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("vendor profile with ID %s not found for update: %w", profile.ID, ErrNotFound)
	}
	return nil
}
