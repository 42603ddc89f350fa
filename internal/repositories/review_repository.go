package repositories

import (
	"context"
	"fmt"

	"giftmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	// Create inserts the review unless the (product, user) pair already has one.
	// created is false when nothing was inserted.
	Create(ctx context.Context, review *models.Review) (created bool, err error)
	Exists(ctx context.Context, productID, userID string) (bool, error)
	// ListByProduct returns the product's reviews with their authors, newest first.
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	// ListByVendor returns reviews on products of the vendor's stores, newest first.
	ListByVendor(ctx context.Context, vendorID string) ([]models.Review, error)
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) (bool, error) {
	ensureID(&review.ID)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(review)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create review: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GORMReviewRepository) Exists(ctx context.Context, productID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return n > 0, nil
}

func (r *GORMReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *GORMReviewRepository) ListByVendor(ctx context.Context, vendorID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Preload("User").
		Joins("JOIN products ON products.id = reviews.product_id").
		Joins("JOIN stores ON stores.id = products.store_id").
		Where("stores.vendor_id = ?", vendorID).
		Order("reviews.created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor reviews: %w", err)
	}
	return reviews, nil
}
