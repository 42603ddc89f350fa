package repositories

import (
	"context"
	"fmt"

	"giftmarket/internal/models"

	"gorm.io/gorm"
)

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{db: db}
}

// List retrieves stores, oldest first.
func (r *GORMStoreRepository) List(ctx context.Context, filter StoreFilter) ([]models.Store, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if filter.VendorID != "" {
		q = q.Where("vendor_id = ?", filter.VendorID)
	}
	var stores []models.Store
	if err := q.Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

func (r *GORMStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("store with ID %s", id))
	}
	return &store, nil
}

func (r *GORMStoreRepository) GetByIDForVendor(ctx context.Context, id, vendorID string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ? AND vendor_id = ?", id, vendorID).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("store with ID %s", id))
	}
	return &store, nil
}

func (r *GORMStoreRepository) Create(ctx context.Context, store *models.Store) error {
	ensureID(&store.ID)
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

func (r *GORMStoreRepository) Update(ctx context.Context, store *models.Store) error {
	res := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", store.ID).Updates(map[string]interface{}{
		"name":        store.Name,
		"description": store.Description,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update store: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store with ID %s not found for update: %w", store.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMStoreRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := tx.Model(&models.Product{}).Select("id").Where("store_id = ?", id)
		if err := tx.Where("product_id IN (?)", products).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete store reviews: %w", err)
		}
		if err := tx.Where("product_id IN (?)", products).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete store cart lines: %w", err)
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return fmt.Errorf("failed to delete store products: %w", err)
		}
		res := tx.Delete(&models.Store{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete store: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("store with ID %s not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}
