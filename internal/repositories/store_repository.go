package repositories

import (
	"context"

	"giftmarket/internal/models"
)

// StoreFilter narrows store listings. Empty fields do not filter.
type StoreFilter struct {
	VendorID string
}

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	List(ctx context.Context, filter StoreFilter) ([]models.Store, error)
	GetByID(ctx context.Context, id string) (*models.Store, error)
	// GetByIDForVendor only matches stores owned by vendorID.
	GetByIDForVendor(ctx context.Context, id, vendorID string) (*models.Store, error)
	Create(ctx context.Context, store *models.Store) error
	Update(ctx context.Context, store *models.Store) error
	// Delete removes the store with its products and their reviews and cart lines.
	Delete(ctx context.Context, id string) error
}
