package repositories

import (
	"context"

	"giftmarket/internal/models"
)

// ProductFilter narrows product listings. Empty fields do not filter.
type ProductFilter struct {
	StoreID  string
	StoreIDs []string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	// GetByID loads the product with its store.
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	// Delete removes the product with its reviews and cart lines. Order lines keep their snapshot.
	Delete(ctx context.Context, id string) error
}
