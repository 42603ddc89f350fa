package repositories

import (
	"context"

	"giftmarket/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// ListByBuyer returns the buyer's orders except those in excluded statuses, newest first.
	ListByBuyer(ctx context.Context, buyerID string, excluded ...models.OrderStatus) ([]models.Order, error)
	GetForBuyer(ctx context.Context, id, buyerID string) (*models.Order, error)
	// HasPurchased reports whether the buyer has an order line for the product in
	// an order whose status counts as a purchase.
	HasPurchased(ctx context.Context, buyerID, productID string) (bool, error)
}
