package repositories

import (
	"context"
	"fmt"

	"giftmarket/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func statusStrings(statuses []models.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *GORMOrderRepository) ListByBuyer(ctx context.Context, buyerID string, excluded ...models.OrderStatus) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Preload("Items").Where("buyer_id = ?", buyerID)
	if len(excluded) > 0 {
		q = q.Where("status NOT IN ?", statusStrings(excluded))
	}
	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) GetForBuyer(ctx context.Context, id, buyerID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ? AND buyer_id = ?", id, buyerID).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("order with ID %s", id))
	}
	return &order, nil
}

func (r *GORMOrderRepository) HasPurchased(ctx context.Context, buyerID, productID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.buyer_id = ? AND order_items.product_id = ? AND orders.status IN ?",
			buyerID, productID, statusStrings(models.PurchaseStatuses())).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchases: %w", err)
	}
	return n > 0, nil
}
