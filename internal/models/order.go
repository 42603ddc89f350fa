package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle stage of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CountsAsPurchase reports whether an order in this status marks its items as bought.
func (s OrderStatus) CountsAsPurchase() bool {
	return s == OrderStatusProcessing || s == OrderStatusShipped || s == OrderStatusCompleted
}

// PurchaseStatuses lists the statuses for which CountsAsPurchase is true.
func PurchaseStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusCompleted}
}

// OrderItem represents a single line of a placed order.
type OrderItem struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID              string          `json:"order_id" gorm:"index;type:varchar(36);not null"`
	ProductID            string          `json:"product_id" gorm:"index;type:varchar(36);not null"`
	ProductName          string          `json:"product_name" gorm:"type:varchar(255)"`
	Quantity             int             `json:"quantity" gorm:"not null"`
	PersonalizedText     string          `json:"personalized_text,omitempty" gorm:"type:varchar(255)"`
	PersonalizedImageRef string          `json:"personalized_image_ref,omitempty" gorm:"type:varchar(255)"`
	Price                decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"` // Price at the time of cart add
}

// Subtotal is the snapshotted price times quantity.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a placed order.
type Order struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID    string          `json:"buyer_id" gorm:"index;type:varchar(36);not null"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null;default:0"`
	Status     OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null"`
	Items      []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ErrEmptyCart is returned when converting a cart without lines.
var ErrEmptyCart = errors.New("cart has no items")

// NewOrderFromCart converts a cart into a processing order. Line prices are the
// snapshots taken at add time; the live product price is never consulted.
func NewOrderFromCart(cart *Cart) (*Order, error) {
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &Order{
		BuyerID: cart.UserID,
		Status:  OrderStatusProcessing,
		Items:   make([]OrderItem, 0, len(cart.Items)),
	}
	total := decimal.Zero
	for _, line := range cart.Items {
		item := OrderItem{
			ProductID:            line.ProductID,
			Quantity:             line.Quantity,
			PersonalizedText:     line.PersonalizedText,
			PersonalizedImageRef: line.PersonalizedImageRef,
			Price:                line.Price,
		}
		if line.Product != nil {
			item.ProductName = line.Product.Name
		}
		total = total.Add(item.Subtotal())
		order.Items = append(order.Items, item)
	}
	order.TotalPrice = total
	return order, nil
}
