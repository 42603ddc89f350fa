package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a buyer's active, uncommitted order. A buyer has at most one.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Total sums the line subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
	}
	return total
}

// CartItem is one line of a cart. Price is the product price captured when the
// line was first added.
type CartItem struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID               string          `json:"cart_id" gorm:"uniqueIndex:idx_cart_product;type:varchar(36);not null"`
	ProductID            string          `json:"product_id" gorm:"uniqueIndex:idx_cart_product;type:varchar(36);not null"`
	Quantity             int             `json:"quantity" gorm:"not null;default:1"`
	Price                decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	PersonalizedText     string          `json:"personalized_text,omitempty" gorm:"type:varchar(255)"`
	PersonalizedImageRef string          `json:"personalized_image_ref,omitempty" gorm:"type:varchar(255)"`
	AddedAt              time.Time       `json:"added_at" gorm:"autoCreateTime"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Subtotal is the snapshotted price times quantity.
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
