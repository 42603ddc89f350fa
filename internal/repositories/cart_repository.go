package repositories

import (
	"context"

	"giftmarket/internal/models"
)

// Personalization carries the optional per-line customisation of a cart line.
type Personalization struct {
	Text     string
	ImageRef string
}

// Empty reports whether no personalization was supplied.
func (p Personalization) Empty() bool {
	return p.Text == "" && p.ImageRef == ""
}

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUserID loads the buyer's cart with its lines and their products.
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	// AddProduct upserts the buyer's cart and the line for product: a new line
	// starts at quantity 1 with the current product price, an existing line is
	// incremented by one.
	AddProduct(ctx context.Context, userID string, product *models.Product, p Personalization) (*models.CartItem, error)
	// GetItemForUser only matches lines of userID's cart.
	GetItemForUser(ctx context.Context, itemID, userID string) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error
	// Checkout converts the buyer's cart into an order and removes the cart in
	// one transaction. beforeCommit runs inside the transaction; an error from it
	// rolls everything back. Returns models.ErrEmptyCart when there is nothing to check out.
	Checkout(ctx context.Context, userID string, beforeCommit func(*models.Order) error) (*models.Order, error)
}
