package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"giftmarket/internal/models"
	"giftmarket/internal/repositories"
	"giftmarket/pkg/mailer"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EmailPolicy decides what a failed confirmation email does to a checkout.
type EmailPolicy string

const (
	// EmailPolicyStrict sends before commit; a failed send cancels the checkout.
	EmailPolicyStrict EmailPolicy = "strict"
	// EmailPolicyBestEffort sends after commit; a failed send is only logged.
	EmailPolicyBestEffort EmailPolicy = "best_effort"
)

// Valid reports whether p is a known policy.
func (p EmailPolicy) Valid() bool {
	return p == EmailPolicyStrict || p == EmailPolicyBestEffort
}

// DefaultEmailTimeout bounds a single confirmation email.
const DefaultEmailTimeout = 5 * time.Second

// CheckoutConfig tunes the confirmation email.
type CheckoutConfig struct {
	EmailPolicy  EmailPolicy
	EmailTimeout time.Duration
}

// CartLine is a cart item with its computed subtotal.
type CartLine struct {
	models.CartItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is what a buyer sees when opening their cart.
type CartView struct {
	CartID string          `json:"cart_id,omitempty"`
	Items  []CartLine      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// Empty reports whether the cart has no lines.
func (v *CartView) Empty() bool {
	return len(v.Items) == 0
}

// CartService handles the cart, checkout and order history.
type CartService struct {
	carts    repositories.CartRepository
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	mailer   mailer.Mailer
	cfg      CheckoutConfig
	log      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(
	carts repositories.CartRepository,
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	m mailer.Mailer,
	cfg CheckoutConfig,
	log *zap.Logger,
) *CartService {
	if !cfg.EmailPolicy.Valid() {
		cfg.EmailPolicy = EmailPolicyBestEffort
	}
	if cfg.EmailTimeout <= 0 {
		cfg.EmailTimeout = DefaultEmailTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{
		carts:    carts,
		orders:   orders,
		products: products,
		users:    users,
		mailer:   m,
		cfg:      cfg,
		log:      log,
	}
}

// AddToCart puts one unit of productID into the caller's cart. Personalization
// is only accepted for products that offer it and replaces any earlier value.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, p repositories.Personalization) (*models.CartItem, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, lookup(err, "product")
	}

	p.Text = strings.TrimSpace(p.Text)
	fields := map[string]string{}
	if p.Text != "" && !product.PersonalizedText {
		fields["PersonalizedText"] = "This product does not accept personalized text"
	}
	if len(p.Text) > 255 {
		fields["PersonalizedText"] = "Personalized text must be at most 255 characters"
	}
	if p.ImageRef != "" && !product.PersonalizedImage {
		fields["PersonalizedImageRef"] = "This product does not accept a personalized image"
	}
	if len(fields) > 0 {
		return nil, validationError("Validation failed", fields)
	}

	item, err := s.carts.AddProduct(ctx, userID, product, p)
	if err != nil {
		return nil, internal(err, "failed to add product to cart")
	}
	return item, nil
}

func (s *CartService) ownItem(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	item, err := s.carts.GetItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, lookup(err, "cart item")
	}
	return item, nil
}

// IncreaseQuantity adds one to a line of the caller's cart.
func (s *CartService) IncreaseQuantity(ctx context.Context, userID, itemID string) error {
	item, err := s.ownItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.carts.UpdateItemQuantity(ctx, item.ID, item.Quantity+1); err != nil {
		return lookup(err, "cart item")
	}
	return nil
}

// DecreaseQuantity takes one from a line of the caller's cart, removing the
// line instead of letting it reach zero.
func (s *CartService) DecreaseQuantity(ctx context.Context, userID, itemID string) error {
	item, err := s.ownItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if item.Quantity <= 1 {
		err = s.carts.DeleteItem(ctx, item.ID)
	} else {
		err = s.carts.UpdateItemQuantity(ctx, item.ID, item.Quantity-1)
	}
	if err != nil {
		return lookup(err, "cart item")
	}
	return nil
}

// RemoveItem deletes a line of the caller's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	item, err := s.ownItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return lookup(err, "cart item")
	}
	return nil
}

// ViewCart returns the caller's cart lines and total. A buyer without a cart
// gets an empty view.
func (s *CartService) ViewCart(ctx context.Context, userID string) (*CartView, error) {
	view := &CartView{Items: []CartLine{}, Total: decimal.Zero}
	cart, err := s.carts.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, internal(err, "failed to load cart")
	}

	view.CartID = cart.ID
	for _, item := range cart.Items {
		view.Items = append(view.Items, CartLine{CartItem: item, Subtotal: item.Subtotal()})
	}
	view.Total = cart.Total()
	return view, nil
}

// Checkout turns the caller's cart into a processing order and emails the invoice.
func (s *CartService) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "user")
	}

	var beforeCommit func(*models.Order) error
	if s.cfg.EmailPolicy == EmailPolicyStrict {
		beforeCommit = func(order *models.Order) error {
			if err := s.sendInvoice(ctx, user, order); err != nil {
				return internal(err, "failed to send order confirmation")
			}
			return nil
		}
	}

	order, err := s.carts.Checkout(ctx, userID, beforeCommit)
	if err != nil {
		if errors.Is(err, models.ErrEmptyCart) {
			return nil, ErrCartEmpty
		}
		var serr *Error
		if errors.As(err, &serr) {
			s.log.Error("checkout cancelled", zap.String("user_id", userID), zap.Error(err))
			return nil, serr
		}
		return nil, internal(err, "failed to check out")
	}
	s.log.Info("order placed", zap.String("order_id", order.ID), zap.String("user_id", userID),
		zap.String("total", order.TotalPrice.StringFixed(2)))

	if s.cfg.EmailPolicy == EmailPolicyBestEffort {
		if err := s.sendInvoice(ctx, user, order); err != nil {
			s.log.Warn("failed to send order confirmation", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	return order, nil
}

func (s *CartService) sendInvoice(ctx context.Context, user *models.User, order *models.Order) error {
	if s.mailer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.EmailTimeout)
	defer cancel()
	return s.mailer.Send(ctx, InvoiceMessage(user, order))
}

// InvoiceMessage renders the order confirmation email.
func InvoiceMessage(user *models.User, order *models.Order) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.Username)
	fmt.Fprintf(&b, "Thank you for your order. Here is your invoice for order #%s.\n\n", order.ID)
	for i := range order.Items {
		item := &order.Items[i]
		fmt.Fprintf(&b, "  %s x %d @ %s = %s\n", item.ProductName, item.Quantity, item.Price.StringFixed(2), item.Subtotal().StringFixed(2))
		if item.PersonalizedText != "" {
			fmt.Fprintf(&b, "    Personalized: %s\n", item.PersonalizedText)
		}
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", order.TotalPrice.StringFixed(2))
	fmt.Fprintf(&b, "Status: %s\n", order.Status)

	return mailer.Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Invoice for Order #%s", order.ID),
		Body:    b.String(),
	}
}

// OrderHistory lists the caller's placed orders, newest first.
func (s *CartService) OrderHistory(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByBuyer(ctx, userID, models.OrderStatusPending)
	if err != nil {
		return nil, internal(err, "failed to list orders")
	}
	return orders, nil
}

// GetOrder returns one of the caller's orders.
func (s *CartService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetForBuyer(ctx, orderID, userID)
	if err != nil {
		return nil, lookup(err, "order")
	}
	return order, nil
}
