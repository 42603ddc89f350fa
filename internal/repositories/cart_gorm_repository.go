package repositories

import (
	"context"
	"errors"
	"fmt"

	"giftmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at ASC") }).
		Preload("Items.Product")
}

func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := preloadLines(r.db.WithContext(ctx)).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, lookupError(err, fmt.Sprintf("cart for user %s", userID))
	}
	return &cart, nil
}

func (r *GORMCartRepository) AddProduct(ctx context.Context, userID string, product *models.Product, p Personalization) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart := models.Cart{UserID: userID}
		ensureID(&cart.ID)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Omit(clause.Associations).Create(&cart).Error; err != nil {
			return fmt.Errorf("failed to create cart: %w", err)
		}
		// Re-read into a fresh value: the generated ID only exists if the insert won.
		var existing models.Cart
		if err := tx.First(&existing, "user_id = ?", userID).Error; err != nil {
			return fmt.Errorf("failed to reload cart: %w", err)
		}
		cart = existing

		line := models.CartItem{
			CartID:               cart.ID,
			ProductID:            product.ID,
			Quantity:             1,
			Price:                product.Price,
			PersonalizedText:     p.Text,
			PersonalizedImageRef: p.ImageRef,
		}
		ensureID(&line.ID)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("cart_items.quantity + 1")}),
		}).Omit(clause.Associations).Create(&line).Error; err != nil {
			return fmt.Errorf("failed to add cart line: %w", err)
		}

		if !p.Empty() {
			if err := tx.Model(&models.CartItem{}).
				Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).
				Updates(map[string]interface{}{
					"personalized_text":      p.Text,
					"personalized_image_ref": p.ImageRef,
				}).Error; err != nil {
				return fmt.Errorf("failed to personalize cart line: %w", err)
			}
		}

		return tx.First(&item, "cart_id = ? AND product_id = ?", cart.ID, product.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GORMCartRepository) GetItemForUser(ctx context.Context, itemID, userID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("cart item with ID %s", itemID))
	}
	return &item, nil
}

func (r *GORMCartRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("invalid quantity %d", quantity)
	}
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s not found for update: %w", itemID, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) DeleteItem(ctx context.Context, itemID string) error {
	res := r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s not found for deletion: %w", itemID, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) Checkout(ctx context.Context, userID string, beforeCommit func(*models.Order) error) (*models.Order, error) {
	var order *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := preloadLines(tx.Clauses(clause.Locking{Strength: "UPDATE"})).
			First(&cart, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrEmptyCart
		}
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}

		o, err := models.NewOrderFromCart(&cart)
		if err != nil {
			return err
		}
		ensureID(&o.ID)
		for i := range o.Items {
			ensureID(&o.Items[i].ID)
		}
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart lines: %w", err)
		}
		if err := tx.Delete(&models.Cart{}, "id = ?", cart.ID).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		if beforeCommit != nil {
			if err := beforeCommit(o); err != nil {
				return err
			}
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
