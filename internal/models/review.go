package models

import "time"

// DefaultRating is used when a review is submitted without a rating.
const DefaultRating = 5

// Review is a user's rating of a product. A user reviews a product at most once.
type Review struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID        string    `json:"product_id" gorm:"uniqueIndex:idx_review_product_user;type:varchar(36);not null"`
	UserID           string    `json:"user_id" gorm:"uniqueIndex:idx_review_product_user;type:varchar(36);not null"`
	Rating           int       `json:"rating" gorm:"not null;default:5" validate:"gte=1,lte=5"`
	Comment          string    `json:"comment" gorm:"type:text;not null" validate:"required"`
	VerifiedPurchase bool      `json:"verified_purchase" gorm:"default:false"` // True if user purchased product
	CreatedAt        time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
