package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item listed in a store.
type Product struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	StoreID           string          `json:"store_id" gorm:"index;type:varchar(36);not null"`
	Name              string          `json:"name" gorm:"type:varchar(255)" validate:"required,max=255"`
	Description       string          `json:"description" gorm:"type:text"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock             int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	ImageRef          string          `json:"image_ref" gorm:"type:varchar(255)"`
	PersonalizedText  bool            `json:"personalized_text" gorm:"default:false"`
	PersonalizedImage bool            `json:"personalized_image" gorm:"default:false"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}
