package models

import "time"

// Store is owned by a vendor profile and contains products.
type Store struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VendorID    string    `json:"vendor_id" gorm:"index;type:varchar(36);not null"`
	Name        string    `json:"name" gorm:"type:varchar(255)" validate:"required,max=255"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
