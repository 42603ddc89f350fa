package models

import "time"

// VendorProfile is the one-to-one vendor record that owns stores.
type VendorProfile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	StoreName string    `json:"store_name" gorm:"type:varchar(255)" validate:"required,max=255"`
	Verified  bool      `json:"verified" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultStoreName is the profile name given to vendors provisioned on first store creation.
func DefaultStoreName(username string) string {
	return username + "'s Store"
}
