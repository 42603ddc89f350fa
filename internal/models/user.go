package models

import "time"

// Role distinguishes buyers from vendors. It is chosen once by the signup path.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleVendor Role = "vendor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleVendor
}

// User represents a marketplace account.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash
	Role      Role      `json:"role" gorm:"type:varchar(10);default:buyer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsVendor reports whether the user signed up as a vendor.
func (u *User) IsVendor() bool {
	return u.Role == RoleVendor
}
