package services

import (
	"context"
	"errors"

	"giftmarket/internal/models"
	"giftmarket/internal/repositories"
)

// AccessControl answers the two questions every vendor operation asks: is the
// caller a vendor, and do they own the thing they are touching.
type AccessControl struct {
	users   repositories.UserRepository
	vendors repositories.VendorRepository
}

// NewAccessControl creates a new AccessControl.
func NewAccessControl(users repositories.UserRepository, vendors repositories.VendorRepository) *AccessControl {
	return &AccessControl{users: users, vendors: vendors}
}

// RequireVendor returns the caller's vendor profile, or a forbidden error when
// the caller has none.
func (a *AccessControl) RequireVendor(ctx context.Context, userID string) (*models.VendorProfile, error) {
	profile, err := a.vendors.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, forbidden("Only vendors can do that.")
	}
	if err != nil {
		return nil, internal(err, "failed to load vendor profile")
	}
	return profile, nil
}

// EnsureVendor is RequireVendor for store creation: a user who signed up as a
// vendor but has no profile yet gets one named after them.
func (a *AccessControl) EnsureVendor(ctx context.Context, userID string) (*models.VendorProfile, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(KindUnauthorized, err, "unknown user")
		}
		return nil, internal(err, "failed to load user")
	}

	profile, err := a.vendors.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internal(err, "failed to load vendor profile")
	}
	if !user.IsVendor() {
		return nil, forbidden("Only vendors can create stores.")
	}

	profile, err = a.vendors.Ensure(ctx, &models.VendorProfile{
		UserID:    user.ID,
		StoreName: models.DefaultStoreName(user.Username),
	})
	if err != nil {
		return nil, internal(err, "failed to provision vendor profile")
	}
	return profile, nil
}

func ownsStore(profile *models.VendorProfile, store *models.Store) bool {
	return store != nil && store.VendorID == profile.ID
}
