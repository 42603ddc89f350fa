package database_test

import (
	"testing"

	"giftmarket/internal/database"
	"giftmarket/internal/database/dbtest"
	"giftmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(database.Config{Driver: "oracle", DSN: "x"}, nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrateCreatesTables(t *testing.T) {
	db := dbtest.Open(t)

	for _, m := range []any{
		&models.User{}, &models.VendorProfile{}, &models.Store{}, &models.Product{},
		&models.Cart{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}, &models.Review{},
	} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	require.True(t, db.Migrator().HasIndex(&models.CartItem{}, "idx_cart_product"))
	require.True(t, db.Migrator().HasIndex(&models.Review{}, "idx_review_product_user"))
}
