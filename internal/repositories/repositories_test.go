package repositories_test

import (
	"context"
	"testing"

	"giftmarket/internal/database/dbtest"
	"giftmarket/internal/models"
	"giftmarket/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	users    *repositories.GORMUserRepository
	vendors  *repositories.GORMVendorRepository
	stores   *repositories.GORMStoreRepository
	products *repositories.GORMProductRepository
	carts    *repositories.GORMCartRepository
	orders   *repositories.GORMOrderRepository
	reviews  *repositories.GORMReviewRepository
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.Open(t)
	return &fixture{
		db:       db,
		users:    repositories.NewGORMUserRepository(db),
		vendors:  repositories.NewGORMVendorRepository(db),
		stores:   repositories.NewGORMStoreRepository(db),
		products: repositories.NewGORMProductRepository(db),
		carts:    repositories.NewGORMCartRepository(db),
		orders:   repositories.NewGORMOrderRepository(db),
		reviews:  repositories.NewGORMReviewRepository(db),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x", Role: models.RoleBuyer}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) product(t *testing.T, price string) *models.Product {
	ctx := context.Background()
	vendor := &models.User{Username: "vendor-" + price, Email: "vendor-" + price + "@example.com", Role: models.RoleVendor}
	profile := &models.VendorProfile{StoreName: "Shop"}
	require.NoError(t, f.users.CreateVendor(ctx, vendor, profile))
	store := &models.Store{VendorID: profile.ID, Name: "Shop"}
	require.NoError(t, f.stores.Create(ctx, store))
	p := &models.Product{StoreID: store.ID, Name: "Mug " + price, Price: decimal.RequireFromString(price), Stock: 3}
	require.NoError(t, f.products.Create(ctx, p))
	return p
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	err := f.users.Create(context.Background(), &models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	_, err = f.users.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestVendorRepository_EnsureIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "vera")

	first, err := f.vendors.Ensure(ctx, &models.VendorProfile{UserID: u.ID, StoreName: "vera's Store"})
	require.NoError(t, err)
	second, err := f.vendors.Ensure(ctx, &models.VendorProfile{UserID: u.ID, StoreName: "other"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "vera's Store", second.StoreName)

	var n int64
	require.NoError(t, f.db.Model(&models.VendorProfile{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCartRepository_AddSameProductTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "bob")
	p := f.product(t, "10.00")

	first, err := f.carts.AddProduct(ctx, buyer.ID, p, repositories.Personalization{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	second, err := f.carts.AddProduct(ctx, buyer.ID, p, repositories.Personalization{Text: "For Ann"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)
	assert.Equal(t, "For Ann", second.PersonalizedText)

	cart, err := f.carts.GetByUserID(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "20.00", cart.Items[0].Subtotal().StringFixed(2))
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, p.Name, cart.Items[0].Product.Name)

	var carts int64
	require.NoError(t, f.db.Model(&models.Cart{}).Where("user_id = ?", buyer.ID).Count(&carts).Error)
	assert.EqualValues(t, 1, carts)
}

func TestCartRepository_AddDifferentProductsToExistingCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "bob")
	mug := f.product(t, "10.00")
	card := f.product(t, "3.50")

	first, err := f.carts.AddProduct(ctx, buyer.ID, mug, repositories.Personalization{})
	require.NoError(t, err)
	second, err := f.carts.AddProduct(ctx, buyer.ID, card, repositories.Personalization{})
	require.NoError(t, err)
	assert.Equal(t, first.CartID, second.CartID)
	assert.NotEqual(t, first.ID, second.ID)

	cart, err := f.carts.GetByUserID(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "13.50", cart.Total().StringFixed(2))
}

func TestCartRepository_GetItemForUserIsScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	other := f.user(t, "other")
	p := f.product(t, "5.00")

	item, err := f.carts.AddProduct(ctx, owner.ID, p, repositories.Personalization{})
	require.NoError(t, err)

	_, err = f.carts.GetItemForUser(ctx, item.ID, other.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	got, err := f.carts.GetItemForUser(ctx, item.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	assert.Error(t, f.carts.UpdateItemQuantity(ctx, item.ID, 0))
	require.NoError(t, f.carts.UpdateItemQuantity(ctx, item.ID, 4))
	require.NoError(t, f.carts.DeleteItem(ctx, item.ID))
	assert.ErrorIs(t, f.carts.DeleteItem(ctx, item.ID), repositories.ErrNotFound)
}

func TestCartRepository_CheckoutUsesSnapshotPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "carol")
	p := f.product(t, "10.00")

	_, err := f.carts.AddProduct(ctx, buyer.ID, p, repositories.Personalization{})
	require.NoError(t, err)
	_, err = f.carts.AddProduct(ctx, buyer.ID, p, repositories.Personalization{})
	require.NoError(t, err)

	p.Price = decimal.RequireFromString("99.00")
	require.NoError(t, f.products.Update(ctx, p))

	order, err := f.carts.Checkout(ctx, buyer.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, "20.00", order.TotalPrice.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Mug 10.00", order.Items[0].ProductName)

	_, err = f.carts.GetByUserID(ctx, buyer.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	stored, err := f.orders.GetForBuyer(ctx, order.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", stored.TotalPrice.StringFixed(2))
	require.Len(t, stored.Items, 1)

	bought, err := f.orders.HasPurchased(ctx, buyer.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, bought)
}

func TestCartRepository_CheckoutEmpty(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "dave")

	_, err := f.carts.Checkout(context.Background(), buyer.ID, nil)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestCartRepository_CheckoutRollsBackOnHookError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "erin")
	p := f.product(t, "7.50")

	_, err := f.carts.AddProduct(ctx, buyer.ID, p, repositories.Personalization{})
	require.NoError(t, err)

	hookErr := assert.AnError
	_, err = f.carts.Checkout(ctx, buyer.ID, func(*models.Order) error { return hookErr })
	assert.ErrorIs(t, err, hookErr)

	cart, err := f.carts.GetByUserID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	orders, err := f.orders.ListByBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepository_ListByBuyerExcludes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "fay")

	pending := &models.Order{ID: "00000000-0000-0000-0000-000000000001", BuyerID: buyer.ID, Status: models.OrderStatusPending}
	placed := &models.Order{ID: "00000000-0000-0000-0000-000000000002", BuyerID: buyer.ID, Status: models.OrderStatusShipped}
	require.NoError(t, f.db.Create(pending).Error)
	require.NoError(t, f.db.Create(placed).Error)

	orders, err := f.orders.ListByBuyer(ctx, buyer.ID, models.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, placed.ID, orders[0].ID)

	_, err = f.orders.GetForBuyer(ctx, placed.ID, "someone-else")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestReviewRepository_OnePerProductAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "gus")
	p := f.product(t, "3.00")

	created, err := f.reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: u.ID, Rating: 4, Comment: "nice"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: u.ID, Rating: 1, Comment: "again"})
	require.NoError(t, err)
	assert.False(t, created)

	reviews, err := f.reviews.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)
	require.NotNil(t, reviews[0].User)
	assert.Equal(t, "gus", reviews[0].User.Username)

	withStore, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, withStore.Store)
	vendorReviews, err := f.reviews.ListByVendor(ctx, withStore.Store.VendorID)
	require.NoError(t, err)
	assert.Len(t, vendorReviews, 1)
}

func TestStoreRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "hal")
	p := f.product(t, "12.00")

	_, err := f.carts.AddProduct(ctx, u.ID, p, repositories.Personalization{})
	require.NoError(t, err)
	_, err = f.reviews.Create(ctx, &models.Review{ProductID: p.ID, UserID: u.ID, Rating: 5, Comment: "great"})
	require.NoError(t, err)

	require.NoError(t, f.stores.Delete(ctx, p.StoreID))

	_, err = f.products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	reviews, err := f.reviews.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	cart, err := f.carts.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	assert.ErrorIs(t, f.stores.Delete(ctx, p.StoreID), repositories.ErrNotFound)
}

func TestProductRepository_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "1.00")
	f.product(t, "2.00")

	all, err := f.products.List(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byStore, err := f.products.List(ctx, repositories.ProductFilter{StoreID: a.StoreID})
	require.NoError(t, err)
	require.Len(t, byStore, 1)
	assert.Equal(t, a.ID, byStore[0].ID)

	none, err := f.products.List(ctx, repositories.ProductFilter{StoreIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}
