package services

import (
	"context"
	"strings"

	"giftmarket/internal/models"
	"giftmarket/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxPrice is the largest value a decimal(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// Announcer is told about new stores and products once their rows are committed.
// Implementations must not block for long and never fail the caller.
type Announcer interface {
	StoreCreated(ctx context.Context, store *models.Store)
	ProductCreated(ctx context.Context, product *models.Product, store *models.Store)
}

// StoreInput is the editable part of a store.
type StoreInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=255"`
	Description string `json:"description" form:"description"`
}

// ProductInput is the editable part of a product.
type ProductInput struct {
	Name              string          `json:"name" validate:"required,max=255"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock" validate:"gte=0"`
	ImageRef          string          `json:"image_ref" validate:"max=255"`
	PersonalizedText  bool            `json:"personalized_text"`
	PersonalizedImage bool            `json:"personalized_image"`
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return validationError("Validation failed", map[string]string{"Price": "Price must not be negative"})
	}
	if in.Price.GreaterThan(maxPrice) {
		return validationError("Validation failed", map[string]string{"Price": "Price is too large"})
	}
	in.Price = in.Price.Round(2)
	return nil
}

func (in *ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.ImageRef = in.ImageRef
	p.PersonalizedText = in.PersonalizedText
	p.PersonalizedImage = in.PersonalizedImage
}

// Dashboard is everything a vendor sees on their landing page.
type Dashboard struct {
	Profile  *models.VendorProfile `json:"profile"`
	Stores   []models.Store        `json:"stores"`
	Products []models.Product      `json:"products"`
}

// CatalogService manages stores and products.
type CatalogService struct {
	access    *AccessControl
	vendors   repositories.VendorRepository
	stores    repositories.StoreRepository
	products  repositories.ProductRepository
	announcer Announcer
	log       *zap.Logger
}

// NewCatalogService creates a new CatalogService. announcer may be nil.
func NewCatalogService(
	access *AccessControl,
	vendors repositories.VendorRepository,
	stores repositories.StoreRepository,
	products repositories.ProductRepository,
	announcer Announcer,
	log *zap.Logger,
) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{
		access:    access,
		vendors:   vendors,
		stores:    stores,
		products:  products,
		announcer: announcer,
		log:       log,
	}
}

// CreateStore opens a store for the caller, provisioning their vendor profile on first use.
func (s *CatalogService) CreateStore(ctx context.Context, userID string, in StoreInput) (*models.Store, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	profile, err := s.access.EnsureVendor(ctx, userID)
	if err != nil {
		return nil, err
	}

	store := &models.Store{VendorID: profile.ID, Name: in.Name, Description: in.Description}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, internal(err, "failed to create store")
	}
	s.log.Info("store created", zap.String("store_id", store.ID), zap.String("vendor_id", profile.ID))

	if s.announcer != nil {
		s.announcer.StoreCreated(ctx, store)
	}
	return store, nil
}

// OwnedStore loads storeID and checks the caller's profile owns it.
func (s *CatalogService) OwnedStore(ctx context.Context, userID, storeID string) (*models.Store, error) {
	profile, err := s.access.RequireVendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, lookup(err, "store")
	}
	if !ownsStore(profile, store) {
		return nil, forbidden("You do not own this store.")
	}
	return store, nil
}

// UpdateStore edits a store owned by the caller.
func (s *CatalogService) UpdateStore(ctx context.Context, userID, storeID string, in StoreInput) (*models.Store, error) {
	store, err := s.OwnedStore(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	store.Name = in.Name
	store.Description = in.Description
	if err := s.stores.Update(ctx, store); err != nil {
		return nil, internal(err, "failed to update store")
	}
	return store, nil
}

// DeleteStore removes a store owned by the caller along with its products.
func (s *CatalogService) DeleteStore(ctx context.Context, userID, storeID string) error {
	if _, err := s.OwnedStore(ctx, userID, storeID); err != nil {
		return err
	}
	if err := s.stores.Delete(ctx, storeID); err != nil {
		return lookup(err, "store")
	}
	s.log.Info("store deleted", zap.String("store_id", storeID))
	return nil
}

func (s *CatalogService) GetStore(ctx context.Context, id string) (*models.Store, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "store")
	}
	return store, nil
}

// ListStores lists every store, or those of one vendor profile when vendorID is set.
func (s *CatalogService) ListStores(ctx context.Context, vendorID string) ([]models.Store, error) {
	stores, err := s.stores.List(ctx, repositories.StoreFilter{VendorID: vendorID})
	if err != nil {
		return nil, internal(err, "failed to list stores")
	}
	return stores, nil
}

// ListVendorStores lists the caller's own stores.
func (s *CatalogService) ListVendorStores(ctx context.Context, userID string) ([]models.Store, error) {
	profile, err := s.access.RequireVendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ListStores(ctx, profile.ID)
}

// CreateProduct lists a product in one of the caller's stores. A store that
// exists but belongs to someone else is reported as not found.
func (s *CatalogService) CreateProduct(ctx context.Context, userID, storeID string, in ProductInput) (*models.Product, error) {
	profile, err := s.access.RequireVendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.GetByIDForVendor(ctx, storeID, profile.ID)
	if err != nil {
		return nil, lookup(err, "store")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	product := &models.Product{StoreID: store.ID}
	in.apply(product)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, internal(err, "failed to create product")
	}
	product.Store = store
	s.log.Info("product created", zap.String("product_id", product.ID), zap.String("store_id", store.ID))

	if s.announcer != nil {
		s.announcer.ProductCreated(ctx, product, store)
	}
	return product, nil
}

// OwnedProduct walks product -> store -> vendor and checks it ends at the caller.
func (s *CatalogService) OwnedProduct(ctx context.Context, userID, productID string) (*models.Product, error) {
	profile, err := s.access.RequireVendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, lookup(err, "product")
	}
	if !ownsStore(profile, product.Store) {
		return nil, forbidden("You do not own this product.")
	}
	return product, nil
}

// UpdateProduct edits a product in one of the caller's stores.
func (s *CatalogService) UpdateProduct(ctx context.Context, userID, productID string, in ProductInput) (*models.Product, error) {
	product, err := s.OwnedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	in.apply(product)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, internal(err, "failed to update product")
	}
	return product, nil
}

// DeleteProduct removes a product from one of the caller's stores.
func (s *CatalogService) DeleteProduct(ctx context.Context, userID, productID string) error {
	if _, err := s.OwnedProduct(ctx, userID, productID); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return lookup(err, "product")
	}
	s.log.Info("product deleted", zap.String("product_id", productID))
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "product")
	}
	return product, nil
}

// ListProducts lists every product, newest first, or those of one store.
func (s *CatalogService) ListProducts(ctx context.Context, storeID string) ([]models.Product, error) {
	products, err := s.products.List(ctx, repositories.ProductFilter{StoreID: storeID})
	if err != nil {
		return nil, internal(err, "failed to list products")
	}
	return products, nil
}

// VendorDashboard collects the caller's profile, stores and their products.
func (s *CatalogService) VendorDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	profile, err := s.access.RequireVendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	stores, err := s.ListStores(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(stores))
	for i := range stores {
		ids[i] = stores[i].ID
	}
	products, err := s.products.List(ctx, repositories.ProductFilter{StoreIDs: ids})
	if err != nil {
		return nil, internal(err, "failed to list products")
	}
	return &Dashboard{Profile: profile, Stores: stores, Products: products}, nil
}

// VendorProfileInput is the editable part of a vendor profile.
type VendorProfileInput struct {
	StoreName string `json:"store_name" form:"store_name" validate:"required,max=255"`
}

// UpdateVendorProfile renames the caller's vendor profile.
func (s *CatalogService) UpdateVendorProfile(ctx context.Context, userID string, in VendorProfileInput) (*models.VendorProfile, error) {
	profile, err := s.access.RequireVendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	in.StoreName = strings.TrimSpace(in.StoreName)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	profile.StoreName = in.StoreName
	if err := s.vendors.Update(ctx, profile); err != nil {
		return nil, internal(err, "failed to update vendor profile")
	}
	return profile, nil
}
