package handlers

import (
	"giftmarket/internal/middleware"
	"giftmarket/internal/services"
	"giftmarket/pkg/media"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogHandler serves stores, products and the vendor area.
type CatalogHandler struct {
	catalog *services.CatalogService
	reviews *services.ReviewService
	media   media.Resolver
	log     *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService, reviews *services.ReviewService, resolver media.Resolver, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, reviews: reviews, media: resolver, log: log}
}

// RegisterRoutes registers catalog and vendor routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router, requireAuth, optionalAuth fiber.Handler) {
	router.Get("/stores", h.ListStores)
	router.Get("/stores/:storeID", h.GetStore)
	router.Get("/stores/:storeID/products", h.ListStoreProducts)
	router.Get("/vendors/:vendorID/stores", h.ListVendorStoresPublic)
	router.Get("/products", h.ListProducts)
	router.Get("/products/:productID", optionalAuth, h.GetProduct)

	vendor := router.Group("/vendor")
	vendor.Get("/dashboard", requireAuth, h.Dashboard)
	vendor.Patch("/profile", requireAuth, h.UpdateProfile)
	vendor.Get("/my-stores", requireAuth, h.MyStores)
	vendor.Post("/stores", requireAuth, h.CreateStore)
	vendor.Put("/stores/:storeID", requireAuth, h.UpdateStore)
	vendor.Delete("/stores/:storeID", requireAuth, h.DeleteStore)
	vendor.Post("/stores/:storeID/products", requireAuth, h.CreateProduct)
	vendor.Put("/products/:productID", requireAuth, h.UpdateProduct)
	vendor.Delete("/products/:productID", requireAuth, h.DeleteProduct)
	vendor.Get("/reviews", requireAuth, h.VendorReviews)
}

func (h *CatalogHandler) ListStores(c *fiber.Ctx) error {
	stores, err := h.catalog.ListStores(c.UserContext(), "")
	if err != nil {
		return respondError(c, h.log, "Could not list stores", err)
	}
	return c.JSON(stores)
}

func (h *CatalogHandler) GetStore(c *fiber.Ctx) error {
	store, err := h.catalog.GetStore(c.UserContext(), c.Params("storeID"))
	if err != nil {
		return respondError(c, h.log, "Could not get store", err)
	}
	return c.JSON(store)
}

func (h *CatalogHandler) ListStoreProducts(c *fiber.Ctx) error {
	store, err := h.catalog.GetStore(c.UserContext(), c.Params("storeID"))
	if err != nil {
		return respondError(c, h.log, "Could not list products", err)
	}
	products, err := h.catalog.ListProducts(c.UserContext(), store.ID)
	if err != nil {
		return respondError(c, h.log, "Could not list products", err)
	}
	return c.JSON(products)
}

func (h *CatalogHandler) ListVendorStoresPublic(c *fiber.Ctx) error {
	stores, err := h.catalog.ListStores(c.UserContext(), c.Params("vendorID"))
	if err != nil {
		return respondError(c, h.log, "Could not list stores", err)
	}
	return c.JSON(stores)
}

func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.catalog.ListProducts(c.UserContext(), c.Query("store_id"))
	if err != nil {
		return respondError(c, h.log, "Could not list products", err)
	}
	return c.JSON(products)
}

// GetProduct returns the product with its reviews, rating summary and image URL.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	detail, err := h.reviews.ProductDetail(c.UserContext(), c.Params("productID"), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, "Could not get product", err)
	}

	imageURL := ""
	if h.media != nil && detail.Product.ImageRef != "" {
		if imageURL, err = h.media.URL(c.UserContext(), detail.Product.ImageRef); err != nil {
			h.log.Warn("failed to resolve product image", zap.String("product_id", detail.Product.ID), zap.Error(err))
			imageURL = ""
		}
	}
	return c.JSON(fiber.Map{
		"product":           detail.Product,
		"image_url":         imageURL,
		"reviews":           detail.Reviews,
		"average_rating":    detail.AverageRating,
		"review_count":      detail.ReviewCount,
		"user_has_reviewed": detail.UserHasReviewed,
	})
}

func (h *CatalogHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.catalog.VendorDashboard(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, "Could not load dashboard", err)
	}
	return c.JSON(dash)
}

func (h *CatalogHandler) UpdateProfile(c *fiber.Ctx) error {
	var req services.VendorProfileInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	profile, err := h.catalog.UpdateVendorProfile(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, "Could not update profile", err)
	}
	return c.JSON(profile)
}

func (h *CatalogHandler) MyStores(c *fiber.Ctx) error {
	stores, err := h.catalog.ListVendorStores(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, "Could not list stores", err)
	}
	return c.JSON(stores)
}

func (h *CatalogHandler) CreateStore(c *fiber.Ctx) error {
	var req services.StoreInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	store, err := h.catalog.CreateStore(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, "Could not create store", err)
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

func (h *CatalogHandler) UpdateStore(c *fiber.Ctx) error {
	var req services.StoreInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	store, err := h.catalog.UpdateStore(c.UserContext(), middleware.UserID(c), c.Params("storeID"), req)
	if err != nil {
		return respondError(c, h.log, "Could not update store", err)
	}
	return c.JSON(store)
}

func (h *CatalogHandler) DeleteStore(c *fiber.Ctx) error {
	if err := h.catalog.DeleteStore(c.UserContext(), middleware.UserID(c), c.Params("storeID")); err != nil {
		return respondError(c, h.log, "Could not delete store", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	product, err := h.catalog.CreateProduct(c.UserContext(), middleware.UserID(c), c.Params("storeID"), req)
	if err != nil {
		return respondError(c, h.log, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var req services.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	product, err := h.catalog.UpdateProduct(c.UserContext(), middleware.UserID(c), c.Params("productID"), req)
	if err != nil {
		return respondError(c, h.log, "Could not update product", err)
	}
	return c.JSON(product)
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.catalog.DeleteProduct(c.UserContext(), middleware.UserID(c), c.Params("productID")); err != nil {
		return respondError(c, h.log, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) VendorReviews(c *fiber.Ctx) error {
	reviews, err := h.reviews.VendorReviews(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, "Could not list reviews", err)
	}
	return c.JSON(reviews)
}
