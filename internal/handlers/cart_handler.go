package handlers

import (
	"giftmarket/internal/middleware"
	"giftmarket/internal/repositories"
	"giftmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the cart, checkout and orders.
type CartHandler struct {
	cart *services.CartService
	log  *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, log: log}
}

// RegisterRoutes registers the cart routes. Every route needs authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("/cart", requireAuth, h.ViewCart)
	router.Post("/cart/items", requireAuth, h.AddItem)
	router.Post("/cart/items/:itemID/increase", requireAuth, h.IncreaseItem)
	router.Post("/cart/items/:itemID/decrease", requireAuth, h.DecreaseItem)
	router.Delete("/cart/items/:itemID", requireAuth, h.RemoveItem)
	router.Post("/checkout", requireAuth, h.Checkout)
	router.Get("/orders", requireAuth, h.ListOrders)
	router.Get("/orders/:orderID", requireAuth, h.GetOrder)
}

func (h *CartHandler) ViewCart(c *fiber.Ctx) error {
	view, err := h.cart.ViewCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, "Could not load cart", err)
	}
	return c.JSON(view)
}

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	ProductID            string `json:"product_id" validate:"required"`
	PersonalizedText     string `json:"personalized_text"`
	PersonalizedImageRef string `json:"personalized_image_ref" validate:"max=255"`
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, req); !ok {
		return err
	}

	item, err := h.cart.AddToCart(c.UserContext(), middleware.UserID(c), req.ProductID, repositories.Personalization{
		Text:     req.PersonalizedText,
		ImageRef: req.PersonalizedImageRef,
	})
	if err != nil {
		return respondError(c, h.log, "Could not add to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CartHandler) IncreaseItem(c *fiber.Ctx) error {
	if err := h.cart.IncreaseQuantity(c.UserContext(), middleware.UserID(c), c.Params("itemID")); err != nil {
		return respondError(c, h.log, "Could not update cart", err)
	}
	return h.ViewCart(c)
}

func (h *CartHandler) DecreaseItem(c *fiber.Ctx) error {
	if err := h.cart.DecreaseQuantity(c.UserContext(), middleware.UserID(c), c.Params("itemID")); err != nil {
		return respondError(c, h.log, "Could not update cart", err)
	}
	return h.ViewCart(c)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.cart.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("itemID")); err != nil {
		return respondError(c, h.log, "Could not update cart", err)
	}
	return h.ViewCart(c)
}

func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	order, err := h.cart.Checkout(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, "Checkout failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (h *CartHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.cart.OrderHistory(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, "Could not list orders", err)
	}
	return c.JSON(orders)
}

func (h *CartHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.cart.GetOrder(c.UserContext(), middleware.UserID(c), c.Params("orderID"))
	if err != nil {
		return respondError(c, h.log, "Could not get order", err)
	}
	return c.JSON(order)
}
