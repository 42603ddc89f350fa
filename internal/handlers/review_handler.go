package handlers

import (
	"giftmarket/internal/middleware"
	"giftmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ReviewHandler accepts product reviews.
type ReviewHandler struct {
	reviews *services.ReviewService
	log     *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *services.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log}
}

func (h *ReviewHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Post("/products/:productID/reviews", requireAuth, h.SubmitReview)
}

func (h *ReviewHandler) SubmitReview(c *fiber.Ctx) error {
	var req services.ReviewInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	review, err := h.reviews.SubmitReview(c.UserContext(), middleware.UserID(c), c.Params("productID"), req)
	if err != nil {
		return respondError(c, h.log, "Could not submit review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Your review has been submitted.",
		"review":  review,
	})
}
