package services

import (
	"context"
	"math"
	"strings"

	"giftmarket/internal/models"
	"giftmarket/internal/repositories"

	"go.uber.org/zap"
)

// ReviewInput is a submitted review. A zero rating means the default.
type ReviewInput struct {
	Rating  int    `json:"rating" form:"rating"`
	Comment string `json:"comment" form:"comment"`
}

// ProductDetail is a product page: the product, its reviews and their summary.
type ProductDetail struct {
	Product         *models.Product `json:"product"`
	Reviews         []models.Review `json:"reviews"`
	AverageRating   *float64        `json:"average_rating"`
	ReviewCount     int             `json:"review_count"`
	UserHasReviewed bool            `json:"user_has_reviewed"`
}

// ReviewService handles product reviews.
type ReviewService struct {
	access   *AccessControl
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	log      *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	access *AccessControl,
	reviews repositories.ReviewRepository,
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	log *zap.Logger,
) *ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{
		access:   access,
		reviews:  reviews,
		products: products,
		orders:   orders,
		log:      log,
	}
}

// SubmitReview records the caller's review of productID. The review is marked
// as a verified purchase when the caller has a placed order containing the product.
func (s *ReviewService) SubmitReview(ctx context.Context, userID, productID string, in ReviewInput) (*models.Review, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, lookup(err, "product")
	}

	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return nil, validationError("Comment cannot be empty.", map[string]string{"Comment": "Comment cannot be empty."})
	}
	rating := in.Rating
	if rating == 0 {
		rating = models.DefaultRating
	}
	if rating < 1 || rating > 5 {
		return nil, validationError("Rating must be between 1 and 5.", map[string]string{"Rating": "Rating must be between 1 and 5."})
	}

	exists, err := s.reviews.Exists(ctx, product.ID, userID)
	if err != nil {
		return nil, internal(err, "failed to check existing review")
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	purchased, err := s.orders.HasPurchased(ctx, userID, product.ID)
	if err != nil {
		return nil, internal(err, "failed to check purchases")
	}

	review := &models.Review{
		ProductID:        product.ID,
		UserID:           userID,
		Rating:           rating,
		Comment:          comment,
		VerifiedPurchase: purchased,
	}
	created, err := s.reviews.Create(ctx, review)
	if err != nil {
		return nil, internal(err, "failed to save review")
	}
	// lost a race with a concurrent submission
	if !created {
		return nil, ErrAlreadyReviewed
	}
	s.log.Info("review submitted", zap.String("product_id", product.ID), zap.String("user_id", userID),
		zap.Bool("verified_purchase", purchased))
	return review, nil
}

// ProductDetail loads a product page. viewerID may be empty for anonymous visitors.
func (s *ReviewService) ProductDetail(ctx context.Context, productID, viewerID string) (*ProductDetail, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, lookup(err, "product")
	}
	reviews, err := s.reviews.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, internal(err, "failed to list reviews")
	}

	detail := &ProductDetail{
		Product:       product,
		Reviews:       reviews,
		AverageRating: AverageRating(reviews),
		ReviewCount:   len(reviews),
	}
	if viewerID != "" {
		for i := range reviews {
			if reviews[i].UserID == viewerID {
				detail.UserHasReviewed = true
				break
			}
		}
	}
	return detail, nil
}

// AverageRating is the mean rating rounded to one decimal, or nil without reviews.
func AverageRating(reviews []models.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for i := range reviews {
		sum += reviews[i].Rating
	}
	avg := math.Round(float64(sum)/float64(len(reviews))*10) / 10
	return &avg
}

// VendorReviews lists reviews left on the caller's products.
func (s *ReviewService) VendorReviews(ctx context.Context, userID string) ([]models.Review, error) {
	profile, err := s.access.RequireVendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByVendor(ctx, profile.ID)
	if err != nil {
		return nil, internal(err, "failed to list reviews")
	}
	return reviews, nil
}
