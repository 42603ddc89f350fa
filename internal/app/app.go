// Package app assembles the HTTP application from its dependencies.
package app

import (
	"errors"
	"strings"
	"time"

	"giftmarket/internal/config"
	"giftmarket/internal/handlers"
	"giftmarket/internal/middleware"
	"giftmarket/internal/repositories"
	"giftmarket/internal/services"
	"giftmarket/internal/web"
	"giftmarket/pkg/mailer"
	"giftmarket/pkg/media"
	"giftmarket/pkg/tokenstore"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external resources the application runs on.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Log       *zap.Logger
	Blacklist tokenstore.Blacklist
	Mailer    mailer.Mailer
	Announcer services.Announcer
	Media     media.Resolver
}

// Services groups the business services so callers outside HTTP can reach them.
type Services struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Cart    *services.CartService
	Reviews *services.ReviewService
}

// NewServices wires repositories into services.
func NewServices(d Deps) *Services {
	userRepo := repositories.NewGORMUserRepository(d.DB)
	vendorRepo := repositories.NewGORMVendorRepository(d.DB)
	storeRepo := repositories.NewGORMStoreRepository(d.DB)
	productRepo := repositories.NewGORMProductRepository(d.DB)
	cartRepo := repositories.NewGORMCartRepository(d.DB)
	orderRepo := repositories.NewGORMOrderRepository(d.DB)
	reviewRepo := repositories.NewGORMReviewRepository(d.DB)

	access := services.NewAccessControl(userRepo, vendorRepo)
	return &Services{
		Auth:    services.NewAuthService(userRepo, d.Blacklist, d.Config.JWTSecret, d.Config.JWTTTL, d.Log),
		Catalog: services.NewCatalogService(access, vendorRepo, storeRepo, productRepo, d.Announcer, d.Log),
		Cart: services.NewCartService(cartRepo, orderRepo, productRepo, userRepo, d.Mailer, services.CheckoutConfig{
			EmailPolicy:  services.EmailPolicy(d.Config.CheckoutEmailPolicy),
			EmailTimeout: d.Config.EmailTimeout,
		}, d.Log),
		Reviews: services.NewReviewService(access, reviewRepo, productRepo, orderRepo, d.Log),
	}
}

// New builds the fiber application serving the JSON API under /api/v1 and the
// HTML pages at the root.
func New(d Deps) (*fiber.App, error) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Blacklist == nil {
		d.Blacklist = tokenstore.NewMemoryBlacklist()
	}
	if d.Mailer == nil {
		d.Mailer = mailer.NewNopMailer(d.Log)
	}
	if d.Media == nil {
		d.Media = media.NewStaticResolver(d.Config.MediaBaseURL)
	}
	svc := NewServices(d)

	engine, err := web.NewEngine()
	if err != nil {
		return nil, err
	}
	app := fiber.New(fiber.Config{
		AppName:      "giftmarket",
		Views:        engine,
		ErrorHandler: errorHandler(d.Log),
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	requireAuth := middleware.AuthRequired(svc.Auth, d.Log)
	optionalAuth := middleware.OptionalAuth(svc.Auth)

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(svc.Auth, d.Log).RegisterRoutes(apiV1, requireAuth)
	handlers.NewCatalogHandler(svc.Catalog, svc.Reviews, d.Media, d.Log).RegisterRoutes(apiV1, requireAuth, optionalAuth)
	handlers.NewCartHandler(svc.Cart, d.Log).RegisterRoutes(apiV1, requireAuth)
	handlers.NewReviewHandler(svc.Reviews, d.Log).RegisterRoutes(apiV1, requireAuth)

	pages := web.New(web.Config{
		SecureCookies: d.Config.SessionSecure,
		SessionTTL:    d.Config.JWTTTL,
	}, svc.Auth, svc.Catalog, svc.Cart, svc.Reviews, d.Media, d.Log)
	pages.RegisterRoutes(app)

	return app, nil
}

// errorHandler answers errors that escaped the handlers: JSON under /api,
// plain text elsewhere.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(code).JSON(fiber.Map{"message": message, "error": message})
		}
		return c.Status(code).SendString(message)
	}
}
