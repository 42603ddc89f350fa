package handlers

import (
	"giftmarket/internal/middleware"
	"giftmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/register/vendor", h.HandleRegisterVendor)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", requireAuth, h.HandleLogout)
}

// HandleRegister handles new buyer registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	user, err := h.authService.RegisterBuyer(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, "Registration failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// VendorRegisterRequest is a buyer registration plus the vendor's store name.
type VendorRegisterRequest struct {
	services.RegisterInput
	StoreName string `json:"store_name"`
}

// HandleRegisterVendor handles new vendor registration.
func (h *AuthHandler) HandleRegisterVendor(c *fiber.Ctx) error {
	var req VendorRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	user, profile, err := h.authService.RegisterVendor(c.UserContext(), req.RegisterInput, req.StoreName)
	if err != nil {
		return respondError(c, h.log, "Registration failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Vendor registered successfully",
		"user":    user,
		"vendor":  profile,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, req); !ok {
		return err
	}

	token, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, "Authentication failed", err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleLogout revokes the presented token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.Token(c)); err != nil {
		return respondError(c, h.log, "Logout failed", err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
