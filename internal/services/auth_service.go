package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"giftmarket/internal/models"
	"giftmarket/internal/repositories"
	"giftmarket/pkg/tokenstore"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued JWT stays valid.
const DefaultTokenTTL = 24 * time.Hour

// RegisterInput is the signup form shared by buyers and vendors.
type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
}

// Claims are the authenticated identity carried by a token.
type Claims struct {
	UserID    string
	Username  string
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	revoked   tokenstore.Blacklist
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, revoked tokenstore.Blacklist, jwtSecret string, tokenTTL time.Duration, log *zap.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		userRepo:  userRepo,
		revoked:   revoked,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// RegisterBuyer creates a buyer account.
func (s *AuthService) RegisterBuyer(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.newUser(ctx, in, models.RoleBuyer)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, registrationError(err)
	}
	s.log.Info("buyer registered", zap.String("user_id", user.ID))
	return user, nil
}

// RegisterVendor creates a vendor account and its profile together. An empty
// storeName falls back to the default profile name.
func (s *AuthService) RegisterVendor(ctx context.Context, in RegisterInput, storeName string) (*models.User, *models.VendorProfile, error) {
	storeName = strings.TrimSpace(storeName)
	if len(storeName) > 255 {
		return nil, nil, validationError("Validation failed", map[string]string{"StoreName": "Field 'StoreName' failed on the 'max' tag"})
	}
	user, err := s.newUser(ctx, in, models.RoleVendor)
	if err != nil {
		return nil, nil, err
	}
	if storeName == "" {
		storeName = models.DefaultStoreName(user.Username)
	}
	profile := &models.VendorProfile{StoreName: storeName}
	if err := s.userRepo.CreateVendor(ctx, user, profile); err != nil {
		return nil, nil, registrationError(err)
	}
	s.log.Info("vendor registered", zap.String("user_id", user.ID), zap.String("vendor_id", profile.ID))
	return user, profile, nil
}

func (s *AuthService) newUser(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// Check if username or email already exists
	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, newError(KindConflict, nil, "username '%s' already taken", in.Username)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internal(err, "failed to check username")
	}
	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, newError(KindConflict, nil, "email '%s' already registered", in.Email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internal(err, "failed to check email")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal(err, "failed to hash password")
	}
	return &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashedPassword),
		Role:     role,
	}, nil
}

func registrationError(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return newError(KindConflict, err, "username or email already registered")
	}
	return internal(err, "failed to register user")
}

// Authenticate checks a username and password pair.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, internal(err, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates a user and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"jti":      uuid.NewString(),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", internal(err, "failed to generate token")
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT and checks it has not been revoked.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, newError(KindUnauthorized, err, "invalid token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, newError(KindUnauthorized, nil, "invalid token")
	}

	claims := &Claims{}
	claims.UserID, _ = mc["user_id"].(string)
	claims.Username, _ = mc["username"].(string)
	claims.TokenID, _ = mc["jti"].(string)
	role, _ := mc["role"].(string)
	claims.Role = models.Role(role)
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if claims.UserID == "" || claims.TokenID == "" {
		return nil, newError(KindUnauthorized, nil, "invalid token claims")
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, internal(err, "failed to check token revocation")
		}
		if revoked {
			return nil, newError(KindUnauthorized, nil, "token has been revoked")
		}
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return err
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.TokenID, claims.ExpiresAt.Sub(s.now())); err != nil {
		return internal(err, "failed to revoke token")
	}
	s.log.Info("token revoked", zap.String("user_id", claims.UserID))
	return nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "user")
	}
	return user, nil
}
