package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	iauth "github.com/samudrayan/backend/internal/auth"
	"github.com/samudrayan/backend/internal/models"
	apperrors "github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/logger"
	"github.com/samudrayan/backend/pkg/metrics"
)

// dashboardSections maps a role to the app surfaces its dashboard shows.
var dashboardSections = map[string][]string{
	models.RoleAdmin:         {"users", "verifications", "homestays", "bookings", "reports"},
	models.RoleDistrictAdmin: {"verifications", "homestays", "bookings", "reports"},
	models.RoleTalukaAdmin:   {"verifications", "homestays"},
	models.RoleHomestayOwner: {"homestays", "bookings", "earnings"},
	models.RoleFisherfolk:    {"catch-log", "marketplace"},
	models.RoleArtisan:       {"products", "marketplace"},
	models.RoleNGO:           {"programs", "csr"},
	models.RoleInvestor:      {"opportunities", "blue-economy"},
	models.RoleTourist:       {"explore", "bookings"},
	models.RoleTrainer:       {"courses", "learners"},
}

// RegisterInput describes a new account. The uid must already exist with the
// identity provider; registration only creates the platform profile.
type RegisterInput struct {
	UID      string
	Email    string
	Phone    string
	FullName string
	Role     string
	District string
	Taluka   string
}

// AuthResult bundles the signed-in user, their tokens and dashboard layout.
type AuthResult struct {
	User      *models.User     `json:"user"`
	Tokens    *iauth.TokenPair `json:"tokens"`
	Dashboard []string         `json:"dashboard"`
}

// AuthService handles registration, login and token refresh.
type AuthService struct {
	db       *gorm.DB
	jwt      *iauth.JWTService
	verifier iauth.IdentityVerifier
	log      *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(db *gorm.DB, jwt *iauth.JWTService, verifier iauth.IdentityVerifier) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	if verifier == nil {
		return nil, errors.New("auth service: identity verifier is required")
	}
	return &AuthService{
		db:       db,
		jwt:      jwt,
		verifier: verifier,
		log:      logger.WithModule("auth"),
	}, nil
}

// Register creates a platform profile for an identity-provider account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	uid := strings.TrimSpace(input.UID)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := strings.TrimSpace(input.Phone)
	fullName := strings.TrimSpace(input.FullName)

	switch {
	case uid == "":
		return nil, apperrors.NewBadRequest("uid is required")
	case email == "":
		return nil, apperrors.NewBadRequest("email is required")
	case phone == "":
		return nil, apperrors.NewBadRequest("phone is required")
	case fullName == "":
		return nil, apperrors.NewBadRequest("full_name is required")
	case !models.ValidRole(input.Role):
		return nil, apperrors.NewBadRequest("unknown role")
	case strings.TrimSpace(input.District) == "":
		return nil, apperrors.NewBadRequest("district is required")
	case strings.TrimSpace(input.Taluka) == "":
		return nil, apperrors.NewBadRequest("taluka is required")
	}

	if _, err := s.verifier.Lookup(ctx, uid); err != nil {
		if errors.Is(err, iauth.ErrUnknownIdentity) {
			return nil, apperrors.NewBadRequest("uid is not known to the identity provider")
		}
		return nil, fmt.Errorf("auth service: verify identity: %w", err)
	}

	user := &models.User{
		UID:      uid,
		Email:    email,
		Phone:    phone,
		FullName: fullName,
		Role:     input.Role,
		District: strings.TrimSpace(input.District),
		Taluka:   strings.TrimSpace(input.Taluka),
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role),
		zap.String("district", user.District),
	)

	return s.result(user)
}

// Login authenticates a uid against the identity provider and issues tokens.
// A uid the provider knows but the platform does not gets a tourist profile
// created on the fly, so visitors can browse and book without registering.
func (s *AuthService) Login(ctx context.Context, uid string) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	uid = strings.TrimSpace(uid)
	if uid == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrUnauthorized
	}

	identity, err := s.verifier.Lookup(ctx, uid)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		if errors.Is(err, iauth.ErrUnknownIdentity) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth service: verify identity: %w", err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		provisioned, perr := s.provisionTourist(ctx, identity)
		if perr != nil {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, perr
		}
		user = *provisioned
	case err != nil:
		return nil, fmt.Errorf("auth service: load user: %w", err)
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrForbidden.WithMessage("Account is deactivated")
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return s.result(&user)
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*iauth.TokenPair, error) {
	ctx = ensureContext(ctx)

	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth service: load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrForbidden.WithMessage("Account is deactivated")
	}

	return s.tokensFor(&user)
}

// provisionTourist creates a minimal tourist profile from the provider record.
func (s *AuthService) provisionTourist(ctx context.Context, identity *iauth.Identity) (*models.User, error) {
	if identity.Email == "" || identity.Phone == "" {
		return nil, apperrors.NewBadRequest("identity profile is incomplete; register first")
	}

	user := &models.User{
		UID:      identity.UID,
		Email:    strings.ToLower(identity.Email),
		Phone:    identity.Phone,
		FullName: identity.Name,
		Role:     models.RoleTourist,
		IsActive: true,
	}
	if user.FullName == "" {
		user.FullName = "Guest"
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("auth service: provision tourist: %w", err)
	}

	s.log.Info("tourist auto-provisioned", zap.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) tokensFor(user *models.User) (*iauth.TokenPair, error) {
	pair, err := s.jwt.GeneratePair(iauth.TokenInput{
		UserID:   user.ID,
		Role:     user.Role,
		District: user.District,
		Taluka:   user.Taluka,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: issue tokens: %w", err)
	}
	return pair, nil
}

func (s *AuthService) result(user *models.User) (*AuthResult, error) {
	pair, err := s.tokensFor(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:      user,
		Tokens:    pair,
		Dashboard: dashboardSections[user.Role],
	}, nil
}
