package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
	apperrors "github.com/samudrayan/backend/pkg/errors"
)

// UpdateProfileInput enumerates the attributes a user may change themselves.
// Everything else (role, district, email) is fixed at registration.
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
}

// MyBookingsOptions filters a user's own booking history.
type MyBookingsOptions struct {
	Status  string
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}

// UserService serves profile reads and the small set of self-service updates.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// UpdateMe applies self-service profile changes.
func (s *UserService) UpdateMe(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, apperrors.NewBadRequest("full_name cannot be empty")
		}
		updates["full_name"] = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, apperrors.NewBadRequest("phone cannot be empty")
		}
		updates["phone"] = phone
	}
	if len(updates) == 0 {
		return s.Me(ctx, userID)
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return nil, apperrors.NewConflict("PHONE_EXISTS", "Phone number is already in use")
		}
		return nil, fmt.Errorf("user service: update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return s.Me(ctx, userID)
}

// MyBookings lists the caller's bookings, newest first.
func (s *UserService) MyBookings(ctx context.Context, userID string, opts MyBookingsOptions) ([]models.Booking, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage)

	query := s.db.WithContext(ctx).Model(&models.Booking{}).Where("guest_id = ?", userID)
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.From != nil {
		query = query.Where("check_in >= ?", *opts.From)
	}
	if opts.To != nil {
		query = query.Where("check_in <= ?", *opts.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count bookings: %w", err)
	}

	var bookings []models.Booking
	err := query.
		Preload("Room").
		Order("check_in DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("user service: list bookings: %w", err)
	}

	return bookings, total, nil
}
