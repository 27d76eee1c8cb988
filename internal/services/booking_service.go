package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
	apperrors "github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/logger"
	"github.com/samudrayan/backend/pkg/metrics"
)

// Statuses that keep a room blocked for its dates.
var blockingStatuses = []string{models.BookingPendingPayment, models.BookingConfirmed}

// CreateBookingInput describes a new reservation request.
type CreateBookingInput struct {
	RoomID    string
	GuestID   string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
	GuestNote string
}

// BookingFilters narrows a homestay's booking list.
type BookingFilters struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// ListBookingsOptions controls the homestay booking listing.
type ListBookingsOptions struct {
	CallerID   string
	CallerRole string
	Page       int
	PerPage    int
	Filters    BookingFilters
}

// BookingPayment is the payment projection attached to a booking row.
type BookingPayment struct {
	Amount               float64 `json:"amount"`
	Status               string  `json:"status"`
	GatewayTransactionID string  `json:"gateway_transaction_id,omitempty"`
}

// BookingListItem joins a booking with its latest payment transaction.
type BookingListItem struct {
	models.Booking
	Payment *BookingPayment `json:"payment,omitempty"`
}

// BookingSummary aggregates the listed bookings for the owner dashboard.
type BookingSummary struct {
	Confirmed int64   `json:"confirmed"`
	Revenue   float64 `json:"revenue"`
}

// BookingService creates reservations and serves the owner's booking list.
type BookingService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// BookingOption customises a BookingService.
type BookingOption func(*BookingService)

// WithBookingClock overrides the time source, used by tests.
func WithBookingClock(now func() time.Time) BookingOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewBookingService constructs a BookingService instance.
func NewBookingService(db *gorm.DB, opts ...BookingOption) (*BookingService, error) {
	if db == nil {
		return nil, errors.New("booking service: db is required")
	}
	s := &BookingService{db: db, log: logger.WithModule("booking"), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create reserves a room for the guest. The booking starts in pending_payment
// and blocks the dates until paid, cancelled or expired.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	ctx = ensureContext(ctx)
	now := s.now()

	checkIn := input.CheckIn.Truncate(24 * time.Hour)
	checkOut := input.CheckOut.Truncate(24 * time.Hour)

	switch {
	case checkIn.Before(now.Truncate(24 * time.Hour).Add(24 * time.Hour)):
		return nil, apperrors.NewBadRequest("check-in must be in the future")
	case !checkOut.After(checkIn):
		return nil, apperrors.NewBadRequest("check-out must be after check-in")
	case input.Guests <= 0:
		return nil, apperrors.NewBadRequest("guest count must be positive")
	}

	var room models.HomestayRoom
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", input.RoomID, true).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("booking service: load room: %w", err)
	}
	if input.Guests > room.Capacity {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("room sleeps at most %d guests", room.Capacity))
	}

	var homestay models.Homestay
	if err := s.db.WithContext(ctx).Where("id = ?", room.HomestayID).First(&homestay).Error; err != nil {
		return nil, fmt.Errorf("booking service: load homestay: %w", err)
	}
	if homestay.Status != models.HomestayActive {
		return nil, ErrRoomNotFound
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	total := float64(nights) * room.PricePerNight

	booking := &models.Booking{
		RoomID:    room.ID,
		GuestID:   input.GuestID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    input.Guests,
		Subtotal:  total,
		Total:     total,
		GuestNote: input.GuestNote,
		Status:    models.BookingPendingPayment,
	}

	// The overlap check and insert share a transaction so two guests racing
	// for the same dates cannot both get through.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		err := tx.Model(&models.Booking{}).
			Where("room_id = ? AND status IN ?", room.ID, blockingStatuses).
			Where("check_in < ? AND check_out > ?", checkOut, checkIn).
			Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("booking service: overlap check: %w", err)
		}
		if overlapping > 0 {
			return ErrRoomUnavailable
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("booking service: create booking: %w", err)
	}

	metrics.BookingsCreated.Inc()
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("room_id", room.ID),
		zap.Int("nights", nights),
	)

	return booking, nil
}

// ListForHomestay returns a homestay's bookings with payment details. Owners
// see their own property; admin roles see any.
func (s *BookingService) ListForHomestay(ctx context.Context, homestayID string, opts ListBookingsOptions) ([]BookingListItem, *BookingSummary, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage)

	var homestay models.Homestay
	if err := s.db.WithContext(ctx).Where("id = ?", homestayID).First(&homestay).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, 0, ErrHomestayNotFound
		}
		return nil, nil, 0, fmt.Errorf("booking service: load homestay: %w", err)
	}

	isAdmin := opts.CallerRole == models.RoleAdmin || opts.CallerRole == models.RoleDistrictAdmin
	if !isAdmin && homestay.OwnerID != opts.CallerID {
		return nil, nil, 0, apperrors.ErrInsufficientScope
	}

	roomIDs := s.db.Model(&models.HomestayRoom{}).Select("id").Where("homestay_id = ?", homestayID)

	query := s.db.WithContext(ctx).Model(&models.Booking{}).Where("room_id IN (?)", roomIDs)
	if opts.Filters.Status != "" {
		query = query.Where("status = ?", opts.Filters.Status)
	}
	if opts.Filters.From != nil {
		query = query.Where("check_in >= ?", *opts.Filters.From)
	}
	if opts.Filters.To != nil {
		query = query.Where("check_in <= ?", *opts.Filters.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, 0, fmt.Errorf("booking service: count bookings: %w", err)
	}

	var bookings []models.Booking
	err := query.
		Preload("Room").
		Preload("Guest").
		Order("check_in DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&bookings).Error
	if err != nil {
		return nil, nil, 0, fmt.Errorf("booking service: list bookings: %w", err)
	}

	items := make([]BookingListItem, 0, len(bookings))
	for _, booking := range bookings {
		item := BookingListItem{Booking: booking}

		var txn models.PaymentTransaction
		err := s.db.WithContext(ctx).
			Where("booking_id = ?", booking.ID).
			Order("created_at DESC").
			First(&txn).Error
		switch {
		case err == nil:
			item.Payment = &BookingPayment{
				Amount:               txn.Amount,
				Status:               txn.Status,
				GatewayTransactionID: txn.GatewayTransactionID,
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil, 0, fmt.Errorf("booking service: load payment: %w", err)
		}

		items = append(items, item)
	}

	summary := &BookingSummary{}
	err = s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("room_id IN (?) AND status = ?", roomIDs, models.BookingConfirmed).
		Count(&summary.Confirmed).Error
	if err != nil {
		return nil, nil, 0, fmt.Errorf("booking service: summary: %w", err)
	}
	err = s.db.WithContext(ctx).Model(&models.Booking{}).
		Select("COALESCE(SUM(total), 0)").
		Where("room_id IN (?) AND status IN ?", roomIDs, []string{models.BookingConfirmed, models.BookingCompleted}).
		Row().Scan(&summary.Revenue)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("booking service: revenue: %w", err)
	}

	return items, summary, total, nil
}

// ExpireStale moves pending_payment bookings older than maxAge to expired,
// releasing their dates. Called by the maintenance job.
func (s *BookingService) ExpireStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	ctx = ensureContext(ctx)
	cutoff := s.now().Add(-maxAge)

	result := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", models.BookingPendingPayment, cutoff).
		Update("status", models.BookingExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("booking service: expire stale: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.log.Info("expired stale bookings", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}
