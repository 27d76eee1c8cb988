package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
	apperrors "github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/logger"
)

// RoomInput describes a room created alongside a homestay.
type RoomInput struct {
	Name          string
	Capacity      int
	PricePerNight float64
}

// CreateHomestayInput describes a new listing.
type CreateHomestayInput struct {
	OwnerID     string
	Name        string
	Description string
	District    string
	Taluka      string
	Address     string
	Grade       string
	Amenities   datatypes.JSON
	Media       datatypes.JSON
	Rooms       []RoomInput
}

// HomestayFilters captures the public listing filters.
type HomestayFilters struct {
	District string
	Taluka   string
	Grade    string
	Search   string
	Status   string
}

// ListHomestaysOptions controls pagination for homestay listing.
type ListHomestaysOptions struct {
	Page    int
	PerPage int
	Filters HomestayFilters
}

// RoomSummary aggregates a homestay's active rooms for list views.
type RoomSummary struct {
	RoomCount   int     `json:"room_count"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	MaxCapacity int     `json:"max_capacity"`
}

// HomestayListItem is a homestay plus its room aggregates.
type HomestayListItem struct {
	models.Homestay
	RoomSummary RoomSummary `json:"room_summary"`
}

// HomestayDetail is the full public view of one listing.
type HomestayDetail struct {
	models.Homestay
	RoomSummary RoomSummary `json:"room_summary"`
}

// HomestayService manages listings. Only verified owners may create them.
type HomestayService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewHomestayService constructs a HomestayService instance.
func NewHomestayService(db *gorm.DB) (*HomestayService, error) {
	if db == nil {
		return nil, errors.New("homestay service: db is required")
	}
	return &HomestayService{db: db, log: logger.WithModule("homestay")}, nil
}

// Create registers a new listing in pending-verification. The owner must hold
// the homestay-owner role and have a verified Aadhar.
func (s *HomestayService) Create(ctx context.Context, input CreateHomestayInput) (*models.Homestay, error) {
	ctx = ensureContext(ctx)

	var owner models.User
	if err := s.db.WithContext(ctx).Where("id = ?", input.OwnerID).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("homestay service: load owner: %w", err)
	}

	if owner.Role != models.RoleHomestayOwner {
		return nil, apperrors.ErrInsufficientScope.WithMessage("Only homestay owners can create listings")
	}
	if owner.AadhaarStatus != models.VerificationVerified {
		return nil, apperrors.ErrAadhaarRequired
	}

	switch {
	case strings.TrimSpace(input.Name) == "":
		return nil, apperrors.NewBadRequest("name is required")
	case strings.TrimSpace(input.District) == "":
		return nil, apperrors.NewBadRequest("district is required")
	case !models.ValidGrade(input.Grade):
		return nil, apperrors.NewBadRequest("grade must be silver, gold or diamond")
	case len(input.Rooms) == 0:
		return nil, apperrors.NewBadRequest("at least one room is required")
	}
	for _, room := range input.Rooms {
		if strings.TrimSpace(room.Name) == "" {
			return nil, apperrors.NewBadRequest("room name is required")
		}
		if room.Capacity <= 0 {
			return nil, apperrors.NewBadRequest("room capacity must be positive")
		}
		if room.PricePerNight <= 0 {
			return nil, apperrors.NewBadRequest("room price must be positive")
		}
	}

	homestay := &models.Homestay{
		OwnerID:     owner.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		District:    strings.TrimSpace(input.District),
		Taluka:      strings.TrimSpace(input.Taluka),
		Address:     strings.TrimSpace(input.Address),
		Grade:       input.Grade,
		Status:      models.HomestayPendingVerification,
		Amenities:   input.Amenities,
		Media:       input.Media,
	}
	for _, room := range input.Rooms {
		homestay.Rooms = append(homestay.Rooms, models.HomestayRoom{
			Name:          strings.TrimSpace(room.Name),
			Capacity:      room.Capacity,
			PricePerNight: room.PricePerNight,
			IsActive:      true,
		})
	}

	if err := s.db.WithContext(ctx).Create(homestay).Error; err != nil {
		return nil, fmt.Errorf("homestay service: create homestay: %w", err)
	}

	s.log.Info("homestay created",
		zap.String("homestay_id", homestay.ID),
		zap.String("owner_id", owner.ID),
		zap.String("district", homestay.District),
	)

	return homestay, nil
}

// List returns public listings matching the filters, with room aggregates.
func (s *HomestayService) List(ctx context.Context, opts ListHomestaysOptions) ([]HomestayListItem, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage)

	status := opts.Filters.Status
	if status == "" {
		status = models.HomestayActive
	}

	query := s.db.WithContext(ctx).Model(&models.Homestay{}).Where("status = ?", status)
	if opts.Filters.District != "" {
		query = query.Where("district LIKE ?", "%"+opts.Filters.District+"%")
	}
	if opts.Filters.Taluka != "" {
		query = query.Where("taluka LIKE ?", "%"+opts.Filters.Taluka+"%")
	}
	if opts.Filters.Grade != "" {
		query = query.Where("grade = ?", opts.Filters.Grade)
	}
	if opts.Filters.Search != "" {
		term := "%" + opts.Filters.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("homestay service: count homestays: %w", err)
	}

	var homestays []models.Homestay
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&homestays).Error
	if err != nil {
		return nil, 0, fmt.Errorf("homestay service: list homestays: %w", err)
	}

	items := make([]HomestayListItem, 0, len(homestays))
	for _, homestay := range homestays {
		summary, err := s.roomSummary(ctx, homestay.ID)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, HomestayListItem{Homestay: homestay, RoomSummary: *summary})
	}

	return items, total, nil
}

// Get returns one listing with its active rooms.
func (s *HomestayService) Get(ctx context.Context, id string) (*HomestayDetail, error) {
	ctx = ensureContext(ctx)

	var homestay models.Homestay
	err := s.db.WithContext(ctx).
		Preload("Rooms", "is_active = ?", true).
		Where("id = ?", id).
		First(&homestay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomestayNotFound
		}
		return nil, fmt.Errorf("homestay service: load homestay: %w", err)
	}

	summary, err := s.roomSummary(ctx, homestay.ID)
	if err != nil {
		return nil, err
	}

	return &HomestayDetail{Homestay: homestay, RoomSummary: *summary}, nil
}

func (s *HomestayService) roomSummary(ctx context.Context, homestayID string) (*RoomSummary, error) {
	var summary RoomSummary
	row := s.db.WithContext(ctx).
		Model(&models.HomestayRoom{}).
		Select("COUNT(*), COALESCE(MIN(price_per_night), 0), COALESCE(MAX(price_per_night), 0), COALESCE(MAX(capacity), 0)").
		Where("homestay_id = ? AND is_active = ?", homestayID, true).
		Row()
	if err := row.Scan(&summary.RoomCount, &summary.MinPrice, &summary.MaxPrice, &summary.MaxCapacity); err != nil {
		return nil, fmt.Errorf("homestay service: room summary: %w", err)
	}
	return &summary, nil
}
