package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/models"
	apperrors "github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/logger"
)

// Review log actions.
const (
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// ErrNotPendingReview is returned when a decision targets a listing that is
// not awaiting review.
var ErrNotPendingReview = apperrors.NewConflict("NOT_PENDING_REVIEW", "Homestay is not pending verification")

// PendingHomestaysOptions filters the review queue.
type PendingHomestaysOptions struct {
	District string
	Page     int
	PerPage  int
}

// ReviewDetail is the full picture an administrator sees before deciding.
type ReviewDetail struct {
	Homestay models.Homestay            `json:"homestay"`
	History  []models.HomestayReviewLog `json:"history"`
}

// ReviewService handles the administrative review of new listings.
type ReviewService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewReviewService constructs a ReviewService instance.
func NewReviewService(db *gorm.DB) (*ReviewService, error) {
	if db == nil {
		return nil, errors.New("review service: db is required")
	}
	return &ReviewService{db: db, log: logger.WithModule("review")}, nil
}

// PendingHomestays lists listings awaiting review, oldest first. A non-empty
// district restricts the queue, which handlers set from the reviewer's scope.
func (s *ReviewService) PendingHomestays(ctx context.Context, opts PendingHomestaysOptions) ([]models.Homestay, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := normalisePage(opts.Page, opts.PerPage)

	query := s.db.WithContext(ctx).Model(&models.Homestay{}).
		Where("status = ?", models.HomestayPendingVerification)
	if opts.District != "" {
		query = query.Where("district = ?", opts.District)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("review service: count pending: %w", err)
	}

	var homestays []models.Homestay
	err := query.
		Preload("Owner").
		Order("created_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&homestays).Error
	if err != nil {
		return nil, 0, fmt.Errorf("review service: list pending: %w", err)
	}

	return homestays, total, nil
}

// HomestayDetail loads one listing with its owner, rooms and review history.
func (s *ReviewService) HomestayDetail(ctx context.Context, id string) (*ReviewDetail, error) {
	ctx = ensureContext(ctx)

	var homestay models.Homestay
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Rooms").
		Where("id = ?", id).
		First(&homestay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomestayNotFound
		}
		return nil, fmt.Errorf("review service: load homestay: %w", err)
	}

	var history []models.HomestayReviewLog
	err = s.db.WithContext(ctx).
		Where("homestay_id = ?", id).
		Order("created_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("review service: load history: %w", err)
	}

	return &ReviewDetail{Homestay: homestay, History: history}, nil
}

// Approve activates a pending listing.
func (s *ReviewService) Approve(ctx context.Context, homestayID, reviewerID, comments string) (*models.Homestay, error) {
	return s.decide(ctx, homestayID, reviewerID, ReviewApproved, "", comments)
}

// Reject deactivates a pending listing. A reason is mandatory so the owner
// knows what to fix.
func (s *ReviewService) Reject(ctx context.Context, homestayID, reviewerID, reason string) (*models.Homestay, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewBadRequest("a rejection reason is required")
	}
	return s.decide(ctx, homestayID, reviewerID, ReviewRejected, reason, "")
}

func (s *ReviewService) decide(ctx context.Context, homestayID, reviewerID, action, reason, comments string) (*models.Homestay, error) {
	ctx = ensureContext(ctx)

	newStatus := models.HomestayActive
	if action == ReviewRejected {
		newStatus = models.HomestayInactive
	}

	var homestay models.Homestay
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", homestayID).First(&homestay).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHomestayNotFound
			}
			return fmt.Errorf("review service: load homestay: %w", err)
		}

		// Guarded update: only one reviewer decision can win.
		result := tx.Model(&models.Homestay{}).
			Where("id = ? AND status = ?", homestayID, models.HomestayPendingVerification).
			Update("status", newStatus)
		if result.Error != nil {
			return fmt.Errorf("review service: update status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotPendingReview
		}

		entry := &models.HomestayReviewLog{
			HomestayID: homestayID,
			ReviewerID: reviewerID,
			Action:     action,
			Reason:     reason,
			Comments:   comments,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("review service: log decision: %w", err)
		}

		homestay.Status = newStatus
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, err
	}

	s.log.Info("homestay reviewed",
		zap.String("homestay_id", homestayID),
		zap.String("reviewer_id", reviewerID),
		zap.String("action", action),
	)

	return &homestay, nil
}
