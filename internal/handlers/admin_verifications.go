package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/samudrayan/backend/internal/auth"
	"github.com/samudrayan/backend/internal/middleware"
	"github.com/samudrayan/backend/internal/models"
	"github.com/samudrayan/backend/internal/services"
	"github.com/samudrayan/backend/internal/verification"
	appErrors "github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/response"
)

// AdminVerificationHandler serves the review queues: new homestay listings
// and Aadhar verifications needing manual decisions. District administrators
// only see and decide their own district.
type AdminVerificationHandler struct {
	review       *services.ReviewService
	verification *verification.Service
	db           *gorm.DB
}

type reviewDecisionRequest struct {
	Reason   string `json:"reason" validate:"max=1000"`
	Comments string `json:"comments" validate:"max=1000"`
}

// NewAdminVerificationHandler constructs an AdminVerificationHandler.
func NewAdminVerificationHandler(review *services.ReviewService, verificationSvc *verification.Service, db *gorm.DB) *AdminVerificationHandler {
	return &AdminVerificationHandler{review: review, verification: verificationSvc, db: db}
}

// scopedDistrict returns the district the caller may act on; empty means all.
func scopedDistrict(claims *iauth.Claims) string {
	if claims.Role == models.RoleAdmin {
		return ""
	}
	return claims.District
}

// districtAllowed reports whether the caller may act on the given district.
func districtAllowed(claims *iauth.Claims, district string) bool {
	scope := scopedDistrict(claims)
	return scope == "" || scope == district
}

// GET /api/admin/verifications/homestays
func (h *AdminVerificationHandler) PendingHomestays(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	district := scopedDistrict(claims)
	if requested := c.Query("district"); requested != "" {
		if !districtAllowed(claims, requested) {
			response.Error(c, appErrors.ErrInsufficientScope)
			return
		}
		district = requested
	}

	page, perPage := pageParams(c)
	homestays, total, err := h.review.PendingHomestays(requestContext(c), services.PendingHomestaysOptions{
		District: district,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, homestays, response.NewMeta(page, perPage, total))
}

// GET /api/admin/verifications/homestays/:id
func (h *AdminVerificationHandler) HomestayDetail(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.review.HomestayDetail(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !districtAllowed(claims, detail.Homestay.District) {
		response.Error(c, appErrors.ErrInsufficientScope)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// POST /api/admin/verifications/homestays/:id/approve
func (h *AdminVerificationHandler) ApproveHomestay(c *gin.Context) {
	h.decideHomestay(c, services.ReviewApproved)
}

// POST /api/admin/verifications/homestays/:id/reject
func (h *AdminVerificationHandler) RejectHomestay(c *gin.Context) {
	h.decideHomestay(c, services.ReviewRejected)
}

func (h *AdminVerificationHandler) decideHomestay(c *gin.Context, action string) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var body reviewDecisionRequest
	if !bindAndValidate(c, &body) {
		return
	}

	detail, err := h.review.HomestayDetail(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !districtAllowed(claims, detail.Homestay.District) {
		response.Error(c, appErrors.ErrInsufficientScope)
		return
	}

	var homestay *models.Homestay
	if action == services.ReviewApproved {
		homestay, err = h.review.Approve(requestContext(c), detail.Homestay.ID, claims.UserID, body.Comments)
	} else {
		homestay, err = h.review.Reject(requestContext(c), detail.Homestay.ID, claims.UserID, body.Reason)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, homestay)
}

// GET /api/admin/verifications/aadhaar
func (h *AdminVerificationHandler) PendingAadhaar(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	district := scopedDistrict(claims)
	if requested := c.Query("district"); requested != "" {
		if !districtAllowed(claims, requested) {
			response.Error(c, appErrors.ErrInsufficientScope)
			return
		}
		district = requested
	}

	page, perPage := pageParams(c)
	views, total, err := h.verification.PendingReview(requestContext(c), verification.PendingListOptions{
		District: district,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, views, response.NewMeta(page, perPage, total))
}

// GET /api/admin/verifications/aadhaar/statistics
func (h *AdminVerificationHandler) AadhaarStatistics(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	district := scopedDistrict(claims)
	if requested := c.Query("district"); requested != "" {
		if !districtAllowed(claims, requested) {
			response.Error(c, appErrors.ErrInsufficientScope)
			return
		}
		district = requested
	}

	stats, err := h.verification.Statistics(requestContext(c), district)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GET /api/admin/verifications/aadhaar/:uid
func (h *AdminVerificationHandler) AadhaarDetail(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !h.aadhaarScopeAllowed(c, claims) {
		return
	}

	view, history, err := h.verification.Detail(requestContext(c), c.Param("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": view, "history": history})
}

// POST /api/admin/verifications/aadhaar/:uid/approve
func (h *AdminVerificationHandler) ApproveAadhaar(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var body reviewDecisionRequest
	if !bindAndValidate(c, &body) {
		return
	}
	if !h.aadhaarScopeAllowed(c, claims) {
		return
	}

	view, err := h.verification.ManualApprove(requestContext(c), c.Param("uid"), claims.UserID, body.Comments, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/admin/verifications/aadhaar/:uid/reject
func (h *AdminVerificationHandler) RejectAadhaar(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var body reviewDecisionRequest
	if !bindAndValidate(c, &body) {
		return
	}
	if !h.aadhaarScopeAllowed(c, claims) {
		return
	}

	view, err := h.verification.ManualReject(requestContext(c), c.Param("uid"), claims.UserID, body.Reason, body.Comments, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// aadhaarScopeAllowed verifies the target user sits in the caller's district.
// It writes the error response itself when the check fails.
func (h *AdminVerificationHandler) aadhaarScopeAllowed(c *gin.Context, claims *iauth.Claims) bool {
	scope := scopedDistrict(claims)
	if scope == "" {
		return true
	}

	var target models.User
	err := h.db.WithContext(requestContext(c)).
		Select("district").
		Where("id = ?", c.Param("uid")).
		First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, appErrors.ErrNotFound.WithMessage("User not found"))
			return false
		}
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return false
	}

	if target.District != scope {
		response.Error(c, appErrors.ErrInsufficientScope)
		return false
	}
	return true
}
