package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/samudrayan/backend/internal/middleware"
	"github.com/samudrayan/backend/internal/models"
	"github.com/samudrayan/backend/internal/storage"
	"github.com/samudrayan/backend/internal/verification"
	appErrors "github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/response"
)

const maxDocumentSize = 10 << 20 // 10 MiB

// VerificationHandler exposes the Aadhar verification flow to the caller's
// own account. Admin review of other users lives in AdminVerificationHandler.
type VerificationHandler struct {
	service *verification.Service
	store   storage.Store
	db      *gorm.DB
}

type verifyRequest struct {
	AadhaarNumber string `json:"aadhaar_number" validate:"required,aadhaar"`
	DocumentURL   string `json:"document_url" validate:"omitempty,max=1000"`
}

type checkRequest struct {
	AadhaarNumber string `json:"aadhaar_number" validate:"required"`
}

// NewVerificationHandler constructs a VerificationHandler.
func NewVerificationHandler(service *verification.Service, store storage.Store, db *gorm.DB) *VerificationHandler {
	return &VerificationHandler{service: service, store: store, db: db}
}

// POST /api/verification/aadhaar/verify
func (h *VerificationHandler) Verify(c *gin.Context) {
	var body verifyRequest
	if !bindAndValidate(c, &body) {
		return
	}

	view, err := h.service.Begin(requestContext(c), c.GetString(middleware.CtxUserIDKey),
		body.AadhaarNumber, body.DocumentURL, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/verification/aadhaar/retry
func (h *VerificationHandler) Retry(c *gin.Context) {
	var body verifyRequest
	if !bindAndValidate(c, &body) {
		return
	}

	view, err := h.service.Retry(requestContext(c), c.GetString(middleware.CtxUserIDKey),
		body.AadhaarNumber, body.DocumentURL, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GET /api/verification/aadhaar/status
func (h *VerificationHandler) Status(c *gin.Context) {
	view, err := h.service.Status(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GET /api/verification/aadhaar/history
func (h *VerificationHandler) History(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 0)

	logs, err := h.service.History(requestContext(c), c.GetString(middleware.CtxUserIDKey), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs)
}

// POST /api/verification/aadhaar/check
//
// Stateless format probe: nothing is stored or logged.
func (h *VerificationHandler) Check(c *gin.Context) {
	var body checkRequest
	if !bindAndValidate(c, &body) {
		return
	}
	response.Success(c, http.StatusOK, h.service.Check(body.AadhaarNumber))
}

// POST /api/verification/aadhaar/document
func (h *VerificationHandler) UploadDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("document")
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("a document file is required"))
		return
	}
	defer file.Close()

	if header.Size > maxDocumentSize {
		response.Error(c, appErrors.NewBadRequest("document exceeds the 10MB limit"))
		return
	}

	object, err := h.store.Upload(requestContext(c), "aadhaar-documents", header.Filename, file)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	userID := c.GetString(middleware.CtxUserIDKey)
	result := h.db.WithContext(requestContext(c)).Model(&models.User{}).
		Where("id = ?", userID).
		Update("aadhar_document_url", object.URL)
	if result.Error != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		response.Error(c, appErrors.ErrNotFound.WithMessage("User not found"))
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"document_url": object.URL})
}
