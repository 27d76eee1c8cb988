package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samudrayan/backend/internal/middleware"
	"github.com/samudrayan/backend/internal/services"
	"github.com/samudrayan/backend/pkg/response"
)

// UserHandler serves the self-service profile routes.
type UserHandler struct {
	service *services.UserService
}

type updateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,min=10,max=15"`
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.Me(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// PATCH /api/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var body updateProfileRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.service.UpdateMe(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.UpdateProfileInput{
		FullName: body.FullName,
		Phone:    body.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GET /api/users/me/bookings
func (h *UserHandler) MyBookings(c *gin.Context) {
	page, perPage := pageParams(c)
	opts := services.MyBookingsOptions{
		Status:  c.Query("status"),
		Page:    page,
		PerPage: perPage,
	}
	if from, ok := parseDateQuery(c, "from"); ok {
		opts.From = &from
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		opts.To = &to
	}

	bookings, total, err := h.service.MyBookings(requestContext(c), c.GetString(middleware.CtxUserIDKey), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, bookings, response.NewMeta(page, perPage, total))
}

func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	value := c.Query(key)
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
