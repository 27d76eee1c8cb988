package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samudrayan/backend/internal/middleware"
	"github.com/samudrayan/backend/internal/services"
	"github.com/samudrayan/backend/pkg/response"
)

// AuthHandler serves registration, login, token refresh and the profile echo.
type AuthHandler struct {
	auth  *services.AuthService
	users *services.UserService
}

type registerRequest struct {
	UID      string `json:"uid" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=10,max=15"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Role     string `json:"role" validate:"required"`
	District string `json:"district" validate:"required"`
	Taluka   string `json:"taluka" validate:"required"`
}

type loginRequest struct {
	UID string `json:"uid" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, users *services.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.auth.Register(requestContext(c), services.RegisterInput{
		UID:      body.UID,
		Email:    body.Email,
		Phone:    body.Phone,
		FullName: body.FullName,
		Role:     body.Role,
		District: body.District,
		Taluka:   body.Taluka,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.auth.Login(requestContext(c), body.UID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var body refreshRequest
	if !bindAndValidate(c, &body) {
		return
	}

	pair, err := h.auth.Refresh(requestContext(c), body.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.Me(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
