package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samudrayan/backend/internal/services"
	"github.com/samudrayan/backend/pkg/response"
)

// MasterHandler serves the seeded reference data.
type MasterHandler struct {
	service *services.MasterService
}

// NewMasterHandler constructs a MasterHandler.
func NewMasterHandler(service *services.MasterService) *MasterHandler {
	return &MasterHandler{service: service}
}

// GET /api/master/locations
func (h *MasterHandler) Locations(c *gin.Context) {
	locations, err := h.service.Locations(requestContext(c), c.Query("district"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, locations)
}

// GET /api/master/categories
func (h *MasterHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(requestContext(c), c.Query("domain"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, categories)
}
