package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/samudrayan/backend/internal/middleware"
	"github.com/samudrayan/backend/internal/services"
	appErrors "github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/response"
)

// HomestayHandler serves the public listing surface and the owner's booking
// operations beneath it.
type HomestayHandler struct {
	homestays *services.HomestayService
	bookings  *services.BookingService
}

type roomRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=120"`
	Capacity      int     `json:"capacity" validate:"required,min=1,max=20"`
	PricePerNight float64 `json:"price_per_night" validate:"required,gt=0"`
}

type createHomestayRequest struct {
	Name        string         `json:"name" validate:"required,min=2,max=160"`
	Description string         `json:"description" validate:"max=4000"`
	District    string         `json:"district" validate:"required"`
	Taluka      string         `json:"taluka"`
	Address     string         `json:"address" validate:"max=500"`
	Grade       string         `json:"grade" validate:"required,oneof=silver gold diamond"`
	Amenities   datatypes.JSON `json:"amenities"`
	Media       datatypes.JSON `json:"media"`
	Rooms       []roomRequest  `json:"rooms" validate:"required,min=1,dive"`
}

type createBookingRequest struct {
	RoomID    string `json:"room_id" validate:"required"`
	CheckIn   string `json:"check_in" validate:"required"`
	CheckOut  string `json:"check_out" validate:"required"`
	Guests    int    `json:"guests" validate:"required,min=1"`
	GuestNote string `json:"guest_note" validate:"max=1000"`
}

// NewHomestayHandler constructs a HomestayHandler.
func NewHomestayHandler(homestays *services.HomestayService, bookings *services.BookingService) *HomestayHandler {
	return &HomestayHandler{homestays: homestays, bookings: bookings}
}

// POST /api/homestays
func (h *HomestayHandler) Create(c *gin.Context) {
	var body createHomestayRequest
	if !bindAndValidate(c, &body) {
		return
	}

	input := services.CreateHomestayInput{
		OwnerID:     c.GetString(middleware.CtxUserIDKey),
		Name:        body.Name,
		Description: body.Description,
		District:    body.District,
		Taluka:      body.Taluka,
		Address:     body.Address,
		Grade:       body.Grade,
		Amenities:   body.Amenities,
		Media:       body.Media,
	}
	for _, room := range body.Rooms {
		input.Rooms = append(input.Rooms, services.RoomInput{
			Name:          room.Name,
			Capacity:      room.Capacity,
			PricePerNight: room.PricePerNight,
		})
	}

	homestay, err := h.homestays.Create(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, homestay)
}

// GET /api/homestays
func (h *HomestayHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)

	items, total, err := h.homestays.List(requestContext(c), services.ListHomestaysOptions{
		Page:    page,
		PerPage: perPage,
		Filters: services.HomestayFilters{
			District: c.Query("district"),
			Taluka:   c.Query("taluka"),
			Grade:    c.Query("grade"),
			Search:   c.Query("search"),
			Status:   c.Query("status"),
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, response.NewMeta(page, perPage, total))
}

// GET /api/homestays/:id
func (h *HomestayHandler) Get(c *gin.Context) {
	detail, err := h.homestays.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// POST /api/homestays/:id/bookings
func (h *HomestayHandler) CreateBooking(c *gin.Context) {
	var body createBookingRequest
	if !bindAndValidate(c, &body) {
		return
	}

	checkIn, err := time.Parse("2006-01-02", body.CheckIn)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("check_in must be a YYYY-MM-DD date"))
		return
	}
	checkOut, err := time.Parse("2006-01-02", body.CheckOut)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("check_out must be a YYYY-MM-DD date"))
		return
	}

	booking, err := h.bookings.Create(requestContext(c), services.CreateBookingInput{
		RoomID:    body.RoomID,
		GuestID:   c.GetString(middleware.CtxUserIDKey),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    body.Guests,
		GuestNote: body.GuestNote,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, booking)
}

// GET /api/homestays/:id/bookings
func (h *HomestayHandler) ListBookings(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, perPage := pageParams(c)
	opts := services.ListBookingsOptions{
		CallerID:   claims.UserID,
		CallerRole: claims.Role,
		Page:       page,
		PerPage:    perPage,
		Filters:    services.BookingFilters{Status: c.Query("status")},
	}
	if from, ok := parseDateQuery(c, "from"); ok {
		opts.Filters.From = &from
	}
	if to, ok := parseDateQuery(c, "to"); ok {
		opts.Filters.To = &to
	}

	items, summary, total, err := h.bookings.ListForHomestay(requestContext(c), c.Param("id"), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, gin.H{
		"bookings": items,
		"summary":  summary,
	}, response.NewMeta(page, perPage, total))
}
