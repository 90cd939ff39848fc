package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/itemshare/service-booking/internal/application"
	"github.com/itemshare/service-booking/pkg/middleware"
	"github.com/itemshare/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.UserIDMiddleware())
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListByBooker)
		bookings.GET("/owner", h.ListByOwner)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.ChangeStatus)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ChangeStatus handles PATCH /api/v1/bookings/:id?approved=true|false.
// The acting user must own the booked item.
func (h *BookingHandler) ChangeStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved must be true or false")
		return
	}

	result, err := h.service.ChangeStatus(c.Request.Context(), userID, bookingID, approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListByBooker handles GET /api/v1/bookings?state=&from=&size=.
func (h *BookingHandler) ListByBooker(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	state, from, size, err := parseListingParams(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListByBooker(c.Request.Context(), userID, state, from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListByOwner handles GET /api/v1/bookings/owner?state=&from=&size=.
func (h *BookingHandler) ListByOwner(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	state, from, size, err := parseListingParams(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListByOwner(c.Request.Context(), userID, state, from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// parseListingParams extracts the state/from/size query parameters with
// defaults. from and size are passed through unclamped; the service
// owns their validation.
func parseListingParams(c *gin.Context) (string, int, int, error) {
	state := c.DefaultQuery("state", "ALL")

	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil {
		return "", 0, 0, err
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil {
		return "", 0, 0, err
	}
	return state, from, size, nil
}
