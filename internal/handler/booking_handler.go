package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/beauty-booking-api/internal/dto"
	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/response"
)

type bookingAllocator interface {
	Allocate(ctx context.Context, req dto.AllocateBookingRequest) (*models.Booking, error)
}

// BookingHandler exposes slot allocation.
type BookingHandler struct {
	allocator bookingAllocator
}

// NewBookingHandler builds a new handler.
func NewBookingHandler(allocator bookingAllocator) *BookingHandler {
	return &BookingHandler{allocator: allocator}
}

// Allocate godoc
// @Summary Book a slot
// @Description Reserves the window atomically. A concurrent winner yields 409 SLOT_TAKEN.
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AllocateBookingRequest true "Booking request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Allocate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AllocateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	req.CustomerID = claims.UserID
	req.Now = nil

	booking, err := h.allocator.Allocate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewBookingResponse(booking))
}
