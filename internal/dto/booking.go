package dto

import (
	"time"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/pkg/money"
)

// AllocateBookingRequest reserves a slot for the authenticated customer.
type AllocateBookingRequest struct {
	ProviderID string     `json:"providerId" validate:"required"`
	ServiceID  string     `json:"serviceId" validate:"required"`
	Date       string     `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime  string     `json:"startTime" validate:"required"`
	Instant    bool       `json:"instant"`
	CustomerID string     `json:"-" validate:"required"`
	Now        *time.Time `json:"-"`
}

// BookingResponse is the public shape of a created booking.
type BookingResponse struct {
	ID               string               `json:"id"`
	ProviderID       string               `json:"providerId"`
	ServiceID        string               `json:"serviceId"`
	CustomerID       string               `json:"customerId"`
	Date             string               `json:"date"`
	StartTime        string               `json:"startTime"`
	EndTime          string               `json:"endTime"`
	Status           models.BookingStatus `json:"status"`
	Amount           money.Amount         `json:"amount"`
	PlatformFee      money.Amount         `json:"platformFee"`
	ProviderEarnings money.Amount         `json:"providerEarnings"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// NewBookingResponse maps a stored booking.
func NewBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		ProviderID:       b.ProviderID,
		ServiceID:        b.ServiceID,
		CustomerID:       b.CustomerID,
		Date:             b.Date(),
		StartTime:        b.StartTime.String(),
		EndTime:          b.EndTime.String(),
		Status:           b.Status,
		Amount:           b.Amount,
		PlatformFee:      b.PlatformFee,
		ProviderEarnings: b.ProviderEarnings,
		CreatedAt:        b.CreatedAt,
	}
}
