package models

import (
	"time"

	"github.com/noah-isme/beauty-booking-api/pkg/money"
)

// EventBookingCreated is the type name of booking creation events.
const EventBookingCreated = "booking.created"

// BookingCreatedEvent is emitted after a booking commits.
type BookingCreatedEvent struct {
	EventID          string        `json:"event_id"`
	Type             string        `json:"type"`
	OccurredAt       time.Time     `json:"occurred_at"`
	BookingID        string        `json:"booking_id"`
	ProviderID       string        `json:"provider_id"`
	ServiceID        string        `json:"service_id"`
	CustomerID       string        `json:"customer_id"`
	Date             string        `json:"date"`
	StartTime        string        `json:"start_time"`
	EndTime          string        `json:"end_time"`
	Status           BookingStatus `json:"status"`
	Amount           money.Amount  `json:"amount"`
	PlatformFee      money.Amount  `json:"platform_fee"`
	ProviderEarnings money.Amount  `json:"provider_earnings"`
}
