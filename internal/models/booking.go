package models

import (
	"errors"
	"time"

	"github.com/noah-isme/beauty-booking-api/pkg/money"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

// BookingStatus enumerates the booking lifecycle.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// Occupies reports whether a booking in this status holds its slot.
func (s BookingStatus) Occupies() bool {
	return s != BookingCancelled
}

// IsInitial reports whether the allocator may create a booking in this status.
func (s BookingStatus) IsInitial() bool {
	return s == BookingPending || s == BookingConfirmed
}

var (
	// ErrBookingOverlap is returned by the store when the window is already occupied.
	ErrBookingOverlap = errors.New("booking window overlaps an existing booking")
	// ErrAllocationContention signals a serialization failure worth retrying.
	ErrAllocationContention = errors.New("booking allocation contention")
)

// Booking is a reserved window for one customer.
type Booking struct {
	ID               string          `db:"id" json:"id"`
	ProviderID       string          `db:"provider_id" json:"provider_id"`
	ServiceID        string          `db:"service_id" json:"service_id"`
	CustomerID       string          `db:"customer_id" json:"customer_id"`
	BookingDate      time.Time       `db:"booking_date" json:"-"`
	StartTime        timerange.Clock `db:"start_time" json:"start_time"`
	EndTime          timerange.Clock `db:"end_time" json:"end_time"`
	Status           BookingStatus   `db:"status" json:"status"`
	Amount           money.Amount    `db:"amount_minor" json:"amount"`
	PlatformFee      money.Amount    `db:"platform_fee_minor" json:"platform_fee"`
	ProviderEarnings money.Amount    `db:"provider_earnings_minor" json:"provider_earnings"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Date renders the booking date as YYYY-MM-DD.
func (b Booking) Date() string {
	return b.BookingDate.Format(timerange.DateLayout)
}

// Range returns the occupied window.
func (b Booking) Range() timerange.Range {
	return timerange.New(b.StartTime, b.EndTime)
}

// AllocationSnapshot is the committed state seen inside the allocation transaction.
type AllocationSnapshot struct {
	ProviderActive bool
	ServiceActive  bool
	Occupying      []Booking
	TimeOff        []TimeOff
}

// FeeBreakdown splits a booking amount between the platform and the provider.
type FeeBreakdown struct {
	Amount           money.Amount `json:"amount"`
	PlatformFee      money.Amount `json:"platform_fee"`
	ProviderEarnings money.Amount `json:"provider_earnings"`
}

// FeeSummary aggregates fee splits exactly in minor units.
type FeeSummary struct {
	Count                 int          `json:"count"`
	TotalAmount           money.Amount `json:"total_amount"`
	TotalPlatformFee      money.Amount `json:"total_platform_fee"`
	TotalProviderEarnings money.Amount `json:"total_provider_earnings"`
}
