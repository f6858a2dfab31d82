package dto

import (
	"time"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

// SlotQuery asks for the bookable start times of a service on one date.
type SlotQuery struct {
	ProviderID     string     `json:"providerId" validate:"required"`
	ServiceID      string     `json:"serviceId" validate:"required"`
	Date           string     `json:"date" validate:"required,datetime=2006-01-02"`
	IncludeInstant bool       `json:"includeInstant"`
	Gender         string     `json:"gender" validate:"omitempty,oneof=all women men female male f m"`
	Now            *time.Time `json:"-"`
}

// SlotView is one bookable window.
type SlotView struct {
	StartTime timerange.Clock `json:"startTime"`
	EndTime   timerange.Clock `json:"endTime"`
}

// SlotsResponse lists slots in ascending order. An empty list is a valid answer.
type SlotsResponse struct {
	ProviderID         string     `json:"providerId"`
	ServiceID          string     `json:"serviceId"`
	Date               string     `json:"date"`
	Timezone           string     `json:"timezone"`
	DurationMinutes    int        `json:"durationMinutes"`
	GranularityMinutes int        `json:"granularityMinutes"`
	Slots              []SlotView `json:"slots"`
	Degraded           []string   `json:"-"`
}

// DayQuery identifies a provider day.
type DayQuery struct {
	ProviderID string     `json:"providerId" validate:"required"`
	Date       string     `json:"date" validate:"required,datetime=2006-01-02"`
	City       string     `json:"city" validate:"omitempty,max=64"`
	Now        *time.Time `json:"-"`
}

// DayAvailabilityResponse explains how free time on a date was derived.
type DayAvailabilityResponse struct {
	ProviderID string                `json:"providerId"`
	Date       string                `json:"date"`
	Timezone   string                `json:"timezone"`
	Source     models.ScheduleSource `json:"source"`
	Workable   []timerange.Range     `json:"workable"`
	Blackouts  []models.Blackout     `json:"blackouts"`
	Occupied   []timerange.Range     `json:"occupied"`
	Free       []timerange.Range     `json:"free"`
	Degraded   []string              `json:"-"`
}
