package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/beauty-booking-api/internal/dto"
	"github.com/noah-isme/beauty-booking-api/internal/middleware"
	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/response"
)

type slotService interface {
	GenerateSlots(ctx context.Context, query dto.SlotQuery) (*dto.SlotsResponse, error)
	DayAvailability(ctx context.Context, query dto.DayQuery) (*dto.DayAvailabilityResponse, error)
}

type prayerBreakService interface {
	CalculatePrayerBreaks(ctx context.Context, providerID, date, city string) (*models.PrayerBreaks, error)
}

type availabilitySettingsService interface {
	Get(ctx context.Context, providerID string) (*models.AvailabilitySettings, error)
}

// AvailabilityHandler exposes slot and availability endpoints.
type AvailabilityHandler struct {
	slots    slotService
	breaks   prayerBreakService
	settings availabilitySettingsService
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(slots slotService, breaks prayerBreakService, settings availabilitySettingsService) *AvailabilityHandler {
	return &AvailabilityHandler{slots: slots, breaks: breaks, settings: settings}
}

// Slots godoc
// @Summary List bookable slots for a service
// @Tags Availability
// @Produce json
// @Param id path string true "Provider ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param serviceId query string true "Service ID"
// @Param includeInstant query bool false "Drop the minimum advance window when the provider allows instant booking"
// @Param gender query string false "Customer gender filter (women|men)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /providers/{id}/slots [get]
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	query := dto.SlotQuery{
		ProviderID: c.Param("id"),
		ServiceID:  c.Query("serviceId"),
		Date:       c.Query("date"),
		Gender:     c.Query("gender"),
	}
	if raw := c.Query("includeInstant"); raw != "" {
		instant, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "includeInstant must be a boolean"))
			return
		}
		query.IncludeInstant = instant
	}
	if claims := claimsFromContext(c); claims != nil && query.Gender == "" {
		query.Gender = claims.Gender
	}

	result, err := h.slots.GenerateSlots(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDegraded(c, result.Degraded)
	response.JSON(c, http.StatusOK, result)
}

// Availability godoc
// @Summary Explain how a provider's free time on a date is derived
// @Tags Availability
// @Produce json
// @Param id path string true "Provider ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param city query string false "City for prayer times (defaults to the provider city)"
// @Success 200 {object} response.Envelope
// @Router /providers/{id}/availability [get]
func (h *AvailabilityHandler) Availability(c *gin.Context) {
	result, err := h.slots.DayAvailability(c.Request.Context(), dto.DayQuery{
		ProviderID: c.Param("id"),
		Date:       c.Query("date"),
		City:       c.Query("city"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDegraded(c, result.Degraded)
	response.JSON(c, http.StatusOK, result)
}

// PrayerBreaks godoc
// @Summary Prayer blackout windows for a provider day
// @Tags Availability
// @Produce json
// @Param id path string true "Provider ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param city query string false "City override"
// @Success 200 {object} response.Envelope
// @Router /providers/{id}/prayer-breaks [get]
func (h *AvailabilityHandler) PrayerBreaks(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	result, err := h.breaks.CalculatePrayerBreaks(c.Request.Context(), c.Param("id"), date, c.Query("city"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Degraded {
		middleware.SetDegraded(c, []string{models.DegradedPrayerTimes})
	}
	response.JSON(c, http.StatusOK, result)
}

// Settings godoc
// @Summary Availability settings of a provider
// @Tags Availability
// @Produce json
// @Security BearerAuth
// @Param id path string true "Provider ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /providers/{id}/availability-settings [get]
func (h *AvailabilityHandler) Settings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}
