package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/beauty-booking-api/internal/dto"
	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/response"
)

type feeService interface {
	Quote(raw string) (*models.FeeBreakdown, error)
	Summarize(req dto.FeeSummaryRequest) (*models.FeeSummary, error)
}

// FeeHandler exposes platform fee calculations.
type FeeHandler struct {
	service feeService
}

// NewFeeHandler builds a new handler.
func NewFeeHandler(service feeService) *FeeHandler {
	return &FeeHandler{service: service}
}

// Quote godoc
// @Summary Platform fee and provider earnings for an amount
// @Tags Fees
// @Produce json
// @Param amount query string true "Booking amount, at most two decimals"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees/quote [get]
func (h *FeeHandler) Quote(c *gin.Context) {
	quote, err := h.service.Quote(c.Query("amount"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quote)
}

// Summary godoc
// @Summary Total fees for a list of booking amounts
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.FeeSummaryRequest true "Amounts"
// @Success 200 {object} response.Envelope
// @Router /fees/summary [post]
func (h *FeeHandler) Summary(c *gin.Context) {
	var req dto.FeeSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid fee summary payload"))
		return
	}
	summary, err := h.service.Summarize(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
