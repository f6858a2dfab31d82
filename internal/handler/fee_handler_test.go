package handler

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/beauty-booking-api/internal/service"
)

func TestFeeHandlerQuote(t *testing.T) {
	handler := NewFeeHandler(service.NewFeeService(nil, nil))

	c, w := newTestContext(http.MethodGet, "/fees/quote?amount=25.01")
	handler.Quote(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"amount":25.01,"platform_fee":5.00,"provider_earnings":20.01}`, string(decode(t, w).Data))

	c, w = newTestContext(http.MethodGet, "/fees/quote?amount=0")
	handler.Quote(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeeHandlerSummary(t *testing.T) {
	handler := NewFeeHandler(service.NewFeeService(nil, nil))

	c, w := newTestContext(http.MethodPost, "/fees/summary")
	c.Request.Body = io.NopCloser(strings.NewReader(`{"amounts":[25, "25.01", 100]}`))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3,"total_amount":150.01,"total_platform_fee":12.00,"total_provider_earnings":138.01}`, string(decode(t, w).Data))

	c, w = newTestContext(http.MethodPost, "/fees/summary")
	c.Request.Body = io.NopCloser(strings.NewReader(`{"amounts":[1.234]}`))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Summary(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
