package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/middleware/requestid"
	"github.com/noah-isme/beauty-booking-api/pkg/response"
)

type stubTokens map[string]*models.JWTClaims

func (s stubTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

var tokens = stubTokens{
	"customer": {UserID: "cust-1", Role: models.RoleCustomer},
	"owner":    {UserID: "user-7", Role: models.RoleProvider, ProviderID: "prov-1"},
	"admin":    {UserID: "admin-1", Role: models.RoleAdmin},
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTRequiresValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", JWT(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserIDKey))
	})

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/me", "forged").Code)

	rec := serve(router, http.MethodGet, "/me", "customer")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cust-1", rec.Body.String())
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/slots", OptionalJWT(tokens), func(c *gin.Context) {
		_, authenticated := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})

	assert.JSONEq(t, `{"authenticated":false}`, serve(router, http.MethodGet, "/slots", "forged").Body.String())
	assert.JSONEq(t, `{"authenticated":true}`, serve(router, http.MethodGet, "/slots", "customer").Body.String())
}

func TestRBACOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/providers/:id/settings", JWT(tokens), RBAC(string(models.RoleAdmin), Owner), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/providers/prov-1/settings", "owner").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/providers/prov-2/settings", "owner").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/providers/prov-1/settings", "customer").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/providers/prov-2/settings", "admin").Code)
}

func TestRateLimiterPerCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, 2, nil)
	router := gin.New()
	router.POST("/bookings", JWT(tokens), limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/bookings", "customer").Code)
	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/bookings", "customer").Code)
	limited := serve(router, http.MethodPost, "/bookings", "customer")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/bookings", "admin").Code)
}

func TestRateLimiterSweepsIdleCallers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, 2, nil)
	clock := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	router := gin.New()
	router.POST("/bookings", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.0.%d:4000", i+1)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 50, limiter.Len())

	// two minutes refill a burst of two at one request per minute
	clock = clock.Add(2 * time.Minute)
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.RemoteAddr = "10.0.1.1:4000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, limiter.Len())
}

func TestResponseMetaCarriesDegradedSources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.Middleware(), WithResponseMeta())
	router.GET("/slots", func(c *gin.Context) {
		SetDegraded(c, nil)
		SetDegraded(c, []string{"prayer_times"})
		response.JSON(c, http.StatusOK, []string{})
	})

	req := httptest.NewRequest(http.MethodGet, "/slots", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-42", body.Meta["request_id"])
	assert.Equal(t, []interface{}{"prayer_times"}, body.Meta["degraded"])
}
