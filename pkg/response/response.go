package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
)

// MetaContextKey holds response metadata collected by handlers and middleware.
const MetaContextKey = "response_meta"

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// SetMeta records a metadata entry that the next JSON response will carry.
func SetMeta(c *gin.Context, key string, value interface{}) {
	meta, _ := c.Get(MetaContextKey)
	values, ok := meta.(map[string]interface{})
	if !ok {
		values = map[string]interface{}{}
	}
	values[key] = value
	c.Set(MetaContextKey, values)
}

// JSON sends a success response, merging explicit meta with context meta.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data}
	if stored, ok := c.Get(MetaContextKey); ok {
		if values, ok := stored.(map[string]interface{}); ok && len(values) > 0 {
			envelope.Meta = values
		}
	}
	if len(meta) > 0 && meta[0] != nil {
		if envelope.Meta == nil {
			envelope.Meta = map[string]interface{}{}
		}
		for k, v := range meta[0] {
			envelope.Meta[k] = v
		}
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
