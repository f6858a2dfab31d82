package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/beauty-booking-api/pkg/middleware/requestid"
	"github.com/noah-isme/beauty-booking-api/pkg/response"
)

const degradedKey = "degraded"

// WithResponseMeta seeds response metadata with the request id.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := requestid.Value(c); id != "" {
			response.SetMeta(c, "request_id", id)
		}
		c.Next()
	}
}

// SetDegraded records which lookups failed open for the current response.
func SetDegraded(c *gin.Context, sources []string) {
	if len(sources) == 0 {
		return
	}
	response.SetMeta(c, degradedKey, sources)
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(response.MetaContextKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}
