package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rental-market/internal/telemetry"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID reuses the caller's X-Request-ID or mints one, and threads it
// through the gin context and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(telemetry.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}
