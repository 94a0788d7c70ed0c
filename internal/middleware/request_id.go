// Package middleware provides HTTP middleware components for the reconciliation service.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nosenfield/smart-scrip/internal/logger"
)

// RequestIDHeader carries the correlation ID in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// ContextKey namespaces values this package stores on the gin context.
type ContextKey string

// RequestIDKey holds the correlation ID on the gin context.
const RequestIDKey ContextKey = "request_id"

// RequestID tags every request with a correlation ID. A caller-supplied ID is
// echoed back when it is short and made of safe characters, otherwise a fresh
// UUID replaces it. The request context carries a logger tagged with the ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Set(string(RequestIDKey), id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// validRequestID accepts IDs that are safe to echo into headers and logs.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch ch := id[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.' || ch == ':':
		default:
			return false
		}
	}
	return true
}

// GetRequestID returns the correlation ID, or "" outside RequestID.
func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(string(RequestIDKey))
	s, _ := id.(string)
	return s
}
