package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/i18n"
	"github.com/nosenfield/smart-scrip/internal/logger"
)

const (
	// APIKeyHeader is the HTTP header name for API key authentication.
	APIKeyHeader = "X-API-Key"
	// ClientIDKey is the context key for the authenticated client name.
	ClientIDKey ContextKey = "client_id"
)

// APIKeyAuth admits requests that present a configured key, either in
// X-API-Key or as an Authorization bearer token, and records the client the
// key belongs to. validKeys maps key to client name; an empty map disables
// authentication.
func APIKeyAuth(validKeys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(validKeys) == 0 {
			c.Next()
			return
		}

		key := presentedKey(c)
		if key == "" {
			rejectUnauthorized(c, i18n.ErrKeyAPIKeyRequired)
			return
		}
		client, ok := lookupKey(validKeys, key)
		if !ok {
			logger.FromContext(c.Request.Context()).Warn().
				Str("ip", c.ClientIP()).
				Msg("Rejected unknown API key")
			rejectUnauthorized(c, i18n.ErrKeyInvalidAPIKey)
			return
		}

		c.Set(string(ClientIDKey), client)
		c.Request = c.Request.WithContext(logger.With(c.Request.Context(), "client_id", client))
		c.Next()
	}
}

func presentedKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func rejectUnauthorized(c *gin.Context, messageKey string) {
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(c))
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewError(dto.ErrCodeUnauthorized, message).WithRequestID(GetRequestID(c)))
}

// lookupKey compares against every key in constant time per comparison.
func lookupKey(validKeys map[string]string, key string) (string, bool) {
	var (
		client string
		found  bool
	)
	for k, name := range validKeys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			client, found = name, true
		}
	}
	return client, found
}

// GetClientID returns the authenticated client name, or "" when the request
// was not authenticated.
func GetClientID(c *gin.Context) string {
	return c.GetString(string(ClientIDKey))
}

// ClientIdentity returns the identity used for rate limiting: the API key's
// client when authenticated, otherwise the client IP.
func ClientIdentity(c *gin.Context) string {
	if id := GetClientID(c); id != "" {
		return "client:" + id
	}
	return "ip:" + c.ClientIP()
}
