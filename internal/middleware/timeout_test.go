package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTimeout(t *testing.T) {
	tests := []struct {
		name       string
		timeout    time.Duration
		handler    gin.HandlerFunc
		wantStatus int
	}{
		{
			name:       "fast request completes",
			timeout:    time.Second,
			handler:    func(c *gin.Context) { c.Status(http.StatusOK) },
			wantStatus: http.StatusOK,
		},
		{
			name:    "abandoned reconciliation gets 504",
			timeout: 20 * time.Millisecond,
			handler: func(c *gin.Context) {
				<-c.Request.Context().Done()
			},
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:    "late response already written is kept",
			timeout: 20 * time.Millisecond,
			handler: func(c *gin.Context) {
				<-c.Request.Context().Done()
				c.String(http.StatusBadGateway, "late")
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:    "negative timeout disables the deadline",
			timeout: -time.Second,
			handler: func(c *gin.Context) {
				if _, has := c.Request.Context().Deadline(); has {
					c.Status(http.StatusTeapot)
					return
				}
				c.Status(http.StatusOK)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "zero timeout disables the deadline",
			timeout: 0,
			handler: func(c *gin.Context) {
				_, has := c.Request.Context().Deadline()
				if has {
					c.Status(http.StatusTeapot)
					return
				}
				c.Status(http.StatusOK)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Timeout(tt.timeout))
			router.GET("/test", tt.handler)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
