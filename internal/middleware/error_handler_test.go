package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		handler    gin.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name:       "clean handler is untouched",
			handler:    func(c *gin.Context) { c.String(http.StatusOK, "ok") },
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name:       "private error becomes 500",
			handler:    func(c *gin.Context) { _ = c.Error(errors.New("catalog exploded")) },
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"error":"internal_error"`,
		},
		{
			name: "bind error becomes 400",
			handler: func(c *gin.Context) {
				_ = c.Error(errors.New("unexpected EOF")).SetType(gin.ErrorTypeBind)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"error":"invalid_request"`,
		},
		{
			name: "written response wins",
			handler: func(c *gin.Context) {
				_ = c.Error(errors.New("catalog exploded"))
				c.String(http.StatusUnprocessableEntity, "unknown drug")
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "unknown drug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID(), ErrorHandler())
			router.GET("/test", tt.handler)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestErrorHandler_LogLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name      string
		handler   gin.HandlerFunc
		wantLevel string
	}{
		{
			name: "rejected request body",
			handler: func(c *gin.Context) {
				_ = c.Error(errors.New("json: cannot unmarshal string into dose_amount"))
				c.String(http.StatusBadRequest, "bad body")
			},
			wantLevel: "warn",
		},
		{
			name: "unwritten bind error",
			handler: func(c *gin.Context) {
				_ = c.Error(errors.New("unexpected EOF")).SetType(gin.ErrorTypeBind)
			},
			wantLevel: "warn",
		},
		{
			name:      "unwritten private error",
			handler:   func(c *gin.Context) { _ = c.Error(errors.New("catalog exploded")) },
			wantLevel: "error",
		},
		{
			name: "written server error",
			handler: func(c *gin.Context) {
				_ = c.Error(errors.New("advisor timed out"))
				c.String(http.StatusBadGateway, "upstream")
			},
			wantLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			router := gin.New()
			router.Use(RequestID(), ErrorHandler())
			router.POST("/api/calculate", tt.handler)
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/calculate", nil))

			assert.Contains(t, buf.String(), `"level":"`+tt.wantLevel+`"`)
			assert.Contains(t, buf.String(), "Handler reported an error")
		})
	}
}
