package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/i18n"
	"github.com/nosenfield/smart-scrip/internal/logger"
	"github.com/rs/zerolog"
)

// ErrorHandler turns errors a handler attached with c.Error into a JSON
// envelope. Bind errors become 400 and anything else 500. A response the
// handler already wrote is left alone and the error is only logged, at Warn
// for client errors and Error for server errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		written := c.Writer.Written()
		status, code, key := http.StatusInternalServerError, dto.ErrCodeInternal, i18n.ErrKeyInternalError
		switch {
		case written:
			status = c.Writer.Status()
		case last.IsType(gin.ErrorTypeBind):
			status, code, key = http.StatusBadRequest, dto.ErrCodeInvalidRequest, i18n.ErrKeyInvalidRequestBody
		}

		level := zerolog.ErrorLevel
		if status < http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}
		logger.FromContext(c.Request.Context()).WithLevel(level).
			Err(last.Err).
			Int("errors", len(c.Errors)).
			Int("status_code", status).
			Str("path", c.FullPath()).
			Msg("Handler reported an error")

		if written {
			return
		}
		message := i18n.GetTranslator().Translate(key, i18n.GetLocale(c))
		c.JSON(status, dto.NewError(code, message).WithRequestID(GetRequestID(c)))
	}
}
