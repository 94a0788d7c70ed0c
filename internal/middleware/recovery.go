package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/i18n"
	"github.com/nosenfield/smart-scrip/internal/logger"
	"github.com/nosenfield/smart-scrip/internal/metrics"
)

// Recovery converts a panic in a handler into a 500 envelope. The deliberate
// http.ErrAbortHandler panic is passed through so net/http can drop the
// connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			metrics.RecordPanic()
			logger.FromContext(c.Request.Context()).Error().
				Interface("panic", r).
				Str("route", c.FullPath()).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from handler panic")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			message := i18n.GetTranslator().Translate(i18n.ErrKeyInternalError, i18n.GetLocale(c))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewError(dto.ErrCodeInternal, message).WithRequestID(GetRequestID(c)))
		}()
		c.Next()
	}
}
