package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotes-service/internal/platform/logging"
)

// Recovery returns middleware that recovers from panics.
// On panic, it:
//   - Logs the error with full stack trace at ERROR level
//   - Returns a 500 Internal Server Error with the error envelope
//
// This middleware should be applied first in the chain to catch panics
// from all subsequent handlers and middleware.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()

				ctxLogger, ok := logging.Lookup(c.Request.Context())
				if !ok {
					ctxLogger = logger
				}

				ctxLogger.Error("panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(stack)),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
					slog.String("request_id", RequestIDFromContext(c.Request.Context())),
					slog.String("correlation_id", CorrelationIDFromContext(c.Request.Context())),
					slog.String("trace_id", dto.GetTraceID(c)),
				)

				// Ensure headers haven't been sent yet
				if !c.Writer.Written() {
					dto.Abort(c, http.StatusInternalServerError, dto.MsgInternal)
				} else {
					c.Abort()
				}
			}
		}()

		c.Next()
	}
}
