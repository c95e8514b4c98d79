// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotes-service/internal/app"
	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/platform/logging"
)

// Client-facing messages owned by the HTTP layer.
const (
	// MsgInvalidJSON is returned when a request body is not a JSON object.
	MsgInvalidJSON = "Request body must be a valid JSON object."

	// MsgInternal is returned for failures that carry no client-safe message.
	MsgInternal = "An internal error occurred."
)

// ErrorResponse is the error envelope for all error responses.
// Every error body is a single human-readable sentence.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse creates a new error response with the given message.
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

// MapError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 with a generic message.
func MapError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	var (
		internalErr   *domain.InternalError
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &internalErr):
		return http.StatusInternalServerError, NewErrorResponse(internalErr.Message)

	case errors.As(err, &validationErr):
		return http.StatusBadRequest, NewErrorResponse(validationErr.Message)

	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized, NewErrorResponse(app.MsgTokenMissing)

	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, NewErrorResponse(notFoundErr.Message())

	case errors.As(err, &conflictErr):
		return http.StatusConflict, NewErrorResponse(conflictErr.Reason)

	default:
		return http.StatusInternalServerError, NewErrorResponse(MsgInternal)
	}
}

// HandleError writes the mapped error response. 5xx causes are logged in full.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)
	logInternal(c, status, err)
	c.JSON(status, resp)
}

// AbortWithError aborts the handler chain with the mapped error response.
func AbortWithError(c *gin.Context, err error) {
	status, resp := MapError(err)
	logInternal(c, status, err)
	c.AbortWithStatusJSON(status, resp)
}

// Abort aborts the handler chain with a fixed status and message.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}

// GetTraceID returns the trace ID for the request: the active span's trace,
// then a "trace_id" context value, then the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if c.Request != nil {
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
			return sc.TraceID().String()
		}
	}

	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}

		return ""
	}

	if c.Request != nil {
		return c.Request.Header.Get("X-Request-ID")
	}

	return ""
}

func logInternal(c *gin.Context, status int, err error) {
	if status < http.StatusInternalServerError {
		return
	}

	logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "internal error",
		slog.Any("error", err),
		slog.String("trace_id", GetTraceID(c)),
	)
}
