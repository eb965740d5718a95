package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/eletroorca/quote-service/internal/domain"
)

// traceIDKey is the gin context key middleware uses to stash the trace ID.
const traceIDKey = "trace_id"

// GetTraceID returns the trace ID for the current request. The context
// value set by middleware wins; the request ID header is the fallback so
// error responses are correlatable even before tracing is initialized.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(traceIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return c.Request.Header.Get("X-Request-ID")
}

// HandleError maps a domain error to the error envelope and writes it.
// Unknown errors get a generic message to avoid leaking internals.
func HandleError(c *gin.Context, err error) {
	resp := errorResponseFor(err).WithTraceID(GetTraceID(c))

	c.JSON(HTTPStatusFromCode(resp.Error.Code), resp)
}

func errorResponseFor(err error) *ErrorResponse {
	switch {
	case domain.IsNotFound(err):
		return NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return resp

	case domain.IsUnavailable(err):
		return NewErrorResponse(ErrorCodeUnavailable,
			"service temporarily unavailable: "+err.Error())

	default:
		return NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// HandleBindingError writes a 400 for request binding or validation
// failures, with field-level details when the validator produced them.
func HandleBindingError(c *gin.Context, err error) {
	if fieldErrors := ValidationErrors(err); len(fieldErrors) > 0 {
		resp := NewErrorResponseWithDetails(ErrorCodeValidation,
			"request validation failed", fieldErrors).WithTraceID(GetTraceID(c))
		c.JSON(http.StatusBadRequest, resp)

		return
	}

	resp := NewErrorResponse(ErrorCodeBadRequest, "malformed request body").
		WithTraceID(GetTraceID(c))
	c.JSON(http.StatusBadRequest, resp)
}
