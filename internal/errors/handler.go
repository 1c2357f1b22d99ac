package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"bidash/internal/dataset"
	"bidash/internal/middleware"
)

// ErrorHandler provides centralized error handling for HTTP handlers.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs the error, maps it to an APIError and writes the JSON
// response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	apiErr := toAPIError(err)
	render.Render(w, r, NewErrorResponse(apiErr))
}

// toAPIError maps known error types to their API representation.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(http.StatusGatewayTimeout, "TIMEOUT", "The request took too long to process")
	}

	var missing *dataset.MissingColumnError
	if errors.As(err, &missing) {
		return NewWithDetails(ErrMissingColumn.StatusCode, ErrMissingColumn.ErrorCode, ErrMissingColumn.Message, missing.Error())
	}
	var malformed *dataset.MalformedRowError
	if errors.As(err, &malformed) {
		return NewWithDetails(ErrMalformedRow.StatusCode, ErrMalformedRow.ErrorCode, ErrMalformedRow.Message, malformed.Error())
	}
	var empty *dataset.EmptyInputError
	if errors.As(err, &empty) {
		return NewWithDetails(ErrEmptyInput.StatusCode, ErrEmptyInput.ErrorCode, ErrEmptyInput.Message, empty.Error())
	}

	return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}
