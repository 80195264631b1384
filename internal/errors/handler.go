package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorHandler provides centralized error handling for HTTP handlers.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to a structured response and renders it.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		render.Render(w, r, NewErrorResponse(New(http.StatusGatewayTimeout, "TIMEOUT", "The request took too long to process and was cancelled")))
		return
	}

	render.Render(w, r, NewErrorResponse(ToAPIError(err)))
}
