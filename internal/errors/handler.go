package errors

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"mawbaudit/internal/audit"
	"mawbaudit/internal/middleware"
)

// ErrorHandler provides centralized error handling for HTTP handlers.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError maps an error to an APIError and writes the JSON response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	apiErr := ToAPIError(err)
	if renderErr := render.Render(w, r, apiErr); renderErr != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}

// ToAPIError converts any error to an APIError. Audit pipeline sentinels are
// mapped to 400 responses; unknown errors become opaque 500s.
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case stderrors.Is(err, audit.ErrNoBillingSheet):
		return NewWithDetails(ErrNoBillingSheet.StatusCode, ErrNoBillingSheet.ErrorCode, ErrNoBillingSheet.Message, err.Error())
	case stderrors.Is(err, audit.ErrBillingColumns):
		return NewWithDetails(ErrNoBillingSheet.StatusCode, ErrNoBillingSheet.ErrorCode, ErrNoBillingSheet.Message, err.Error())
	case stderrors.Is(err, audit.ErrInvalidThresholds):
		return NewWithDetails(ErrInvalidThresholds.StatusCode, ErrInvalidThresholds.ErrorCode, ErrInvalidThresholds.Message, err.Error())
	default:
		return ErrInternalServer
	}
}
