package http

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"mawbaudit/internal/audit"
	apierrors "mawbaudit/internal/errors"
	"mawbaudit/internal/services"
	"mawbaudit/internal/validation"
)

// AuditHandler handles audit-related HTTP requests
type AuditHandler struct {
	service      *services.AuditService
	validator    *validation.RequestValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(service *services.AuditService, validator *validation.RequestValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "audit")),
	}
}

// RunAudit handles POST /api/audit. The request is multipart/form-data with
// a required "billing" workbook, an optional "eta" workbook, and optional
// mawb_filter, low_threshold, high_threshold and format fields.
func (h *AuditHandler) RunAudit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.validator.MaxUploadBytes())
	if err := r.ParseMultipartForm(h.validator.MaxUploadBytes()); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(fmt.Errorf("parse multipart form: %w", err)))
		return
	}

	req, apiErr := h.buildRequest(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = "xlsx"
	}
	if err := h.validator.ValidateRequest(validation.AuditRequest{
		FilterText:    req.FilterText,
		LowThreshold:  req.LowThreshold,
		HighThreshold: req.HighThreshold,
		Format:        format,
	}); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == "json" {
		render.JSON(w, r, result)
		return
	}

	data, err := h.service.BuildReport(result)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			apierrors.ErrExportFailed.StatusCode, apierrors.ErrExportFailed.ErrorCode,
			apierrors.ErrExportFailed.Message, err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="mawb_audit_%s.xlsx"`, result.RunID))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(r.Context(), "write report response", slog.String("error", err.Error()))
	}
}

func (h *AuditHandler) buildRequest(r *http.Request) (audit.Request, *apierrors.APIError) {
	var req audit.Request

	billing, header, err := r.FormFile("billing")
	if err != nil {
		return req, apierrors.ErrValidation("billing", "billing workbook file is required")
	}
	defer billing.Close()

	req.Billing, err = h.readUpload(billing, header)
	if err != nil {
		return req, apierrors.InvalidRequestWithError(err)
	}

	if eta, etaHeader, err := r.FormFile("eta"); err == nil {
		defer eta.Close()
		req.ETA, err = h.readUpload(eta, etaHeader)
		if err != nil {
			return req, apierrors.InvalidRequestWithError(err)
		}
	}

	req.FilterText = r.FormValue("mawb_filter")

	low, high := h.service.Defaults()
	req.LowThreshold, req.HighThreshold = low, high
	if v := r.FormValue("low_threshold"); v != "" {
		req.LowThreshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return req, apierrors.ErrValidation("low_threshold", "must be a number")
		}
	}
	if v := r.FormValue("high_threshold"); v != "" {
		req.HighThreshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return req, apierrors.ErrValidation("high_threshold", "must be a number")
		}
	}

	return req, nil
}

func (h *AuditHandler) readUpload(file multipart.File, header *multipart.FileHeader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, h.validator.MaxUploadBytes()+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
	}
	if err := h.validator.ValidateUpload(header.Filename, int64(len(data)), data); err != nil {
		return nil, err
	}
	return data, nil
}
