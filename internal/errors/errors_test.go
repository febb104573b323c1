package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mawbaudit/internal/audit"
	"mawbaudit/internal/middleware"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)

	withDetails := NewWithDetails(http.StatusNotFound, "NOT_FOUND", "missing", "report.xlsx")
	assert.Equal(t, "report.xlsx", withDetails.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("low_threshold", "must be below high_threshold")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "low_threshold", detail.Field)
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no billing sheet",
			err:        fmt.Errorf("parse billing: %w", audit.ErrNoBillingSheet),
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_BILLING_SHEET",
		},
		{
			name:       "missing columns",
			err:        audit.ErrBillingColumns,
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_BILLING_SHEET",
		},
		{
			name:       "invalid thresholds",
			err:        fmt.Errorf("run: %w", audit.ErrInvalidThresholds),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_THRESHOLDS",
		},
		{
			name:       "api error passes through",
			err:        ErrPayloadTooLarge,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "PAYLOAD_TOO_LARGE",
		},
		{
			name:       "unknown error is opaque",
			err:        fmt.Errorf("workbook is corrupt at byte 12"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ToAPIError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}

func TestHandleErrorLogsRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	handler := NewErrorHandler(slog.New(slog.NewJSONHandler(&logBuf, nil)))

	wrapped := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.HandleError(w, r, audit.ErrNoBillingSheet)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/audit", nil)
	r.Header.Set("X-Request-ID", "req-id-123")
	wrapped.ServeHTTP(w, r)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(logBuf.Bytes(), &entry))
	assert.Equal(t, "req-id-123", entry["request_id"],
		"error log must carry the middleware's request ID")
	assert.Equal(t, "req-id-123", w.Header().Get("X-Request-ID"))
}

func TestHandleError(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/audit", nil)
	handler.HandleError(w, r, audit.ErrInvalidThresholds)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_THRESHOLDS", body.ErrorCode)
}
