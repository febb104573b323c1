package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mawbaudit/internal/config"
	"mawbaudit/internal/services"
	"mawbaudit/pkg/contracts/domain"
)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	svc, err := services.NewAuditService(cfg, logger)
	require.NoError(t, err)
	return NewRouter(cfg, svc, logger, "test")
}

func billingWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"MAWB", "Cost Amount", "Sell Amount", "Client", "Charge Code", "Vendor"},
		{"111-11111111", 100.0, 150.0, "ACME", "FRT", "CargoAir"},
		{"222-22222222", 0.0, 120.0, "Globex", "FRT", "SeaLift"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// multipartBody builds the upload form with the given field values.
func multipartBody(t *testing.T, billing []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	if billing != nil {
		part, err := mw.CreateFormFile("billing", "billing.xlsx")
		require.NoError(t, err)
		_, err = part.Write(billing)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestRunAuditJSON(t *testing.T) {
	router := testRouter(t)
	body, contentType := multipartBody(t, billingWorkbook(t), map[string]string{"format": "json"})

	req := httptest.NewRequest(http.MethodPost, "/api/audit", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.AuditResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.KPI.TotalMAWB)
	assert.Equal(t, 1, result.KPI.CostZeroCount)
	assert.NotEmpty(t, result.RunID)
}

func TestRunAuditWorkbookDownload(t *testing.T) {
	router := testRouter(t)
	body, contentType := multipartBody(t, billingWorkbook(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/audit", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mawb_audit_")

	wb, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	assert.Contains(t, wb.GetSheetList(), "Analysis Summary")
}

func TestRunAuditMissingBilling(t *testing.T) {
	router := testRouter(t)
	body, contentType := multipartBody(t, nil, map[string]string{"format": "json"})

	req := httptest.NewRequest(http.MethodPost, "/api/audit", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "billing")
}

func TestRunAuditInvalidThresholds(t *testing.T) {
	router := testRouter(t)
	body, contentType := multipartBody(t, billingWorkbook(t), map[string]string{
		"low_threshold":  "0.9",
		"high_threshold": "0.1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/audit", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunAuditRejectsCSVFormat(t *testing.T) {
	router := testRouter(t)
	body, contentType := multipartBody(t, billingWorkbook(t), map[string]string{"format": "csv"})

	req := httptest.NewRequest(http.MethodPost, "/api/audit", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, "csv export is CLI-only")
}

func TestRunAuditRejectsNonWorkbookUpload(t *testing.T) {
	router := testRouter(t)
	body, contentType := multipartBody(t, []byte("MAWB,Cost,Sell\n1,2,3"), map[string]string{"format": "json"})

	req := httptest.NewRequest(http.MethodPost, "/api/audit", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(t)

	// Drive one request through the chain so the counters have a sample.
	health := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), health)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
