package services

import (
	"context"
	"fmt"
	"log/slog"

	"mawbaudit/internal/audit"
	"mawbaudit/internal/config"
	"mawbaudit/internal/exporter"
	"mawbaudit/pkg/contracts/domain"
)

// AuditService orchestrates audit runs and report generation. It owns the
// memoizing runner, so repeated requests over identical inputs return the
// cached result.
type AuditService struct {
	config *config.Config
	logger *slog.Logger
	runner *audit.Runner
	excel  *exporter.ExcelBuilder
	csv    *exporter.CSVWriter
}

// NewAuditService creates an audit service with a specific logger
func NewAuditService(cfg *config.Config, logger *slog.Logger) (*AuditService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	runner, err := audit.NewRunner(logger, audit.DefaultPolicy(), cfg.Audit.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create audit runner: %w", err)
	}

	logger.Info("audit service initialized",
		slog.Int("cache_size", cfg.Audit.CacheSize),
		slog.Float64("low_threshold", cfg.Audit.LowThreshold),
		slog.Float64("high_threshold", cfg.Audit.HighThreshold))

	return &AuditService{
		config: cfg,
		logger: logger.With(slog.String("component", "audit_service")),
		runner: runner,
		excel:  exporter.NewExcelBuilder(logger),
		csv:    exporter.NewCSVWriter(logger),
	}, nil
}

// Run executes one audit over the uploaded workbook bytes.
func (s *AuditService) Run(ctx context.Context, req audit.Request) (*domain.AuditResult, error) {
	result, err := s.runner.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "audit completed",
		slog.String("run_id", result.RunID),
		slog.Int("mawb_count", result.KPI.TotalMAWB),
		slog.Int("open_count", result.KPI.OpenCount),
		slog.Int("not_found", len(result.NotFound)))

	return result, nil
}

// BuildReport renders the Excel workbook for an audit result.
func (s *AuditService) BuildReport(result *domain.AuditResult) ([]byte, error) {
	return s.excel.Build(result)
}

// ExportCSV writes the summary tables of an audit result under dir.
func (s *AuditService) ExportCSV(result *domain.AuditResult, dir string) error {
	return s.csv.ExportSummaries(result, dir)
}

// Defaults reports the configured threshold defaults for requests that omit
// them.
func (s *AuditService) Defaults() (low, high float64) {
	return s.config.Audit.LowThreshold, s.config.Audit.HighThreshold
}
