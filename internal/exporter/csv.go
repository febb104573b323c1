package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"mawbaudit/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{
		logger: logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Info("writing csv file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Write BOM if requested (helps Excel recognize UTF-8)
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// ExportSummaries writes the main summary tables of an audit result as CSV
// files under dir, one file per view.
func (w *CSVWriter) ExportSummaries(result *domain.AuditResult, dir string) error {
	ccCols := exceptionColumns(result.ChargeCodeSummary)
	vendorCols := exceptionColumns(result.VendorSummary)

	files := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{"mawb_summary.csv", summaryHeaders, summaryRows(result.Summary)},
		{"exceptions.csv", summaryHeaders, summaryRows(result.Exceptions)},
		{"client_summary.csv", clientHeaders, clientRows(result.ClientSummary)},
		{"chargecode_summary.csv", dimensionHeaders("Charge Code", ccCols), dimensionRows(result.ChargeCodeSummary, ccCols)},
		{"vendor_summary.csv", dimensionHeaders("Vendor", vendorCols), dimensionRows(result.VendorSummary, vendorCols)},
		{"chargecode_profit_le0_mawb.csv", ccMAWBHeaders, ccMAWBRows(result.ChargeCodeMAWB)},
	}

	for _, file := range files {
		records := make([][]string, 0, len(file.rows))
		for _, row := range file.rows {
			record := make([]string, len(row))
			for i, cell := range row {
				record[i] = cellString(cell)
			}
			records = append(records, record)
		}

		path := filepath.Join(dir, file.name)
		if err := w.WriteCSV(path, WriteOptions{
			Headers:   file.headers,
			Records:   records,
			BOMPrefix: true,
		}); err != nil {
			return fmt.Errorf("export %s: %w", file.name, err)
		}
	}

	kpiRecords := make([][]string, 0, 16)
	for _, e := range kpiVertical(result.KPI, result.MarginLabel) {
		kpiRecords = append(kpiRecords, []string{e.label, metricString(e)})
	}
	for _, e := range negativeProfitVertical(result.KPI) {
		kpiRecords = append(kpiRecords, []string{e.label, metricString(e)})
	}

	return w.WriteCSV(filepath.Join(dir, "kpi.csv"), WriteOptions{
		Headers:   []string{"Metric", "Value"},
		Records:   kpiRecords,
		BOMPrefix: true,
	})
}

func metricString(e metricValue) string {
	if e.percent {
		return fmt.Sprintf("%.2f%%", e.value*100)
	}
	return formatFloat(e.value)
}
