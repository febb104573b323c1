package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mawbaudit/internal/audit"
	"mawbaudit/internal/config"
	"mawbaudit/internal/infrastructure"
	"mawbaudit/internal/services"
)

func main() {
	billingPath := flag.String("billing", "", "path to the billing workbook (.xlsx), required")
	etaPath := flag.String("eta", "", "optional path to the ETA mapping workbook")
	mawbs := flag.String("mawbs", "", "optional MAWB filter list, comma or whitespace separated, or @file to read one")
	low := flag.Float64("low", 0, "low margin threshold (defaults to config)")
	high := flag.Float64("high", 0, "high margin threshold (defaults to config)")
	out := flag.String("out", "mawb_audit.xlsx", "output path for the Excel report, or directory for -format csv")
	format := flag.String("format", "xlsx", "output format: xlsx, csv or json")
	flag.Parse()

	seen := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { seen[f.Name] = true })

	opts := thresholdOverrides{
		low: *low, high: *high,
		lowSet: seen["low"], highSet: seen["high"],
	}

	if err := run(*billingPath, *etaPath, *mawbs, opts, *out, *format); err != nil {
		slog.Error("audit failed", "error", err)
		os.Exit(1)
	}
}

// thresholdOverrides carries the -low/-high flag values together with
// whether each flag was passed at all, so an explicit zero is honored.
type thresholdOverrides struct {
	low, high       float64
	lowSet, highSet bool
}

// resolve applies explicit flag values over the configured defaults.
func (o thresholdOverrides) resolve(cfgLow, cfgHigh float64) (float64, float64) {
	low, high := cfgLow, cfgHigh
	if o.lowSet {
		low = o.low
	}
	if o.highSet {
		high = o.high
	}
	return low, high
}

func run(billingPath, etaPath, mawbs string, opts thresholdOverrides, out, format string) error {
	if billingPath == "" {
		return fmt.Errorf("-billing is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	svc, err := services.NewAuditService(cfg, logger)
	if err != nil {
		return err
	}

	filterText := mawbs
	if strings.HasPrefix(mawbs, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(mawbs, "@"))
		if err != nil {
			return fmt.Errorf("read mawb filter file: %w", err)
		}
		filterText = string(data)
	}

	req := audit.Request{FilterText: filterText}
	req.LowThreshold, req.HighThreshold = opts.resolve(cfg.Audit.LowThreshold, cfg.Audit.HighThreshold)

	req.Billing, err = os.ReadFile(billingPath)
	if err != nil {
		return fmt.Errorf("read billing workbook: %w", err)
	}
	if etaPath != "" {
		req.ETA, err = os.ReadFile(etaPath)
		if err != nil {
			return fmt.Errorf("read eta workbook: %w", err)
		}
	}

	result, err := svc.Run(context.Background(), req)
	if err != nil {
		return err
	}

	logger.Info("audit run finished",
		slog.String("run_id", result.RunID),
		slog.Int("mawb_count", result.KPI.TotalMAWB),
		slog.Int("open_count", result.KPI.OpenCount))

	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		return writeFile(out, data)
	case "csv":
		return svc.ExportCSV(result, out)
	case "xlsx":
		data, err := svc.BuildReport(result)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		return writeFile(out, data)
	default:
		return fmt.Errorf("unknown format %q: expected xlsx, csv or json", format)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
