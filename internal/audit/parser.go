package audit

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mawbaudit/pkg/contracts/domain"
)

// ParseBilling locates the billing sheet, binds the logical columns and
// decodes every data row into a normalized BillingLine. Required fields are
// MAWB, Cost Amount and Sell Amount; Client, Charge Code and Vendor are
// optional and default to UNKNOWN. Numeric coercion failures degrade
// silently to zero. Lines whose MAWB normalizes to empty are kept here and
// dropped by the aggregator's filter step.
func ParseBilling(f *excelize.File, logger *slog.Logger, policy Policy) ([]domain.BillingLine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sheet, headerRow, ok := FindSheet(f, billingRequired)
	if !ok {
		return nil, ErrNoBillingSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read billing sheet %q: %w", sheet, err)
	}
	headers := rows[headerRow]

	required, ok := resolveAll(headers, billingRequired)
	if !ok {
		return nil, ErrBillingColumns
	}
	mawbCol := required["MAWB"]
	costCol := required["Cost Amount"]
	sellCol := required["Sell Amount"]

	clientCol, hasClient := ResolveColumn(headers, billingOptional["Client"])
	chargeCol, hasCharge := ResolveColumn(headers, billingOptional["Charge Code"])
	vendorCol, hasVendor := ResolveColumn(headers, billingOptional["Vendor"])

	logger.Info("billing sheet resolved",
		slog.String("sheet", sheet),
		slog.Int("header_row", headerRow),
		slog.Bool("has_client", hasClient),
		slog.Bool("has_charge_code", hasCharge),
		slog.Bool("has_vendor", hasVendor))

	lines := make([]domain.BillingLine, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if rowEmpty(row) {
			continue
		}
		line := domain.BillingLine{
			MAWB:       NormalizeMAWB(cell(row, mawbCol)),
			CostAmount: parseAmount(cell(row, costCol)),
			SellAmount: parseAmount(cell(row, sellCol)),
			Client:     policy.UnknownLabel,
			ChargeCode: policy.UnknownLabel,
			Vendor:     policy.UnknownLabel,
		}
		if hasClient {
			line.Client = category(cell(row, clientCol), policy)
		}
		if hasCharge {
			line.ChargeCode = category(cell(row, chargeCol), policy)
		}
		if hasVendor {
			line.Vendor = category(cell(row, vendorCol), policy)
		}
		lines = append(lines, line)
	}

	logger.Info("billing lines parsed",
		slog.String("sheet", sheet),
		slog.Int("line_count", len(lines)))

	return lines, nil
}

// ParseETAMapping reads the optional MAWB→ETA workbook into a mapping with
// one entry per distinct identifier, latest parsed date winning on repeats.
// A mapping workbook with no resolvable sheet is tolerated and the audit
// runs without arrival dates, so unlike billing this never hard-fails on
// resolution. The returned note is the advisory "N / M values could not be
// parsed" message, empty when everything parsed.
func ParseETAMapping(f *excelize.File, logger *slog.Logger) (domain.ETAMapping, string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sheet, headerRow, ok := FindSheet(f, etaRequired)
	if !ok {
		logger.Warn("no sheet with MAWB and ETA columns in mapping workbook, continuing without arrival dates")
		return nil, "", nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("read mapping sheet %q: %w", sheet, err)
	}
	headers := rows[headerRow]

	cols, ok := resolveAll(headers, etaRequired)
	if !ok {
		return nil, "", nil
	}
	mawbCol := cols["MAWB"]
	etaCol := cols["ETA"]

	var raw []string
	var mawbs []string
	for _, row := range rows[headerRow+1:] {
		if rowEmpty(row) {
			continue
		}
		mawbs = append(mawbs, NormalizeMAWB(cell(row, mawbCol)))
		raw = append(raw, cell(row, etaCol))
	}

	dates, unparsable := CleanETAs(raw)

	mapping := make(domain.ETAMapping)
	for i, m := range mawbs {
		if m == "" || dates[i].IsZero() {
			continue
		}
		if existing, found := mapping[m]; !found || dates[i].After(existing) {
			mapping[m] = dates[i]
		}
	}

	note := ""
	if unparsable > 0 {
		note = fmt.Sprintf("ETA parsing note: %d / %d ETA values could not be parsed and were left blank.", unparsable, len(raw))
		logger.Warn("some ETA values could not be parsed",
			slog.Int("unparsable", unparsable),
			slog.Int("total", len(raw)))
	}

	logger.Info("eta mapping parsed",
		slog.String("sheet", sheet),
		slog.Int("entries", len(mapping)))

	return mapping, note, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseAmount coerces a cell to a number, zero on failure.
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// category trims a categorical cell and applies the UNKNOWN default. The
// literal nan/none tokens appear in exports round-tripped through other
// tools and are treated as blank.
func category(s string, policy Policy) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return policy.UnknownLabel
	}
	return s
}
