package audit

import (
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Alias sets for the logical fields the audit needs. Real-world billing
// exports spell the same column many ways; resolution is insensitive to
// case, whitespace, underscores and hyphens, and candidate order wins.
var (
	billingRequired = map[string][]string{
		"MAWB":        {"MAWB", "Mawb", "Master AWB", "MasterAWB"},
		"Cost Amount": {"Cost Amount", "Cost", "AP Amount", "Total Cost", "CostAmount"},
		"Sell Amount": {"Sell Amount", "Sell", "AR Amount", "Total Sell", "SellAmount"},
	}
	billingOptional = map[string][]string{
		"Client":      {"Client", "Customer", "Account", "Shipper", "Bill To", "Billed To"},
		"Charge Code": {"Charge Code", "ChargeCode", "Charge", "Code"},
		"Vendor":      {"Vendor", "Carrier", "Supplier"},
	}
	etaRequired = map[string][]string{
		"MAWB": {"MAWB", "Mawb", "Master AWB", "MasterAWB"},
		"ETA":  {"ETA", "Eta", "Estimated Time of Arrival", "Arrival", "Arrival Date", "ETA Date"},
	}
)

// headerScanLimit bounds how many rows of a sheet are sampled when looking
// for a header row.
const headerScanLimit = 60

var headerSeparators = regexp.MustCompile(`[\s_\-]+`)

// normalizeHeader canonicalizes a column header for alias matching.
func normalizeHeader(s string) string {
	return headerSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// ResolveColumn returns the index of the first header matching any of the
// candidate aliases. Candidates are tried in order, so the first alias that
// matches wins even when a later alias would match an earlier column.
func ResolveColumn(headers []string, candidates []string) (int, bool) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	for _, cand := range candidates {
		if i, ok := index[normalizeHeader(cand)]; ok {
			return i, true
		}
	}
	return 0, false
}

// resolveAll resolves every logical field in required against a header row.
// It returns false as soon as any field has no matching column.
func resolveAll(headers []string, required map[string][]string) (map[string]int, bool) {
	cols := make(map[string]int, len(required))
	for field, candidates := range required {
		i, ok := ResolveColumn(headers, candidates)
		if !ok {
			return nil, false
		}
		cols[field] = i
	}
	return cols, true
}

// FindSheet scans the workbook's sheets in source order and returns the
// first one containing a header row where every required logical field
// resolves, together with the index of that header row. A sheet that fails
// is skipped, not fatal; ok is false when no sheet qualifies and callers
// must treat that as a user-facing input error.
func FindSheet(f *excelize.File, required map[string][]string) (sheet string, headerRow int, ok bool) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		for i, row := range rows {
			if i >= headerScanLimit {
				break
			}
			if _, found := resolveAll(row, required); found {
				return name, i, true
			}
		}
	}
	return "", 0, false
}
