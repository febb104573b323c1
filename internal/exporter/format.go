package exporter

import (
	"fmt"
	"sort"
	"time"

	"mawbaudit/pkg/contracts/domain"
)

// Cell number formats shared by the workbook and the embedded previews.
const (
	PercentFmt = "0.00%"
	NumberFmt  = "#,##0.00"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	// Always format with exactly 2 decimal places for consistency
	// This ensures values like 13.4 appear as 13.40 in CSV
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// formatDate renders a date-only cell value, empty when the date is unknown.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// summaryHeaders is the column layout shared by the MAWB summary and every
// bucket view derived from it.
var summaryHeaders = []string{
	"MAWB", "Client", "Total_Cost", "Total_Sell", "Line_Count",
	"ETA", "ETA Month", "Profit", "Profit Margin %", "Classification", "Exception_Type",
}

// summaryMarginCol is the zero-based index of "Profit Margin %" above.
const summaryMarginCol = 8

func summaryRow(s domain.MAWBSummary) []interface{} {
	return []interface{}{
		s.MAWB, s.Client, s.TotalCost, s.TotalSell, s.LineCount,
		formatDate(s.ETA), s.ETAMonth, s.Profit, s.ProfitMargin,
		string(s.Classification), s.ExceptionType,
	}
}

var clientHeaders = []string{
	"Client", "Total_Cost", "Total_Sell", "Line_Count", "MAWB_Count",
	"Latest_ETA", "Profit", "Profit Margin %",
}

const clientMarginCol = 7

func clientRow(d domain.DimensionSummary) []interface{} {
	return []interface{}{
		d.Key, d.TotalCost, d.TotalSell, d.LineCount, d.MAWBCount,
		formatDate(d.LatestETA), d.Profit, d.ProfitMargin,
	}
}

// dimensionHeaders builds the column layout for charge-code and vendor
// rollups: the base columns plus one pivot column per observed exception
// type, in sorted order.
func dimensionHeaders(keyName string, excCols []string) []string {
	headers := []string{
		keyName, "Total_Cost", "Total_Sell", "Line_Count", "MAWB_Count",
		"Profit", "Profit Margin %",
	}
	return append(headers, excCols...)
}

const dimensionMarginCol = 6

func dimensionRow(d domain.DimensionSummary, excCols []string) []interface{} {
	row := []interface{}{
		d.Key, d.TotalCost, d.TotalSell, d.LineCount, d.MAWBCount,
		d.Profit, d.ProfitMargin,
	}
	for _, col := range excCols {
		row = append(row, d.ExceptionCounts[col])
	}
	return row
}

// exceptionColumns collects the sorted union of exception pivot keys across
// a dimension rollup. The blank key (no exception) is kept: it counts the
// clean MAWBs touching the dimension value.
func exceptionColumns(dims []domain.DimensionSummary) []string {
	seen := map[string]bool{}
	for _, d := range dims {
		for k := range d.ExceptionCounts {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

var ccMAWBHeaders = []string{
	"MAWB", "Charge Code", "Client", "Vendor", "Total_Cost", "Total_Sell",
	"ETA", "Profit", "Profit Margin %", "ETA Month",
}

const ccMAWBMarginCol = 8

func ccMAWBRow(r domain.ChargeCodeMAWBRow) []interface{} {
	return []interface{}{
		r.MAWB, r.ChargeCode, r.Client, r.Vendor, r.TotalCost, r.TotalSell,
		formatDate(r.ETA), r.Profit, r.ProfitMargin, r.ETAMonth,
	}
}

var lineHeaders = []string{
	"MAWB", "Client", "Charge Code", "Vendor", "Cost Amount", "Sell Amount", "ETA",
}

func lineRow(l domain.BillingLine) []interface{} {
	return []interface{}{
		l.MAWB, l.Client, l.ChargeCode, l.Vendor, l.CostAmount, l.SellAmount,
		formatDate(l.ETA),
	}
}

// cellString renders a table cell for CSV output.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatFloat(t)
	case int:
		return formatInt(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
