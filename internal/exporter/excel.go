package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"mawbaudit/pkg/contracts/domain"
)

// Analysis Summary is the landing page; it occupies the workbook's default
// sheet so it opens first.
const summarySheet = "Analysis Summary"

// ExcelBuilder renders an audit result into a multi-tab Excel workbook.
type ExcelBuilder struct {
	logger *slog.Logger
}

// NewExcelBuilder creates an Excel report builder.
func NewExcelBuilder(logger *slog.Logger) *ExcelBuilder {
	return &ExcelBuilder{
		logger: logger.With(slog.String("component", "excel_builder")),
	}
}

type workbookStyles struct {
	header    int
	subheader int
	bold      int
	percent   int
	number    int
}

// Build produces the workbook bytes for one audit result.
func (b *ExcelBuilder) Build(result *domain.AuditResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}

	if err := b.writeAnalysisSummary(f, result, styles); err != nil {
		return nil, fmt.Errorf("write %s: %w", summarySheet, err)
	}

	ccCols := exceptionColumns(result.ChargeCodeSummary)
	vendorCols := exceptionColumns(result.VendorSummary)

	sheets := []struct {
		name      string
		headers   []string
		rows      [][]interface{}
		marginCol int
	}{
		{"Exceptions", summaryHeaders, summaryRows(result.Exceptions), summaryMarginCol},
		{"MAWB_Summary", summaryHeaders, summaryRows(result.Summary), summaryMarginCol},
		{"Client_Summary", clientHeaders, clientRows(result.ClientSummary), clientMarginCol},
		{"Margin_Outliers", summaryHeaders, summaryRows(result.MarginOutliers), summaryMarginCol},
		{"Negative_Profit", summaryHeaders, summaryRows(result.NegativeProfit), summaryMarginCol},
		{"Zero_Margin", summaryHeaders, summaryRows(result.ZeroMargin), summaryMarginCol},
		{"Zero_Profit", summaryHeaders, summaryRows(result.ZeroProfit), summaryMarginCol},
		{"Both_Zero", summaryHeaders, summaryRows(result.BothZero), summaryMarginCol},
		{"Sell_Zero_Only", summaryHeaders, summaryRows(result.SellZeroOnly), summaryMarginCol},
		{"Cost_Zero_Only", summaryHeaders, summaryRows(result.CostZeroOnly), summaryMarginCol},
		{"ChargeCode_Summary", dimensionHeaders("Charge Code", ccCols), dimensionRows(result.ChargeCodeSummary, ccCols), dimensionMarginCol},
		{"Vendor_Summary", dimensionHeaders("Vendor", vendorCols), dimensionRows(result.VendorSummary, vendorCols), dimensionMarginCol},
		{"ChargeCode_ProfitLE0_MAWB", ccMAWBHeaders, ccMAWBRows(result.ChargeCodeMAWB), ccMAWBMarginCol},
	}

	for _, sheet := range sheets {
		if err := b.writeDetailSheet(f, sheet.name, sheet.headers, sheet.rows, sheet.marginCol, styles); err != nil {
			return nil, fmt.Errorf("write %s: %w", sheet.name, err)
		}
	}

	// Only present when the caller filtered by MAWB list.
	if len(result.Filter) > 0 {
		rows := make([][]interface{}, 0, len(result.NotFound))
		for _, m := range result.NotFound {
			rows = append(rows, []interface{}{m})
		}
		if err := b.writeDetailSheet(f, "MAWB_Not_Found", []string{"MAWB"}, rows, -1, styles); err != nil {
			return nil, fmt.Errorf("write MAWB_Not_Found: %w", err)
		}
	}

	lineRows := make([][]interface{}, 0, len(result.Lines))
	for _, l := range result.Lines {
		lineRows = append(lineRows, lineRow(l))
	}
	if err := b.writeDetailSheet(f, "Raw_Billing_Enriched", lineHeaders, lineRows, -1, styles); err != nil {
		return nil, fmt.Errorf("write Raw_Billing_Enriched: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	b.logger.Info("excel report built",
		slog.String("run_id", result.RunID),
		slog.Int("sheet_count", len(f.GetSheetList())),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, err
	}
	if s.subheader, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}}); err != nil {
		return s, err
	}
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	percentFmt := PercentFmt
	if s.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt}); err != nil {
		return s, err
	}
	numberFmt := NumberFmt
	if s.number, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numberFmt}); err != nil {
		return s, err
	}
	return s, nil
}

// writeDetailSheet writes one header row plus data rows starting at A1,
// formats the Profit Margin % column as percent when present, and applies
// the shared readability widths.
func (b *ExcelBuilder) writeDetailSheet(f *excelize.File, name string, headers []string, rows [][]interface{}, marginCol int, styles workbookStyles) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &headerRow); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	if marginCol >= 0 {
		col, err := excelize.ColumnNumberToName(marginCol + 1)
		if err != nil {
			return err
		}
		if err := f.SetColStyle(name, col, styles.percent); err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, 16); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(name, "A", "A", 18); err != nil {
		return err
	}
	return f.SetColWidth(name, "B", "F", 16)
}

// metricValue is one Metric/Value row of a vertical KPI table.
type metricValue struct {
	label   string
	value   float64
	percent bool
}

func kpiVertical(k domain.KPISet, marginLabel string) []metricValue {
	return []metricValue{
		{label: "Total MAWB", value: float64(k.TotalMAWB)},
		{label: "Closed Count", value: float64(k.ClosedCount)},
		{label: "Closed %", value: k.ClosedRatio, percent: true},
		{label: "Open Count", value: float64(k.OpenCount)},
		{label: "Revenue=0 Count", value: float64(k.RevenueZeroCount)},
		{label: "Cost=0 Count", value: float64(k.CostZeroCount)},
		{label: "Cost=Sell=0 Count", value: float64(k.BothZeroCount)},
		{label: fmt.Sprintf("%s Count", marginLabel), value: float64(k.MarginExceptionCount)},
		{label: "Total Cost", value: k.TotalCost},
		{label: "Total Sell", value: k.TotalSell},
		{label: "Total Profit", value: k.TotalProfit},
		{label: "Overall Profit Margin %", value: k.OverallMargin, percent: true},
		{label: "ETA Filled %", value: k.ETAFilledRatio, percent: true},
	}
}

func negativeProfitVertical(k domain.KPISet) []metricValue {
	return []metricValue{
		{label: "Profit < 0 Count", value: float64(k.NegativeProfitCount)},
		{label: "Profit < 0 Total Amount", value: k.NegativeProfitAmount},
		{label: "Profit < 0 % of MAWBs", value: k.NegativeProfitRatio, percent: true},
	}
}

func (b *ExcelBuilder) writeAnalysisSummary(f *excelize.File, result *domain.AuditResult, styles workbookStyles) error {
	set := func(row, col int, v interface{}, style int) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, cell, v); err != nil {
			return err
		}
		if style > 0 {
			return f.SetCellStyle(summarySheet, cell, cell, style)
		}
		return nil
	}

	if err := set(1, 1, "Analysis Summary", styles.header); err != nil {
		return err
	}
	if err := set(3, 1, "This page provides an overview. Click detail links below:", styles.bold); err != nil {
		return err
	}

	tabLinks := []struct {
		text  string
		sheet string
	}{
		{"Open exceptions overview + detail", "Exceptions"},
		{"MAWB level summary + detail", "MAWB_Summary"},
		{"Client margin summary + detail", "Client_Summary"},
		{fmt.Sprintf("Margin anomalies (%s) + detail", result.MarginLabel), "Margin_Outliers"},
		{"Negative profit MAWBs + detail", "Negative_Profit"},
		{"Zero margin tickets + detail", "Zero_Margin"},
		{"Zero profit tickets + detail", "Zero_Profit"},
		{"Cost=Sell=0 tickets + detail", "Both_Zero"},
		{"Sell=0 only tickets + detail", "Sell_Zero_Only"},
		{"Cost=0 only tickets + detail", "Cost_Zero_Only"},
		{"Charge code summary + detail", "ChargeCode_Summary"},
		{"Vendor summary + detail", "Vendor_Summary"},
		{"ChargeCode Profit<=0 by MAWB + detail", "ChargeCode_ProfitLE0_MAWB"},
		{"Raw enriched billing + detail", "Raw_Billing_Enriched"},
	}
	if len(result.Filter) > 0 {
		tabLinks = append([]struct {
			text  string
			sheet string
		}{{"MAWB not found from filter + detail", "MAWB_Not_Found"}}, tabLinks...)
	}

	row := 4
	for _, link := range tabLinks {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, cell, link.text); err != nil {
			return err
		}
		if err := f.SetCellHyperLink(summarySheet, cell, fmt.Sprintf("'%s'!A1", link.sheet), "Location"); err != nil {
			return err
		}
		row++
	}

	writeVertical := func(row int, title string, entries []metricValue) (int, error) {
		if err := set(row, 1, title, styles.subheader); err != nil {
			return 0, err
		}
		if err := set(row+1, 1, "Metric", styles.bold); err != nil {
			return 0, err
		}
		if err := set(row+1, 2, "Value", styles.bold); err != nil {
			return 0, err
		}
		for i, e := range entries {
			if err := set(row+2+i, 1, e.label, 0); err != nil {
				return 0, err
			}
			style := styles.number
			if e.percent {
				style = styles.percent
			}
			if err := set(row+2+i, 2, e.value, style); err != nil {
				return 0, err
			}
		}
		return row + 2 + len(entries), nil
	}

	kpiEnd, err := writeVertical(row+1, "KPI (two-column)", kpiVertical(result.KPI, result.MarginLabel))
	if err != nil {
		return err
	}

	negEnd, err := writeVertical(kpiEnd+1, "Summary: Profit < 0", negativeProfitVertical(result.KPI))
	if err != nil {
		return err
	}

	ccCols := exceptionColumns(result.ChargeCodeSummary)
	ccEnd, err := b.writeEmbeddedTable(f, negEnd+2, "ChargeCode_Summary (embedded)",
		dimensionHeaders("Charge Code", ccCols), dimensionRows(result.ChargeCodeSummary, ccCols), styles)
	if err != nil {
		return err
	}

	vendorCols := exceptionColumns(result.VendorSummary)
	if _, err := b.writeEmbeddedTable(f, ccEnd+2, "Vendor_Summary (embedded)",
		dimensionHeaders("Vendor", vendorCols), dimensionRows(result.VendorSummary, vendorCols), styles); err != nil {
		return err
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 40); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "F", 16)
}

// writeEmbeddedTable writes a titled preview table into the Analysis Summary
// sheet and returns the last row used. Percent styling is applied per cell
// so it cannot leak into the KPI rows sharing the column.
func (b *ExcelBuilder) writeEmbeddedTable(f *excelize.File, startRow int, title string, headers []string, rows [][]interface{}, styles workbookStyles) (int, error) {
	titleCell, err := excelize.CoordinatesToCellName(1, startRow)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellValue(summarySheet, titleCell, title); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(summarySheet, titleCell, titleCell, styles.subheader); err != nil {
		return 0, err
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	cell, err := excelize.CoordinatesToCellName(1, startRow+1)
	if err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(summarySheet, cell, &headerRow); err != nil {
		return 0, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+2+i)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return 0, err
		}
		pmCell, err := excelize.CoordinatesToCellName(dimensionMarginCol+1, startRow+2+i)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(summarySheet, pmCell, pmCell, styles.percent); err != nil {
			return 0, err
		}
	}

	return startRow + 1 + len(rows), nil
}

func summaryRows(views []domain.MAWBSummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(views))
	for _, s := range views {
		rows = append(rows, summaryRow(s))
	}
	return rows
}

func clientRows(dims []domain.DimensionSummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(dims))
	for _, d := range dims {
		rows = append(rows, clientRow(d))
	}
	return rows
}

func dimensionRows(dims []domain.DimensionSummary, excCols []string) [][]interface{} {
	rows := make([][]interface{}, 0, len(dims))
	for _, d := range dims {
		rows = append(rows, dimensionRow(d, excCols))
	}
	return rows
}

func ccMAWBRows(grain []domain.ChargeCodeMAWBRow) [][]interface{} {
	rows := make([][]interface{}, 0, len(grain))
	for _, r := range grain {
		rows = append(rows, ccMAWBRow(r))
	}
	return rows
}
