package exporter

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mawbaudit/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureResult() *domain.AuditResult {
	eta := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	summary := []domain.MAWBSummary{
		{
			MAWB: "111-11111111", Client: "ACME", TotalCost: 100, TotalSell: 150,
			LineCount: 2, ETA: eta, ETAMonth: "2024-03", Profit: 50, ProfitMargin: 50.0 / 150.0,
			Classification: domain.ClassificationClosed,
		},
		{
			MAWB: "222-22222222", Client: "Globex", TotalCost: 0, TotalSell: 0,
			LineCount: 1, Profit: 0, ProfitMargin: 0,
			Classification: domain.ClassificationOpen,
			ExceptionType:  domain.ExceptionBothZero,
		},
	}
	return &domain.AuditResult{
		RunID:         "run-1",
		GeneratedAt:   time.Now().UTC(),
		LowThreshold:  0.30,
		HighThreshold: 0.80,
		MarginLabel:   "Margin<30% or >80%",
		Lines: []domain.BillingLine{
			{MAWB: "111-11111111", Client: "ACME", ChargeCode: "FRT", Vendor: "CargoAir", CostAmount: 100, SellAmount: 150, ETA: eta},
			{MAWB: "222-22222222", Client: "Globex", ChargeCode: "FRT", Vendor: "CargoAir"},
		},
		Summary:    summary,
		Exceptions: summary[1:],
		BothZero:   summary[1:],
		ClientSummary: []domain.DimensionSummary{
			{Key: "ACME", TotalCost: 100, TotalSell: 150, LineCount: 2, MAWBCount: 1, LatestETA: eta, Profit: 50, ProfitMargin: 50.0 / 150.0},
			{Key: "Globex", LineCount: 1, MAWBCount: 1},
		},
		ChargeCodeSummary: []domain.DimensionSummary{
			{Key: "FRT", TotalCost: 100, TotalSell: 150, LineCount: 3, MAWBCount: 2, Profit: 50, ProfitMargin: 50.0 / 150.0,
				ExceptionCounts: map[string]int{"": 1, "Cost=Sell=0": 1}},
		},
		VendorSummary: []domain.DimensionSummary{
			{Key: "CargoAir", TotalCost: 100, TotalSell: 150, LineCount: 3, MAWBCount: 2, Profit: 50, ProfitMargin: 50.0 / 150.0,
				ExceptionCounts: map[string]int{"": 1, "Cost=Sell=0": 1}},
		},
		KPI: domain.KPISet{
			TotalMAWB: 2, ClosedCount: 1, ClosedRatio: 0.5, OpenCount: 1,
			BothZeroCount: 1, TotalCost: 100, TotalSell: 150, TotalProfit: 50,
			OverallMargin: 50.0 / 150.0, ETAFilledRatio: 0.5,
		},
	}
}

func TestExcelBuilderBuild(t *testing.T) {
	builder := NewExcelBuilder(testLogger())
	data, err := builder.Build(fixtureResult())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, "Analysis Summary", sheets[0])
	for _, want := range []string{
		"Exceptions", "MAWB_Summary", "Client_Summary", "Margin_Outliers",
		"Negative_Profit", "Zero_Margin", "Zero_Profit", "Both_Zero",
		"Sell_Zero_Only", "Cost_Zero_Only", "ChargeCode_Summary",
		"Vendor_Summary", "ChargeCode_ProfitLE0_MAWB", "Raw_Billing_Enriched",
	} {
		assert.Contains(t, sheets, want)
	}
	assert.NotContains(t, sheets, "MAWB_Not_Found", "no filter, no not-found sheet")

	title, err := f.GetCellValue("Analysis Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Analysis Summary", title)

	// First link points at the exceptions sheet.
	hasLink, target, err := f.GetCellHyperLink("Analysis Summary", "A4")
	require.NoError(t, err)
	assert.True(t, hasLink)
	assert.Equal(t, "'Exceptions'!A1", target)

	header, err := f.GetCellValue("MAWB_Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "MAWB", header)

	firstMAWB, err := f.GetCellValue("MAWB_Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "111-11111111", firstMAWB)

	classification, err := f.GetCellValue("MAWB_Summary", "J2")
	require.NoError(t, err)
	assert.Equal(t, "Closed", classification)

	// Margin column carries the percent format.
	marginCell, err := f.GetCellValue("MAWB_Summary", "I2")
	require.NoError(t, err)
	assert.Contains(t, marginCell, "%")
}

func TestExcelBuilderNotFoundSheet(t *testing.T) {
	result := fixtureResult()
	result.Filter = []string{"111-11111111", "999-99999999"}
	result.NotFound = []string{"999-99999999"}

	builder := NewExcelBuilder(testLogger())
	data, err := builder.Build(result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "MAWB_Not_Found")

	missing, err := f.GetCellValue("MAWB_Not_Found", "A2")
	require.NoError(t, err)
	assert.Equal(t, "999-99999999", missing)

	// The filter prepends its link before the exceptions link.
	hasLink, target, err := f.GetCellHyperLink("Analysis Summary", "A4")
	require.NoError(t, err)
	assert.True(t, hasLink)
	assert.Equal(t, "'MAWB_Not_Found'!A1", target)
}

func TestExcelBuilderVendorPivotColumns(t *testing.T) {
	builder := NewExcelBuilder(testLogger())
	data, err := builder.Build(fixtureResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Vendor_Summary")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	// Base columns then sorted exception pivot columns: "" before "Cost=Sell=0".
	assert.Equal(t, []string{
		"Vendor", "Total_Cost", "Total_Sell", "Line_Count", "MAWB_Count",
		"Profit", "Profit Margin %", "", "Cost=Sell=0",
	}, rows[0])
	require.Len(t, rows, 2)
	assert.Equal(t, "CargoAir", rows[1][0])
}
