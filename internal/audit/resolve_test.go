package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// sheetFixture is an in-memory worksheet definition for tests.
type sheetFixture struct {
	name string
	rows [][]interface{}
}

// buildWorkbook creates an in-memory workbook with the given sheets in order.
func buildWorkbook(t *testing.T, sheets ...sheetFixture) *excelize.File {
	t.Helper()
	require.NotEmpty(t, sheets)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheets[0].name))
	for i, sh := range sheets {
		if i > 0 {
			_, err := f.NewSheet(sh.name)
			require.NoError(t, err)
		}
		for r, row := range sh.rows {
			for c, v := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sh.name, cell, v))
			}
		}
	}
	return f
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cost Amount", "costamount"},
		{"  cost_amount ", "costamount"},
		{"COST-AMOUNT", "costamount"},
		{"Master AWB", "masterawb"},
		{"charge  code", "chargecode"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeader(tt.in), "normalizeHeader(%q)", tt.in)
	}
}

func TestResolveColumn(t *testing.T) {
	headers := []string{"Shipment Ref", "cost_amount", "AP Amount", "MAWB"}

	tests := []struct {
		name       string
		candidates []string
		wantIdx    int
		wantOK     bool
	}{
		{
			name:       "direct match",
			candidates: []string{"MAWB"},
			wantIdx:    3,
			wantOK:     true,
		},
		{
			// "Cost Amount" matches column 1 even though "AP Amount" sits
			// earlier in the header row: candidate order wins, not column order.
			name:       "candidate order wins",
			candidates: []string{"Cost Amount", "AP Amount"},
			wantIdx:    1,
			wantOK:     true,
		},
		{
			name:       "later candidate as fallback",
			candidates: []string{"Total Cost", "AP Amount"},
			wantIdx:    2,
			wantOK:     true,
		},
		{
			name:       "no match",
			candidates: []string{"Sell Amount", "AR Amount"},
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := ResolveColumn(headers, tt.candidates)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, idx)
			}
		})
	}
}

func TestFindSheet(t *testing.T) {
	t.Run("skips sheets missing required fields", func(t *testing.T) {
		f := buildWorkbook(t,
			sheetFixture{name: "Notes", rows: [][]interface{}{{"just", "some", "text"}}},
			sheetFixture{name: "Charges", rows: [][]interface{}{
				{"MAWB", "Cost Amount", "Sell Amount"},
				{"999-34022122", 100, 150},
			}},
		)
		defer f.Close()

		sheet, headerRow, ok := FindSheet(f, billingRequired)
		assert.True(t, ok)
		assert.Equal(t, "Charges", sheet)
		assert.Equal(t, 0, headerRow)
	})

	t.Run("header below preamble rows", func(t *testing.T) {
		f := buildWorkbook(t, sheetFixture{name: "Export", rows: [][]interface{}{
			{"Company Billing Export"},
			{},
			{"Mawb", "AP Amount", "AR Amount", "Customer"},
			{"999-34022122", 10, 20, "ACME"},
		}})
		defer f.Close()

		sheet, headerRow, ok := FindSheet(f, billingRequired)
		assert.True(t, ok)
		assert.Equal(t, "Export", sheet)
		assert.Equal(t, 2, headerRow)
	})

	t.Run("no qualifying sheet returns sentinel", func(t *testing.T) {
		f := buildWorkbook(t, sheetFixture{name: "Data", rows: [][]interface{}{
			{"MAWB", "Cost Amount"}, // sell column missing
		}})
		defer f.Close()

		sheet, _, ok := FindSheet(f, billingRequired)
		assert.False(t, ok)
		assert.Empty(t, sheet)
	})

	t.Run("first qualifying sheet in source order wins", func(t *testing.T) {
		rows := [][]interface{}{
			{"MAWB", "Cost", "Sell"},
			{"999-34022122", 1, 2},
		}
		f := buildWorkbook(t,
			sheetFixture{name: "First", rows: rows},
			sheetFixture{name: "Second", rows: rows},
		)
		defer f.Close()

		sheet, _, ok := FindSheet(f, billingRequired)
		assert.True(t, ok)
		assert.Equal(t, "First", sheet)
	})
}
