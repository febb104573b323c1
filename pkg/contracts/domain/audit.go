package domain

import (
	"time"
)

// Classification is the binary audit status assigned to each MAWB.
type Classification string

const (
	ClassificationOpen   Classification = "Open"
	ClassificationClosed Classification = "Closed"
)

// Well-known exception types. The fourth category, the out-of-band margin
// label, is parameterized by the active thresholds and lives on AuditResult.
const (
	ExceptionNone        = ""
	ExceptionRevenueZero = "Revenue=0"
	ExceptionCostZero    = "Cost=0"
	ExceptionBothZero    = "Cost=Sell=0"
)

// MAWBSummary represents the per-identifier financial rollup. Exactly one
// row exists per distinct normalized MAWB present after filtering.
type MAWBSummary struct {
	MAWB           string         `json:"mawb"`
	Client         string         `json:"client"`
	TotalCost      float64        `json:"total_cost"`
	TotalSell      float64        `json:"total_sell"`
	LineCount      int            `json:"line_count"`
	ETA            time.Time      `json:"eta,omitempty"`
	ETAMonth       string         `json:"eta_month"`
	Profit         float64        `json:"profit"`
	ProfitMargin   float64        `json:"profit_margin"`
	Classification Classification `json:"classification"`
	ExceptionType  string         `json:"exception_type"`
}

// HasETA reports whether any line of the MAWB carried an arrival date.
func (s MAWBSummary) HasETA() bool {
	return !s.ETA.IsZero()
}

// DimensionSummary represents a rollup of billing lines by a categorical
// attribute (client, charge code or vendor). ExceptionCounts pivots the
// MAWB-level exception flags onto the dimension: distinct MAWBs touching
// the dimension value per exception type. It is populated for charge-code
// and vendor rollups only; LatestETA is populated for clients only.
type DimensionSummary struct {
	Key             string         `json:"key"`
	TotalCost       float64        `json:"total_cost"`
	TotalSell       float64        `json:"total_sell"`
	LineCount       int            `json:"line_count"`
	MAWBCount       int            `json:"mawb_count"`
	LatestETA       time.Time      `json:"latest_eta,omitempty"`
	Profit          float64        `json:"profit"`
	ProfitMargin    float64        `json:"profit_margin"`
	ExceptionCounts map[string]int `json:"exception_counts,omitempty"`
}

// ChargeCodeMAWBRow represents the finer (MAWB, charge code) grain used by
// the profit-leak view. The exported view keeps only rows with profit <= 0.
type ChargeCodeMAWBRow struct {
	MAWB         string    `json:"mawb"`
	ChargeCode   string    `json:"charge_code"`
	Client       string    `json:"client"`
	Vendor       string    `json:"vendor"`
	TotalCost    float64   `json:"total_cost"`
	TotalSell    float64   `json:"total_sell"`
	Profit       float64   `json:"profit"`
	ProfitMargin float64   `json:"profit_margin"`
	ETA          time.Time `json:"eta,omitempty"`
	ETAMonth     string    `json:"eta_month"`
}

// KPISet represents the headline figures computed over the MAWB summary.
// Every ratio uses the zero-denominator-is-zero convention.
type KPISet struct {
	TotalMAWB            int     `json:"total_mawb"`
	ClosedCount          int     `json:"closed_count"`
	ClosedRatio          float64 `json:"closed_ratio"`
	OpenCount            int     `json:"open_count"`
	RevenueZeroCount     int     `json:"revenue_zero_count"`
	CostZeroCount        int     `json:"cost_zero_count"`
	BothZeroCount        int     `json:"both_zero_count"`
	MarginExceptionCount int     `json:"margin_exception_count"`
	TotalCost            float64 `json:"total_cost"`
	TotalSell            float64 `json:"total_sell"`
	TotalProfit          float64 `json:"total_profit"`
	OverallMargin        float64 `json:"overall_margin"`
	ETAFilledRatio       float64 `json:"eta_filled_ratio"`
	NegativeProfitCount  int     `json:"negative_profit_count"`
	NegativeProfitAmount float64 `json:"negative_profit_amount"`
	NegativeProfitRatio  float64 `json:"negative_profit_ratio"`
}

// AuditResult is the aggregate root produced by one audit run. It is never
// mutated after construction; every bucket view is a filtered slice over
// Summary, so the views cannot disagree with each other.
type AuditResult struct {
	RunID         string    `json:"run_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	LowThreshold  float64   `json:"low_threshold"`
	HighThreshold float64   `json:"high_threshold"`
	MarginLabel   string    `json:"margin_label"`

	Filter       []string `json:"filter,omitempty"`
	NotFound     []string `json:"not_found,omitempty"`
	ETAParseNote string   `json:"eta_parse_note,omitempty"`

	Lines   []BillingLine `json:"lines"`
	Summary []MAWBSummary `json:"summary"`

	Exceptions     []MAWBSummary `json:"exceptions"`
	MarginOutliers []MAWBSummary `json:"margin_outliers"`
	NegativeProfit []MAWBSummary `json:"negative_profit"`
	ZeroMargin     []MAWBSummary `json:"zero_margin"`
	ZeroProfit     []MAWBSummary `json:"zero_profit"`
	BothZero       []MAWBSummary `json:"both_zero"`
	SellZeroOnly   []MAWBSummary `json:"sell_zero_only"`
	CostZeroOnly   []MAWBSummary `json:"cost_zero_only"`

	ClientSummary     []DimensionSummary  `json:"client_summary"`
	ChargeCodeSummary []DimensionSummary  `json:"chargecode_summary"`
	VendorSummary     []DimensionSummary  `json:"vendor_summary"`
	ChargeCodeMAWB    []ChargeCodeMAWBRow `json:"chargecode_mawb_profit_le0"`

	KPI KPISet `json:"kpi"`
}
