package domain

import (
	"time"
)

// BillingLine represents one normalized freight-billing charge record.
// Amounts that failed numeric coercion are zero and blank categorical
// fields carry the UnknownLabel default; both are applied at parse time,
// a line is never re-normalized after construction.
type BillingLine struct {
	MAWB       string    `json:"mawb"`
	Client     string    `json:"client"`
	ChargeCode string    `json:"charge_code"`
	Vendor     string    `json:"vendor"`
	CostAmount float64   `json:"cost_amount"`
	SellAmount float64   `json:"sell_amount"`
	ETA        time.Time `json:"eta,omitempty"`
}

// HasETA reports whether an arrival date was joined onto the line.
func (l BillingLine) HasETA() bool {
	return !l.ETA.IsZero()
}

// ETAMapping maps a normalized MAWB to its latest known arrival date.
// Built once from the optional mapping workbook; when an identifier
// repeats in the source the latest parsed date wins.
type ETAMapping map[string]time.Time

// UnknownLabel is the default for blank or missing categorical fields
// (client, charge code, vendor).
const UnknownLabel = "UNKNOWN"
