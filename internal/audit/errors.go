package audit

import "errors"

// Input errors surfaced to the caller before any aggregation happens.
// Everything else in the pipeline degrades to documented defaults instead
// of failing.
var (
	// ErrNoBillingSheet means no sheet of the billing workbook contains the
	// required MAWB / Cost Amount / Sell Amount fields.
	ErrNoBillingSheet = errors.New("no sheet containing required fields: MAWB, Cost Amount, Sell Amount")

	// ErrBillingColumns means a sheet was selected but the required columns
	// could not be bound after scanning.
	ErrBillingColumns = errors.New("billing sheet found but required columns could not be detected")

	// ErrInvalidThresholds means the margin band is malformed: thresholds
	// outside [0,1] or low >= high.
	ErrInvalidThresholds = errors.New("margin thresholds must satisfy 0 <= low < high <= 1")
)
