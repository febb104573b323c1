package audit

import (
	"fmt"
	"math"
	"time"

	"mawbaudit/pkg/contracts/domain"
)

// Policy is the single declared contract for the default and formatting
// conventions used throughout the pipeline: blank categoricals, the
// zero-denominator-is-zero ratio rule, ETA month rendering and percent
// strings. It exists so the conventions are stated once instead of being
// repeated as literals in every aggregation.
type Policy struct {
	UnknownLabel   string
	ETAMonthFormat string
}

// DefaultPolicy returns the conventions the audit uses everywhere.
func DefaultPolicy() Policy {
	return Policy{
		UnknownLabel:   domain.UnknownLabel,
		ETAMonthFormat: "2006-01",
	}
}

// Ratio divides num by den with the uniform zero-denominator-is-zero
// convention: the result is exactly 0, never NaN or Inf, when den == 0.
func (p Policy) Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Category applies the blank-categorical default.
func (p Policy) Category(s string) string {
	if s == "" {
		return p.UnknownLabel
	}
	return s
}

// ETAMonth renders the month component of an ETA, empty when unknown.
func (p Policy) ETAMonth(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(p.ETAMonthFormat)
}

// FormatPct renders a fraction as a percent string, e.g. 0.1234 -> "12.34%".
func (p Policy) FormatPct(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

// MarginLabel builds the parameterized out-of-band margin exception label
// for a threshold pair, e.g. "Margin<30% or >80%".
func MarginLabel(low, high float64) string {
	return fmt.Sprintf("Margin<%d%% or >%d%%", int(math.Round(low*100)), int(math.Round(high*100)))
}
