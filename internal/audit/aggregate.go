package audit

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"mawbaudit/pkg/contracts/domain"
)

// Input carries everything one audit run consumes: normalized billing
// lines, the optional arrival-date mapping, the optional MAWB allow-list
// and the margin band.
type Input struct {
	Lines         []domain.BillingLine
	ETAs          domain.ETAMapping
	ETAParseNote  string
	Filter        []string
	LowThreshold  float64
	HighThreshold float64
}

// Aggregator is the audit core: a state-free transform from billing lines
// to the full AuditResult. One Run constructs one result; nothing is shared
// between invocations.
type Aggregator struct {
	logger *slog.Logger
	policy Policy
}

// NewAggregator creates an aggregator with the given conventions.
func NewAggregator(logger *slog.Logger, policy Policy) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger: logger.With(slog.String("component", "audit_aggregator")),
		policy: policy,
	}
}

// Run executes the audit pipeline: filter, ETA join, per-MAWB rollup,
// classification, exception typing, dimensional rollups, the profit-leak
// grain and the bucket views. Every bucket is a pure filter over the one
// per-MAWB summary so the views cannot drift apart. The returned result is
// self-contained, never aliasing the caller's slices.
func (a *Aggregator) Run(ctx context.Context, in Input) (*domain.AuditResult, error) {
	if in.LowThreshold < 0 || in.HighThreshold > 1 || in.LowThreshold >= in.HighThreshold {
		return nil, ErrInvalidThresholds
	}

	low, high := in.LowThreshold, in.HighThreshold
	marginLabel := MarginLabel(low, high)

	lines, notFound := a.filterLines(in.Lines, in.Filter)

	// Left join: unmatched lines keep the zero time.
	for i := range lines {
		if eta, ok := in.ETAs[lines[i].MAWB]; ok {
			lines[i].ETA = eta
		}
	}

	summary := a.summarizeMAWBs(lines, low, high, marginLabel)

	result := &domain.AuditResult{
		RunID:         uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
		LowThreshold:  low,
		HighThreshold: high,
		MarginLabel:   marginLabel,
		Filter:        append([]string(nil), in.Filter...),
		NotFound:      notFound,
		ETAParseNote:  in.ETAParseNote,
		Lines:         lines,
		Summary:       summary,

		Exceptions: filterSummary(summary, func(s domain.MAWBSummary) bool {
			return s.Classification == domain.ClassificationOpen
		}),
		MarginOutliers: sortSummary(filterSummary(summary, func(s domain.MAWBSummary) bool {
			return s.ProfitMargin != 0 && (s.ProfitMargin < low || s.ProfitMargin > high)
		}), byMarginAsc),
		NegativeProfit: sortSummary(filterSummary(summary, func(s domain.MAWBSummary) bool {
			return s.Profit < 0
		}), byProfitAsc),
		ZeroMargin: sortSummary(filterSummary(summary, func(s domain.MAWBSummary) bool {
			return s.ProfitMargin == 0
		}), bySellThenCostDesc),
		ZeroProfit: sortSummary(filterSummary(summary, func(s domain.MAWBSummary) bool {
			return s.Profit == 0
		}), bySellThenCostDesc),
		BothZero: filterSummary(summary, func(s domain.MAWBSummary) bool {
			return s.TotalSell == 0 && s.TotalCost == 0
		}),
		SellZeroOnly: sortSummary(filterSummary(summary, func(s domain.MAWBSummary) bool {
			return s.TotalSell == 0 && s.TotalCost > 0
		}), byCostDesc),
		CostZeroOnly: sortSummary(filterSummary(summary, func(s domain.MAWBSummary) bool {
			return s.TotalCost == 0 && s.TotalSell > 0
		}), bySellDesc),

		ClientSummary:     a.summarizeDimension(lines, summary, dimClient),
		ChargeCodeSummary: a.summarizeDimension(lines, summary, dimChargeCode),
		VendorSummary:     a.summarizeDimension(lines, summary, dimVendor),
		ChargeCodeMAWB:    a.chargeCodeGrain(lines),
	}
	result.KPI = ComputeKPI(summary, a.policy)

	a.logger.InfoContext(ctx, "audit run complete",
		slog.String("run_id", result.RunID),
		slog.Int("line_count", len(lines)),
		slog.Int("mawb_count", len(summary)),
		slog.Int("open_count", result.KPI.OpenCount),
		slog.Int("not_found", len(notFound)))

	return result, nil
}

// filterLines drops lines with an empty normalized MAWB, applies the
// allow-list and computes the requested-but-absent identifiers. The output
// is always a fresh slice.
func (a *Aggregator) filterLines(lines []domain.BillingLine, filter []string) ([]domain.BillingLine, []string) {
	keep := make(map[string]struct{}, len(filter))
	for _, m := range filter {
		keep[m] = struct{}{}
	}

	kept := make([]domain.BillingLine, 0, len(lines))
	present := make(map[string]struct{})
	for _, l := range lines {
		if l.MAWB == "" {
			continue
		}
		if len(keep) > 0 {
			if _, ok := keep[l.MAWB]; !ok {
				continue
			}
		}
		l.Client = a.policy.Category(l.Client)
		l.ChargeCode = a.policy.Category(l.ChargeCode)
		l.Vendor = a.policy.Category(l.Vendor)
		kept = append(kept, l)
		present[l.MAWB] = struct{}{}
	}

	var notFound []string
	for _, m := range filter {
		if _, ok := present[m]; !ok {
			notFound = append(notFound, m)
		}
	}
	sort.Strings(notFound)
	return kept, notFound
}

// summarizeMAWBs builds exactly one summary row per distinct MAWB: summed
// amounts, line count, first-seen client, latest ETA, then the derived
// profit, margin, classification and exception type.
func (a *Aggregator) summarizeMAWBs(lines []domain.BillingLine, low, high float64, marginLabel string) []domain.MAWBSummary {
	byMAWB := make(map[string]*domain.MAWBSummary)
	order := make([]string, 0)
	for _, l := range lines {
		s, ok := byMAWB[l.MAWB]
		if !ok {
			s = &domain.MAWBSummary{MAWB: l.MAWB, Client: l.Client}
			byMAWB[l.MAWB] = s
			order = append(order, l.MAWB)
		}
		s.TotalCost += l.CostAmount
		s.TotalSell += l.SellAmount
		s.LineCount++
		if l.ETA.After(s.ETA) {
			s.ETA = l.ETA
		}
	}
	sort.Strings(order)

	out := make([]domain.MAWBSummary, 0, len(order))
	for _, m := range order {
		s := byMAWB[m]
		s.ETAMonth = a.policy.ETAMonth(s.ETA)
		s.Profit = s.TotalSell - s.TotalCost
		s.ProfitMargin = a.policy.Ratio(s.Profit, s.TotalSell)
		s.Classification = classify(*s, low, high)
		s.ExceptionType = exceptionType(*s, low, high, marginLabel)
		out = append(out, *s)
	}
	return out
}

// classify returns Closed iff both amounts are positive and the margin sits
// inside the band. Zero cost or zero sell forces Open regardless of margin.
func classify(s domain.MAWBSummary, low, high float64) domain.Classification {
	if s.TotalCost <= 0 || s.TotalSell <= 0 {
		return domain.ClassificationOpen
	}
	if s.ProfitMargin < low || s.ProfitMargin > high {
		return domain.ClassificationOpen
	}
	return domain.ClassificationClosed
}

// exceptionType assigns the mutually exclusive exception bucket, first
// matching rule wins. An exactly-zero margin is deliberately never tagged
// with the margin label: zero-margin is its own bucket, not an out-of-band
// margin.
func exceptionType(s domain.MAWBSummary, low, high float64, marginLabel string) string {
	switch {
	case s.TotalCost == 0 && s.TotalSell == 0:
		return domain.ExceptionBothZero
	case s.TotalSell == 0:
		return domain.ExceptionRevenueZero
	case s.TotalCost == 0:
		return domain.ExceptionCostZero
	case s.ProfitMargin != 0 && (s.ProfitMargin < low || s.ProfitMargin > high):
		return marginLabel
	}
	return domain.ExceptionNone
}

type dimension int

const (
	dimClient dimension = iota
	dimChargeCode
	dimVendor
)

func (d dimension) key(l domain.BillingLine) string {
	switch d {
	case dimClient:
		return l.Client
	case dimChargeCode:
		return l.ChargeCode
	default:
		return l.Vendor
	}
}

// summarizeDimension recomputes the cost/sell/profit aggregation grouped by
// a categorical attribute. For charge code and vendor it additionally
// pivots the MAWB-level exception flags onto the dimension: a MAWB touching
// the dimension value through several lines counts once per exception type.
// Clients carry the latest ETA instead of the pivot.
func (a *Aggregator) summarizeDimension(lines []domain.BillingLine, summary []domain.MAWBSummary, dim dimension) []domain.DimensionSummary {
	exceptionOf := make(map[string]string, len(summary))
	for _, s := range summary {
		exceptionOf[s.MAWB] = s.ExceptionType
	}

	type group struct {
		domain.DimensionSummary
		mawbs map[string]struct{}
	}
	groups := make(map[string]*group)
	order := make([]string, 0)
	for _, l := range lines {
		key := a.policy.Category(dim.key(l))
		g, ok := groups[key]
		if !ok {
			g = &group{
				DimensionSummary: domain.DimensionSummary{Key: key},
				mawbs:            make(map[string]struct{}),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.TotalCost += l.CostAmount
		g.TotalSell += l.SellAmount
		g.LineCount++
		g.mawbs[l.MAWB] = struct{}{}
		if dim == dimClient && l.ETA.After(g.LatestETA) {
			g.LatestETA = l.ETA
		}
	}

	out := make([]domain.DimensionSummary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.MAWBCount = len(g.mawbs)
		g.Profit = g.TotalSell - g.TotalCost
		g.ProfitMargin = a.policy.Ratio(g.Profit, g.TotalSell)
		if dim != dimClient {
			counts := make(map[string]int)
			for m := range g.mawbs {
				counts[exceptionOf[m]]++
			}
			g.ExceptionCounts = counts
		}
		out = append(out, g.DimensionSummary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Profit != out[j].Profit {
			return out[i].Profit > out[j].Profit
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// chargeCodeGrain aggregates at the (MAWB, charge code) grain and keeps the
// loss rows only: profit <= 0, sorted worst profit first with the largest
// revenue surfacing first among ties.
func (a *Aggregator) chargeCodeGrain(lines []domain.BillingLine) []domain.ChargeCodeMAWBRow {
	type key struct{ mawb, code string }
	groups := make(map[key]*domain.ChargeCodeMAWBRow)
	order := make([]key, 0)
	for _, l := range lines {
		k := key{l.MAWB, l.ChargeCode}
		g, ok := groups[k]
		if !ok {
			g = &domain.ChargeCodeMAWBRow{
				MAWB:       l.MAWB,
				ChargeCode: l.ChargeCode,
				Client:     l.Client,
				Vendor:     l.Vendor,
			}
			groups[k] = g
			order = append(order, k)
		}
		g.TotalCost += l.CostAmount
		g.TotalSell += l.SellAmount
		if l.ETA.After(g.ETA) {
			g.ETA = l.ETA
		}
	}

	out := make([]domain.ChargeCodeMAWBRow, 0, len(order))
	for _, k := range order {
		g := groups[k]
		g.Profit = g.TotalSell - g.TotalCost
		g.ProfitMargin = a.policy.Ratio(g.Profit, g.TotalSell)
		g.ETAMonth = a.policy.ETAMonth(g.ETA)
		if g.Profit <= 0 {
			out = append(out, *g)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Profit != out[j].Profit {
			return out[i].Profit < out[j].Profit
		}
		if out[i].TotalSell != out[j].TotalSell {
			return out[i].TotalSell > out[j].TotalSell
		}
		if out[i].MAWB != out[j].MAWB {
			return out[i].MAWB < out[j].MAWB
		}
		return out[i].ChargeCode < out[j].ChargeCode
	})
	return out
}

func filterSummary(summary []domain.MAWBSummary, pred func(domain.MAWBSummary) bool) []domain.MAWBSummary {
	out := make([]domain.MAWBSummary, 0)
	for _, s := range summary {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

func sortSummary(s []domain.MAWBSummary, less func(a, b domain.MAWBSummary) bool) []domain.MAWBSummary {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
	return s
}

func byMarginAsc(a, b domain.MAWBSummary) bool { return a.ProfitMargin < b.ProfitMargin }
func byProfitAsc(a, b domain.MAWBSummary) bool { return a.Profit < b.Profit }
func byCostDesc(a, b domain.MAWBSummary) bool  { return a.TotalCost > b.TotalCost }
func bySellDesc(a, b domain.MAWBSummary) bool  { return a.TotalSell > b.TotalSell }

func bySellThenCostDesc(a, b domain.MAWBSummary) bool {
	if a.TotalSell != b.TotalSell {
		return a.TotalSell > b.TotalSell
	}
	return a.TotalCost > b.TotalCost
}
