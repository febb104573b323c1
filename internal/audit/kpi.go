package audit

import (
	"mawbaudit/pkg/contracts/domain"
)

// ComputeKPI derives the headline figures from the per-MAWB summary. Pure
// function: it reads the summary only and applies the policy's ratio
// convention uniformly, so every ratio is 0 rather than NaN on an empty or
// zero-revenue audit.
func ComputeKPI(summary []domain.MAWBSummary, policy Policy) domain.KPISet {
	kpi := domain.KPISet{TotalMAWB: len(summary)}

	etaFilled := 0
	for _, s := range summary {
		if s.Classification == domain.ClassificationClosed {
			kpi.ClosedCount++
		}
		switch s.ExceptionType {
		case domain.ExceptionRevenueZero:
			kpi.RevenueZeroCount++
		case domain.ExceptionCostZero:
			kpi.CostZeroCount++
		case domain.ExceptionBothZero:
			kpi.BothZeroCount++
		case domain.ExceptionNone:
		default:
			// The only remaining bucket is the parameterized margin label.
			kpi.MarginExceptionCount++
		}
		kpi.TotalCost += s.TotalCost
		kpi.TotalSell += s.TotalSell
		kpi.TotalProfit += s.Profit
		if s.HasETA() {
			etaFilled++
		}
		if s.Profit < 0 {
			kpi.NegativeProfitCount++
			kpi.NegativeProfitAmount += s.Profit
		}
	}

	total := float64(kpi.TotalMAWB)
	kpi.OpenCount = kpi.TotalMAWB - kpi.ClosedCount
	kpi.ClosedRatio = policy.Ratio(float64(kpi.ClosedCount), total)
	kpi.OverallMargin = policy.Ratio(kpi.TotalProfit, kpi.TotalSell)
	kpi.ETAFilledRatio = policy.Ratio(float64(etaFilled), total)
	kpi.NegativeProfitRatio = policy.Ratio(float64(kpi.NegativeProfitCount), total)

	return kpi
}
