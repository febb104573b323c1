package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mawbaudit/pkg/contracts/domain"
)

func TestComputeKPI_Empty(t *testing.T) {
	kpi := ComputeKPI(nil, DefaultPolicy())

	assert.Equal(t, 0, kpi.TotalMAWB)
	assert.Equal(t, 0.0, kpi.ClosedRatio)
	assert.Equal(t, 0.0, kpi.OverallMargin)
	assert.Equal(t, 0.0, kpi.ETAFilledRatio)
	assert.Equal(t, 0.0, kpi.NegativeProfitRatio)
}

func TestComputeKPI(t *testing.T) {
	eta := date(2024, time.March, 1)
	result, err := NewAggregator(slog.Default(), DefaultPolicy()).Run(context.Background(), Input{
		Lines: []domain.BillingLine{
			line("999-11111111", 60, 100),  // closed
			line("999-22222222", 120, 100), // open, negative profit, margin label
			line("999-33333333", 50, 0),    // revenue zero
			line("999-44444444", 0, 80),    // cost zero
		},
		ETAs:          domain.ETAMapping{"999-11111111": eta, "999-33333333": eta},
		LowThreshold:  0.30,
		HighThreshold: 0.80,
	})
	require.NoError(t, err)
	kpi := result.KPI

	assert.Equal(t, 4, kpi.TotalMAWB)
	assert.Equal(t, 1, kpi.ClosedCount)
	assert.Equal(t, 3, kpi.OpenCount)
	assert.Equal(t, 0.25, kpi.ClosedRatio)

	assert.Equal(t, 1, kpi.RevenueZeroCount)
	assert.Equal(t, 1, kpi.CostZeroCount)
	assert.Equal(t, 0, kpi.BothZeroCount)
	assert.Equal(t, 1, kpi.MarginExceptionCount)

	assert.InDelta(t, 230.0, kpi.TotalCost, 1e-9)
	assert.InDelta(t, 280.0, kpi.TotalSell, 1e-9)
	assert.InDelta(t, 50.0, kpi.TotalProfit, 1e-9)
	assert.InDelta(t, 50.0/280.0, kpi.OverallMargin, 1e-9)

	assert.Equal(t, 0.5, kpi.ETAFilledRatio)
	assert.Equal(t, 1, kpi.NegativeProfitCount)
	assert.InDelta(t, -20.0, kpi.NegativeProfitAmount, 1e-9)
	assert.Equal(t, 0.25, kpi.NegativeProfitRatio)
}
