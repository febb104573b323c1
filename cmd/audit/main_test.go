package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdOverrides(t *testing.T) {
	tests := []struct {
		name     string
		opts     thresholdOverrides
		wantLow  float64
		wantHigh float64
	}{
		{
			name:     "no flags keeps config defaults",
			opts:     thresholdOverrides{},
			wantLow:  0.30,
			wantHigh: 0.80,
		},
		{
			name:     "both flags override",
			opts:     thresholdOverrides{low: 0.10, high: 0.90, lowSet: true, highSet: true},
			wantLow:  0.10,
			wantHigh: 0.90,
		},
		{
			name:     "explicit zero low is honored",
			opts:     thresholdOverrides{low: 0, lowSet: true},
			wantLow:  0,
			wantHigh: 0.80,
		},
		{
			name:     "only high overridden",
			opts:     thresholdOverrides{high: 0.95, highSet: true},
			wantLow:  0.30,
			wantHigh: 0.95,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high := tt.opts.resolve(0.30, 0.80)
			assert.Equal(t, tt.wantLow, low)
			assert.Equal(t, tt.wantHigh, high)
		})
	}
}
