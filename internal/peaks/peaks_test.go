package peaks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioid/internal/peaks"
	"audioid/internal/spectral"
)

func gridFromColumns(cols [][]float64) *spectral.Grid {
	bins := len(cols[0])
	frames := len(cols)
	freq := make([][]float64, bins)
	for b := range freq {
		freq[b] = make([]float64, frames)
	}
	for f, col := range cols {
		for b, v := range col {
			freq[b][f] = v
		}
	}
	return &spectral.Grid{Freq: freq, Bins: bins, Frames: frames}
}

func TestExtract_RespectsMagnitudeRatioGate(t *testing.T) {
	// max = 10; threshold = 0.25*10 = 2.5. Bins 0-2 (values 1, 2, 2.4) must be dropped.
	grid := gridFromColumns([][]float64{{1, 2, 2.4, 3, 10}})

	got := peaks.Extract(grid)

	for _, p := range got {
		assert.GreaterOrEqual(t, p.Magnitude, peaks.MagnitudeRatio*10)
	}
}

func TestExtract_CapsAtMaxPerColumn(t *testing.T) {
	col := make([]float64, 20)
	for i := range col {
		col[i] = float64(i + 1) // monotone increasing; the top five all clear the ratio gate
	}
	grid := gridFromColumns([][]float64{col})

	got := peaks.Extract(grid)

	assert.LessOrEqual(t, len(got), peaks.MaxPerColumn)
}

func TestExtract_SkipsSilentColumns(t *testing.T) {
	grid := gridFromColumns([][]float64{{0, 0, 0, 0}})

	got := peaks.Extract(grid)

	assert.Empty(t, got)
}

func TestExtract_OrdersAscendingByFrameThenBin(t *testing.T) {
	grid := gridFromColumns([][]float64{
		{5, 1, 4, 1, 3},
		{1, 5, 1, 4, 3},
	})

	got := peaks.Extract(grid)
	require.NotEmpty(t, got)

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if prev.TimeFrame == cur.TimeFrame {
			assert.Less(t, prev.FreqBin, cur.FreqBin)
		} else {
			assert.Less(t, prev.TimeFrame, cur.TimeFrame)
		}
	}
}

func TestExtract_TiesFavorLowerBin(t *testing.T) {
	// Six equal top values, one more than MaxPerColumn; the kept set
	// must be the lowest-indexed bins among the tied max.
	col := []float64{10, 10, 10, 10, 10, 10, 1, 1}
	grid := gridFromColumns([][]float64{col})

	got := peaks.Extract(grid)

	require.Len(t, got, peaks.MaxPerColumn)
	for i, p := range got {
		assert.Equal(t, i, p.FreqBin)
	}
}
