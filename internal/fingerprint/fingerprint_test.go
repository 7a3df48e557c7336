package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioid/internal/fingerprint"
	"audioid/internal/peaks"
)

func TestHash_KeyRoundTripsThroughBitFields(t *testing.T) {
	h := fingerprint.Hash{AnchorBin: 2047, TargetBin: 1000, Delta: 20}
	key := h.Key()

	const freqBits, deltaBits = 11, 5
	gotDelta := uint8(key & ((1 << deltaBits) - 1))
	gotTarget := uint16((key >> deltaBits) & ((1 << freqBits) - 1))
	gotAnchor := uint16(key >> (freqBits + deltaBits))

	assert.Equal(t, h.Delta, gotDelta)
	assert.Equal(t, h.TargetBin, gotTarget)
	assert.Equal(t, h.AnchorBin, gotAnchor)
}

func TestGenerate_OnlyKeepsPositiveDeltaWithinBound(t *testing.T) {
	points := []peaks.Peak{
		{TimeFrame: 0, FreqBin: 10},
		{TimeFrame: 0, FreqBin: 11}, // delta 0, dropped
		{TimeFrame: 15, FreqBin: 12},
		{TimeFrame: 21, FreqBin: 13}, // delta 21 > MaxDelta, dropped
	}

	entries := fingerprint.Generate(points)

	for _, e := range entries {
		delta := int(e.Hash.Delta)
		assert.Greater(t, delta, 0)
		assert.LessOrEqual(t, delta, fingerprint.MaxDelta)
	}
}

func TestGenerate_RespectsFanOut(t *testing.T) {
	points := make([]peaks.Peak, fingerprint.FanOut+4)
	for i := range points {
		points[i] = peaks.Peak{TimeFrame: i, FreqBin: i}
	}

	entries := fingerprint.Generate(points)

	countFromAnchor0 := 0
	for _, e := range entries {
		if e.AnchorTime == 0 {
			countFromAnchor0++
		}
	}
	assert.LessOrEqual(t, countFromAnchor0, fingerprint.FanOut)
}

func TestGenerate_DedupsSameHashAndAnchorTime(t *testing.T) {
	// Two identical anchors at frame 0 both pair with the frame-3 peak,
	// producing the same (hash, anchor time) twice; only one is kept.
	points := []peaks.Peak{
		{TimeFrame: 0, FreqBin: 5},
		{TimeFrame: 0, FreqBin: 5},
		{TimeFrame: 3, FreqBin: 9},
	}

	entries := fingerprint.Generate(points)
	require.Len(t, entries, 1)

	// Calling Generate again on identical input must not add duplicates.
	again := fingerprint.Generate(points)
	assert.Equal(t, entries, again)
}

func TestGenerate_IsAscendingInAnchorTime(t *testing.T) {
	points := []peaks.Peak{
		{TimeFrame: 0, FreqBin: 1},
		{TimeFrame: 2, FreqBin: 2},
		{TimeFrame: 5, FreqBin: 3},
		{TimeFrame: 9, FreqBin: 4},
	}

	entries := fingerprint.Generate(points)
	require.NotEmpty(t, entries)

	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].AnchorTime, entries[i].AnchorTime)
	}
}

func TestGenerate_SelfMatchProducesIdenticalHashSet(t *testing.T) {
	points := []peaks.Peak{
		{TimeFrame: 0, FreqBin: 5},
		{TimeFrame: 3, FreqBin: 9},
		{TimeFrame: 4, FreqBin: 12},
		{TimeFrame: 10, FreqBin: 2},
	}

	a := fingerprint.Generate(points)
	b := fingerprint.Generate(points)
	assert.Equal(t, a, b)
}

func TestGenerate_ShiftedTimelinePreservesHashesWithShiftedAnchorTime(t *testing.T) {
	points := []peaks.Peak{
		{TimeFrame: 0, FreqBin: 5},
		{TimeFrame: 3, FreqBin: 9},
		{TimeFrame: 4, FreqBin: 12},
	}

	const shift = 100
	shifted := make([]peaks.Peak, len(points))
	for i, p := range points {
		shifted[i] = peaks.Peak{TimeFrame: p.TimeFrame + shift, FreqBin: p.FreqBin}
	}

	base := fingerprint.Generate(points)
	offset := fingerprint.Generate(shifted)

	require.Equal(t, len(base), len(offset))
	for i := range base {
		assert.Equal(t, base[i].Hash, offset[i].Hash)
		assert.Equal(t, base[i].AnchorTime+shift, offset[i].AnchorTime)
	}
}
