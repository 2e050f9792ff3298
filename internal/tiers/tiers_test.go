package tiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		events int
		want   string
	}{
		{-5, "Tier 4"},
		{0, "Tier 4"},
		{2, "Tier 4"},
		{3, "Tier 3"},
		{9, "Tier 3"},
		{10, "Tier 2"},
		{16, "Tier 2"},
		{24, "Tier 2"},
		{25, "Tier 1"},
		{100, "Tier 1"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, TierFor(c.events).Name, "events=%d", c.events)
	}
}

func TestNextTier(t *testing.T) {
	next, ok := NextTier(0)
	require.True(t, ok)
	assert.Equal(t, "Tier 3", next.Name)

	next, ok = NextTier(16)
	require.True(t, ok)
	assert.Equal(t, "Tier 1", next.Name)
	assert.Equal(t, 25, next.MinEvents)

	_, ok = NextTier(25)
	assert.False(t, ok)
}

func TestRatesFor(t *testing.T) {
	for _, tier := range Tiers {
		rates, err := RatesFor(tier.MinEvents)
		require.NoError(t, err)
		assert.Equal(t, BankFee+tier.PartnerFee, rates.GrossFee)
		assert.Equal(t, BankFee+tier.PartnerFee-tier.MarketingCredit, rates.EffectiveRate)
	}

	// effective rate strictly decreases up the ladder
	previous := 100.0
	for _, tier := range Tiers {
		rates, err := RatesFor(tier.MinEvents)
		require.NoError(t, err)
		assert.Less(t, rates.EffectiveRate, previous, "tier %s", tier.Name)
		previous = rates.EffectiveRate
	}
}

func TestRatesForNegative(t *testing.T) {
	_, err := RatesFor(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFinancialsFor(t *testing.T) {
	fin, err := FinancialsFor(16, 2500, 250)
	require.NoError(t, err)

	assert.Equal(t, "Tier 2", fin.TierName)
	assert.InDelta(t, 5.75, fin.EffectiveRate, 1e-9)
	assert.Equal(t, 10_000_000.0, fin.TotalRevenue)
	assert.InDelta(t, 575_000.0, fin.TotalFees, 1e-6)
	assert.InDelta(t, 75_000.0, fin.MarketingCreditValue, 1e-6)
	assert.Equal(t, 9, fin.EventsToNextTier)
	assert.Equal(t, "Tier 1", fin.NextTierName)
}

func TestFinancialsForTopTier(t *testing.T) {
	fin, err := FinancialsFor(30, 1000, 100)
	require.NoError(t, err)

	assert.Equal(t, "Tier 1", fin.TierName)
	assert.Equal(t, 0, fin.EventsToNextTier)
	assert.Empty(t, fin.NextTierName)
}

func TestFinancialsForLinearScaling(t *testing.T) {
	base, err := FinancialsFor(16, 2500, 250)
	require.NoError(t, err)

	doubledTickets, err := FinancialsFor(16, 5000, 250)
	require.NoError(t, err)
	assert.InDelta(t, base.TotalRevenue*2, doubledTickets.TotalRevenue, 1e-6)

	doubledPrice, err := FinancialsFor(16, 2500, 500)
	require.NoError(t, err)
	assert.InDelta(t, base.TotalRevenue*2, doubledPrice.TotalRevenue, 1e-6)
}

func TestFinancialsForNegative(t *testing.T) {
	_, err := FinancialsFor(16, -1, 250)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = FinancialsFor(16, 2500, -0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBenchmarks(t *testing.T) {
	benchmarks, err := Benchmarks(16, 2500, 250)
	require.NoError(t, err)
	require.Len(t, benchmarks, 3)

	assert.Equal(t, "Current Plan", benchmarks[0].Label)
	assert.Equal(t, 16, benchmarks[0].Events)

	assert.Equal(t, "Growth Scenario (+5 Events)", benchmarks[1].Label)
	assert.Equal(t, 21, benchmarks[1].Events)

	assert.Equal(t, "High-Volume Scenario (+15 Events)", benchmarks[2].Label)
	assert.Equal(t, 31, benchmarks[2].Events)
	assert.Equal(t, "Tier 1", benchmarks[2].TierName)
}

func TestBenchmarksLowVolumeFloor(t *testing.T) {
	benchmarks, err := Benchmarks(2, 500, 50)
	require.NoError(t, err)
	require.Len(t, benchmarks, 3)

	// events+15 = 17 is below the floor of 25
	assert.Equal(t, 25, benchmarks[2].Events)
	assert.Equal(t, "High-Volume Scenario (+23 Events)", benchmarks[2].Label)
}
