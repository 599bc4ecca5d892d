package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiomarket/appraise-cli/internal/model"
)

func TestRateDeal_NoAskingPrice(t *testing.T) {
	assert.Nil(t, RateDeal(nil, 10000, 20000))
}

func TestRateDeal_ZeroValueRange(t *testing.T) {
	// min == max == 0 must not divide by zero.
	assert.Nil(t, RateDeal(int64Ptr(5000), 0, 0))
}

func TestRateDeal_MidpointIsFair(t *testing.T) {
	// price == (min+max)/2 → exactly 100% of market.
	deal := RateDeal(int64Ptr(15000), 10000, 20000)
	require.NotNil(t, deal)
	assert.Equal(t, model.DealFair, deal.Rating)
	assert.InDelta(t, 100.0, deal.PercentOfMarket, 0.001)
}

func TestRateDeal_ZeroPriceIsExceptional(t *testing.T) {
	deal := RateDeal(int64Ptr(0), 10000, 20000)
	require.NotNil(t, deal)
	assert.Equal(t, model.DealExceptional, deal.Rating)
}

func TestRateDeal_Buckets(t *testing.T) {
	// Midpoint 10000.
	cases := []struct {
		name   string
		asking int64
		want   model.DealRating
	}{
		{"exactly 50%", 5000, model.DealExceptional},
		{"just over 50%", 5001, model.DealGood},
		{"exactly 80%", 8000, model.DealGood},
		{"just over 80%", 8001, model.DealFair},
		{"exactly 120%", 12000, model.DealFair},
		{"just over 120%", 12001, model.DealOverpriced},
		{"triple the midpoint", 30000, model.DealOverpriced},
	}
	for _, tc := range cases {
		deal := RateDeal(int64Ptr(tc.asking), 5000, 15000)
		require.NotNil(t, deal)
		assert.Equal(t, tc.want, deal.Rating, tc.name)
	}
}

func TestRateDeal_PriceAtMaxRatedAgainstMidpoint(t *testing.T) {
	// Asking == estimated max. Midpoint is 15000 so 20000 is 133% of
	// market, not 100%: the rating reflects distance from the midpoint,
	// never the ceiling.
	deal := RateDeal(int64Ptr(20000), 10000, 20000)
	require.NotNil(t, deal)
	assert.Equal(t, model.DealOverpriced, deal.Rating)
	assert.InDelta(t, 133.33, deal.PercentOfMarket, 0.01)
}

func TestRateDeal_ProfitKeepsSign(t *testing.T) {
	deal := RateDeal(int64Ptr(18000), 10000, 20000)
	require.NotNil(t, deal)
	assert.Equal(t, int64(-8000), deal.ProfitPotentialLow)
	assert.Equal(t, int64(2000), deal.ProfitPotentialHigh)
}

func TestRateDeal_Idempotent(t *testing.T) {
	first := RateDeal(int64Ptr(7500), 5000, 15000)
	second := RateDeal(int64Ptr(7500), 5000, 15000)
	assert.Equal(t, first, second)
}
