package pricing

import (
	"math"
	"testing"

	"github.com/acagliol/helios-quant/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJumpParams() JumpParameters {
	return JumpParameters{Intensity: 0.5, MeanJump: -0.05, JumpVol: 0.1}
}

func TestMertonPricer_ZeroIntensityIsBlackScholes(t *testing.T) {
	m := atmMarket()
	pricer := NewMertonPricer(DefaultSeriesConfig(), zerolog.Nop())

	for _, typ := range []OptionType{Call, Put} {
		merton, err := pricer.Price(m, JumpParameters{}, typ)
		require.NoError(t, err)
		bs, err := BlackScholesPrice(m, typ)
		require.NoError(t, err)
		assert.InDelta(t, bs.Price, merton.Price, 1e-12)
	}
}

func TestMertonPricer_PutCallParity(t *testing.T) {
	tests := []struct {
		name string
		m    MarketParameters
		j    JumpParameters
	}{
		{"atm", atmMarket(), testJumpParams()},
		{"heavy jumps", atmMarket(), JumpParameters{Intensity: 3, MeanJump: -0.1, JumpVol: 0.25}},
		{"with dividends", MarketParameters{Spot: 90, Strike: 100, TimeToExpiry: 0.5, Rate: 0.04, DividendYield: 0.02, Volatility: 0.15}, testJumpParams()},
	}

	pricer := NewMertonPricer(DefaultSeriesConfig(), zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := pricer.Price(tt.m, tt.j, Call)
			require.NoError(t, err)
			put, err := pricer.Price(tt.m, tt.j, Put)
			require.NoError(t, err)

			forward := tt.m.Spot*math.Exp(-tt.m.DividendYield*tt.m.TimeToExpiry) -
				tt.m.Strike*math.Exp(-tt.m.Rate*tt.m.TimeToExpiry)
			assert.InDelta(t, forward, call.Price-put.Price, 1e-8)
		})
	}
}

func TestMertonPricer_JumpsAddValue(t *testing.T) {
	// Symmetric compensated jumps add variance, so an ATM option is worth
	// more than the pure-diffusion price with the same sigma.
	m := atmMarket()
	pricer := NewMertonPricer(DefaultSeriesConfig(), zerolog.Nop())

	merton, err := pricer.Price(m, JumpParameters{Intensity: 1.0, MeanJump: 0, JumpVol: 0.2}, Call)
	require.NoError(t, err)
	bs, err := BlackScholesPrice(m, Call)
	require.NoError(t, err)
	assert.Greater(t, merton.Price, bs.Price)
}

func TestMertonPricer_TruncationCapReportsPartial(t *testing.T) {
	// An absurd intensity cannot reach the tolerance within a tiny cap; the
	// partial sum and bound must still come back.
	pricer := NewMertonPricer(SeriesConfig{TruncationTol: 1e-12, MaxTerms: 5}, zerolog.Nop())

	res, err := pricer.Price(atmMarket(), JumpParameters{Intensity: 40, MeanJump: 0, JumpVol: 0.1}, Call)
	var cerr *domain.ConvergenceError
	require.ErrorAs(t, err, &cerr)
	assert.False(t, res.Converged)
	assert.Greater(t, cerr.Bound, 0.0)
	assert.Equal(t, res.Price, cerr.Partial)
}

func TestMertonPricer_DomainErrors(t *testing.T) {
	pricer := NewMertonPricer(DefaultSeriesConfig(), zerolog.Nop())

	_, err := pricer.Price(atmMarket(), JumpParameters{Intensity: -1}, Call)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "intensity", derr.Field)

	_, err = pricer.Price(atmMarket(), JumpParameters{Intensity: 1, JumpVol: -0.1}, Call)
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "jump_vol", derr.Field)
}

func TestJumpParameters_MeanJumpSize(t *testing.T) {
	j := JumpParameters{Intensity: 1, MeanJump: 0, JumpVol: 0}
	assert.InDelta(t, 0.0, j.MeanJumpSize(), 1e-12)

	j = JumpParameters{Intensity: 1, MeanJump: -0.05, JumpVol: 0.1}
	assert.InDelta(t, math.Exp(-0.05+0.005)-1, j.MeanJumpSize(), 1e-12)
}
