package simulation

import (
	"testing"

	"github.com/acagliol/helios-quant/internal/modules/pricing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayoffs_OnKnownPaths(t *testing.T) {
	path := []float64{100, 105, 110, 95, 102}

	tests := []struct {
		name   string
		payoff PathPayoff
		want   float64
	}{
		{"vanilla call", VanillaPayoff(pricing.Call, 100), 2},
		{"vanilla put", VanillaPayoff(pricing.Put, 100), 0},
		{"asian arithmetic call", AsianPayoff(pricing.Call, 100, Arithmetic), 3},
		{"asian put otm", AsianPayoff(pricing.Put, 100, Arithmetic), 0},
		{"up-and-out knocked", BarrierPayoff(pricing.Call, 100, 110, UpAndOut), 0},
		{"up-and-out alive", BarrierPayoff(pricing.Call, 100, 120, UpAndOut), 2},
		{"up-and-in knocked in", BarrierPayoff(pricing.Call, 100, 110, UpAndIn), 2},
		{"down-and-out knocked", BarrierPayoff(pricing.Call, 100, 95, DownAndOut), 0},
		{"down-and-in alive", BarrierPayoff(pricing.Call, 100, 90, DownAndIn), 0},
		{"lookback floating call", LookbackFloatingPayoff(pricing.Call), 7}, // 102 - 95
		{"lookback floating put", LookbackFloatingPayoff(pricing.Put), 8},   // 110 - 102
		{"lookback fixed call", LookbackFixedPayoff(pricing.Call, 100), 10}, // 110 - 100
		{"lookback fixed put", LookbackFixedPayoff(pricing.Put, 100), 5},    // 100 - 95
		{"digital cash itm", DigitalCashPayoff(pricing.Call, 100, 10), 10},
		{"digital cash otm", DigitalCashPayoff(pricing.Put, 100, 10), 0},
		{"digital asset itm", DigitalAssetPayoff(pricing.Call, 100), 102},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.payoff(path), 1e-12)
		})
	}
}

func TestAsianPayoff_GeometricBelowArithmetic(t *testing.T) {
	// AM-GM: the geometric average never exceeds the arithmetic one, so the
	// geometric Asian call payoff is bounded by the arithmetic payoff.
	paths := [][]float64{
		{100, 105, 110, 95, 102},
		{100, 120, 130, 140, 150},
		{100, 80, 90, 85, 95},
	}
	for _, path := range paths {
		geo := AsianPayoff(pricing.Call, 90, Geometric)(path)
		arith := AsianPayoff(pricing.Call, 90, Arithmetic)(path)
		assert.LessOrEqual(t, geo, arith)
	}
}

func TestBarrierPayoff_InOutParity(t *testing.T) {
	// Knock-in + knock-out with the same barrier reconstruct the vanilla.
	paths := [][]float64{
		{100, 105, 110, 95, 102},
		{100, 125, 110, 95, 130},
		{100, 90, 85, 95, 115},
	}
	for _, path := range paths {
		vanilla := VanillaPayoff(pricing.Call, 100)(path)
		in := BarrierPayoff(pricing.Call, 100, 120, UpAndIn)(path)
		out := BarrierPayoff(pricing.Call, 100, 120, UpAndOut)(path)
		assert.InDelta(t, vanilla, in+out, 1e-12)
	}
}

func TestKnockOutPriceBelowVanilla(t *testing.T) {
	// An up-and-out call can never be worth more than the vanilla call with
	// the same strike and maturity.
	m := mcMarket()
	engine := NewEngine(zerolog.Nop())
	cfg := SimulationConfig{Paths: 50_000, Steps: 64, VarianceReduction: VRAntithetic, Seed: 42}

	barrier, err := engine.PriceGBM(m, cfg, BarrierPayoff(pricing.Call, m.Strike, 120, UpAndOut))
	require.NoError(t, err)
	vanilla, err := engine.PriceGBM(m, cfg, VanillaPayoff(pricing.Call, m.Strike))
	require.NoError(t, err)

	assert.LessOrEqual(t, barrier.Price, vanilla.Price)
}

func TestLookbackFloatingDominatesVanillaAtSpotStrike(t *testing.T) {
	// S_T - min(path) >= max(S_T - S_0, 0) path by path, so the price
	// ordering must hold too.
	m := mcMarket()
	engine := NewEngine(zerolog.Nop())
	cfg := SimulationConfig{Paths: 50_000, Steps: 64, VarianceReduction: VRAntithetic, Seed: 42}

	lookback, err := engine.PriceGBM(m, cfg, LookbackFloatingPayoff(pricing.Call))
	require.NoError(t, err)
	vanilla, err := engine.PriceGBM(m, cfg, VanillaPayoff(pricing.Call, m.Spot))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, lookback.Price, vanilla.Price)
}
