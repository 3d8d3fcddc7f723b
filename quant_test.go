package helios

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acagliol/helios-quant/internal/domain"
)

func testEngine() *Engine {
	return New(zerolog.Nop())
}

func facadeMarket() MarketParameters {
	return MarketParameters{
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		Rate:         0.05,
		Volatility:   0.2,
	}
}

func TestPriceOptionDispatch(t *testing.T) {
	e := testEngine()
	m := facadeMarket()
	v := m.Volatility * m.Volatility
	params := ModelParameters{
		Heston: &HestonParameters{V0: v, Kappa: 2, Theta: v, Xi: 0.3, Rho: -0.5},
		Jumps:  &JumpParameters{Intensity: 0.3, MeanJump: -0.1, JumpVol: 0.15},
	}

	for _, model := range []Model{ModelBlackScholes, ModelHeston, ModelMerton} {
		res, err := e.PriceOption(model, m, params, Call)
		require.NoError(t, err, "model %s", model)
		assert.Greater(t, res.Price, 0.0, "model %s", model)
		assert.Less(t, res.Price, m.Spot, "model %s", model)
	}
}

func TestPriceOptionBlackScholesKnownValue(t *testing.T) {
	res, err := testEngine().PriceOption(ModelBlackScholes, facadeMarket(), ModelParameters{}, Call)
	require.NoError(t, err)
	assert.InDelta(t, 10.450584, res.Price, 1e-5)
}

func TestPriceOptionRequiresModelParams(t *testing.T) {
	e := testEngine()
	m := facadeMarket()
	tests := []struct {
		name  string
		model Model
	}{
		{"heston without params", ModelHeston},
		{"merton without params", ModelMerton},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.PriceOption(tt.model, m, ModelParameters{}, Call)
			var derr *domain.DomainError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, "params", derr.Field)
		})
	}
}

func TestPriceOptionUnknownModel(t *testing.T) {
	_, err := testEngine().PriceOption("trinomial", facadeMarket(), ModelParameters{}, Call)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "model", derr.Field)
}

func TestGreeksAndImpliedVolRoundTrip(t *testing.T) {
	e := testEngine()
	m := facadeMarket()

	greeks, err := e.Greeks(m, Call)
	require.NoError(t, err)
	assert.InDelta(t, 0.636831, greeks.Delta, 1e-5)

	price, err := e.PriceOption(ModelBlackScholes, m, ModelParameters{}, Call)
	require.NoError(t, err)
	quote := m
	quote.Volatility = 0
	iv, err := e.ImpliedVolatility(quote, Call, price.Price)
	require.NoError(t, err)
	assert.InDelta(t, m.Volatility, iv, 1e-6)
}

func TestSimulatePriceAgreesWithAnalytical(t *testing.T) {
	if testing.Short() {
		t.Skip("runs a large Monte Carlo batch")
	}
	e := testEngine()
	m := facadeMarket()
	cfg := SimulationConfig{
		Paths:             200_000,
		Steps:             1,
		VarianceReduction: VRAntithetic,
		Seed:              42,
	}
	mc, err := e.SimulatePrice(ModelBlackScholes, m, ModelParameters{}, cfg, VanillaPayoff(Call, m.Strike))
	require.NoError(t, err)

	bs, err := e.PriceOption(ModelBlackScholes, m, ModelParameters{}, Call)
	require.NoError(t, err)
	assert.InDelta(t, bs.Price, mc.Price, 0.15)
}

func TestSimulatePriceRejectsMerton(t *testing.T) {
	_, err := testEngine().SimulatePrice(ModelMerton, facadeMarket(), ModelParameters{}, SimulationConfig{Paths: 10, Steps: 1, VarianceReduction: VRNone, Seed: 1}, VanillaPayoff(Call, 100))
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "model", derr.Field)
}

func facadePortfolio() Portfolio {
	return Portfolio{
		Assets: []string{"EQ", "BOND", "GOLD"},
		Mu:     []float64{0.10, 0.04, 0.06},
		Cov: [][]float64{
			{0.0400, 0.0060, 0.0040},
			{0.0060, 0.0100, 0.0020},
			{0.0040, 0.0020, 0.0225},
		},
	}
}

func TestOptimizePortfolioDispatch(t *testing.T) {
	e := testEngine()
	p := facadePortfolio()
	reqs := []OptimizationRequest{
		{Method: MethodMinVariance},
		{Method: MethodTargetReturn, Target: 0.07},
		{Method: MethodMaxSharpe},
		{Method: MethodRiskParity},
	}
	for _, req := range reqs {
		res, err := e.OptimizePortfolio(req, p)
		require.NoError(t, err, "method %s", req.Method)
		sum := 0.0
		for _, w := range res.Weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "method %s", req.Method)
	}

	_, err := e.OptimizePortfolio(OptimizationRequest{Method: "kelly"}, p)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "method", derr.Field)
}

func TestEfficientFrontierFacade(t *testing.T) {
	points, err := testEngine().EfficientFrontier(facadePortfolio(), 5)
	require.NoError(t, err)
	assert.NotEmpty(t, points)
}

func TestEstimateMomentsFacade(t *testing.T) {
	returns := [][]float64{
		{0.01, 0.02},
		{0.03, -0.01},
		{-0.01, 0.00},
		{0.01, 0.03},
	}
	mu, cov, err := EstimateMoments(returns, 12)
	require.NoError(t, err)
	assert.Len(t, mu, 2)
	assert.Len(t, cov, 2)
}
