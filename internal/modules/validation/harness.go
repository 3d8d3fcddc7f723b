// Package validation runs cross-model consistency checks: put-call parity
// under every pricer, semi-analytical limits, and Monte Carlo agreement with
// closed forms. It is the programmatic answer to "do the models agree where
// they must".
package validation

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/acagliol/helios-quant/internal/modules/pricing"
	"github.com/acagliol/helios-quant/internal/modules/simulation"
)

// CheckResult is the outcome of one consistency check. Metric is the observed
// discrepancy, compared against Tolerance.
type CheckResult struct {
	Name      string
	Passed    bool
	Metric    float64
	Tolerance float64
}

// Report aggregates all checks from one harness run.
type Report struct {
	Checks []CheckResult
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the subset of checks that failed.
func (r Report) Failed() []CheckResult {
	var out []CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// Harness wires the pricers and the simulation engine together and runs the
// full battery of checks on a reference market.
type Harness struct {
	log    zerolog.Logger
	heston *pricing.HestonPricer
	merton *pricing.MertonPricer
	engine *simulation.Engine
	seed   uint64
}

// NewHarness builds a harness with default pricer configurations. The seed
// fixes the Monte Carlo draws so a harness run is reproducible.
func NewHarness(seed uint64, log zerolog.Logger) *Harness {
	l := log.With().Str("component", "validation_harness").Logger()
	return &Harness{
		log:    l,
		heston: pricing.NewHestonPricer(pricing.DefaultQuadratureConfig(), l),
		merton: pricing.NewMertonPricer(pricing.DefaultSeriesConfig(), l),
		engine: simulation.NewEngine(l),
		seed:   seed,
	}
}

func referenceMarket() pricing.MarketParameters {
	return pricing.MarketParameters{
		Spot:          100,
		Strike:        100,
		TimeToExpiry:  1,
		Rate:          0.05,
		DividendYield: 0.01,
		Volatility:    0.2,
	}
}

func referenceHeston(m pricing.MarketParameters) pricing.HestonParameters {
	v := m.Volatility * m.Volatility
	return pricing.HestonParameters{V0: v, Kappa: 2.0, Theta: v, Xi: 0.3, Rho: -0.5}
}

// Run executes every check and returns the aggregate report. Individual check
// failures do not abort the run; a non-nil error means a model refused to
// price the reference market at all.
func (h *Harness) Run() (Report, error) {
	var rep Report
	m := referenceMarket()

	for _, step := range []func(pricing.MarketParameters) (CheckResult, error){
		h.checkBlackScholesParity,
		h.checkHestonParity,
		h.checkMertonParity,
		h.checkHestonCollapse,
		h.checkMonteCarloBias,
		h.checkMonteCarloErrorDecay,
	} {
		c, err := step(m)
		if err != nil {
			return rep, err
		}
		h.log.Info().
			Str("check", c.Name).
			Bool("passed", c.Passed).
			Float64("metric", c.Metric).
			Float64("tolerance", c.Tolerance).
			Msg("validation check")
		rep.Checks = append(rep.Checks, c)
	}
	return rep, nil
}

func check(name string, metric, tol float64) CheckResult {
	return CheckResult{Name: name, Passed: metric <= tol, Metric: metric, Tolerance: tol}
}

// parityGap returns |C - P - (S e^{-qT} - K e^{-rT})| for any call/put pair.
func parityGap(m pricing.MarketParameters, call, put float64) float64 {
	forward := m.Spot*math.Exp(-m.DividendYield*m.TimeToExpiry) -
		m.Strike*math.Exp(-m.Rate*m.TimeToExpiry)
	return math.Abs(call - put - forward)
}

func (h *Harness) checkBlackScholesParity(m pricing.MarketParameters) (CheckResult, error) {
	call, err := pricing.BlackScholesPrice(m, pricing.Call)
	if err != nil {
		return CheckResult{}, err
	}
	put, err := pricing.BlackScholesPrice(m, pricing.Put)
	if err != nil {
		return CheckResult{}, err
	}
	return check("black_scholes_parity", parityGap(m, call.Price, put.Price), 1e-10), nil
}

func (h *Harness) checkHestonParity(m pricing.MarketParameters) (CheckResult, error) {
	hp := referenceHeston(m)
	call, err := h.heston.Price(m, hp, pricing.Call)
	if err != nil {
		return CheckResult{}, err
	}
	put, err := h.heston.Price(m, hp, pricing.Put)
	if err != nil {
		return CheckResult{}, err
	}
	return check("heston_parity", parityGap(m, call.Price, put.Price), 1e-6), nil
}

func (h *Harness) checkMertonParity(m pricing.MarketParameters) (CheckResult, error) {
	j := pricing.JumpParameters{Intensity: 0.5, MeanJump: -0.1, JumpVol: 0.2}
	call, err := h.merton.Price(m, j, pricing.Call)
	if err != nil {
		return CheckResult{}, err
	}
	put, err := h.merton.Price(m, j, pricing.Put)
	if err != nil {
		return CheckResult{}, err
	}
	return check("merton_parity", parityGap(m, call.Price, put.Price), 1e-8), nil
}

// checkHestonCollapse drives vol-of-vol toward zero with v0 = theta, where
// the Heston price must approach Black-Scholes at the same variance.
func (h *Harness) checkHestonCollapse(m pricing.MarketParameters) (CheckResult, error) {
	v := m.Volatility * m.Volatility
	hp := pricing.HestonParameters{V0: v, Kappa: 2.0, Theta: v, Xi: 1e-3, Rho: 0}
	hestonCall, err := h.heston.Price(m, hp, pricing.Call)
	if err != nil {
		return CheckResult{}, err
	}
	bsCall, err := pricing.BlackScholesPrice(m, pricing.Call)
	if err != nil {
		return CheckResult{}, err
	}
	return check("heston_bs_collapse", math.Abs(hestonCall.Price-bsCall.Price), 1e-2), nil
}

// checkMonteCarloBias prices the European call by simulation and requires the
// estimate to land within a few standard errors of the closed form.
func (h *Harness) checkMonteCarloBias(m pricing.MarketParameters) (CheckResult, error) {
	bs, err := pricing.BlackScholesPrice(m, pricing.Call)
	if err != nil {
		return CheckResult{}, err
	}
	cfg := simulation.SimulationConfig{
		Paths:             200_000,
		Steps:             1,
		VarianceReduction: simulation.VRAntithetic,
		Seed:              h.seed,
	}
	mc, err := h.engine.PriceGBM(m, cfg, simulation.VanillaPayoff(pricing.Call, m.Strike))
	if err != nil {
		return CheckResult{}, err
	}
	tol := 5 * mc.StandardError
	if !mc.HasStandardError || tol < 1e-3 {
		tol = 0.15
	}
	return check("monte_carlo_bias", math.Abs(mc.Price-bs.Price), tol), nil
}

// checkMonteCarloErrorDecay verifies the O(1/sqrt(N)) law: quadrupling the
// path count should roughly halve the reported standard error.
func (h *Harness) checkMonteCarloErrorDecay(m pricing.MarketParameters) (CheckResult, error) {
	payoff := simulation.VanillaPayoff(pricing.Call, m.Strike)
	base := simulation.SimulationConfig{
		Paths:             40_000,
		Steps:             1,
		VarianceReduction: simulation.VRNone,
		Seed:              h.seed,
	}
	small, err := h.engine.PriceGBM(m, base, payoff)
	if err != nil {
		return CheckResult{}, err
	}
	base.Paths *= 4
	large, err := h.engine.PriceGBM(m, base, payoff)
	if err != nil {
		return CheckResult{}, err
	}
	ratio := small.StandardError / large.StandardError
	return check("monte_carlo_error_decay", math.Abs(ratio-2), 0.5), nil
}
