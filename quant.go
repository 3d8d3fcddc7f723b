// Package helios is the public surface of the pricing and portfolio
// construction engine. It exposes analytical, characteristic-function and
// jump-diffusion option pricing, variance-reduced Monte Carlo for exotic
// payoffs, and the mean-variance family of portfolio optimizers.
package helios

import (
	"github.com/rs/zerolog"

	"github.com/acagliol/helios-quant/internal/domain"
	"github.com/acagliol/helios-quant/internal/modules/portfolio"
	"github.com/acagliol/helios-quant/internal/modules/pricing"
	"github.com/acagliol/helios-quant/internal/modules/simulation"
	"github.com/acagliol/helios-quant/internal/modules/validation"
)

// Engine bundles the pricers, the Monte Carlo engine and the portfolio
// optimizer behind one constructor. It is stateless between calls and safe
// for concurrent use.
type Engine struct {
	log       zerolog.Logger
	heston    *pricing.HestonPricer
	merton    *pricing.MertonPricer
	simulator *simulation.Engine
	optimizer *portfolio.Optimizer
}

// Options overrides the default numerical configurations.
type Options struct {
	Quadrature *pricing.QuadratureConfig
	Series     *pricing.SeriesConfig
	Solver     *portfolio.SolverConfig
}

// New builds an engine with default configurations.
func New(log zerolog.Logger) *Engine {
	return NewWithOptions(log, Options{})
}

// NewWithOptions builds an engine with per-component overrides.
func NewWithOptions(log zerolog.Logger, opts Options) *Engine {
	quadCfg := pricing.DefaultQuadratureConfig()
	if opts.Quadrature != nil {
		quadCfg = *opts.Quadrature
	}
	seriesCfg := pricing.DefaultSeriesConfig()
	if opts.Series != nil {
		seriesCfg = *opts.Series
	}
	solverCfg := portfolio.DefaultSolverConfig()
	if opts.Solver != nil {
		solverCfg = *opts.Solver
	}
	return &Engine{
		log:       log,
		heston:    pricing.NewHestonPricer(quadCfg, log),
		merton:    pricing.NewMertonPricer(seriesCfg, log),
		simulator: simulation.NewEngine(log),
		optimizer: portfolio.NewOptimizer(solverCfg, log),
	}
}

// PriceOption prices a European option under the selected model. Heston
// requires params.Heston, Merton requires params.Jumps.
func (e *Engine) PriceOption(model Model, m MarketParameters, params ModelParameters, typ OptionType) (PriceResult, error) {
	switch model {
	case ModelBlackScholes:
		return pricing.BlackScholesPrice(m, typ)
	case ModelHeston:
		if params.Heston == nil {
			return PriceResult{}, domain.NewDomainError("params", "heston parameters required for model %q", model)
		}
		return e.heston.Price(m, *params.Heston, typ)
	case ModelMerton:
		if params.Jumps == nil {
			return PriceResult{}, domain.NewDomainError("params", "jump parameters required for model %q", model)
		}
		return e.merton.Price(m, *params.Jumps, typ)
	default:
		return PriceResult{}, domain.NewDomainError("model", "unknown model %q", model)
	}
}

// Greeks returns the closed-form Black-Scholes sensitivities.
func (e *Engine) Greeks(m MarketParameters, typ OptionType) (GreeksResult, error) {
	return pricing.BlackScholesGreeks(m, typ)
}

// ImpliedVolatility inverts the Black-Scholes formula for an observed price.
func (e *Engine) ImpliedVolatility(m MarketParameters, typ OptionType, marketPrice float64) (float64, error) {
	return pricing.ImpliedVolatility(m, typ, marketPrice)
}

// SimulatePrice prices an arbitrary path payoff by Monte Carlo under
// Black-Scholes or Heston dynamics. Merton dynamics are not simulated; use
// PriceOption for jump-diffusion vanillas.
func (e *Engine) SimulatePrice(model Model, m MarketParameters, params ModelParameters, cfg SimulationConfig, payoff PathPayoff) (PriceResult, error) {
	switch model {
	case ModelBlackScholes:
		return e.simulator.PriceGBM(m, cfg, payoff)
	case ModelHeston:
		if params.Heston == nil {
			return PriceResult{}, domain.NewDomainError("params", "heston parameters required for model %q", model)
		}
		return e.simulator.PriceHeston(m, *params.Heston, cfg, payoff)
	default:
		return PriceResult{}, domain.NewDomainError("model", "model %q cannot be simulated", model)
	}
}

// OptimizePortfolio dispatches to the optimizer selected by req.Method.
func (e *Engine) OptimizePortfolio(req OptimizationRequest, p Portfolio) (OptimizationResult, error) {
	switch req.Method {
	case MethodMinVariance:
		return e.optimizer.MinVariance(p)
	case MethodTargetReturn:
		return e.optimizer.TargetReturn(p, req.Target)
	case MethodMaxSharpe:
		return e.optimizer.MaxSharpe(p)
	case MethodRiskParity:
		return e.optimizer.RiskParity(p)
	case MethodMinCVaR:
		return e.optimizer.MinCVaR(p, req.Scenarios, req.Alpha)
	default:
		return OptimizationResult{}, domain.NewDomainError("method", "unknown method %q", req.Method)
	}
}

// EfficientFrontier traces the long-only frontier with the given number of
// target-return points.
func (e *Engine) EfficientFrontier(p Portfolio, points int) ([]FrontierPoint, error) {
	return e.optimizer.EfficientFrontier(p, points)
}

// EstimateMoments computes annualized expected returns and covariance from
// historical simple returns, ready to assemble into a Portfolio.
func EstimateMoments(returns [][]float64, periodsPerYear int) (mu []float64, cov [][]float64, err error) {
	return portfolio.EstimateMoments(returns, periodsPerYear)
}

// Validate runs the cross-model consistency harness with a fixed Monte Carlo
// seed and returns its report.
func (e *Engine) Validate(seed uint64) (validation.Report, error) {
	return validation.NewHarness(seed, e.log).Run()
}
