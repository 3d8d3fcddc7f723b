package helios

import (
	"github.com/acagliol/helios-quant/internal/modules/portfolio"
	"github.com/acagliol/helios-quant/internal/modules/pricing"
	"github.com/acagliol/helios-quant/internal/modules/simulation"
	"github.com/acagliol/helios-quant/internal/modules/validation"
)

// Model selects the dynamics used for pricing or simulation.
type Model string

const (
	ModelBlackScholes Model = "black_scholes"
	ModelHeston       Model = "heston"
	ModelMerton       Model = "merton"
)

// Method selects the portfolio construction objective.
type Method string

const (
	MethodMinVariance  Method = "min_variance"
	MethodTargetReturn Method = "target_return"
	MethodMaxSharpe    Method = "max_sharpe"
	MethodRiskParity   Method = "risk_parity"
	MethodMinCVaR      Method = "min_cvar"
)

// Re-exported domain types so callers only import this package.
type (
	OptionType         = pricing.OptionType
	MarketParameters   = pricing.MarketParameters
	HestonParameters   = pricing.HestonParameters
	JumpParameters     = pricing.JumpParameters
	PriceResult        = pricing.PriceResult
	GreeksResult       = pricing.GreeksResult
	SimulationConfig   = simulation.SimulationConfig
	VarianceReduction  = simulation.VarianceReduction
	PathPayoff         = simulation.PathPayoff
	AverageType        = simulation.AverageType
	BarrierStyle       = simulation.BarrierStyle
	Portfolio          = portfolio.Portfolio
	OptimizationResult = portfolio.OptimizationResult
	FrontierPoint      = portfolio.FrontierPoint
	SolverConfig       = portfolio.SolverConfig
	ValidationReport   = validation.Report
	ValidationCheck    = validation.CheckResult
)

const (
	Call = pricing.Call
	Put  = pricing.Put

	VRNone        = simulation.VRNone
	VRAntithetic  = simulation.VRAntithetic
	VRQuasiRandom = simulation.VRQuasiRandom

	Arithmetic = simulation.Arithmetic
	Geometric  = simulation.Geometric

	UpAndOut   = simulation.UpAndOut
	UpAndIn    = simulation.UpAndIn
	DownAndOut = simulation.DownAndOut
	DownAndIn  = simulation.DownAndIn
)

// ModelParameters carries the model-specific parameter block matching the
// chosen Model. Only the relevant field needs to be set.
type ModelParameters struct {
	Heston *HestonParameters
	Jumps  *JumpParameters
}

// OptimizationRequest bundles the method selector with its method-specific
// inputs: Target for MethodTargetReturn, Scenarios and Alpha for
// MethodMinCVaR.
type OptimizationRequest struct {
	Method    Method
	Target    float64
	Scenarios [][]float64
	Alpha     float64
}

// Payoff constructors, re-exported from the simulation engine.
var (
	VanillaPayoff          = simulation.VanillaPayoff
	AsianPayoff            = simulation.AsianPayoff
	BarrierPayoff          = simulation.BarrierPayoff
	LookbackFloatingPayoff = simulation.LookbackFloatingPayoff
	LookbackFixedPayoff    = simulation.LookbackFixedPayoff
	DigitalCashPayoff      = simulation.DigitalCashPayoff
	DigitalAssetPayoff     = simulation.DigitalAssetPayoff
)
