// Package pricing implements closed-form and semi-analytical option pricers:
// Black-Scholes, the Heston characteristic-function pricer and the Merton
// jump-diffusion series.
package pricing

import (
	"math"

	"github.com/acagliol/helios-quant/internal/domain"
)

// OptionType selects call or put.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Valid reports whether the option type is a known variant.
func (o OptionType) Valid() bool {
	return o == Call || o == Put
}

// MarketParameters holds the market inputs shared by all pricing models.
// Immutable value type, constructed once per pricing call.
type MarketParameters struct {
	Spot          float64 // S, current spot price
	Strike        float64 // K
	TimeToExpiry  float64 // T in years
	Rate          float64 // r, continuously compounded risk-free rate
	DividendYield float64 // q, continuous dividend yield
	Volatility    float64 // sigma, annualized (single-vol models only)
}

// Validate checks the market parameter domain. Volatility zero is allowed:
// the pricers special-case it to the discounted forward payoff.
func (m MarketParameters) Validate() error {
	if m.Spot <= 0 {
		return domain.NewDomainError("spot", "must be positive, got %g", m.Spot)
	}
	if m.Strike <= 0 {
		return domain.NewDomainError("strike", "must be positive, got %g", m.Strike)
	}
	if m.TimeToExpiry < 0 {
		return domain.NewDomainError("time_to_expiry", "must be non-negative, got %g", m.TimeToExpiry)
	}
	if m.Volatility < 0 {
		return domain.NewDomainError("volatility", "must be non-negative, got %g", m.Volatility)
	}
	if math.IsNaN(m.Rate) {
		return domain.NewDomainError("rate", "must be a number")
	}
	if m.DividendYield < 0 {
		return domain.NewDomainError("dividend_yield", "must be non-negative, got %g", m.DividendYield)
	}
	return nil
}

// HestonParameters holds the stochastic-volatility model parameters.
type HestonParameters struct {
	V0    float64 // initial variance
	Kappa float64 // mean-reversion speed of variance
	Theta float64 // long-run variance
	Xi    float64 // volatility of variance
	Rho   float64 // correlation between asset and variance shocks
}

// Validate checks the Heston parameter domain. The Feller condition is
// deliberately not part of validation: see FellerSatisfied.
func (h HestonParameters) Validate() error {
	if h.V0 <= 0 {
		return domain.NewDomainError("v0", "must be positive, got %g", h.V0)
	}
	if h.Kappa <= 0 {
		return domain.NewDomainError("kappa", "must be positive, got %g", h.Kappa)
	}
	if h.Theta <= 0 {
		return domain.NewDomainError("theta", "must be positive, got %g", h.Theta)
	}
	if h.Xi <= 0 {
		return domain.NewDomainError("xi", "must be positive, got %g", h.Xi)
	}
	if h.Rho < -1 || h.Rho > 1 {
		return domain.NewDomainError("rho", "must be in [-1, 1], got %g", h.Rho)
	}
	return nil
}

// FellerSatisfied reports whether 2*kappa*theta >= xi^2. A violation means the
// variance process can reach zero; it only affects simulation, never the
// semi-analytical price, so it is reported rather than rejected.
func (h HestonParameters) FellerSatisfied() bool {
	return 2*h.Kappa*h.Theta >= h.Xi*h.Xi
}

// JumpParameters holds the Merton jump-diffusion parameters.
type JumpParameters struct {
	Intensity float64 // lambda, expected jumps per year
	MeanJump  float64 // mu_J, mean of the log jump size
	JumpVol   float64 // sigma_J, std deviation of the log jump size
}

// Validate checks the jump parameter domain.
func (j JumpParameters) Validate() error {
	if j.Intensity < 0 {
		return domain.NewDomainError("intensity", "must be non-negative, got %g", j.Intensity)
	}
	if j.JumpVol < 0 {
		return domain.NewDomainError("jump_vol", "must be non-negative, got %g", j.JumpVol)
	}
	if math.IsNaN(j.MeanJump) {
		return domain.NewDomainError("mean_jump", "must be a number")
	}
	return nil
}

// MeanJumpSize returns kbar = E[e^J] - 1, the expected relative jump size used
// for the drift compensation.
func (j JumpParameters) MeanJumpSize() float64 {
	return math.Exp(j.MeanJump+0.5*j.JumpVol*j.JumpVol) - 1
}

// PriceResult is the outcome of a pricing call. StandardError and the
// confidence interval are populated by the Monte Carlo engine only; analytical
// and semi-analytical pricers leave them at zero with HasStandardError false.
type PriceResult struct {
	Price            float64
	StandardError    float64
	ConfIntervalLow  float64
	ConfIntervalHigh float64
	HasStandardError bool
	Converged        bool
}

// GreeksResult holds the closed-form sensitivities of an analytical price.
// All values are raw partial derivatives (per unit change of the input).
type GreeksResult struct {
	Delta float64 // dV/dS
	Gamma float64 // d2V/dS2
	Vega  float64 // dV/dsigma
	Theta float64 // dV/dt (time decay, typically negative)
	Rho   float64 // dV/dr
}
