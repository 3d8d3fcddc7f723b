package pricing

import (
	"math"

	"github.com/acagliol/helios-quant/internal/domain"
	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// d1d2 computes the Black-Scholes d1 and d2 terms. Callers must have excluded
// T == 0 and sigma == 0.
func d1d2(m MarketParameters) (float64, float64) {
	sqrtT := math.Sqrt(m.TimeToExpiry)
	d1 := (math.Log(m.Spot/m.Strike) + (m.Rate-m.DividendYield+0.5*m.Volatility*m.Volatility)*m.TimeToExpiry) /
		(m.Volatility * sqrtT)
	return d1, d1 - m.Volatility*sqrtT
}

// BlackScholesPrice prices a European option under Black-Scholes-Merton.
//
// Call: C = S e^(-qT) N(d1) - K e^(-rT) N(d2); the put comes from put-call
// parity. Two edge cases avoid the division by zero in d1:
//   - T == 0 collapses to intrinsic value
//   - sigma == 0 collapses to the discounted forward payoff
func BlackScholesPrice(m MarketParameters, optType OptionType) (PriceResult, error) {
	if err := m.Validate(); err != nil {
		return PriceResult{}, err
	}
	if !optType.Valid() {
		return PriceResult{}, domain.NewDomainError("option_type", "must be call or put, got %q", optType)
	}

	price := bsPrice(m, optType)
	return PriceResult{Price: price, Converged: true}, nil
}

// bsPrice is the unvalidated core, shared with the Merton series where the
// per-term parameters are already known to be in domain.
func bsPrice(m MarketParameters, optType OptionType) float64 {
	if m.TimeToExpiry == 0 {
		if optType == Call {
			return math.Max(m.Spot-m.Strike, 0)
		}
		return math.Max(m.Strike-m.Spot, 0)
	}

	discount := math.Exp(-m.Rate * m.TimeToExpiry)
	carry := math.Exp(-m.DividendYield * m.TimeToExpiry)

	if m.Volatility == 0 {
		forward := m.Spot * carry / discount
		if optType == Call {
			return discount * math.Max(forward-m.Strike, 0)
		}
		return discount * math.Max(m.Strike-forward, 0)
	}

	d1, d2 := d1d2(m)
	if optType == Call {
		return m.Spot*carry*stdNormal.CDF(d1) - m.Strike*discount*stdNormal.CDF(d2)
	}
	return m.Strike*discount*stdNormal.CDF(-d2) - m.Spot*carry*stdNormal.CDF(-d1)
}

// BlackScholesGreeks computes the closed-form sensitivities.
// At expiry delta degenerates to the intrinsic indicator and the curvature
// Greeks vanish.
func BlackScholesGreeks(m MarketParameters, optType OptionType) (GreeksResult, error) {
	if err := m.Validate(); err != nil {
		return GreeksResult{}, err
	}
	if !optType.Valid() {
		return GreeksResult{}, domain.NewDomainError("option_type", "must be call or put, got %q", optType)
	}

	if m.TimeToExpiry == 0 || m.Volatility == 0 {
		g := GreeksResult{}
		if optType == Call && m.Spot > m.Strike {
			g.Delta = 1
		}
		if optType == Put && m.Spot < m.Strike {
			g.Delta = -1
		}
		return g, nil
	}

	d1, d2 := d1d2(m)
	sqrtT := math.Sqrt(m.TimeToExpiry)
	discount := math.Exp(-m.Rate * m.TimeToExpiry)
	carry := math.Exp(-m.DividendYield * m.TimeToExpiry)
	pdfD1 := stdNormal.Prob(d1)

	g := GreeksResult{
		Gamma: carry * pdfD1 / (m.Spot * m.Volatility * sqrtT),
		Vega:  m.Spot * carry * pdfD1 * sqrtT,
	}

	decay := -(m.Spot * pdfD1 * m.Volatility * carry) / (2 * sqrtT)
	if optType == Call {
		g.Delta = carry * stdNormal.CDF(d1)
		g.Theta = decay + m.DividendYield*m.Spot*carry*stdNormal.CDF(d1) -
			m.Rate*m.Strike*discount*stdNormal.CDF(d2)
		g.Rho = m.Strike * m.TimeToExpiry * discount * stdNormal.CDF(d2)
	} else {
		g.Delta = -carry * stdNormal.CDF(-d1)
		g.Theta = decay - m.DividendYield*m.Spot*carry*stdNormal.CDF(-d1) +
			m.Rate*m.Strike*discount*stdNormal.CDF(-d2)
		g.Rho = -m.Strike * m.TimeToExpiry * discount * stdNormal.CDF(-d2)
	}
	return g, nil
}

// ImpliedVolatility inverts Black-Scholes for the volatility matching a market
// price, using Newton-Raphson seeded with the Brenner-Subrahmanyam guess.
// On budget exhaustion the best iterate is returned together with a
// ConvergenceError.
func ImpliedVolatility(m MarketParameters, optType OptionType, marketPrice float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if m.TimeToExpiry == 0 {
		return 0, domain.NewDomainError("time_to_expiry", "implied volatility undefined at expiry")
	}
	if marketPrice <= 0 {
		return 0, domain.NewDomainError("market_price", "must be positive, got %g", marketPrice)
	}

	const (
		tol      = 1e-8
		maxIter  = 100
		vegaTiny = 1e-10
	)

	sigma := math.Sqrt(2*math.Pi/m.TimeToExpiry) * marketPrice / m.Spot
	if sigma < 1e-4 {
		sigma = 1e-4
	}

	for i := 0; i < maxIter; i++ {
		trial := m
		trial.Volatility = sigma
		diff := marketPrice - bsPrice(trial, optType)
		if math.Abs(diff) < tol {
			return sigma, nil
		}
		g, err := BlackScholesGreeks(trial, optType)
		if err != nil {
			return sigma, err
		}
		if math.Abs(g.Vega) < vegaTiny {
			return sigma, &domain.ConvergenceError{
				Op: "implied volatility", Partial: sigma, Bound: math.Abs(diff), Iterations: i,
			}
		}
		sigma = math.Max(sigma+diff/g.Vega, 1e-6)
	}

	trial := m
	trial.Volatility = sigma
	return sigma, &domain.ConvergenceError{
		Op:         "implied volatility",
		Partial:    sigma,
		Bound:      math.Abs(marketPrice - bsPrice(trial, optType)),
		Iterations: maxIter,
	}
}
