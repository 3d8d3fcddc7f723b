package portfolio

import (
	"math"

	"github.com/acagliol/helios-quant/internal/domain"
)

// RiskParity finds the portfolio whose assets contribute equally to total
// volatility. Contribution of asset i is w_i * (Sigma w)_i / vol, and the
// contributions sum to vol itself.
//
// The solver is a damped multiplicative fixed-point iteration: each weight is
// scaled by the square root of the ratio between its contribution target and
// its current contribution, then the vector is renormalized. If the iteration
// budget runs out, the best iterate found is returned together with a
// ConvergenceError.
func (o *Optimizer) RiskParity(p Portfolio) (OptimizationResult, error) {
	if err := p.Validate(); err != nil {
		return OptimizationResult{}, err
	}
	n := len(p.Assets)
	w := equalWeights(n)
	best := append([]float64(nil), w...)
	bestDev := math.Inf(1)
	sigmaW := make([]float64, n)
	rc := make([]float64, n)

	for iter := 0; iter < o.cfg.MaxIterations; iter++ {
		vol := contributions(w, p.Cov, sigmaW, rc)
		target := vol / float64(n)

		maxDev := 0.0
		for i := 0; i < n; i++ {
			if d := math.Abs(rc[i] - target); d > maxDev {
				maxDev = d
			}
		}
		if maxDev < bestDev {
			bestDev = maxDev
			copy(best, w)
		}
		if maxDev <= o.cfg.Tolerance*math.Max(vol, 1e-300) {
			return o.riskParityResult(p, w, rc), nil
		}

		for i := 0; i < n; i++ {
			if rc[i] > 0 {
				factor := math.Sqrt(target / rc[i])
				w[i] *= math.Min(math.Max(factor, 0.5), 2)
			} else {
				// A hedging asset with non-positive contribution is scaled
				// up so its standalone risk eventually dominates.
				w[i] *= 2
			}
		}
		normalize(w)
	}

	o.log.Warn().
		Float64("residual", bestDev).
		Int("iterations", o.cfg.MaxIterations).
		Msg("risk parity did not converge")
	contributions(best, p.Cov, sigmaW, rc)
	res := o.riskParityResult(p, best, rc)
	res.Converged = false
	return res, &domain.ConvergenceError{
		Op:         "risk parity",
		Partial:    res.Volatility,
		Bound:      bestDev,
		Iterations: o.cfg.MaxIterations,
	}
}

// contributions fills sigmaW = Sigma*w and rc with per-asset volatility
// contributions, returning portfolio volatility.
func contributions(w []float64, cov [][]float64, sigmaW, rc []float64) float64 {
	n := len(w)
	variance := 0.0
	for i := 0; i < n; i++ {
		s := 0.0
		for j := 0; j < n; j++ {
			s += cov[i][j] * w[j]
		}
		sigmaW[i] = s
		variance += w[i] * s
	}
	vol := math.Sqrt(math.Max(variance, 0))
	for i := 0; i < n; i++ {
		if vol > 0 {
			rc[i] = w[i] * sigmaW[i] / vol
		} else {
			rc[i] = 0
		}
	}
	return vol
}

func (o *Optimizer) riskParityResult(p Portfolio, w, rc []float64) OptimizationResult {
	res := o.result(p, append([]float64(nil), w...))
	res.RiskContributions = append([]float64(nil), rc...)
	return res
}
