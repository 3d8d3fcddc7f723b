// Package portfolio implements mean-variance optimization, maximum-Sharpe
// search, risk parity and CVaR minimization over a supplied return/risk model,
// together with efficient-frontier generation.
package portfolio

import (
	"math"

	"github.com/acagliol/helios-quant/internal/domain"
	"gonum.org/v1/gonum/mat"
)

// Portfolio is the input to every optimization: an ordered asset universe with
// an expected-return vector and a covariance matrix.
type Portfolio struct {
	Assets []string
	Mu     []float64   // expected returns, annualized
	Cov    [][]float64 // covariance, symmetric positive definite
}

// Validate checks shape, symmetry and positive definiteness. A singular or
// indefinite covariance matrix makes the optimization ill-posed and is
// rejected up front.
func (p Portfolio) Validate() error {
	n := len(p.Assets)
	if n < 2 {
		return domain.NewDomainError("assets", "need at least 2 assets, got %d", n)
	}
	if len(p.Mu) != n {
		return domain.NewDomainError("mu", "length %d does not match %d assets", len(p.Mu), n)
	}
	if len(p.Cov) != n {
		return domain.NewDomainError("cov", "row count %d does not match %d assets", len(p.Cov), n)
	}
	for i, row := range p.Cov {
		if len(row) != n {
			return domain.NewDomainError("cov", "row %d has %d columns, expected %d", i, len(row), n)
		}
	}
	const symTol = 1e-8
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(p.Cov[i][j]-p.Cov[j][i]) > symTol {
				return domain.NewDomainError("cov", "not symmetric at (%d,%d): %g vs %g", i, j, p.Cov[i][j], p.Cov[j][i])
			}
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(p.covSym()); !ok {
		return domain.NewDomainError("cov", "not positive definite")
	}
	return nil
}

func (p Portfolio) covSym() *mat.SymDense {
	n := len(p.Assets)
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(p.Cov[i][j]+p.Cov[j][i]))
		}
	}
	return s
}

// OptimizationResult holds the weights and risk metrics of one optimization.
// Weights is freshly allocated on every call and owned by the caller.
type OptimizationResult struct {
	Weights           []float64
	ExpectedReturn    float64
	Volatility        float64
	Sharpe            float64
	VaR               float64   // CVaR method only, reported as a positive loss
	CVaR              float64   // CVaR method only
	RiskContributions []float64 // risk parity only
	Converged         bool
}

// FrontierPoint is one efficient-frontier portfolio.
type FrontierPoint struct {
	Return     float64
	Volatility float64
	Sharpe     float64
	Weights    []float64
}

// SolverConfig bounds the iterative solvers and fixes the Sharpe reference
// rate.
type SolverConfig struct {
	MaxIterations int
	Tolerance     float64
	RiskFreeRate  float64
}

// DefaultSolverConfig returns the budgets used across the test suite.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MaxIterations: 10_000,
		Tolerance:     1e-10,
		RiskFreeRate:  0,
	}
}

// performance computes (w'mu, sqrt(w'Sigma w), Sharpe) for arbitrary weights.
func performance(w, mu []float64, cov [][]float64, riskFree float64) (float64, float64, float64) {
	n := len(w)
	var ret, variance float64
	for i := 0; i < n; i++ {
		ret += w[i] * mu[i]
		for j := 0; j < n; j++ {
			variance += w[i] * w[j] * cov[i][j]
		}
	}
	vol := math.Sqrt(math.Max(variance, 0))
	sharpe := 0.0
	if vol > 0 {
		sharpe = (ret - riskFree) / vol
	}
	return ret, vol, sharpe
}

func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}

func normalize(w []float64) {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	if sum == 0 {
		return
	}
	for i := range w {
		w[i] /= sum
	}
}
