package portfolio

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/acagliol/helios-quant/internal/domain"
)

// EstimateMoments computes annualized expected returns and covariance from a
// matrix of historical simple returns, one row per period and one column per
// asset. periodsPerYear scales the per-period sample moments to annual terms
// (252 for daily data, 12 for monthly).
func EstimateMoments(returns [][]float64, periodsPerYear int) (mu []float64, cov [][]float64, err error) {
	if len(returns) < 2 {
		return nil, nil, domain.NewDomainError("returns", "need at least 2 periods, got %d", len(returns))
	}
	n := len(returns[0])
	if n == 0 {
		return nil, nil, domain.NewDomainError("returns", "no assets")
	}
	for t, row := range returns {
		if len(row) != n {
			return nil, nil, domain.NewDomainError("returns", "period %d has %d assets, expected %d", t, len(row), n)
		}
	}
	if periodsPerYear <= 0 {
		return nil, nil, domain.NewDomainError("periodsPerYear", "must be positive, got %d", periodsPerYear)
	}

	periods := len(returns)
	data := mat.NewDense(periods, n, nil)
	for t, row := range returns {
		data.SetRow(t, row)
	}

	freq := float64(periodsPerYear)
	mu = make([]float64, n)
	for i := 0; i < n; i++ {
		mu[i] = stat.Mean(mat.Col(nil, i, data), nil) * freq
	}

	var sym mat.SymDense
	stat.CovarianceMatrix(&sym, data, nil)
	cov = make([][]float64, n)
	for i := 0; i < n; i++ {
		cov[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			cov[i][j] = sym.At(i, j) * freq
		}
	}
	return mu, cov, nil
}
