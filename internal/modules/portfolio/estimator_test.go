package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acagliol/helios-quant/internal/domain"
)

func TestEstimateMomentsHandComputed(t *testing.T) {
	// Two assets over four monthly periods.
	returns := [][]float64{
		{0.01, 0.02},
		{0.03, -0.01},
		{-0.01, 0.00},
		{0.01, 0.03},
	}
	mu, cov, err := EstimateMoments(returns, 12)
	require.NoError(t, err)
	require.Len(t, mu, 2)
	require.Len(t, cov, 2)

	// Per-period means are 0.01 and 0.01, annualized by 12.
	assert.InDelta(t, 0.12, mu[0], 1e-12)
	assert.InDelta(t, 0.12, mu[1], 1e-12)

	// Sample variance of asset 0: sum of squared deviations
	// (0, 0.02, -0.02, 0) over n-1 = 3, annualized.
	assert.InDelta(t, 12*0.0008/3, cov[0][0], 1e-12)
	assert.InDelta(t, cov[0][1], cov[1][0], 1e-15)
}

func TestEstimateMomentsFeedsOptimizer(t *testing.T) {
	returns := [][]float64{
		{0.012, 0.004, -0.002},
		{-0.008, 0.001, 0.006},
		{0.015, -0.003, 0.002},
		{0.002, 0.005, -0.004},
		{-0.004, 0.002, 0.008},
		{0.009, -0.001, 0.001},
		{0.003, 0.004, -0.006},
		{-0.006, 0.002, 0.005},
	}
	mu, cov, err := EstimateMoments(returns, 252)
	require.NoError(t, err)

	p := Portfolio{Assets: []string{"A", "B", "C"}, Mu: mu, Cov: cov}
	require.NoError(t, p.Validate())

	res, err := testOptimizer().MinVariance(p)
	require.NoError(t, err)
	assert.True(t, res.Converged)
}

func TestEstimateMomentsValidation(t *testing.T) {
	tests := []struct {
		name    string
		returns [][]float64
		freq    int
		field   string
	}{
		{"too few periods", [][]float64{{0.01}}, 252, "returns"},
		{"no assets", [][]float64{{}, {}}, 252, "returns"},
		{"ragged rows", [][]float64{{0.01, 0.02}, {0.01}}, 252, "returns"},
		{"bad frequency", [][]float64{{0.01}, {0.02}}, 0, "periodsPerYear"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := EstimateMoments(tt.returns, tt.freq)
			var derr *domain.DomainError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.field, derr.Field)
		})
	}
}
