package formulas

import (
	"math"
	"sort"
)

// HistoricalVaR computes the empirical value-at-risk of a return series at
// the given confidence level, reported as a positive loss. At alpha = 0.95
// it is the loss exceeded in the worst 5% of periods.
func HistoricalVaR(returns []float64, alpha float64) float64 {
	losses := sortedLosses(returns)
	if losses == nil || alpha <= 0 || alpha >= 1 {
		return 0
	}
	return losses[lossQuantileIndex(len(losses), alpha)]
}

// HistoricalCVaR computes the expected loss conditional on exceeding the VaR
// threshold, reported as a positive loss. It is never below HistoricalVaR at
// the same confidence level.
func HistoricalCVaR(returns []float64, alpha float64) float64 {
	losses := sortedLosses(returns)
	if losses == nil || alpha <= 0 || alpha >= 1 {
		return 0
	}
	idx := lossQuantileIndex(len(losses), alpha)
	sum := 0.0
	for _, l := range losses[idx:] {
		sum += l
	}
	return sum / float64(len(losses)-idx)
}

// sortedLosses negates returns into losses and sorts ascending, so the tail
// of interest sits at the top of the slice.
func sortedLosses(returns []float64) []float64 {
	if len(returns) == 0 {
		return nil
	}
	losses := make([]float64, len(returns))
	for i, r := range returns {
		losses[i] = -r
	}
	sort.Float64s(losses)
	return losses
}

// lossQuantileIndex maps a confidence level to the empirical quantile index
// over n sorted losses.
func lossQuantileIndex(n int, alpha float64) int {
	idx := int(math.Ceil(alpha*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}
