package formulas

// MaxDrawdown returns the largest peak-to-trough loss of a price or
// wealth series, as a positive fraction (0.25 means a 25% loss from the
// running peak). Series shorter than two points have no drawdown.
func MaxDrawdown(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	maxDD := 0.0
	peak := prices[0]
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			if dd := (peak - p) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
