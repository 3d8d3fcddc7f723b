package formulas

import "math"

// SharpeRatio computes the annualized Sharpe ratio of a periodic return
// series. riskFreeRate is the annual risk-free rate; it is de-annualized to
// the period before differencing. Returns 0 when the series is too short or
// has zero dispersion.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(returns) < 2 || periodsPerYear <= 0 {
		return 0
	}
	sd := StdDev(returns)
	if sd == 0 {
		return 0
	}
	periodicRF := riskFreeRate / float64(periodsPerYear)
	return (Mean(returns) - periodicRF) / sd * math.Sqrt(float64(periodsPerYear))
}

// SortinoRatio is the downside-deviation variant of the Sharpe ratio: only
// returns below the periodic target contribute to the denominator. Returns 0
// when there is no downside in the sample.
func SortinoRatio(returns []float64, riskFreeRate, targetReturn float64, periodsPerYear int) float64 {
	if len(returns) < 2 || periodsPerYear <= 0 {
		return 0
	}
	periodicMAR := targetReturn / float64(periodsPerYear)
	var sumSq float64
	count := 0
	for _, r := range returns {
		if r < periodicMAR {
			d := r - periodicMAR
			sumSq += d * d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	downside := math.Sqrt(sumSq / float64(count))
	if downside == 0 {
		return 0
	}
	periodicRF := riskFreeRate / float64(periodsPerYear)
	return (Mean(returns) - periodicRF) / downside * math.Sqrt(float64(periodsPerYear))
}
