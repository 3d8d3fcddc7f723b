package portfolio

import (
	"errors"

	"github.com/acagliol/helios-quant/internal/domain"
)

// EfficientFrontier traces the long-only efficient frontier by sweeping
// return targets between the smallest and largest asset expected return.
// Points where the target-return solve fails are skipped; at least one point
// must survive or the sweep itself is reported as failed.
func (o *Optimizer) EfficientFrontier(p Portfolio, points int) ([]FrontierPoint, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if points < 2 {
		return nil, domain.NewDomainError("points", "need at least 2 frontier points, got %d", points)
	}
	lo, hi := returnRange(p.Mu)
	out := make([]FrontierPoint, 0, points)
	for k := 0; k < points; k++ {
		target := lo + (hi-lo)*float64(k)/float64(points-1)
		res, err := o.TargetReturn(p, target)
		if err != nil {
			var conv *domain.ConvergenceError
			var inf *domain.InfeasibleError
			if errors.As(err, &conv) || errors.As(err, &inf) {
				o.log.Debug().Float64("target", target).Err(err).Msg("skipping frontier point")
				continue
			}
			return nil, err
		}
		out = append(out, FrontierPoint{
			Return:     res.ExpectedReturn,
			Volatility: res.Volatility,
			Sharpe:     res.Sharpe,
			Weights:    res.Weights,
		})
	}
	if len(out) == 0 {
		return nil, &domain.ConvergenceError{Op: "efficient frontier", Iterations: points}
	}
	return out, nil
}
