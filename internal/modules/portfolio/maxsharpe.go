package portfolio

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/acagliol/helios-quant/internal/domain"
)

// MaxSharpe finds the long-only tangency portfolio, the one maximizing
// (w'mu - rf) / sqrt(w'Sigma w).
func (o *Optimizer) MaxSharpe(p Portfolio) (OptimizationResult, error) {
	if err := p.Validate(); err != nil {
		return OptimizationResult{}, err
	}
	n := len(p.Assets)
	const penalty = 1e4

	negSharpe := func(w []float64) float64 {
		ret, vol, _ := performance(w, p.Mu, p.Cov, o.cfg.RiskFreeRate)
		v := 0.0
		if vol > 1e-12 {
			v = -(ret - o.cfg.RiskFreeRate) / vol
		}
		sum := 0.0
		for _, wi := range w {
			sum += wi
		}
		v += penalty * (sum - 1) * (sum - 1)
		for _, wi := range w {
			if wi < 0 {
				v += penalty * wi * wi
			}
		}
		return v
	}

	problem := optimize.Problem{Func: negSharpe}
	settings := &optimize.Settings{MajorIterations: o.cfg.MaxIterations}

	w := equalWeights(n)
	res, err := optimize.Minimize(problem, w, settings, &optimize.NelderMead{})
	if err != nil || res == nil {
		return OptimizationResult{}, &domain.ConvergenceError{Op: "max sharpe", Iterations: o.cfg.MaxIterations}
	}

	out := append([]float64(nil), res.X...)
	for i := range out {
		out[i] = math.Max(out[i], 0)
	}
	normalize(out)
	r := o.result(p, out)

	// The equal-weight portfolio is always feasible; never return something
	// the search degraded below it.
	eq := equalWeights(n)
	_, _, eqSharpe := performance(eq, p.Mu, p.Cov, o.cfg.RiskFreeRate)
	if r.Sharpe < eqSharpe {
		o.log.Debug().
			Float64("solver_sharpe", r.Sharpe).
			Float64("equal_weight_sharpe", eqSharpe).
			Msg("max sharpe search fell below equal weights, keeping equal weights")
		r = o.result(p, eq)
	}
	return r, nil
}
