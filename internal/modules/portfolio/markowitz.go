package portfolio

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"

	"github.com/acagliol/helios-quant/internal/domain"
)

// Optimizer runs the mean-variance family of portfolio constructions. All
// methods are long-only with weights summing to one.
type Optimizer struct {
	cfg SolverConfig
	log zerolog.Logger
}

// NewOptimizer wires a solver configuration and a component logger.
func NewOptimizer(cfg SolverConfig, log zerolog.Logger) *Optimizer {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultSolverConfig().MaxIterations
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultSolverConfig().Tolerance
	}
	return &Optimizer{
		cfg: cfg,
		log: log.With().Str("component", "portfolio_optimizer").Logger(),
	}
}

// MinVariance finds the global minimum-variance portfolio.
func (o *Optimizer) MinVariance(p Portfolio) (OptimizationResult, error) {
	if err := p.Validate(); err != nil {
		return OptimizationResult{}, err
	}
	w, err := o.solvePenalized(p, nil)
	if err != nil {
		return OptimizationResult{}, err
	}
	return o.result(p, w), nil
}

// TargetReturn finds the minimum-variance portfolio delivering the requested
// expected return. Targets outside the attainable long-only range are
// rejected as infeasible.
func (o *Optimizer) TargetReturn(p Portfolio, target float64) (OptimizationResult, error) {
	if err := p.Validate(); err != nil {
		return OptimizationResult{}, err
	}
	lo, hi := returnRange(p.Mu)
	const slack = 1e-9
	if target < lo-slack || target > hi+slack {
		return OptimizationResult{}, &domain.InfeasibleError{
			Constraint: "target return outside attainable range",
		}
	}
	w, err := o.solvePenalized(p, &target)
	if err != nil {
		return OptimizationResult{}, err
	}
	return o.result(p, w), nil
}

// solvePenalized minimizes portfolio variance with quadratic penalties for
// the budget constraint and, when target is non-nil, the return constraint.
// The penalized solution is then polished onto the exact constraint set.
func (o *Optimizer) solvePenalized(p Portfolio, target *float64) ([]float64, error) {
	n := len(p.Assets)
	const penalty = 1e4

	objective := func(w []float64) float64 {
		variance := 0.0
		sum := 0.0
		ret := 0.0
		for i := 0; i < n; i++ {
			sum += w[i]
			ret += w[i] * p.Mu[i]
			for j := 0; j < n; j++ {
				variance += w[i] * w[j] * p.Cov[i][j]
			}
		}
		v := variance + penalty*(sum-1)*(sum-1)
		if target != nil {
			v += penalty * (ret - *target) * (ret - *target)
		}
		for i := 0; i < n; i++ {
			if w[i] < 0 {
				v += penalty * w[i] * w[i]
			}
		}
		return v
	}
	grad := func(g, w []float64) {
		sum := 0.0
		ret := 0.0
		for i := 0; i < n; i++ {
			sum += w[i]
			ret += w[i] * p.Mu[i]
		}
		for i := 0; i < n; i++ {
			gi := 0.0
			for j := 0; j < n; j++ {
				gi += 2 * p.Cov[i][j] * w[j]
			}
			gi += 2 * penalty * (sum - 1)
			if target != nil {
				gi += 2 * penalty * (ret - *target) * p.Mu[i]
			}
			if w[i] < 0 {
				gi += 2 * penalty * w[i]
			}
			g[i] = gi
		}
	}

	problem := optimize.Problem{Func: objective, Grad: grad}
	settings := &optimize.Settings{MajorIterations: o.cfg.MaxIterations}

	w := o.seedWeights(p, target)
	res, err := optimize.Minimize(problem, w, settings, &optimize.BFGS{})
	if err != nil || res == nil {
		o.log.Debug().Err(err).Msg("BFGS failed, retrying with Nelder-Mead")
		res, err = optimize.Minimize(problem, w, settings, &optimize.NelderMead{})
		if err != nil || res == nil {
			return nil, &domain.ConvergenceError{Op: "markowitz", Iterations: o.cfg.MaxIterations}
		}
	}

	out := append([]float64(nil), res.X...)
	if err := o.polish(out, p.Mu, target); err != nil {
		return nil, err
	}
	return out, nil
}

// seedWeights starts the search at the equal-weight portfolio, tilted toward
// the constraint-feasible region when a return target is given.
func (o *Optimizer) seedWeights(p Portfolio, target *float64) []float64 {
	w := equalWeights(len(p.Assets))
	if target == nil {
		return w
	}
	// Blend equal weights with the single best/worst asset to land near the
	// target return before the solver starts.
	lo, hi := returnRange(p.Mu)
	if hi == lo {
		return w
	}
	eqRet := 0.0
	for i, m := range p.Mu {
		eqRet += w[i] * m
	}
	extreme := hi
	if *target < eqRet {
		extreme = lo
	}
	if extreme == eqRet {
		return w
	}
	alpha := (*target - eqRet) / (extreme - eqRet)
	alpha = math.Max(0, math.Min(1, alpha))
	for i, m := range p.Mu {
		w[i] *= 1 - alpha
		if m == extreme {
			w[i] += alpha
		}
	}
	return w
}

// polish projects the penalized solution onto the exact affine constraints
// (budget, and return when targeted), alternating with clipping at zero so
// the long-only bound survives the projection.
func (o *Optimizer) polish(w []float64, mu []float64, target *float64) error {
	const rounds = 100
	for round := 0; round < rounds; round++ {
		if target == nil {
			normalizeAffine(w)
		} else {
			projectBudgetReturn(w, mu, *target)
		}
		clipped := false
		for i := range w {
			if w[i] < -1e-12 {
				w[i] = 0
				clipped = true
			}
		}
		if !clipped {
			return nil
		}
	}
	return &domain.ConvergenceError{Op: "markowitz projection", Iterations: 100}
}

// normalizeAffine projects onto the budget hyperplane sum(w) = 1.
func normalizeAffine(w []float64) {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	shift := (sum - 1) / float64(len(w))
	for i := range w {
		w[i] -= shift
	}
}

// projectBudgetReturn projects onto the intersection of sum(w) = 1 and
// mu'w = target using the closed-form solution for two affine constraints.
func projectBudgetReturn(w, mu []float64, target float64) {
	n := float64(len(w))
	var sumW, sumMu, sumMu2, dot float64
	for i := range w {
		sumW += w[i]
		sumMu += mu[i]
		sumMu2 += mu[i] * mu[i]
		dot += w[i] * mu[i]
	}
	r1 := sumW - 1
	r2 := dot - target
	det := n*sumMu2 - sumMu*sumMu
	if det < 1e-14 {
		// Degenerate mu (all equal): the return constraint is parallel to
		// the budget constraint, keep the budget projection only.
		normalizeAffine(w)
		return
	}
	l1 := (sumMu2*r1 - sumMu*r2) / det
	l2 := (n*r2 - sumMu*r1) / det
	for i := range w {
		w[i] -= l1 + l2*mu[i]
	}
}

func (o *Optimizer) result(p Portfolio, w []float64) OptimizationResult {
	ret, vol, sharpe := performance(w, p.Mu, p.Cov, o.cfg.RiskFreeRate)
	return OptimizationResult{
		Weights:        w,
		ExpectedReturn: ret,
		Volatility:     vol,
		Sharpe:         sharpe,
		Converged:      true,
	}
}

func returnRange(mu []float64) (lo, hi float64) {
	lo, hi = mu[0], mu[0]
	for _, m := range mu[1:] {
		if m < lo {
			lo = m
		}
		if m > hi {
			hi = m
		}
	}
	return lo, hi
}
