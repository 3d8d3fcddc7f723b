package portfolio

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/acagliol/helios-quant/internal/domain"
	"github.com/acagliol/helios-quant/pkg/formulas"
)

// MinCVaR minimizes the conditional value-at-risk of the portfolio loss at
// confidence level alpha over historical return scenarios, using the
// Rockafellar-Uryasev linear program.
//
// scenarios is one row per scenario, one column per asset, holding simple
// returns. With S scenarios and n assets the LP has variables
// [w_1..w_n, zeta, u_1..u_S]: minimize zeta + sum(u)/((1-alpha)*S) subject to
// u_s >= loss_s - zeta, the budget constraint and long-only bounds, where
// loss_s = -r_s'w.
func (o *Optimizer) MinCVaR(p Portfolio, scenarios [][]float64, alpha float64) (OptimizationResult, error) {
	if err := p.Validate(); err != nil {
		return OptimizationResult{}, err
	}
	n := len(p.Assets)
	if err := validateScenarios(scenarios, n, alpha); err != nil {
		return OptimizationResult{}, err
	}
	nScen := len(scenarios)
	nVar := n + 1 + nScen // weights, zeta, per-scenario excess losses

	c := make([]float64, nVar)
	c[n] = 1
	tail := 1.0 / ((1 - alpha) * float64(nScen))
	for s := 0; s < nScen; s++ {
		c[n+1+s] = tail
	}

	// Inequalities G x <= h:
	//   -r_s'w - zeta - u_s <= 0   (scenario rows)
	//   -w_i <= 0, -u_s <= 0       (bounds; Convert frees all variables)
	nIneq := nScen + n + nScen
	g := mat.NewDense(nIneq, nVar, nil)
	h := make([]float64, nIneq)
	for s := 0; s < nScen; s++ {
		for i := 0; i < n; i++ {
			g.Set(s, i, -scenarios[s][i])
		}
		g.Set(s, n, -1)
		g.Set(s, n+1+s, -1)
	}
	for i := 0; i < n; i++ {
		g.Set(nScen+i, i, -1)
	}
	for s := 0; s < nScen; s++ {
		g.Set(nScen+n+s, n+1+s, -1)
	}

	// Budget equality.
	a := mat.NewDense(1, nVar, nil)
	for i := 0; i < n; i++ {
		a.Set(0, i, 1)
	}
	b := []float64{1}

	cNew, aNew, bNew := lp.Convert(c, g, h, a, b)
	opt, xNew, err := lp.Simplex(cNew, aNew, bNew, 1e-10, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return OptimizationResult{}, &domain.InfeasibleError{
				Constraint: "CVaR linear program has no feasible portfolio",
			}
		}
		o.log.Error().Err(err).Int("scenarios", nScen).Msg("CVaR simplex failed")
		return OptimizationResult{}, &domain.ConvergenceError{Op: "cvar simplex"}
	}

	// Convert splits each free variable v into v+ - v- laid out in blocks,
	// so the original solution is xNew[i] - xNew[nVar+i].
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = math.Max(xNew[i]-xNew[nVar+i], 0)
	}
	normalize(w)
	zeta := xNew[n] - xNew[nVar+n]

	res := o.result(p, w)
	res.VaR = zeta
	res.CVaR = opt
	return res, nil
}

// CVaRMetrics evaluates historical VaR and CVaR of fixed weights over the
// scenario set. Both are reported as positive losses; CVaR is the mean loss
// in the alpha tail and is never below VaR.
func CVaRMetrics(weights []float64, scenarios [][]float64, alpha float64) (valueAtRisk, cvar float64, err error) {
	if len(weights) == 0 {
		return 0, 0, domain.NewDomainError("weights", "empty")
	}
	if err := validateScenarios(scenarios, len(weights), alpha); err != nil {
		return 0, 0, err
	}
	rets := make([]float64, len(scenarios))
	for s, row := range scenarios {
		for i, w := range weights {
			rets[s] += w * row[i]
		}
	}
	return formulas.HistoricalVaR(rets, alpha), formulas.HistoricalCVaR(rets, alpha), nil
}

func validateScenarios(scenarios [][]float64, n int, alpha float64) error {
	if len(scenarios) == 0 {
		return domain.NewDomainError("scenarios", "empty scenario set")
	}
	for s, row := range scenarios {
		if len(row) != n {
			return domain.NewDomainError("scenarios", "row %d has %d assets, expected %d", s, len(row), n)
		}
	}
	if alpha <= 0 || alpha >= 1 {
		return domain.NewDomainError("alpha", "confidence level must be in (0,1), got %g", alpha)
	}
	return nil
}
