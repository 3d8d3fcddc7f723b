package simulation

import (
	"math"
	"runtime"

	"github.com/acagliol/helios-quant/internal/domain"
	"github.com/acagliol/helios-quant/internal/modules/pricing"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Engine prices arbitrary path payoffs by Monte Carlo simulation. Paths are
// partitioned into fixed-size chunks with deterministically derived sub-seeds,
// so a result depends only on the configuration, never on the worker count.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a Monte Carlo engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "monte_carlo").Logger()}
}

// pathKernel maps one vector of standard normals to a price path. The path
// buffer has cfg.Steps+1 entries with the spot at index 0.
type pathKernel func(z, path []float64)

// PriceGBM simulates geometric Brownian motion and evaluates the payoff.
// With a single step the terminal value is sampled exactly from the closed
// form; path-dependent payoffs need Steps > 1.
func (e *Engine) PriceGBM(m pricing.MarketParameters, cfg SimulationConfig, payoff PathPayoff) (pricing.PriceResult, error) {
	if err := m.Validate(); err != nil {
		return pricing.PriceResult{}, err
	}
	if err := cfg.Validate(); err != nil {
		return pricing.PriceResult{}, err
	}

	dt := m.TimeToExpiry / float64(cfg.Steps)
	drift := (m.Rate - m.DividendYield - 0.5*m.Volatility*m.Volatility) * dt
	diffusion := m.Volatility * math.Sqrt(dt)

	kernel := func(z, path []float64) {
		path[0] = m.Spot
		for i, zi := range z {
			path[i+1] = path[i] * math.Exp(drift+diffusion*zi)
		}
	}
	return e.run(cfg, m, cfg.Steps, kernel, payoff)
}

// PriceHeston simulates the Heston dynamics with a full-truncation Euler
// scheme: negative variance iterates are clamped at zero in both the drift
// and the diffusion term. A Feller-condition violation is logged, not
// rejected.
func (e *Engine) PriceHeston(m pricing.MarketParameters, h pricing.HestonParameters, cfg SimulationConfig, payoff PathPayoff) (pricing.PriceResult, error) {
	if err := m.Validate(); err != nil {
		return pricing.PriceResult{}, err
	}
	if err := h.Validate(); err != nil {
		return pricing.PriceResult{}, err
	}
	if err := cfg.Validate(); err != nil {
		return pricing.PriceResult{}, err
	}
	if !h.FellerSatisfied() {
		e.log.Warn().
			Float64("two_kappa_theta", 2*h.Kappa*h.Theta).
			Float64("xi_squared", h.Xi*h.Xi).
			Msg("Feller condition violated; clamping variance at zero")
	}

	dt := m.TimeToExpiry / float64(cfg.Steps)
	sqrtDt := math.Sqrt(dt)
	rhoComp := math.Sqrt(1 - h.Rho*h.Rho)

	kernel := func(z, path []float64) {
		path[0] = m.Spot
		v := h.V0
		for i := 0; i < cfg.Steps; i++ {
			z1 := z[2*i]
			z2 := h.Rho*z1 + rhoComp*z[2*i+1]
			vPos := math.Max(v, 0)
			sqrtV := math.Sqrt(vPos)

			path[i+1] = path[i] * math.Exp((m.Rate-m.DividendYield-0.5*vPos)*dt+sqrtV*sqrtDt*z1)
			v = v + h.Kappa*(h.Theta-vPos)*dt + h.Xi*sqrtV*sqrtDt*z2
		}
	}
	return e.run(cfg, m, 2*cfg.Steps, kernel, payoff)
}

type chunkAccum struct {
	sum   float64
	sumSq float64
	n     int
}

// run draws the configured number of paths in parallel chunks, evaluates the
// payoff, and reduces the per-chunk partial sums in fixed chunk order so the
// result is reproducible across runs and worker counts.
func (e *Engine) run(cfg SimulationConfig, m pricing.MarketParameters, dim int, kernel pathKernel, payoff PathPayoff) (pricing.PriceResult, error) {
	antithetic := cfg.VarianceReduction == VRAntithetic
	draws := cfg.Paths
	if antithetic {
		draws = (cfg.Paths + 1) / 2
	}
	nChunks := (draws + chunkSize - 1) / chunkSize

	provider := NewStreamProvider(cfg.Seed, cfg.VarianceReduction, dim)
	accums := make([]chunkAccum, nChunks)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for c := 0; c < nChunks; c++ {
		c := c
		g.Go(func() error {
			src := provider.Chunk(c)
			z := make([]float64, dim)
			zNeg := make([]float64, dim)
			pathBuf := make([]float64, cfg.Steps+1)
			acc := &accums[c]

			first := c * chunkSize
			last := first + chunkSize
			if last > draws {
				last = draws
			}

			for i := first; i < last; i++ {
				src.Normals(z)
				kernel(z, pathBuf)
				v, err := checkPayoff(payoff(pathBuf))
				if err != nil {
					return err
				}
				if antithetic {
					for k := range z {
						zNeg[k] = -z[k]
					}
					kernel(zNeg, pathBuf)
					v2, err := checkPayoff(payoff(pathBuf))
					if err != nil {
						return err
					}
					v = 0.5 * (v + v2)
				}
				acc.sum += v
				acc.sumSq += v * v
				acc.n++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return pricing.PriceResult{}, err
	}

	var total chunkAccum
	for _, acc := range accums {
		total.sum += acc.sum
		total.sumSq += acc.sumSq
		total.n += acc.n
	}

	discount := math.Exp(-m.Rate * m.TimeToExpiry)
	mean := total.sum / float64(total.n)
	price := discount * mean

	res := pricing.PriceResult{Price: price, Converged: true}
	if cfg.VarianceReduction == VRQuasiRandom {
		// Low-discrepancy points are not independent samples; a sample
		// standard error would be meaningless.
		res.StandardError = math.NaN()
		res.ConfIntervalLow = math.NaN()
		res.ConfIntervalHigh = math.NaN()
		return res, nil
	}

	variance := 0.0
	if total.n > 1 {
		variance = (total.sumSq - total.sum*total.sum/float64(total.n)) / float64(total.n-1)
		variance = math.Max(variance, 0)
	}
	se := discount * math.Sqrt(variance/float64(total.n))
	res.StandardError = se
	res.ConfIntervalLow = price - 1.96*se
	res.ConfIntervalHigh = price + 1.96*se
	res.HasStandardError = true

	e.log.Debug().
		Int("paths", cfg.Paths).
		Int("samples", total.n).
		Float64("price", price).
		Float64("standard_error", se).
		Msg("Monte Carlo estimate")
	return res, nil
}

func checkPayoff(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.NewDomainError("payoff", "non-finite payoff value %g", v)
	}
	if v < 0 {
		return 0, domain.NewDomainError("payoff", "contract violation: negative payoff %g for a non-negative instrument", v)
	}
	return v, nil
}
