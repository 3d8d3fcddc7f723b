package pricing

import (
	"math"

	"github.com/acagliol/helios-quant/internal/domain"
	"github.com/rs/zerolog"
)

// SeriesConfig controls the truncation of the Merton Poisson series.
type SeriesConfig struct {
	TruncationTol float64 // stop once the Poisson weight falls below this
	MaxTerms      int     // hard cap guaranteeing termination
}

// DefaultSeriesConfig truncates at weights below 1e-12 with a cap that covers
// any realistic jump intensity.
func DefaultSeriesConfig() SeriesConfig {
	return SeriesConfig{TruncationTol: 1e-12, MaxTerms: 170}
}

// MertonPricer prices European options under the Merton jump-diffusion model
// as a Poisson-weighted series of Black-Scholes prices with per-term adjusted
// rate and volatility.
type MertonPricer struct {
	cfg SeriesConfig
	log zerolog.Logger
}

// NewMertonPricer creates a Merton pricer with the given truncation settings.
func NewMertonPricer(cfg SeriesConfig, log zerolog.Logger) *MertonPricer {
	return &MertonPricer{
		cfg: cfg,
		log: log.With().Str("component", "merton_pricer").Logger(),
	}
}

// Price evaluates
//
//	sum_k e^(-l'T) (l'T)^k / k! * BS(S, K, T, r_k, sigma_k)
//
// with l' = lambda(1+kbar), sigma_k^2 = sigma^2 + k sigma_J^2/T and
// r_k = r - lambda kbar + k ln(1+kbar)/T. The series stops at the first k
// whose Poisson weight drops below the truncation tolerance; if the cap is hit
// first, the partial sum is returned with a ConvergenceError whose bound is
// the unaccounted Poisson mass times the spot.
func (p *MertonPricer) Price(m MarketParameters, j JumpParameters, optType OptionType) (PriceResult, error) {
	if err := m.Validate(); err != nil {
		return PriceResult{}, err
	}
	if err := j.Validate(); err != nil {
		return PriceResult{}, err
	}
	if !optType.Valid() {
		return PriceResult{}, domain.NewDomainError("option_type", "must be call or put, got %q", optType)
	}
	if m.TimeToExpiry == 0 {
		return PriceResult{Price: intrinsic(m, optType), Converged: true}, nil
	}
	if j.Intensity == 0 {
		// No jumps: the model degenerates to Black-Scholes exactly.
		return PriceResult{Price: bsPrice(m, optType), Converged: true}, nil
	}

	kbar := j.MeanJumpSize()
	lambdaP := j.Intensity * (1 + kbar)
	lt := lambdaP * m.TimeToExpiry

	// Poisson weights via a running product; factorials overflow fast.
	weight := math.Exp(-lt)
	weightSum := 0.0
	total := 0.0

	for k := 0; k < p.cfg.MaxTerms; k++ {
		if k > 0 {
			weight *= lt / float64(k)
		}

		term := m
		term.Volatility = math.Sqrt(m.Volatility*m.Volatility +
			float64(k)*j.JumpVol*j.JumpVol/m.TimeToExpiry)
		term.Rate = m.Rate - j.Intensity*kbar +
			float64(k)*(j.MeanJump+0.5*j.JumpVol*j.JumpVol)/m.TimeToExpiry

		total += weight * bsPrice(term, optType)
		weightSum += weight

		if weight < p.cfg.TruncationTol && lt < float64(k) {
			return PriceResult{Price: total, Converged: true}, nil
		}
	}

	// The remaining Poisson mass bounds the truncation error: every omitted
	// Black-Scholes term is below S (call) or K (put).
	tailMass := math.Max(0, 1-weightSum)
	bound := tailMass * math.Max(m.Spot, m.Strike)
	p.log.Warn().
		Int("max_terms", p.cfg.MaxTerms).
		Float64("tail_mass", tailMass).
		Float64("error_bound", bound).
		Msg("Merton series truncated before reaching tolerance")
	return PriceResult{Price: total}, &domain.ConvergenceError{
		Op:         "merton series",
		Partial:    total,
		Bound:      bound,
		Iterations: p.cfg.MaxTerms,
	}
}
