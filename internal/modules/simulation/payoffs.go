package simulation

import (
	"math"

	"github.com/acagliol/helios-quant/internal/modules/pricing"
)

// PathPayoff maps one simulated price path to an undiscounted payoff.
// path[0] is the spot at inception; observations for averaging and barrier
// monitoring are path[1:], one per time step.
type PathPayoff func(path []float64) float64

// AverageType selects the averaging convention of an Asian payoff.
type AverageType string

const (
	Arithmetic AverageType = "arithmetic"
	Geometric  AverageType = "geometric"
)

// BarrierStyle identifies the four knock variants.
type BarrierStyle string

const (
	UpAndOut   BarrierStyle = "up-and-out"
	UpAndIn    BarrierStyle = "up-and-in"
	DownAndOut BarrierStyle = "down-and-out"
	DownAndIn  BarrierStyle = "down-and-in"
)

// VanillaPayoff is the European payoff on the terminal value.
func VanillaPayoff(typ pricing.OptionType, strike float64) PathPayoff {
	return func(path []float64) float64 {
		return vanilla(typ, path[len(path)-1], strike)
	}
}

func vanilla(typ pricing.OptionType, s, k float64) float64 {
	if typ == pricing.Call {
		return math.Max(s-k, 0)
	}
	return math.Max(k-s, 0)
}

// AsianPayoff pays on the average of the observed prices.
func AsianPayoff(typ pricing.OptionType, strike float64, avg AverageType) PathPayoff {
	return func(path []float64) float64 {
		obs := path[1:]
		var mean float64
		if avg == Geometric {
			for _, s := range obs {
				mean += math.Log(s)
			}
			mean = math.Exp(mean / float64(len(obs)))
		} else {
			for _, s := range obs {
				mean += s
			}
			mean /= float64(len(obs))
		}
		return vanilla(typ, mean, strike)
	}
}

// BarrierPayoff pays the vanilla payoff gated on whether the path crossed the
// barrier at any monitoring point. Monitoring is discrete: the barrier is
// checked at every simulated step, so the price depends on the configured step
// count in the same way a discretely monitored contract does.
func BarrierPayoff(typ pricing.OptionType, strike, barrier float64, style BarrierStyle) PathPayoff {
	up := style == UpAndOut || style == UpAndIn
	knockIn := style == UpAndIn || style == DownAndIn
	return func(path []float64) float64 {
		crossed := false
		for _, s := range path[1:] {
			if (up && s >= barrier) || (!up && s <= barrier) {
				crossed = true
				break
			}
		}
		if crossed != knockIn {
			return 0
		}
		return vanilla(typ, path[len(path)-1], strike)
	}
}

// LookbackFloatingPayoff pays S_T - min(path) for calls and max(path) - S_T
// for puts. The extremum includes the inception spot.
func LookbackFloatingPayoff(typ pricing.OptionType) PathPayoff {
	return func(path []float64) float64 {
		terminal := path[len(path)-1]
		if typ == pricing.Call {
			return math.Max(terminal-pathMin(path), 0)
		}
		return math.Max(pathMax(path)-terminal, 0)
	}
}

// LookbackFixedPayoff pays the best achieved level against a fixed strike:
// max(path) for calls, min(path) for puts.
func LookbackFixedPayoff(typ pricing.OptionType, strike float64) PathPayoff {
	return func(path []float64) float64 {
		if typ == pricing.Call {
			return math.Max(pathMax(path)-strike, 0)
		}
		return math.Max(strike-pathMin(path), 0)
	}
}

// DigitalCashPayoff pays a fixed cash amount iff the terminal value finishes
// in the money.
func DigitalCashPayoff(typ pricing.OptionType, strike, cash float64) PathPayoff {
	return func(path []float64) float64 {
		if inTheMoney(typ, path[len(path)-1], strike) {
			return cash
		}
		return 0
	}
}

// DigitalAssetPayoff pays the terminal asset value iff it finishes in the
// money.
func DigitalAssetPayoff(typ pricing.OptionType, strike float64) PathPayoff {
	return func(path []float64) float64 {
		terminal := path[len(path)-1]
		if inTheMoney(typ, terminal, strike) {
			return terminal
		}
		return 0
	}
}

func inTheMoney(typ pricing.OptionType, s, k float64) bool {
	if typ == pricing.Call {
		return s > k
	}
	return s < k
}

func pathMin(path []float64) float64 {
	m := path[0]
	for _, s := range path[1:] {
		if s < m {
			m = s
		}
	}
	return m
}

func pathMax(path []float64) float64 {
	m := path[0]
	for _, s := range path[1:] {
		if s > m {
			m = s
		}
	}
	return m
}
