package simulation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// chunkSize is the fixed number of paths per stream chunk. Chunking is tied to
// path indices, not workers, so the drawn sequence (and therefore the result)
// is identical no matter how many goroutines run the simulation.
const chunkSize = 4096

// NormalSource yields standard-normal variates for consecutive paths of one
// chunk. Each worker owns its source; nothing is shared across chunks.
type NormalSource interface {
	// Normals fills dst with the variates for the next path.
	Normals(dst []float64)
}

// StreamProvider derives per-chunk normal sources from a single top-level
// seed. Pseudo-random chunks get independent PCG sources seeded by a
// splitmix64 derivation; quasi-random chunks continue a seed-shifted Halton
// sequence at the chunk's first path index.
type StreamProvider struct {
	seed   uint64
	mode   VarianceReduction
	dim    int
	shifts []float64 // Cranley-Patterson rotation, quasi mode only
}

// NewStreamProvider creates a provider for paths needing dim normals each.
func NewStreamProvider(seed uint64, mode VarianceReduction, dim int) *StreamProvider {
	p := &StreamProvider{seed: seed, mode: mode, dim: dim}
	if mode == VRQuasiRandom {
		rng := rand.New(rand.NewPCG(splitmix64(seed), splitmix64(seed+1)))
		p.shifts = make([]float64, dim)
		for i := range p.shifts {
			p.shifts[i] = rng.Float64()
		}
	}
	return p
}

// Chunk returns the normal source for the given chunk index.
func (p *StreamProvider) Chunk(index int) NormalSource {
	if p.mode == VRQuasiRandom {
		return &haltonSource{
			next:   index*chunkSize + 1, // skip the degenerate zero point
			dim:    p.dim,
			shifts: p.shifts,
		}
	}
	sub := splitmix64(p.seed + uint64(index)*0x9e3779b97f4a7c15)
	src := rand.NewPCG(sub, splitmix64(sub))
	return &pseudoSource{normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src}}
}

// splitmix64 scrambles a seed into a well-distributed sub-seed.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

type pseudoSource struct {
	normal distuv.Normal
}

func (s *pseudoSource) Normals(dst []float64) {
	for i := range dst {
		dst[i] = s.normal.Rand()
	}
}

// haltonSource maps a seed-rotated Halton low-discrepancy sequence to normals
// through the inverse CDF. Deterministic for a given seed and path index.
type haltonSource struct {
	next   int
	dim    int
	shifts []float64
}

func (s *haltonSource) Normals(dst []float64) {
	for d := range dst {
		u := radicalInverse(s.next, halPrime(d)) + s.shifts[d]
		if u >= 1 {
			u -= 1
		}
		// Keep the quantile argument strictly inside (0, 1).
		u = math.Min(math.Max(u, 1e-12), 1-1e-12)
		dst[d] = distuv.UnitNormal.Quantile(u)
	}
	s.next++
}

// radicalInverse is the van der Corput radical inverse of n in the given base.
func radicalInverse(n, base int) float64 {
	inv := 1.0 / float64(base)
	f := inv
	r := 0.0
	for n > 0 {
		r += f * float64(n%base)
		n /= base
		f *= inv
	}
	return r
}

var halPrimes = sievePrimes(3000)

func halPrime(d int) int {
	if d < len(halPrimes) {
		return halPrimes[d]
	}
	// Past the sieve the sequence quality is irrelevant; any odd base works.
	return halPrimes[len(halPrimes)-1] + 2*(d-len(halPrimes)+1)
}

func sievePrimes(limit int) []int {
	composite := make([]bool, limit)
	var primes []int
	for i := 2; i < limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j < limit; j += i {
			composite[j] = true
		}
	}
	return primes
}
