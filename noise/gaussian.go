// Package noise supplies the deterministic, band-limited noise
// modulator consumed by the bandwidth-enhanced oscillator bank (spec
// §4.12): Gaussian generation via polar Box-Muller, a fixed Chebyshev
// low-pass, and optional decimation with linear interpolation.
package noise

import "math"

// Gaussian produces zero-mean, unit-variance samples via the polar
// (Marsaglia) Box-Muller method. Seed state is owned per instance so
// that two synthesizers never share an RNG stream (spec §5).
type Gaussian struct {
	state  uint64
	cached float64
	have   bool
}

// NewGaussian seeds a generator. A zero seed is replaced with 1 so the
// underlying congruential stream is never degenerate.
func NewGaussian(seed int64) *Gaussian {
	if seed == 0 {
		seed = 1
	}
	return &Gaussian{state: uint64(seed)}
}

// uniform returns a value in [0,1) from a linear congruential
// generator, the same role trm.NoiseSource's seed recurrence plays for
// its uniform stream.
func (g *Gaussian) uniform() float64 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return float64(g.state>>11) / float64(1<<53)
}

// Next returns the next Gaussian sample. Box-Muller's polar form
// produces two independent samples per accepted (x1,x2) pair; the
// second is cached and returned on the following call.
func (g *Gaussian) Next() float64 {
	if g.have {
		g.have = false
		return g.cached
	}
	var x1, x2, w float64
	for {
		x1 = 2*g.uniform() - 1
		x2 = 2*g.uniform() - 1
		w = x1*x1 + x2*x2
		if w > 0 && w < 1 {
			break
		}
	}
	w = math.Sqrt(-2 * math.Log(w) / w)
	g.cached = x2 * w
	g.have = true
	return x1 * w
}

// Reset restores the generator to its initial seed and clears the
// Box-Muller cache.
func (g *Gaussian) Reset(seed int64) {
	if seed == 0 {
		seed = 1
	}
	g.state = uint64(seed)
	g.have = false
	g.cached = 0
}
