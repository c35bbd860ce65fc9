package noise

// Generator is the per-synthesizer noise source consumed by
// synth.BlockSynth (via its NoiseSource interface): Gaussian samples
// shaped by the fixed Chebyshev low-pass, optionally decimated with
// linear interpolation. Two Generators seeded differently produce
// independent streams (spec §5).
type Generator struct {
	gaussian         *Gaussian
	filter           *LowpassFilter
	decimationFactor int
}

// NewGenerator builds a Generator for sampleRate. decimationFactor <=
// 1 disables decimation (every sample is freshly generated and
// filtered).
func NewGenerator(seed int64, sampleRate float64, decimationFactor int) *Generator {
	return &Generator{
		gaussian:         NewGaussian(seed),
		filter:           NewLowpassFilter(sampleRate),
		decimationFactor: decimationFactor,
	}
}

func (g *Generator) raw() float64 {
	return g.filter.Filter(g.gaussian.Next())
}

// Fill implements synth.NoiseSource: it writes one band-limited noise
// sample (or decimated/interpolated approximation) per element of buf.
func (g *Generator) Fill(buf []float64) {
	if g.decimationFactor <= 1 {
		for i := range buf {
			buf[i] = g.raw()
		}
		return
	}
	dec := NewDecimator(g.decimationFactor, g.raw)
	for i := range buf {
		buf[i] = dec.Next()
	}
}
