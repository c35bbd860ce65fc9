package synth

import (
	"math"
	"testing"

	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
)

const sampleRate = 44100.0

func TestConstantStateProducesConstantSinusoid(t *testing.T) {
	const blockLen = 128
	osc := NewBlockOscillator(blockLen, sampleRate)
	target := partial.Breakpoint{Frequency: 440, Amplitude: 0.5, Bandwidth: 0}

	// prime the oscillator so cur == tgt, then render one more block.
	out := make([]float64, blockLen)
	osc.Render(out, target, nil, 0)

	out2 := make([]float64, blockLen)
	osc.Render(out2, target, nil, 0)

	var sumSq float64
	for _, s := range out2 {
		sumSq += s * s
	}
	rms := math.Sqrt(sumSq / blockLen)
	assert.InDelta(t, 0.5/math.Sqrt2, rms, 0.02)
}

func TestSilentOscillatorProducesZeroSamples(t *testing.T) {
	const blockLen = 64
	osc := NewBlockOscillator(blockLen, sampleRate)
	target := partial.Breakpoint{Frequency: 440, Amplitude: 0, Bandwidth: 0}

	out := make([]float64, blockLen)
	osc.Render(out, target, nil, 0)
	for _, s := range out {
		assert.Equal(t, 0.0, s)
	}
}

func TestSilentReportsTrueOnlyWhenBothZero(t *testing.T) {
	osc := NewBlockOscillator(16, sampleRate)
	assert.True(t, osc.Silent(partial.Breakpoint{Amplitude: 0}))
	assert.False(t, osc.Silent(partial.Breakpoint{Amplitude: 0.1}))
}
