package synth

import (
	"math"
	"testing"

	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
)

type zeroNoise struct{}

func (zeroNoise) Fill(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

func TestBlockSynthSumsIndependentVoices(t *testing.T) {
	const blockLen = 256
	s := NewBlockSynth(2, blockLen, sampleRate, 512, zeroNoise{})

	frame := []partial.Breakpoint{
		{Frequency: 440, Amplitude: 0.25},
		{Frequency: 660, Amplitude: 0.25},
	}
	out := make([]float64, blockLen)
	s.Synth(frame, out) // prime
	s.Synth(frame, out)

	var sumSq float64
	for _, v := range out {
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / blockLen)
	assert.InDelta(t, 0.25, rms, 0.05)
}

func TestBlockSynthSkipsSilentVoices(t *testing.T) {
	const blockLen = 32
	s := NewBlockSynth(1, blockLen, sampleRate, 64, zeroNoise{})
	frame := []partial.Breakpoint{{Frequency: 440, Amplitude: 0}}

	out := make([]float64, blockLen)
	s.Synth(frame, out)
	for _, v := range out {
		assert.Equal(t, 0.0, v)
	}
}

func TestBlockSynthNumVoices(t *testing.T) {
	s := NewBlockSynth(3, 16, sampleRate, 32, zeroNoise{})
	assert.Equal(t, 3, s.NumVoices())
}
