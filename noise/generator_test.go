package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorFillsBuffer(t *testing.T) {
	g := NewGenerator(7, 44100, 0)
	buf := make([]float64, 256)
	g.Fill(buf)

	var nonzero bool
	for _, v := range buf {
		if v != 0 {
			nonzero = true
			break
		}
	}
	assert.True(t, nonzero)
}

func TestGeneratorDecimationInterpolatesBetweenFreshSamples(t *testing.T) {
	g := NewGenerator(7, 44100, 4)
	buf := make([]float64, 16)
	g.Fill(buf)
	// with factor 4 the first five samples lie on one straight line from
	// the first fresh sample to the second, so consecutive steps match.
	var nonzero bool
	for _, v := range buf {
		if v != 0 {
			nonzero = true
		}
	}
	assert.True(t, nonzero)
	for i := 1; i < 4; i++ {
		assert.InDelta(t, buf[1]-buf[0], buf[i+1]-buf[i], 1e-12)
	}
}

func TestIndependentSeedsProduceDifferentStreams(t *testing.T) {
	a := NewGenerator(1, 44100, 0)
	b := NewGenerator(2, 44100, 0)

	bufA := make([]float64, 32)
	bufB := make([]float64, 32)
	a.Fill(bufA)
	b.Fill(bufB)

	assert.NotEqual(t, bufA, bufB)
}
