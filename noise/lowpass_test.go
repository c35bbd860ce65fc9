package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowpassFilterAttenuatesAboveCutoff(t *testing.T) {
	const sampleRate = 44100.0
	f := NewLowpassFilter(sampleRate)

	rmsAt := func(freq float64) float64 {
		const n = 4410
		var sumSq float64
		for i := 0; i < n; i++ {
			in := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
			out := f.Filter(in)
			if i > n/2 { // discard transient
				sumSq += out * out
			}
		}
		return math.Sqrt(sumSq / float64(n/2))
	}

	lowRMS := rmsAt(50)
	f.Reset()
	highRMS := rmsAt(8000)

	assert.Greater(t, lowRMS, highRMS)
}

func TestLowpassFilterResetClearsState(t *testing.T) {
	f := NewLowpassFilter(44100)
	for i := 0; i < 100; i++ {
		f.Filter(1)
	}
	f.Reset()
	assert.Equal(t, 0.0, f.first.x1)
	assert.Equal(t, 0.0, f.second.y1)
}
