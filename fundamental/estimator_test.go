package fundamental

import (
	"testing"

	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func harmonicPartial(f0 float64, harmonic int, start, end float64) *partial.Partial {
	p := partial.New()
	_ = p.Insert(start, partial.Breakpoint{Frequency: f0 * float64(harmonic), Amplitude: 1})
	_ = p.Insert(end, partial.Breakpoint{Frequency: f0 * float64(harmonic), Amplitude: 1})
	return p
}

func harmonicList(f0 float64, n int) *partial.List {
	list := partial.NewList()
	for h := 1; h <= n; h++ {
		list.Append(harmonicPartial(f0, h, 0, 1))
	}
	return list
}

func TestNewEstimatorRejectsBadRange(t *testing.T) {
	_, err := NewEstimator(harmonicList(100, 4), 500, 50, 0.1)
	assert.Error(t, err)
}

func TestEstimateAtFindsFundamental(t *testing.T) {
	est, err := NewEstimator(harmonicList(100, 4), 50, 500, 0.1)
	require.NoError(t, err)

	f0, q, err := est.EstimateAt(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 100, f0, 0.1)
	assert.Greater(t, q, 0.99)
}

func TestEstimateAtRejectsSilentTime(t *testing.T) {
	est, err := NewEstimator(harmonicList(100, 4), 50, 500, 0.1)
	require.NoError(t, err)

	_, _, err = est.EstimateAt(10)
	assert.Error(t, err)
}

func TestConstructEnvelopeBuildsSamples(t *testing.T) {
	est, err := NewEstimator(harmonicList(100, 4), 50, 500, 0.1)
	require.NoError(t, err)

	env, err := est.ConstructEnvelope(0, 1, 0.25)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, env.NumPoints(), 1)
	assert.InDelta(t, 100, env.ValueAt(0.5), 0.5)
}

func TestConstructEnvelopeRejectsEmptyRange(t *testing.T) {
	est, err := NewEstimator(harmonicList(100, 4), 50, 500, 0.1)
	require.NoError(t, err)

	_, err = est.ConstructEnvelope(10, 11, 0.25)
	assert.Error(t, err)
}
