package distill

import (
	"testing"

	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segment(label int, start, end, freq, amp float64) *partial.Partial {
	p := partial.New()
	p.SetLabel(label)
	_ = p.Insert(start, partial.Breakpoint{Frequency: freq, Amplitude: amp})
	_ = p.Insert(end, partial.Breakpoint{Frequency: freq, Amplitude: amp})
	return p
}

func TestDistillMergesSameLabelDisjointSegments(t *testing.T) {
	list := partial.NewList()
	list.Append(segment(1, 0, 0.5, 440, 0.5))
	list.Append(segment(1, 1.0, 1.5, 440, 0.5))

	out, err := Distill(list, DefaultFadeTime, DefaultSilentTime)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 1, out.At(0).Label())
}

func TestDistillPreservesUnlabeledAtEnd(t *testing.T) {
	list := partial.NewList()
	list.Append(segment(0, 0, 0.1, 100, 0.1))
	list.Append(segment(2, 0, 0.5, 220, 0.3))

	out, err := Distill(list, DefaultFadeTime, DefaultSilentTime)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 2, out.At(0).Label())
	assert.Equal(t, 0, out.At(1).Label())
}

func TestDistillRejectsNegativeFadeTime(t *testing.T) {
	list := partial.NewList()
	_, err := Distill(list, -1, 0)
	assert.Error(t, err)
}

func TestDistillEmptyInputProducesEmptyOutput(t *testing.T) {
	out, err := Distill(partial.NewList(), DefaultFadeTime, DefaultSilentTime)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestDistillPrefersLouderOnOverlap(t *testing.T) {
	list := partial.NewList()
	quiet := segment(1, 0, 1.0, 440, 0.1)
	loud := segment(1, 0.4, 0.6, 440, 0.9)
	list.Append(quiet)
	list.Append(loud)

	out, err := Distill(list, DefaultFadeTime, DefaultSilentTime)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.InDelta(t, 0.9, out.At(0).AmplitudeAt(0.5), 1e-9)
}
