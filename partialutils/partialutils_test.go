package partialutils

import (
	"testing"

	"github.com/lorisynth/loris/envelope"
	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func onePartialList(freq, amp float64) *partial.List {
	p := partial.New()
	_ = p.Insert(0, partial.Breakpoint{Frequency: freq, Amplitude: amp})
	_ = p.Insert(1, partial.Breakpoint{Frequency: freq, Amplitude: amp})
	l := partial.NewList()
	l.Append(p)
	return l
}

func TestPitchShiftRoundTripIsIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cents := rapid.Float64Range(-1200, 1200).Draw(rt, "cents")
		freq := rapid.Float64Range(20, 20000).Draw(rt, "freq")

		list := onePartialList(freq, 0.5)
		ShiftPitch(list, envelope.Const(cents))
		ShiftPitch(list, envelope.Const(-cents))

		assert.InDelta(t, freq, list.At(0).At(0).Frequency, freq*1e-9+1e-9)
	})
}

func TestAmplitudeScaleRoundTripIsIdentity(t *testing.T) {
	list := onePartialList(440, 0.3)
	e := envelope.Const(2.0)
	inv := envelope.Const(0.5)
	ScaleAmplitude(list, e)
	ScaleAmplitude(list, inv)
	assert.InDelta(t, 0.3, list.At(0).At(0).Amplitude, 1e-9)
}

func TestTimeShiftRoundTripIsIdentity(t *testing.T) {
	list := onePartialList(440, 0.3)
	ShiftTime(list, 5.0)
	ShiftTime(list, -5.0)
	assert.InDelta(t, 0.0, list.At(0).At(0).Time, 1e-9)
	assert.InDelta(t, 1.0, list.At(0).At(1).Time, 1e-9)
}

func TestCropRemovesOutsideAndInterpolatesBoundary(t *testing.T) {
	p := partial.New()
	_ = p.Insert(0, partial.Breakpoint{Frequency: 100, Amplitude: 0})
	_ = p.Insert(1, partial.Breakpoint{Frequency: 200, Amplitude: 1})
	_ = p.Insert(2, partial.Breakpoint{Frequency: 300, Amplitude: 0})
	list := partial.NewList()
	list.Append(p)

	require.NoError(t, Crop(list, 0.5, 1.5))
	out := list.At(0)
	assert.InDelta(t, 0.5, out.At(0).Time, 1e-9)
	assert.InDelta(t, 1.5, out.At(out.NumBreakpoints()-1).Time, 1e-9)
}

func TestCropRejectsEmptyWindow(t *testing.T) {
	assert.Error(t, Crop(onePartialList(1, 1), 1, 1))
}

func TestScaleNoiseRatioAboveOne(t *testing.T) {
	list := onePartialList(440, 0.5)
	list.At(0).SetAt(0, partial.Breakpoint{Frequency: 440, Amplitude: 0.5, Bandwidth: 0.5})
	ScaleNoiseRatio(list, envelope.Const(3.0))
	assert.Greater(t, list.At(0).At(0).Bandwidth, 0.5)
}

func TestDilateMapsCorrespondence(t *testing.T) {
	p := partial.New()
	_ = p.Insert(0, partial.Breakpoint{Frequency: 100, Amplitude: 1})
	_ = p.Insert(1, partial.Breakpoint{Frequency: 100, Amplitude: 1})
	_ = p.Insert(2, partial.Breakpoint{Frequency: 100, Amplitude: 1})
	list := partial.NewList()
	list.Append(p)

	require.NoError(t, Dilate(list, []float64{0, 1, 2}, []float64{0, 3, 4}))
	out := list.At(0)
	assert.InDelta(t, 0, out.At(0).Time, 1e-9)
	assert.InDelta(t, 3, out.At(1).Time, 1e-9)
	assert.InDelta(t, 4, out.At(2).Time, 1e-9)
}
