package channelize

import (
	"testing"

	"github.com/lorisynth/loris/envelope"
	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partialAt(freq float64) *partial.Partial {
	p := partial.New()
	_ = p.Insert(0, partial.Breakpoint{Frequency: freq, Amplitude: 1})
	return p
}

func TestChannelizeScenario6(t *testing.T) {
	list := partial.NewList()
	for _, f := range []float64{100, 200.5, 305, 398} {
		list.Append(partialAt(f))
	}
	ref := envelope.Const(100)
	require.NoError(t, Channelize(list, ref, 1))

	want := []int{1, 2, 3, 4}
	for i, w := range want {
		assert.Equal(t, w, list.At(i).Label())
	}
}

func TestChannelizeIsIdempotent(t *testing.T) {
	list := partial.NewList()
	list.Append(partialAt(305))
	ref := envelope.Const(100)
	require.NoError(t, Channelize(list, ref, 1))
	first := list.At(0).Label()
	require.NoError(t, Channelize(list, ref, 1))
	assert.Equal(t, first, list.At(0).Label())
}

func TestChannelizeRoundsToZeroStaysUnlabeled(t *testing.T) {
	list := partial.NewList()
	list.Append(partialAt(1))
	ref := envelope.Const(100)
	require.NoError(t, Channelize(list, ref, 1))
	assert.Equal(t, 0, list.At(0).Label())
}

func TestChannelizeRejectsZeroChannel(t *testing.T) {
	list := partial.NewList()
	list.Append(partialAt(100))
	err := Channelize(list, envelope.Const(100), 0)
	assert.Error(t, err)
}
