package sieve

import (
	"testing"

	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePartial(label int, amp float64) *partial.Partial {
	p := partial.New()
	p.SetLabel(label)
	_ = p.Insert(0, partial.Breakpoint{Frequency: 100, Amplitude: amp})
	return p
}

func TestSieveDropsQuietUnlabeled(t *testing.T) {
	list := partial.NewList()
	list.Append(makePartial(0, 0.0001))
	list.Append(makePartial(0, 0.5))
	list.Append(makePartial(1, 0.0001))

	out, err := Sieve(list, -60)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 0.5, out.At(0).Breakpoints()[0].Amplitude)
	assert.Equal(t, 1, out.At(1).Label())
}
