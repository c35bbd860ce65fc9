package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestLinearEnvelopeHoldsBeyondExtremes(t *testing.T) {
	e := NewLinearEnvelope()
	e.Insert(1.0, 10.0)
	e.Insert(2.0, 20.0)

	assert.Equal(t, 10.0, e.ValueAt(-5))
	assert.Equal(t, 20.0, e.ValueAt(5))
	assert.Equal(t, 15.0, e.ValueAt(1.5))
}

func TestLinearEnvelopeEmptyIsZero(t *testing.T) {
	e := NewLinearEnvelope()
	assert.Equal(t, 0.0, e.ValueAt(0))
	assert.Equal(t, 0.0, e.ValueAt(100))
}

func TestLinearEnvelopeInsertOutOfOrder(t *testing.T) {
	e := NewLinearEnvelope()
	e.Insert(2.0, 20.0)
	e.Insert(1.0, 10.0)
	e.Insert(0.0, 0.0)
	require := []float64{0, 10, 20}
	for i, want := range require {
		assert.Equal(t, want, e.ValueAt(float64(i)))
	}
}

func TestLinearEnvelopeCloneIsIndependent(t *testing.T) {
	e := NewLinearEnvelope()
	e.Insert(0, 1)
	c := e.Clone().(*LinearEnvelope)
	c.Insert(1, 99)
	assert.Equal(t, 1, e.NumPoints())
	assert.Equal(t, 2, c.NumPoints())
}

func TestLinearEnvelopeMonotoneInterpolation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		t0 := rapid.Float64Range(-1000, 1000).Draw(rt, "t0")
		dt := rapid.Float64Range(0.001, 1000).Draw(rt, "dt")
		v0 := rapid.Float64Range(-1000, 1000).Draw(rt, "v0")
		v1 := rapid.Float64Range(-1000, 1000).Draw(rt, "v1")

		e := NewLinearEnvelope()
		e.Insert(t0, v0)
		e.Insert(t0+dt, v1)

		mid := e.ValueAt(t0 + dt/2)
		lo, hi := v0, v1
		if lo > hi {
			lo, hi = hi, lo
		}
		assert.GreaterOrEqual(rt, mid, lo-1e-9)
		assert.LessOrEqual(rt, mid, hi+1e-9)
	})
}
