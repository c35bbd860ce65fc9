package synth

import (
	"testing"

	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReaderBuildsFrameMatrix(t *testing.T) {
	p := partial.New()
	_ = p.Insert(0, partial.Breakpoint{Frequency: 440, Amplitude: 0.5})
	_ = p.Insert(0.1, partial.Breakpoint{Frequency: 440, Amplitude: 0.5})
	list := partial.NewList()
	list.Append(p)

	const blockLen = 128
	r, err := NewReader(list, blockLen, sampleRate)
	require.NoError(t, err)
	assert.Greater(t, r.NumFrames(), 0)

	frame, err := r.GetFrame(0)
	require.NoError(t, err)
	assert.Len(t, frame, 1)
}

func TestGetFrameRejectsOutOfRange(t *testing.T) {
	list := partial.NewList()
	r, err := NewReader(list, 128, sampleRate)
	require.NoError(t, err)
	_, err = r.GetFrame(-1)
	assert.Error(t, err)
}

func TestGetFrameAtTimeClampsToRange(t *testing.T) {
	p := partial.New()
	_ = p.Insert(0, partial.Breakpoint{Frequency: 440, Amplitude: 0.5})
	_ = p.Insert(0.1, partial.Breakpoint{Frequency: 440, Amplitude: 0.5})
	list := partial.NewList()
	list.Append(p)

	r, err := NewReader(list, 128, sampleRate)
	require.NoError(t, err)
	frame := r.GetFrameAtTime(1e6)
	assert.Len(t, frame, 1)
}
