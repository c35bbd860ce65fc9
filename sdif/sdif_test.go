package sdif

import (
	"bytes"
	"testing"

	"github.com/lorisynth/loris/partial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePartialList() *partial.List {
	list := partial.NewList()
	for label := 1; label <= 3; label++ {
		p := partial.New()
		p.SetLabel(label)
		freq := 100.0 * float64(label)
		_ = p.Insert(0.0, partial.Breakpoint{Frequency: freq, Amplitude: 0.5, Bandwidth: 0.01})
		_ = p.Insert(0.5, partial.Breakpoint{Frequency: freq, Amplitude: 0.4, Bandwidth: 0.01})
		list.Append(p)
	}
	return list
}

func TestWriteFramesAndReadFramesRoundTrip(t *testing.T) {
	frames := []Frame{
		{Time: 0.0, Rows: []Row{
			{Index: 0, Frequency: 100, Phase: 0, Amplitude: 0.5, Bandwidth: 0.1, Label: 1},
			{Index: 1, Frequency: 200, Phase: 1.2, Amplitude: 0.3, Bandwidth: 0.05, Label: 2},
		}},
		{Time: 0.01, Rows: []Row{
			{Index: 0, Frequency: 101, Phase: 0.4, Amplitude: 0.55, Bandwidth: 0.1, Label: 1},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFrames(&buf, frames))

	got, err := ReadFrames(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, len(got[0].Rows))
	assert.Equal(t, 1, len(got[1].Rows))
	assert.InDelta(t, 101.0, got[1].Rows[0].Frequency, 1e-9)
}

func TestReadFramesRejectsBadSignature(t *testing.T) {
	buf := bytes.NewBufferString("XXXX")
	_, err := ReadFrames(buf)
	assert.Error(t, err)
}

func TestReadFramesEmptyStreamReturnsNoFrames(t *testing.T) {
	buf := &bytes.Buffer{}
	frames, err := ReadFrames(buf)
	require.NoError(t, err)
	assert.Nil(t, frames)
}

func TestDiscardableRowsAreSkippedOnRead(t *testing.T) {
	frames := []Frame{
		{Time: 0.0, Rows: []Row{
			{Index: 0, Frequency: 100, Amplitude: 0.5, EightColumn: true, Discardable: false},
			{Index: 1, Frequency: 200, Amplitude: 0.5, EightColumn: true, Discardable: true},
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteFrames(&buf, frames))

	got, err := ReadFrames(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Rows, 1)
	assert.Equal(t, 0, got[0].Rows[0].Index)
}

func TestToPartialListBuildsOrderedPartialsByIndex(t *testing.T) {
	frames := []Frame{
		{Time: 0.0, Rows: []Row{
			{Index: 0, Frequency: 100, Amplitude: 0.5, Label: 1},
			{Index: 1, Frequency: 200, Amplitude: 0.5, Label: 2},
		}},
		{Time: 0.1, Rows: []Row{
			{Index: 0, Frequency: 100, Amplitude: 0.4, Label: 1},
			{Index: 1, Frequency: 200, Amplitude: 0.0, Label: 2},
		}},
	}
	list := ToPartialList(frames)
	require.Equal(t, 2, list.Len())
	assert.Equal(t, 1, list.At(0).Label())
	assert.Equal(t, 2, list.At(1).Label())
	assert.Equal(t, 2, list.At(0).NumBreakpoints())
}

func TestWriteHopRejectsNonPositiveHop(t *testing.T) {
	list := threePartialList()
	var buf bytes.Buffer
	err := WriteHop(&buf, list, 0)
	assert.Error(t, err)
}

func TestWriteHopProducesRegularlySpacedFrames(t *testing.T) {
	list := threePartialList()
	var buf bytes.Buffer
	require.NoError(t, WriteHop(&buf, list, 0.1))

	frames, err := ReadFrames(&buf)
	require.NoError(t, err)
	assert.Greater(t, len(frames), 1)
	for i := 1; i < len(frames); i++ {
		assert.InDelta(t, 0.1, frames[i].Time-frames[i-1].Time, 1e-9)
	}
}

func TestWriteProducesEightColumnFrames(t *testing.T) {
	list := threePartialList()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, list, 0.001))

	frames, err := ReadFrames(&buf)
	require.NoError(t, err)
	require.NotEmpty(t, frames)
	for _, row := range frames[0].Rows {
		assert.True(t, row.EightColumn)
	}
}

func TestWriteRejectsNegativeHop(t *testing.T) {
	list := threePartialList()
	var buf bytes.Buffer
	err := Write(&buf, list, -1)
	assert.Error(t, err)
}
