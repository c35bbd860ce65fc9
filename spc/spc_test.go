package spc

import (
	"bytes"
	"testing"

	"github.com/lorisynth/loris/partial"
	"github.com/lorisynth/loris/sdif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadRoundTripsMidiNoteAndFrames(t *testing.T) {
	f := &File{
		MIDINoteNumber: 69,
		Frames: []sdif.Frame{
			{Time: 0, Rows: []sdif.Row{{Index: 0, Frequency: 440, Amplitude: 0.5, Label: 1}}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 69, got.MIDINoteNumber)
	require.Len(t, got.Frames, 1)
	assert.InDelta(t, 440.0, got.Frames[0].Rows[0].Frequency, 1e-9)
}

func TestToPartialListDelegatesToSdif(t *testing.T) {
	f := &File{
		MIDINoteNumber: 60,
		Frames: []sdif.Frame{
			{Time: 0, Rows: []sdif.Row{{Index: 0, Frequency: 220, Amplitude: 0.3, Label: 1}}},
		},
	}
	list := f.ToPartialList()
	require.Equal(t, 1, list.Len())
	assert.Equal(t, 1, list.At(0).Label())
}

func TestNewFileBuildsReadableFile(t *testing.T) {
	list := partial.NewList()
	p := partial.New()
	p.SetLabel(1)
	_ = p.Insert(0.0, partial.Breakpoint{Frequency: 440, Amplitude: 0.5})
	_ = p.Insert(0.1, partial.Breakpoint{Frequency: 440, Amplitude: 0.4})
	list.Append(p)

	f, err := NewFile(list, 0.001, 69)
	require.NoError(t, err)
	assert.Equal(t, 69, f.MIDINoteNumber)
	assert.NotEmpty(t, f.Frames)
}

func TestReadRejectsTruncatedHeader(t *testing.T) {
	buf := bytes.NewBufferString("ab")
	_, err := Read(buf)
	assert.Error(t, err)
}
