package aiffio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSeeker is a minimal in-memory io.WriteSeeker for testing the
// encoder without touching the filesystem.
type memSeeker struct {
	buf []byte
	pos int
}

func (m *memSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case 0:
		base = 0
	case 1:
		base = m.pos
	case 2:
		base = len(m.buf)
	default:
		return 0, errors.New("invalid whence")
	}
	newPos := base + int(offset)
	if newPos < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = newPos
	return int64(newPos), nil
}

func TestWriterWritesAndClosesWithoutError(t *testing.T) {
	seeker := &memSeeker{}
	w := NewWriter(seeker, 44100)

	samples := make([]float64, 128)
	for i := range samples {
		samples[i] = 0.5
	}
	require.NoError(t, w.WriteSamples(samples))
	w.WriteMarkers([]Marker{{Time: 0.5, Name: "onset"}}, 69)
	require.NoError(t, w.Close())

	assert.Greater(t, len(seeker.buf), 0)
	assert.True(t, bytes.HasPrefix(seeker.buf, []byte("FORM")))
}

func TestWriteSamplesAcceptsOutOfRangeValues(t *testing.T) {
	seeker := &memSeeker{}
	w := NewWriter(seeker, 44100)
	require.NoError(t, w.WriteSamples([]float64{2.0, -2.0}))
	require.NoError(t, w.Close())
}
