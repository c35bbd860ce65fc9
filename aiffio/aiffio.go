// Package aiffio writes synthesized sample buffers to AIFF files,
// passing markers and a MIDI note number through as metadata opaque to
// the synthesis core (spec §3 Marker, §6 Output). It mirrors the
// decode-oriented wav.Decoder wrapper of the teacher's sound package,
// in the opposite (encode) direction and format.
package aiffio

import (
	"io"
	"math"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/lorisynth/loris/loriserr"
)

// BitDepth is the sample bit depth written to every AIFF file this
// package produces.
const BitDepth = 16

// Marker is a (time, name) label carried through from the analysis
// pipeline to the output file, per spec §3.
type Marker struct {
	Time float64
	Name string
}

// Writer wraps a go-audio/aiff.Encoder, converting floating-point
// samples in [-1,1] to the encoder's integer sample format.
type Writer struct {
	enc        *aiff.Encoder
	sampleRate int
}

// NewWriter opens an AIFF encoder on w for one channel at sampleRate.
func NewWriter(w io.WriteSeeker, sampleRate int) *Writer {
	enc := aiff.NewEncoder(w, sampleRate, BitDepth, 1)
	return &Writer{enc: enc, sampleRate: sampleRate}
}

// WriteSamples writes one block of samples, scaling [-1,1] floats to
// the encoder's integer full scale and clipping out-of-range values.
func (w *Writer) WriteSamples(samples []float64) error {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: w.sampleRate},
		Data:   make([]int, len(samples)),
	}
	scale := float64(int(1) << (BitDepth - 1))
	for i, s := range samples {
		v := s * scale
		if v > scale-1 {
			v = scale - 1
		}
		if v < -scale {
			v = -scale
		}
		buf.Data[i] = int(math.Round(v))
	}
	if err := w.enc.Write(buf); err != nil {
		return loriserr.New(loriserr.FileIO, "WriteSamples", "aiff encode: %v", err)
	}
	return nil
}

// WriteMarkers passes markers and an optional MIDI note number (< 0 to
// omit) through to the encoder's metadata, where the AIFF MARK/INST
// chunks carry them opaquely to readers (spec §3: "opaque to the
// synthesis core").
func (w *Writer) WriteMarkers(markers []Marker, midiNoteNumber int) {
	if w.enc.Metadata == nil {
		w.enc.Metadata = &aiff.Metadata{}
	}
	if midiNoteNumber >= 0 {
		w.enc.Metadata.MIDINote = uint8(midiNoteNumber)
	}
	for _, m := range markers {
		w.enc.Metadata.Markers = append(w.enc.Metadata.Markers, aiff.Marker{
			Position: uint32(math.Round(m.Time * float64(w.sampleRate))),
			Name:     m.Name,
		})
	}
}

// Close finalizes the AIFF file.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return loriserr.New(loriserr.FileIO, "Close", "aiff close: %v", err)
	}
	return nil
}
