// Package spc reads and writes the SPC partial-track format: identical
// to sdif's 1TRC data for the partial matrix, plus a scalar MIDI note
// number preserved through transforms (spec §6 Input 3).
package spc

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
	"github.com/lorisynth/loris/sdif"
)

// File is an SPC document: an sdif-format partial track plus the MIDI
// note number it was analyzed against.
type File struct {
	MIDINoteNumber int
	Frames         []sdif.Frame
}

// Read decodes an SPC stream: a 4-byte MIDI note number field followed
// by an sdif frame stream.
func Read(r io.Reader) (*File, error) {
	var midiNote int32
	if err := binary.Read(r, binary.BigEndian, &midiNote); err != nil {
		return nil, loriserr.New(loriserr.FileIO, "Read", "reading MIDI note number: %v", err)
	}
	frames, err := sdif.ReadFrames(r)
	if err != nil {
		return nil, err
	}
	return &File{MIDINoteNumber: int(midiNote), Frames: frames}, nil
}

// Write encodes an SPC stream in the layout Read expects.
func Write(w io.Writer, f *File) error {
	if err := binary.Write(w, binary.BigEndian, int32(f.MIDINoteNumber)); err != nil {
		return loriserr.New(loriserr.FileIO, "Write", "writing MIDI note number: %v", err)
	}
	return sdif.WriteFrames(w, f.Frames)
}

// ToPartialList converts the file's frames into a PartialList, identical
// to sdif.ToPartialList; the MIDI note number is not itself partial
// data and must be carried separately by the caller (spec §6: "a
// scalar MIDI NN field preserved through transforms", not folded into
// the partial model).
func (f *File) ToPartialList() *partial.List {
	return sdif.ToPartialList(f.Frames)
}

// NewFile builds an SPC file from a partial list and hop size, reusing
// sdif's 8-column frame encoding (spec §6: "treated identically to
// SDIF for the data").
func NewFile(list *partial.List, hop float64, midiNoteNumber int) (*File, error) {
	var buf bytes.Buffer
	if err := sdif.Write(&buf, list, hop); err != nil {
		return nil, err
	}
	frames, err := sdif.ReadFrames(&buf)
	if err != nil {
		return nil, err
	}
	return &File{MIDINoteNumber: midiNoteNumber, Frames: frames}, nil
}
