// Package sdif reads and writes the SDIF 1TRC partial-track format
// (spec §6 Input 2). The reference Loris implementation delegates the
// actual byte-level SDIF parsing to an external C library
// (original_source/Loris/src/ImportSdif.C includes <sdif.h>, not part
// of this tree); no such library exists in the Go ecosystem corpus
// available here, so this package implements the row/column/frame
// semantics of 1TRC directly with encoding/binary rather than
// reproducing the full generic-SDIF chunk format byte-for-byte.
package sdif

import (
	"encoding/binary"
	"io"
	"math"
	"sort"

	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// Signature is the SDIF frame signature Loris writes and expects on
// read ('1TRC', partial tracks).
const Signature = "1TRC"

// Row is one matrix row of a 1TRC frame: (index, frequency, phase,
// amplitude, bandwidth, label), extended in 8-column mode with
// (timeOffset, discardable) (spec §6).
type Row struct {
	Index       int
	Frequency   float64
	Phase       float64
	Amplitude   float64
	Bandwidth   float64
	Label       int
	TimeOffset  float64
	Discardable bool
	EightColumn bool
}

// Frame is one 1TRC frame: a time, a stream id, and its matrix rows.
type Frame struct {
	Time     float64
	StreamID int
	Rows     []Row
}

// ReadFrames decodes a stream of Frames written by WriteFrames.
// Returns loriserr.FileIO on a malformed or truncated stream.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var sig [4]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, loriserr.New(loriserr.FileIO, "ReadFrames", "reading signature: %v", err)
	}
	if string(sig[:]) != Signature {
		return nil, loriserr.New(loriserr.FileIO, "ReadFrames", "unexpected signature %q", sig)
	}

	var numFrames uint32
	if err := binary.Read(r, binary.BigEndian, &numFrames); err != nil {
		return nil, loriserr.New(loriserr.FileIO, "ReadFrames", "reading frame count: %v", err)
	}

	frames := make([]Frame, numFrames)
	for i := range frames {
		f, err := readFrame(r)
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}
	return frames, nil
}

func readFrame(r io.Reader) (Frame, error) {
	var header struct {
		Time     float64
		StreamID int32
		NumRows  int32
		EightCol uint8
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return Frame{}, loriserr.New(loriserr.FileIO, "readFrame", "reading frame header: %v", err)
	}

	eightColumn := header.EightCol != 0
	rows := make([]Row, 0, header.NumRows)
	for i := int32(0); i < header.NumRows; i++ {
		row, err := readRow(r, eightColumn)
		if err != nil {
			return Frame{}, err
		}
		if row.Discardable {
			continue
		}
		rows = append(rows, row)
	}
	return Frame{Time: header.Time, StreamID: int(header.StreamID), Rows: rows}, nil
}

func readRow(r io.Reader, eightColumn bool) (Row, error) {
	var fixed struct {
		Index     int32
		Frequency float64
		Phase     float64
		Amplitude float64
		Bandwidth float64
		Label     int32
	}
	if err := binary.Read(r, binary.BigEndian, &fixed); err != nil {
		return Row{}, loriserr.New(loriserr.FileIO, "readRow", "reading row: %v", err)
	}
	row := Row{
		Index:       int(fixed.Index),
		Frequency:   fixed.Frequency,
		Phase:       fixed.Phase,
		Amplitude:   fixed.Amplitude,
		Bandwidth:   fixed.Bandwidth,
		Label:       int(fixed.Label),
		EightColumn: eightColumn,
	}
	if eightColumn {
		var ext struct {
			TimeOffset  float64
			Discardable uint8
		}
		if err := binary.Read(r, binary.BigEndian, &ext); err != nil {
			return Row{}, loriserr.New(loriserr.FileIO, "readRow", "reading extended row: %v", err)
		}
		row.TimeOffset = ext.TimeOffset
		row.Discardable = ext.Discardable != 0
	}
	return row, nil
}

// ToPartialList converts decoded frames into a PartialList, indexed by
// each row's Index, with Label written through and TimeOffset applied
// to locate the breakpoint's exact time.
func ToPartialList(frames []Frame) *partial.List {
	byIndex := make(map[int]*partial.Partial)
	var order []int

	for _, f := range frames {
		for _, row := range f.Rows {
			p, ok := byIndex[row.Index]
			if !ok {
				p = partial.New()
				byIndex[row.Index] = p
				order = append(order, row.Index)
			}
			if row.Label != 0 {
				p.SetLabel(row.Label)
			}
			t := f.Time + row.TimeOffset
			_ = p.Insert(t, partial.Breakpoint{
				Frequency: row.Frequency,
				Amplitude: row.Amplitude,
				Bandwidth: row.Bandwidth,
				Phase:     row.Phase,
			})
		}
	}

	sort.Ints(order)
	list := partial.NewList()
	for _, idx := range order {
		list.Append(byIndex[idx])
	}
	return list
}

// WriteFrames encodes frames in the layout ReadFrames expects.
func WriteFrames(w io.Writer, frames []Frame) error {
	if _, err := w.Write([]byte(Signature)); err != nil {
		return loriserr.New(loriserr.FileIO, "WriteFrames", "writing signature: %v", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(frames))); err != nil {
		return loriserr.New(loriserr.FileIO, "WriteFrames", "writing frame count: %v", err)
	}
	for _, f := range frames {
		if err := writeFrame(w, f); err != nil {
			return err
		}
	}
	return nil
}

func writeFrame(w io.Writer, f Frame) error {
	eightColumn := uint8(0)
	if len(f.Rows) > 0 && f.Rows[0].EightColumn {
		eightColumn = 1
	}
	header := struct {
		Time     float64
		StreamID int32
		NumRows  int32
		EightCol uint8
	}{f.Time, int32(f.StreamID), int32(len(f.Rows)), eightColumn}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return loriserr.New(loriserr.FileIO, "writeFrame", "writing frame header: %v", err)
	}
	for _, row := range f.Rows {
		if err := writeRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, row Row) error {
	fixed := struct {
		Index     int32
		Frequency float64
		Phase     float64
		Amplitude float64
		Bandwidth float64
		Label     int32
	}{int32(row.Index), row.Frequency, row.Phase, row.Amplitude, row.Bandwidth, int32(row.Label)}
	if err := binary.Write(w, binary.BigEndian, fixed); err != nil {
		return loriserr.New(loriserr.FileIO, "writeRow", "writing row: %v", err)
	}
	if row.EightColumn {
		discardable := uint8(0)
		if row.Discardable {
			discardable = 1
		}
		ext := struct {
			TimeOffset  float64
			Discardable uint8
		}{row.TimeOffset, discardable}
		if err := binary.Write(w, binary.BigEndian, ext); err != nil {
			return loriserr.New(loriserr.FileIO, "writeRow", "writing extended row: %v", err)
		}
	}
	return nil
}

// WriteHop writes 6-column frames at regular intervals of hop seconds
// spanning the list's overall time range (spec §6: "If a resampling
// hop is set... 6-column frames are emitted at regular hop
// intervals").
func WriteHop(w io.Writer, list *partial.List, hop float64) error {
	if hop <= 0 {
		return loriserr.New(loriserr.InvalidArgument, "WriteHop", "hop must be positive")
	}
	start, end := listTimeRange(list)
	var frames []Frame
	for t := start; t <= end; t += hop {
		var rows []Row
		for idx, p := range list.All() {
			if t < p.StartTime() || t > p.EndTime() {
				continue
			}
			bp := p.ParametersAt(t)
			if bp.Amplitude == 0 {
				continue
			}
			rows = append(rows, Row{
				Index: idx, Frequency: bp.Frequency, Phase: bp.Phase,
				Amplitude: bp.Amplitude, Bandwidth: bp.Bandwidth, Label: p.Label(),
			})
		}
		if len(rows) > 0 {
			frames = append(frames, Frame{Time: t, Rows: rows})
		}
	}
	return WriteFrames(w, frames)
}

// millisecondResolution and tenthMillisecondResolution are the two
// candidate frame-time roundings tried by Write, in that order (spec
// §6: "rounded-to-millisecond (or tenth-millisecond when needed for
// uniqueness)").
const (
	millisecondResolution      = 0.001
	tenthMillisecondResolution = 0.0001
)

// Write emits 8-column frames, one per distinct breakpoint time in
// list rounded to millisecond resolution (or tenth-millisecond if
// rounding collapses two distinct times together), each carrying
// every partial active within +-hop of the frame time (spec §6).
func Write(w io.Writer, list *partial.List, hop float64) error {
	if hop < 0 {
		return loriserr.New(loriserr.InvalidArgument, "Write", "hop must be non-negative")
	}
	resolution := millisecondResolution
	times := distinctRoundedTimes(list, resolution)
	if hasCollision(list, resolution) {
		resolution = tenthMillisecondResolution
		times = distinctRoundedTimes(list, resolution)
	}

	var frames []Frame
	for _, t := range times {
		var rows []Row
		for idx, p := range list.All() {
			if t < p.StartTime()-hop || t > p.EndTime()+hop {
				continue
			}
			bp := p.ParametersAt(t)
			rows = append(rows, Row{
				Index: idx, Frequency: bp.Frequency, Phase: bp.Phase,
				Amplitude: bp.Amplitude, Bandwidth: bp.Bandwidth, Label: p.Label(),
				TimeOffset: 0, EightColumn: true,
			})
		}
		if len(rows) > 0 {
			frames = append(frames, Frame{Time: t, Rows: rows})
		}
	}
	return WriteFrames(w, frames)
}

func listTimeRange(list *partial.List) (start, end float64) {
	first := true
	for _, p := range list.All() {
		if p.IsDummy() {
			continue
		}
		if first || p.StartTime() < start {
			start = p.StartTime()
		}
		if first || p.EndTime() > end {
			end = p.EndTime()
		}
		first = false
	}
	return start, end
}

func distinctRoundedTimes(list *partial.List, resolution float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, p := range list.All() {
		for _, tb := range p.Breakpoints() {
			rt := math.Round(tb.Time/resolution) * resolution
			if !seen[rt] {
				seen[rt] = true
				out = append(out, rt)
			}
		}
	}
	sort.Float64s(out)
	return out
}

func hasCollision(list *partial.List, resolution float64) bool {
	var rawCount, roundedCount int
	seenRaw := make(map[float64]bool)
	seenRounded := make(map[float64]bool)
	for _, p := range list.All() {
		for _, tb := range p.Breakpoints() {
			if !seenRaw[tb.Time] {
				seenRaw[tb.Time] = true
				rawCount++
			}
			rt := math.Round(tb.Time/resolution) * resolution
			if !seenRounded[rt] {
				seenRounded[rt] = true
				roundedCount++
			}
		}
	}
	return roundedCount < rawCount
}
