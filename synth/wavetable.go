// Package synth implements the block-sequential, bandwidth-enhanced
// oscillator bank synthesizer (spec §4.9-4.11): BlockOscillator (one
// voice), BlockSynth (the bank), and Reader (PartialList to frame
// matrix).
package synth

import "math"

// TableSize is the length of the shared cosine, carrier-amplitude and
// modulation-index wavetables (spec §4.9).
const TableSize = 1024

// cosineTable, carrierTable and modIndexTable are process-wide,
// initialized once and read-only thereafter (spec §5: "Wavetables are
// process-wide"). Each carries one extra trailing sample so that
// rounding a fractional index to the nearest integer never reads past
// the end.
var (
	cosineTable  [TableSize + 1]float64
	carrierTable [TableSize + 1]float64
	modIndexTable [TableSize + 1]float64
)

func init() {
	for i := 0; i <= TableSize; i++ {
		cosineTable[i] = math.Cos(2 * math.Pi * float64(i) / float64(TableSize))
	}
	for i := 0; i <= TableSize; i++ {
		bw := float64(i) / float64(TableSize)
		carrierTable[i] = math.Sqrt(1 - bw)
		modIndexTable[i] = math.Sqrt(2 * bw)
	}
}

// wrapTableIndex keeps a fractional table position in [0, TableSize),
// accommodating the negative frequencies produced by phase correction
// (spec §4.9: "wrap into [0, N) (accommodate negative frequencies)").
func wrapTableIndex(pos float64) float64 {
	switch {
	case pos >= TableSize:
		return pos - TableSize
	case pos < 0:
		return pos + TableSize
	default:
		return pos
	}
}
