package synth

import (
	"math"

	"github.com/lorisynth/loris/partial"
)

// BlockOscillator is a single voice of the bandwidth-enhanced
// synthesizer bank (spec §4.9). It holds its running state
// (table-index phase, frequency, amplitude, bandwidth) between blocks;
// rendering block n must precede block n+1 since n+1 starts where n
// left off.
type BlockOscillator struct {
	blockLen int
	tableHz  float64 // TableSize / sampleRate

	phase float64 // fractional index into the shared tables, [0, TableSize)
	freq  float64
	amp   float64
	bw    float64
}

// NewBlockOscillator builds an idle oscillator (zero amplitude) for
// the given block length and sample rate.
func NewBlockOscillator(blockLen int, sampleRate float64) *BlockOscillator {
	return &BlockOscillator{
		blockLen: blockLen,
		tableHz:  float64(TableSize) / sampleRate,
	}
}

// Render renders one block from the oscillator's current state to
// target, accumulating into out (len(out) >= blockLen). noiseRing
// supplies the band-limited modulator for bandwidth-enhanced voices;
// noiseOffset lets the caller start each voice at a different point in
// the shared ring to decorrelate them (spec §4.10). If the oscillator
// was silent (zero amplitude) at the start of this block and target
// is not, the phase is reset from target.Phase so that the onset
// preserves the stored phase (spec §4.9).
func (o *BlockOscillator) Render(out []float64, target partial.Breakpoint, noiseRing []float64, noiseOffset int) {
	if o.amp == 0 && target.Amplitude != 0 {
		o.phase = wrapTableIndex(target.Phase / (2 * math.Pi) * TableSize)
	}

	n := o.blockLen
	deltaF := (target.Frequency - o.freq) / float64(n)
	deltaA := (target.Amplitude - o.amp) / float64(n)
	deltaB := (target.Bandwidth - o.bw) / float64(n)

	freq := o.freq + 0.5*deltaF
	amp := o.amp
	bw := o.bw
	phase := o.phase
	ringLen := len(noiseRing)

	for i := 0; i < n; i++ {
		idx := int(phase + 0.5)
		sample := amp * cosineTable[idx]

		if bw > 0 && ringLen > 0 {
			bwIdx := int(bw*TableSize + 0.5)
			carrier := carrierTable[bwIdx]
			modIdx := modIndexTable[bwIdx]
			noiseSample := noiseRing[(noiseOffset+i)%ringLen]
			sample = amp * (carrier + modIdx*noiseSample) * cosineTable[idx]
		}

		out[i] += sample

		phase = wrapTableIndex(phase + freq*o.tableHz)
		freq += deltaF
		amp += deltaA
		bw += deltaB
	}

	o.freq = target.Frequency
	o.amp = target.Amplitude
	o.bw = target.Bandwidth
	o.phase = phase
}

// Silent reports whether the oscillator's current and target
// amplitude are both zero, letting BlockSynth skip rendering it
// entirely (spec §4.10).
func (o *BlockOscillator) Silent(target partial.Breakpoint) bool {
	return o.amp == 0 && target.Amplitude == 0
}
