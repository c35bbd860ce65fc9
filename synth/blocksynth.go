package synth

import "github.com/lorisynth/loris/partial"

// NoiseSource fills buf with band-limited noise samples (spec §4.12).
// BlockSynth owns one instance per synthesizer so two synthesizers
// never share RNG state (spec §5).
type NoiseSource interface {
	Fill(buf []float64)
}

// BlockSynth is the oscillator bank of spec §4.10: one BlockOscillator
// per partial/voice, sharing a single noise ring buffer that each
// voice reads from a different offset to decorrelate their modulation.
type BlockSynth struct {
	voices    []*BlockOscillator
	noiseRing []float64
}

// NewBlockSynth builds a bank of numVoices oscillators and fills a
// noise ring buffer of noiseRingLen samples from source.
func NewBlockSynth(numVoices, blockLen int, sampleRate float64, noiseRingLen int, source NoiseSource) *BlockSynth {
	voices := make([]*BlockOscillator, numVoices)
	for i := range voices {
		voices[i] = NewBlockOscillator(blockLen, sampleRate)
	}
	ring := make([]float64, noiseRingLen)
	source.Fill(ring)
	return &BlockSynth{voices: voices, noiseRing: ring}
}

// Synth renders one block into out (len(out) >= the synth's
// blockLen), accumulating every voice's contribution. frame holds one
// target Breakpoint per voice; voices whose current and target
// amplitude are both zero are skipped entirely.
func (s *BlockSynth) Synth(frame []partial.Breakpoint, out []float64) {
	for i := range out {
		out[i] = 0
	}

	shift := 1
	if len(s.voices) > 0 {
		shift = len(s.noiseRing) / len(s.voices)
		if shift == 0 {
			shift = 1
		}
	}

	for v, osc := range s.voices {
		target := frame[v]
		if osc.Silent(target) {
			continue
		}
		osc.Render(out, target, s.noiseRing, v*shift)
	}
}

// NumVoices returns the number of oscillators in the bank.
func (s *BlockSynth) NumVoices() int { return len(s.voices) }
