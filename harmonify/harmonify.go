// Package harmonify pulls quiet breakpoints of labeled partials toward
// the harmonic series implied by a reference (fundamental) partial
// (spec §4.6).
package harmonify

import (
	"math"

	"github.com/lorisynth/loris/envelope"
	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// FadeRangeDB is the width, above thresholdDB, over which the blend
// factor ramps linearly from 0 to 1 (spec §4.6: "10 dB above the
// threshold").
const FadeRangeDB = 10

// Harmonify pulls each labeled partial p (label h) in list toward
// (h/refLabel)*ref's frequency, at breakpoints whose amplitude is
// within FadeRangeDB of thresholdDB or below it. The blend weight
// rises linearly from 0 at the top of the fade range to 1 at or below
// the threshold, further scaled by weight (default constant 1).
// refLabel is usually 1 (ref is the fundamental). Returns
// loriserr.InvalidArgument if ref has no breakpoints.
func Harmonify(list *partial.List, ref *partial.Partial, refLabel int, thresholdDB float64, weight envelope.Envelope) error {
	if ref.IsDummy() {
		return loriserr.New(loriserr.InvalidArgument, "Harmonify", "reference partial has no breakpoints")
	}
	if weight == nil {
		weight = envelope.Const(1)
	}
	fadeTop := thresholdDB + FadeRangeDB

	for _, p := range list.All() {
		h := p.Label()
		if h == 0 {
			continue
		}
		ratio := float64(h) / float64(refLabel)
		for i := 0; i < p.NumBreakpoints(); i++ {
			tb := p.At(i)
			alpha := blendFactor(tb.Amplitude, thresholdDB, fadeTop)
			alpha *= weight.ValueAt(tb.Time)
			if alpha <= 0 {
				continue
			}
			harmonicFreq := ratio * ref.FrequencyAt(tb.Time)
			bp := tb.Breakpoint
			bp.Frequency = (1-alpha)*bp.Frequency + alpha*harmonicFreq
			p.SetAt(i, bp)
		}
	}
	return nil
}

func blendFactor(amplitude, thresholdDB, fadeTop float64) float64 {
	if amplitude <= 0 {
		return 1
	}
	ampDB := 20 * math.Log10(amplitude)
	switch {
	case ampDB <= thresholdDB:
		return 1
	case ampDB >= fadeTop:
		return 0
	default:
		return (fadeTop - ampDB) / FadeRangeDB
	}
}
