// Package channelize assigns harmonic-number labels to partials
// relative to a reference frequency envelope (spec §4.1).
package channelize

import (
	"math"

	"github.com/lorisynth/loris/envelope"
	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// Channelize tags each partial in list with label = round(n *
// f(t*)/ref(t*)), where t* is the time of the partial's peak
// amplitude breakpoint. Partials whose computed label rounds to 0
// retain label 0. Running Channelize twice with the same ref and n
// reproduces the same labels (idempotent), since t* and the formula
// are both deterministic functions of the partial's own breakpoints.
func Channelize(list *partial.List, ref envelope.Envelope, n int) error {
	if n == 0 {
		return loriserr.New(loriserr.InvalidArgument, "Channelize", "channel number must be non-zero")
	}
	for _, p := range list.All() {
		if p.IsDummy() {
			continue
		}
		tStar := peakAmplitudeTime(p)
		refFreq := ref.ValueAt(tStar)
		if refFreq <= 0 {
			return loriserr.New(loriserr.InvalidArgument, "Channelize", "reference frequency at %g is non-positive", tStar)
		}
		freq := p.FrequencyAt(tStar)
		label := int(math.Round(float64(n) * freq / refFreq))
		p.SetLabel(label)
	}
	return nil
}

// peakAmplitudeTime returns the time of the breakpoint with the
// greatest amplitude, breaking ties toward the earliest occurrence.
func peakAmplitudeTime(p *partial.Partial) float64 {
	bps := p.Breakpoints()
	best := 0
	for i := 1; i < len(bps); i++ {
		if bps[i].Amplitude > bps[best].Amplitude {
			best = i
		}
	}
	return bps[best].Time
}
