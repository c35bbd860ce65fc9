// Package sieve drops low-energy unlabeled partials (spec §4.2 Sieve,
// "complementary, not specified in depth").
package sieve

import (
	"math"

	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// Sieve removes every unlabeled (label == 0) partial in list whose
// peak amplitude falls below thresholdDB (relative to full scale,
// negative values expected, e.g. -60). Labeled partials are always
// kept. Returns loriserr.InvalidArgument if list is nil.
func Sieve(list *partial.List, thresholdDB float64) (*partial.List, error) {
	if list == nil {
		return nil, loriserr.New(loriserr.InvalidArgument, "Sieve", "list must not be nil")
	}
	threshold := math.Pow(10, thresholdDB/20)
	return list.Filter(func(p *partial.Partial) bool {
		if p.Label() != 0 {
			return true
		}
		return peakAmplitude(p) >= threshold
	}), nil
}

func peakAmplitude(p *partial.Partial) float64 {
	peak := 0.0
	for _, tb := range p.Breakpoints() {
		if tb.Amplitude > peak {
			peak = tb.Amplitude
		}
	}
	return peak
}
