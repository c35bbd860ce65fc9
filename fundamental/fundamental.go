// Package fundamental estimates F0 by maximum likelihood over a set of
// spectral peaks, and exposes a partial-driven estimator that builds a
// LinearEnvelope of F0 over time (spec §4.7).
package fundamental

import (
	"math"

	"github.com/lorisynth/loris/loriserr"
	"gonum.org/v1/gonum/floats"
)

// Peak is one spectral peak (amp_i, freq_i) contributing to the
// likelihood functional.
type Peak struct {
	Amplitude float64
	Frequency float64
}

// DefaultResolution is the default search-grid resolution in Hz.
const DefaultResolution = 0.1

// minCandidates is the minimum number of candidates sampled per
// refinement round (spec §4.7: "at least 8").
const minCandidates = 8

// acceptFraction is the fraction of the round's maximum likelihood a
// candidate must reach to be accepted (spec §4.7: "85%").
const acceptFraction = 0.85

// likelihood evaluates Q(f0) = (1/E) * sum(amp_i^2 * cos(2*pi*freq_i/f0)),
// normalized by the total peak energy E = sum(amp_i^2).
func likelihood(peaks []Peak, f0 float64) float64 {
	amps2 := make([]float64, len(peaks))
	cosTerms := make([]float64, len(peaks))
	for i, pk := range peaks {
		amps2[i] = pk.Amplitude * pk.Amplitude
		cosTerms[i] = math.Cos(2 * math.Pi * pk.Frequency / f0)
	}
	e := floats.Sum(amps2)
	if e == 0 {
		return 0
	}
	return floats.Dot(amps2, cosTerms) / e
}

// Estimate performs the maximum-likelihood F0 search of spec §4.7:
// starting from a uniform grid of at least 8 candidates over
// [fmin,fmax], it locates the highest-frequency candidate whose
// likelihood is within acceptFraction of the round's maximum and is
// locally maximal, narrows the search to that candidate's two
// neighbours, and repeats until the range is below resolution.
// Returns (f0, Q) where Q in [0,1] is the normalized likelihood
// (1 = all peaks are exact harmonics of f0).
func Estimate(peaks []Peak, fmin, fmax, resolution float64) (float64, float64, error) {
	if fmin <= 0 || fmax <= fmin {
		return 0, 0, loriserr.New(loriserr.InvalidArgument, "Estimate", "search range [%g,%g] is empty or non-positive", fmin, fmax)
	}
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if len(peaks) == 0 {
		return 0, 0, loriserr.New(loriserr.InvalidArgument, "Estimate", "no peaks supplied")
	}

	lo, hi := fmin, fmax
	for hi-lo > resolution {
		n := int(math.Ceil((hi - lo) / 2))
		if n < minCandidates {
			n = minCandidates
		}
		candidates := make([]float64, n)
		qs := make([]float64, n)
		step := (hi - lo) / float64(n-1)
		maxQ := math.Inf(-1)
		for i := 0; i < n; i++ {
			f := lo + step*float64(i)
			candidates[i] = f
			qs[i] = likelihood(peaks, f)
			if qs[i] > maxQ {
				maxQ = qs[i]
			}
		}

		best := -1
		for i := n - 1; i >= 0; i-- {
			if qs[i] < acceptFraction*maxQ {
				continue
			}
			localMax := (i == 0 || qs[i] >= qs[i-1]) && (i == n-1 || qs[i] >= qs[i+1])
			if localMax {
				best = i
				break
			}
		}
		if best < 0 {
			return 0, 0, loriserr.New(loriserr.InvalidObject, "Estimate", "no likely F0 in [%g,%g]", fmin, fmax)
		}

		newLo, newHi := candidates[max(best-1, 0)], candidates[min(best+1, n-1)]
		if newHi <= newLo {
			newLo = candidates[best] - resolution
			newHi = candidates[best] + resolution
		}
		lo, hi = newLo, newHi
	}

	f0 := (lo + hi) / 2
	return f0, likelihood(peaks, f0), nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
