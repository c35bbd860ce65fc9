package synth

import (
	"math"

	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
	"github.com/lorisynth/loris/resample"
)

// Reader converts a PartialList into a dense time x voice matrix of
// target Breakpoints, one row per synthesis block (spec §4.11
// BlockSynthReader).
type Reader struct {
	frames   [][]partial.Breakpoint
	interval float64
}

// NewReader resamples every partial in list to the block interval
// blockLen/sampleRate in dense, phase-corrected mode, pads each with
// one block of fade-in/fade-out, and lays the results out into a
// frames[block][voice] matrix. Voices with no breakpoint at a given
// frame hold a zero Breakpoint.
func NewReader(list *partial.List, blockLen int, sampleRate float64) (*Reader, error) {
	interval := float64(blockLen) / sampleRate
	voices := list.All()

	resampled := make([]*partial.Partial, len(voices))
	for i, p := range voices {
		c, err := resample.Resample(p, interval, resample.Dense, true)
		if err != nil {
			return nil, err
		}
		c.FadeIn(interval)
		c.FadeOut(interval)
		resampled[i] = c
	}

	var maxEnd float64
	for _, p := range resampled {
		if !p.IsDummy() && p.EndTime() > maxEnd {
			maxEnd = p.EndTime()
		}
	}
	numFrames := int(math.Round(maxEnd/interval)) + 1

	frames := make([][]partial.Breakpoint, numFrames)
	for i := range frames {
		frames[i] = make([]partial.Breakpoint, len(voices))
	}

	for v, p := range resampled {
		for i := 0; i < p.NumBreakpoints(); i++ {
			tb := p.At(i)
			blockIdx := int(math.Round(tb.Time / interval))
			if blockIdx >= 0 && blockIdx < numFrames {
				frames[blockIdx][v] = tb.Breakpoint
			}
		}
	}

	return &Reader{frames: frames, interval: interval}, nil
}

// NumFrames returns the number of synthesis blocks spanned by the
// reader's partials.
func (r *Reader) NumFrames() int { return len(r.frames) }

// GetFrame returns the target Breakpoint row for block n. Returns
// loriserr.InvalidArgument if n is out of range.
func (r *Reader) GetFrame(n int) ([]partial.Breakpoint, error) {
	if n < 0 || n >= len(r.frames) {
		return nil, loriserr.New(loriserr.InvalidArgument, "GetFrame", "block %d out of range [0,%d)", n, len(r.frames))
	}
	return r.frames[n], nil
}

// GetFrameAtTime returns the frame nearest time t, clamped to the
// valid block range.
func (r *Reader) GetFrameAtTime(t float64) []partial.Breakpoint {
	n := int(math.Round(t / r.interval))
	if n < 0 {
		n = 0
	}
	if n >= len(r.frames) {
		n = len(r.frames) - 1
	}
	return r.frames[n]
}
