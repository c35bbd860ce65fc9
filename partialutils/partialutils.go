// Package partialutils implements the per-breakpoint scalar
// transforms of spec §4.8: amplitude/frequency/bandwidth/pitch
// scaling, noise-ratio scaling, time shifting, cropping, and dilation.
// Each transform preserves the strictly-increasing time invariant of
// the partials it edits.
package partialutils

import (
	"math"
	"sort"

	"github.com/lorisynth/loris/envelope"
	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// scaleEach applies fn(breakpoint, envelope-value-at-breakpoint-time)
// to every breakpoint of every partial in list, in place.
func scaleEach(list *partial.List, env envelope.Envelope, fn func(bp *partial.Breakpoint, factor float64)) {
	for _, p := range list.All() {
		for i := 0; i < p.NumBreakpoints(); i++ {
			tb := p.At(i)
			factor := env.ValueAt(tb.Time)
			bp := tb.Breakpoint
			fn(&bp, factor)
			p.SetAt(i, bp)
		}
	}
}

// ScaleAmplitude multiplies every breakpoint's amplitude by env
// evaluated at the breakpoint's time, clamped to stay non-negative.
func ScaleAmplitude(list *partial.List, env envelope.Envelope) {
	scaleEach(list, env, func(bp *partial.Breakpoint, factor float64) {
		bp.Amplitude *= factor
		if bp.Amplitude < 0 {
			bp.Amplitude = 0
		}
	})
}

// ScaleFrequency multiplies every breakpoint's frequency by env
// evaluated at the breakpoint's time, clamped to stay non-negative.
func ScaleFrequency(list *partial.List, env envelope.Envelope) {
	scaleEach(list, env, func(bp *partial.Breakpoint, factor float64) {
		bp.Frequency *= factor
		if bp.Frequency < 0 {
			bp.Frequency = 0
		}
	})
}

// ScaleBandwidth multiplies every breakpoint's bandwidth by env
// evaluated at the breakpoint's time, clamped to [0,1].
func ScaleBandwidth(list *partial.List, env envelope.Envelope) {
	scaleEach(list, env, func(bp *partial.Breakpoint, factor float64) {
		bp.Bandwidth = clamp01(bp.Bandwidth * factor)
	})
}

// ScaleNoiseRatio scales the noise:sinusoid energy ratio bw/(1-bw) by
// env evaluated at each breakpoint's time, so factors greater than one
// are meaningful (spec §4.8: "values > 1 are possible").
func ScaleNoiseRatio(list *partial.List, env envelope.Envelope) {
	scaleEach(list, env, func(bp *partial.Breakpoint, factor float64) {
		bp.Bandwidth = scaleRatio(bp.Bandwidth, factor)
	})
}

func scaleRatio(bw, factor float64) float64 {
	if bw >= 1 {
		if factor <= 0 {
			return 0
		}
		return 1
	}
	ratio := bw / (1 - bw)
	ratio *= factor
	if ratio < 0 {
		ratio = 0
	}
	return ratio / (1 + ratio)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// ShiftPitch multiplies every breakpoint's frequency by
// 2^(cents(t)/1200), where cents is an envelope in cents.
func ShiftPitch(list *partial.List, cents envelope.Envelope) {
	for _, p := range list.All() {
		for i := 0; i < p.NumBreakpoints(); i++ {
			tb := p.At(i)
			c := cents.ValueAt(tb.Time)
			bp := tb.Breakpoint
			bp.Frequency *= centsToRatio(c)
			p.SetAt(i, bp)
		}
	}
}

func centsToRatio(cents float64) float64 {
	return math.Exp2(cents / 1200)
}

// ShiftTime adds a constant offset to every breakpoint's time in every
// partial of list.
func ShiftTime(list *partial.List, dt float64) {
	for _, p := range list.All() {
		rewriteTimes(p, func(t float64) float64 { return t + dt })
	}
}

// Crop removes breakpoints outside [start,end] from every partial in
// list, inserting an interpolated boundary breakpoint at start and/or
// end where the window truncates the partial's span. Returns
// loriserr.InvalidArgument if start >= end.
func Crop(list *partial.List, start, end float64) error {
	if start >= end {
		return loriserr.New(loriserr.InvalidArgument, "Crop", "start must be before end")
	}
	for _, p := range list.All() {
		cropOne(p, start, end)
	}
	return nil
}

func cropOne(p *partial.Partial, start, end float64) {
	if p.IsDummy() {
		return
	}
	if end <= p.StartTime() || start >= p.EndTime() {
		p.Clear()
		return
	}

	var startBp, endBp *partial.Breakpoint
	if start > p.StartTime() {
		bp := p.ParametersAt(start)
		startBp = &bp
	}
	if end < p.EndTime() {
		bp := p.ParametersAt(end)
		endBp = &bp
	}

	var kept []partial.TimedBreakpoint
	for _, tb := range p.Breakpoints() {
		if tb.Time >= start && tb.Time <= end {
			kept = append(kept, tb)
		}
	}
	p.Clear()
	if startBp != nil {
		_ = p.Insert(start, *startBp)
	}
	for _, tb := range kept {
		_ = p.Insert(tb.Time, tb.Breakpoint)
	}
	if endBp != nil {
		_ = p.Insert(end, *endBp)
	}
}

// Dilate warps every partial's breakpoint times by the piecewise-
// linear map defined by correspondence between srcTimes and
// tgtTimes (spec §4.8). Outside the outermost correspondence, the
// warp extrapolates with the slope of the nearest segment. Returns
// loriserr.InvalidArgument if the two time vectors differ in length or
// have fewer than two points.
func Dilate(list *partial.List, srcTimes, tgtTimes []float64) error {
	if len(srcTimes) != len(tgtTimes) || len(srcTimes) < 2 {
		return loriserr.New(loriserr.InvalidArgument, "Dilate", "src/tgt time correspondence must have matching length >= 2")
	}
	for i := 1; i < len(srcTimes); i++ {
		if srcTimes[i] <= srcTimes[i-1] {
			return loriserr.New(loriserr.InvalidArgument, "Dilate", "srcTimes must be strictly increasing")
		}
	}
	for _, p := range list.All() {
		rewriteTimes(p, func(t float64) float64 { return warpTime(t, srcTimes, tgtTimes) })
	}
	return nil
}

func warpTime(t float64, src, tgt []float64) float64 {
	n := len(src)
	if t <= src[0] {
		slope := (tgt[1] - tgt[0]) / (src[1] - src[0])
		return tgt[0] + slope*(t-src[0])
	}
	if t >= src[n-1] {
		slope := (tgt[n-1] - tgt[n-2]) / (src[n-1] - src[n-2])
		return tgt[n-1] + slope*(t-src[n-1])
	}
	i := sort.Search(n, func(i int) bool { return src[i] >= t })
	lo, hi := i-1, i
	frac := (t - src[lo]) / (src[hi] - src[lo])
	return tgt[lo] + frac*(tgt[hi]-tgt[lo])
}

// rewriteTimes rebuilds p with every breakpoint's time passed through
// warp, preserving breakpoint order (warp is assumed monotonic).
func rewriteTimes(p *partial.Partial, warp func(float64) float64) {
	bps := p.Breakpoints()
	shifted := make([]partial.TimedBreakpoint, len(bps))
	copy(shifted, bps)
	for i := range shifted {
		shifted[i].Time = warp(shifted[i].Time)
	}
	p.Clear()
	for _, tb := range shifted {
		_ = p.Insert(tb.Time, tb.Breakpoint)
	}
}
