package partial

import (
	"sort"

	"github.com/lorisynth/loris/loriserr"
)

// TimedBreakpoint pairs a Breakpoint with its time, as returned by the
// Partial navigation queries.
type TimedBreakpoint struct {
	Time float64
	Breakpoint
}

// Partial is a finite ordered mapping from strictly increasing time
// (seconds) to Breakpoint, plus an integer label (0 = unlabeled). A
// Partial with zero breakpoints is a dummy: it contributes nothing to
// synthesis but is a valid morph operand (spec §3).
type Partial struct {
	label int
	bps   []TimedBreakpoint
}

// New returns an empty (dummy) Partial with label 0.
func New() *Partial {
	return &Partial{}
}

// Label returns the partial's label (0 = unlabeled).
func (p *Partial) Label() int { return p.label }

// SetLabel sets the partial's label.
func (p *Partial) SetLabel(l int) { p.label = l }

// NumBreakpoints returns the number of breakpoints.
func (p *Partial) NumBreakpoints() int { return len(p.bps) }

// IsDummy reports whether the partial has zero breakpoints.
func (p *Partial) IsDummy() bool { return len(p.bps) == 0 }

// StartTime returns the time of the first breakpoint, or 0 if dummy.
func (p *Partial) StartTime() float64 {
	if p.IsDummy() {
		return 0
	}
	return p.bps[0].Time
}

// EndTime returns the time of the last breakpoint, or 0 if dummy.
func (p *Partial) EndTime() float64 {
	if p.IsDummy() {
		return 0
	}
	return p.bps[len(p.bps)-1].Time
}

// Duration returns EndTime() - StartTime(), or 0 if dummy.
func (p *Partial) Duration() float64 {
	if p.IsDummy() {
		return 0
	}
	return p.EndTime() - p.StartTime()
}

// At returns the i'th breakpoint in time order.
func (p *Partial) At(i int) TimedBreakpoint { return p.bps[i] }

// Breakpoints returns the partial's breakpoints in time order. The
// returned slice must not be mutated by the caller.
func (p *Partial) Breakpoints() []TimedBreakpoint { return p.bps }

// Insert adds (or, if t exactly matches an existing breakpoint's time,
// replaces) a breakpoint at time t, preserving the strictly-increasing
// time invariant. Returns loriserr.Assertion if bp violates the
// non-negativity invariants of spec §3.
func (p *Partial) Insert(t float64, bp Breakpoint) error {
	if !bp.Valid() {
		return loriserr.New(loriserr.Assertion, "Partial.Insert", "invalid breakpoint %+v", bp)
	}
	i := sort.Search(len(p.bps), func(i int) bool { return p.bps[i].Time >= t })
	if i < len(p.bps) && p.bps[i].Time == t {
		p.bps[i].Breakpoint = bp
		return nil
	}
	p.bps = append(p.bps, TimedBreakpoint{})
	copy(p.bps[i+1:], p.bps[i:])
	p.bps[i] = TimedBreakpoint{Time: t, Breakpoint: bp}
	return nil
}

// RemoveAt deletes the i'th breakpoint.
func (p *Partial) RemoveAt(i int) {
	p.bps = append(p.bps[:i], p.bps[i+1:]...)
}

// Clear removes all breakpoints, making the partial a dummy. The label
// is left unchanged.
func (p *Partial) Clear() { p.bps = nil }

// SetAt overwrites the Breakpoint value at index i in place, leaving
// its time unchanged. Used by transforms (phase correction in
// particular) that recompute parameters without altering the time
// grid.
func (p *Partial) SetAt(i int, bp Breakpoint) {
	p.bps[i].Breakpoint = bp
}

// DropFrom removes every breakpoint at or after time t, used by
// transforms (distillation, cropping) that need to truncate a partial
// in place.
func (p *Partial) DropFrom(t float64) {
	i := sort.Search(len(p.bps), func(i int) bool { return p.bps[i].Time >= t })
	p.bps = p.bps[:i]
}

// Clone returns a deep copy of p.
func (p *Partial) Clone() *Partial {
	c := &Partial{label: p.label, bps: make([]TimedBreakpoint, len(p.bps))}
	copy(c.bps, p.bps)
	return c
}

// FindNearest returns the index of the breakpoint closest in time to t.
// ok is false only if p is a dummy.
func (p *Partial) FindNearest(t float64) (idx int, ok bool) {
	if p.IsDummy() {
		return 0, false
	}
	i := sort.Search(len(p.bps), func(i int) bool { return p.bps[i].Time >= t })
	if i == 0 {
		return 0, true
	}
	if i == len(p.bps) {
		return len(p.bps) - 1, true
	}
	if p.bps[i].Time-t < t-p.bps[i-1].Time {
		return i, true
	}
	return i - 1, true
}

// FindAfter returns the index of the first breakpoint at or after time
// t. ok is false if no such breakpoint exists.
func (p *Partial) FindAfter(t float64) (idx int, ok bool) {
	i := sort.Search(len(p.bps), func(i int) bool { return p.bps[i].Time >= t })
	if i == len(p.bps) {
		return 0, false
	}
	return i, true
}

// ParametersAt interpolates a Breakpoint at arbitrary time t (spec
// §3). Strictly before the first breakpoint and strictly after the
// last, the partial is null (zero amplitude, with the nearer endpoint
// breakpoint's frequency, bandwidth and phase); at exactly StartTime/EndTime the endpoint
// breakpoint's own amplitude is returned unchanged. Between consecutive
// breakpoints, frequency, amplitude and bandwidth are linearly
// interpolated; phase is integrated from frequency using the
// trapezoidal mean-frequency rule of spec §4.4, which makes
// ParametersAt consistent with PhaseTravel.
func (p *Partial) ParametersAt(t float64) Breakpoint {
	if p.IsDummy() {
		return Breakpoint{}
	}
	if t == p.StartTime() {
		return p.bps[0].Breakpoint
	}
	if t == p.EndTime() {
		return p.bps[len(p.bps)-1].Breakpoint
	}
	if t < p.StartTime() {
		bp := p.bps[0].Breakpoint
		bp.Amplitude = 0
		return bp
	}
	if t > p.EndTime() {
		bp := p.bps[len(p.bps)-1].Breakpoint
		bp.Amplitude = 0
		return bp
	}
	i, _ := p.FindAfter(t)
	if p.bps[i].Time == t {
		return p.bps[i].Breakpoint
	}
	lo, hi := p.bps[i-1], p.bps[i]
	frac := (t - lo.Time) / (hi.Time - lo.Time)
	freq := Lerp(lo.Frequency, hi.Frequency, frac)
	amp := Lerp(lo.Amplitude, hi.Amplitude, frac)
	bw := Lerp(lo.Bandwidth, hi.Bandwidth, frac)
	travel := PhaseTravel(lo.Frequency, freq, t-lo.Time)
	phase := WrapPhase(lo.Phase + travel)
	return Breakpoint{Frequency: freq, Amplitude: amp, Bandwidth: bw, Phase: phase}
}

// FrequencyAt returns the interpolated frequency at t.
func (p *Partial) FrequencyAt(t float64) float64 { return p.ParametersAt(t).Frequency }

// AmplitudeAt returns the interpolated amplitude at t.
func (p *Partial) AmplitudeAt(t float64) float64 { return p.ParametersAt(t).Amplitude }

// BandwidthAt returns the interpolated bandwidth at t.
func (p *Partial) BandwidthAt(t float64) float64 { return p.ParametersAt(t).Bandwidth }

// PhaseAt returns the interpolated phase at t.
func (p *Partial) PhaseAt(t float64) float64 { return p.ParametersAt(t).Phase }

// FadeIn inserts a zero-amplitude null breakpoint dt seconds before
// StartTime, carrying the starting breakpoint's frequency and
// bandwidth, to guarantee a clean onset under synthesis (spec §3). A
// no-op on a dummy partial.
func (p *Partial) FadeIn(dt float64) {
	if p.IsDummy() || dt <= 0 {
		return
	}
	first := p.bps[0].Breakpoint
	t := p.StartTime() - dt
	travel := PhaseTravel(first.Frequency, first.Frequency, -dt)
	bp := Breakpoint{Frequency: first.Frequency, Amplitude: 0, Bandwidth: first.Bandwidth, Phase: WrapPhase(first.Phase - travel)}
	p.bps = append([]TimedBreakpoint{{Time: t, Breakpoint: bp}}, p.bps...)
}

// FadeOut inserts a zero-amplitude null breakpoint dt seconds after
// EndTime, carrying the final breakpoint's frequency and bandwidth
// (spec §3). A no-op on a dummy partial.
func (p *Partial) FadeOut(dt float64) {
	if p.IsDummy() || dt <= 0 {
		return
	}
	last := p.bps[len(p.bps)-1].Breakpoint
	t := p.EndTime() + dt
	travel := PhaseTravel(last.Frequency, last.Frequency, dt)
	bp := Breakpoint{Frequency: last.Frequency, Amplitude: 0, Bandwidth: last.Bandwidth, Phase: WrapPhase(last.Phase + travel)}
	p.bps = append(p.bps, TimedBreakpoint{Time: t, Breakpoint: bp})
}
