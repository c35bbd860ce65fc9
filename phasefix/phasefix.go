// Package phasefix implements the two complementary phase-correction
// invariants of spec §4.4: making stored phases agree with integrated
// frequency, and making phases consistent with frequency as ground
// truth. Stored phase is authoritative only at null (reset)
// breakpoints; elsewhere frequency integrates to phase (spec §9).
package phasefix

import (
	"math"

	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// DefaultMaxFixPct bounds the per-breakpoint frequency correction
// applied by FixFrequency to 0.2% of the breakpoint's own frequency.
const DefaultMaxFixPct = 0.002

// DefaultDamping is the fraction of the phase-travel error corrected
// at each breakpoint by FixFrequency. Values <= 0.5 guarantee
// convergence without oscillation (spec §4.4).
const DefaultDamping = 0.5

// phaseError returns wrapPi(phase1 - (phase0 + travel(f0,f1,dt))).
func phaseError(f0, phase0, f1, phase1, dt float64) float64 {
	travel := partial.PhaseTravel(f0, f1, dt)
	return partial.WrapPhase(phase1 - (phase0 + travel))
}

// FixFrequency adjusts the frequency of every breakpoint (after the
// first) by a damped fraction of its phase-travel error, so that
// integrating frequency between consecutive breakpoints comes closer
// to reproducing the stored phase, then recomputes that breakpoint's
// phase from the corrected frequency. The correction is clamped to
// maxFixPct of the breakpoint's own frequency unless the breakpoint is
// null, in which case its frequency is never adjusted.
func FixFrequency(p *partial.Partial, maxFixPct, damping float64) error {
	if maxFixPct <= 0 || damping <= 0 {
		return loriserr.New(loriserr.InvalidArgument, "FixFrequency", "maxFixPct and damping must be positive")
	}
	for i := 1; i < p.NumBreakpoints(); i++ {
		prev := p.At(i - 1)
		cur := p.At(i)
		dt := cur.Time - prev.Time
		if dt <= 0 {
			continue
		}
		errPhase := phaseError(prev.Frequency, prev.Phase, cur.Frequency, cur.Phase, dt)
		deltaF := (damping * errPhase) / (math.Pi * dt)

		newFreq := cur.Frequency
		if !cur.IsNull() {
			maxDelta := maxFixPct * cur.Frequency
			if deltaF > maxDelta {
				deltaF = maxDelta
			} else if deltaF < -maxDelta {
				deltaF = -maxDelta
			}
			newFreq = cur.Frequency + deltaF
			if newFreq < 0 {
				newFreq = 0
			}
		}

		newPhase := partial.WrapPhase(prev.Phase + partial.PhaseTravel(prev.Frequency, newFreq, dt))
		bp := cur.Breakpoint
		bp.Frequency = newFreq
		bp.Phase = newPhase
		p.SetAt(i, bp)
	}
	return nil
}

// FixPhaseBefore walks backward from the breakpoint nearest t, setting
// each earlier breakpoint's phase to wrapPi(laterPhase - travel), and
// stops at any null breakpoint — a phase-reset point whose stored
// phase is authoritative and left untouched. Breakpoints earlier still
// (between the partial's start and that null) are not reachable by
// backward integration from an authoritative point, so they are fixed
// instead by forward recomputation from the partial's start up to the
// null (spec §4.4).
func FixPhaseBefore(p *partial.Partial, t float64) {
	idx, ok := p.FindNearest(t)
	if !ok {
		return
	}
	for i := idx; i > 0; i-- {
		cur := p.At(i)
		prev := p.At(i - 1)
		if prev.IsNull() {
			fixPhaseForwardRange(p, 0, i-2)
			return
		}
		dt := cur.Time - prev.Time
		travel := partial.PhaseTravel(prev.Frequency, cur.Frequency, dt)
		bp := prev.Breakpoint
		bp.Phase = partial.WrapPhase(cur.Phase - travel)
		p.SetAt(i-1, bp)
	}
}

// FixPhaseAfter walks forward from the breakpoint nearest t to the end
// of the partial, setting phi_next = wrapPi(phi_prev + travel). Null
// breakpoints keep their stored phase and become the new anchor for
// the breakpoints that follow them.
func FixPhaseAfter(p *partial.Partial, t float64) {
	idx, ok := p.FindNearest(t)
	if !ok {
		return
	}
	fixPhaseForwardRange(p, idx, p.NumBreakpoints()-1)
}

// FixPhaseForward recomputes phases forward from the breakpoint nearest
// t1 (the anchor, left unchanged) through the breakpoint nearest t2.
// Null breakpoints keep their stored phase.
func FixPhaseForward(p *partial.Partial, t1, t2 float64) {
	i1, ok1 := p.FindNearest(t1)
	i2, ok2 := p.FindNearest(t2)
	if !ok1 || !ok2 || i2 <= i1 {
		return
	}
	fixPhaseForwardRange(p, i1, i2)
}

func fixPhaseForwardRange(p *partial.Partial, from, to int) {
	for i := from + 1; i <= to; i++ {
		cur := p.At(i)
		if cur.IsNull() {
			continue
		}
		prev := p.At(i - 1)
		dt := cur.Time - prev.Time
		travel := partial.PhaseTravel(prev.Frequency, cur.Frequency, dt)
		bp := cur.Breakpoint
		bp.Phase = partial.WrapPhase(prev.Phase + travel)
		p.SetAt(i, bp)
	}
}

// FixPhaseBetween trusts the phases stored at the breakpoints exactly
// at t1 and t2, treats the intervening breakpoints' phases as
// untrustworthy, and finds the constant additive frequency offset
// that, distributed evenly over the internal breakpoints, makes the
// accumulated phase travel from t1 to t2 match the desired travel
// (the stored delta phase, disambiguated to the 2*pi multiple closest
// to the actually-accumulated travel). Internal phases are then
// recomputed by forward integration. Requires breakpoints to exist
// exactly at t1 and t2.
func FixPhaseBetween(p *partial.Partial, t1, t2 float64) error {
	i1, ok1 := p.FindAfter(t1)
	if !ok1 || p.At(i1).Time != t1 {
		return loriserr.New(loriserr.InvalidArgument, "FixPhaseBetween", "no breakpoint at t1=%g", t1)
	}
	i2, ok2 := p.FindAfter(t2)
	if !ok2 || p.At(i2).Time != t2 {
		return loriserr.New(loriserr.InvalidArgument, "FixPhaseBetween", "no breakpoint at t2=%g", t2)
	}
	if i2 <= i1 {
		return loriserr.New(loriserr.InvalidArgument, "FixPhaseBetween", "t2 must be after t1")
	}

	bp1 := p.At(i1)
	bp2 := p.At(i2)

	actualTravel := 0.0
	for k := i1; k < i2; k++ {
		a, b := p.At(k), p.At(k+1)
		actualTravel += partial.PhaseTravel(a.Frequency, b.Frequency, b.Time-a.Time)
	}

	rawDesired := bp2.Phase - bp1.Phase
	desired := rawDesired + 2*math.Pi*math.Round((actualTravel-rawDesired)/(2*math.Pi))
	totalDt := bp2.Time - bp1.Time
	if totalDt <= 0 {
		return loriserr.New(loriserr.Assertion, "FixPhaseBetween", "non-positive span between t1 and t2")
	}
	// Only the internal breakpoints are shifted, so under trapezoidal
	// travel the first and last segments each carry half the offset.
	effectiveDt := totalDt - (p.At(i1+1).Time-bp1.Time)/2 - (bp2.Time-p.At(i2-1).Time)/2
	freqOffset := 0.0
	if effectiveDt > 0 {
		freqOffset = (desired - actualTravel) / (2 * math.Pi * effectiveDt)
	}

	for k := i1 + 1; k < i2; k++ {
		bp := p.At(k).Breakpoint
		bp.Frequency += freqOffset
		if bp.Frequency < 0 {
			bp.Frequency = 0
		}
		p.SetAt(k, bp)
	}

	running := bp1.Phase
	prevFreq := bp1.Frequency
	for k := i1 + 1; k <= i2; k++ {
		cur := p.At(k)
		dt := cur.Time - p.At(k-1).Time
		running = partial.WrapPhase(running + partial.PhaseTravel(prevFreq, cur.Frequency, dt))
		if k < i2 {
			bp := cur.Breakpoint
			bp.Phase = running
			p.SetAt(k, bp)
		}
		prevFreq = cur.Frequency
	}
	return nil
}

// FixPhaseAt fixes backward then forward from t (spec §4.4).
func FixPhaseAt(p *partial.Partial, t float64) {
	FixPhaseBefore(p, t)
	FixPhaseAfter(p, t)
}
