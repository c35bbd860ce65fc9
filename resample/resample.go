// Package resample imposes a uniform time grid on a Partial (spec
// §4.3).
package resample

import (
	"math"

	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
	"github.com/lorisynth/loris/phasefix"
)

// Mode selects the Resampler's density.
type Mode int

const (
	// Dense places a breakpoint at every grid multiple within the
	// partial's span.
	Dense Mode = iota
	// Sparse places a breakpoint at a grid multiple only where a
	// source breakpoint is nearby, retroactively filling in skipped
	// steps that would otherwise introduce too much interpolation
	// error.
	Sparse
)

// Error tolerances used by Sparse mode to decide whether a skipped
// step must be inserted retroactively (spec §4.3).
const (
	AmpErrorFraction  = 0.01
	FreqErrorFraction = 0.01
	BwErrorFraction   = 0.10
)

// Resample returns a new Partial with breakpoints on a uniform grid of
// spacing delta, computed from p via ParametersAt. If phaseCorrect is
// set, phasefix.FixFrequency is run on the result afterward. Returns
// loriserr.InvalidArgument if delta is not positive.
func Resample(p *partial.Partial, delta float64, mode Mode, phaseCorrect bool) (*partial.Partial, error) {
	if delta <= 0 {
		return nil, loriserr.New(loriserr.InvalidArgument, "Resample", "delta must be positive")
	}
	if p.IsDummy() {
		out := partial.New()
		out.SetLabel(p.Label())
		return out, nil
	}

	var out *partial.Partial
	switch mode {
	case Dense:
		out = resampleDense(p, delta)
	case Sparse:
		out = resampleSparse(p, delta)
	default:
		return nil, loriserr.New(loriserr.InvalidArgument, "Resample", "unknown mode %d", mode)
	}

	if phaseCorrect {
		if err := phasefix.FixFrequency(out, phasefix.DefaultMaxFixPct, phasefix.DefaultDamping); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func gridRange(start, end, delta float64) (kMin, kMax int) {
	kMin = int(math.Round(start / delta))
	kMax = int(math.Round(end / delta))
	return
}

func resampleDense(p *partial.Partial, delta float64) *partial.Partial {
	out := partial.New()
	out.SetLabel(p.Label())
	kMin, kMax := gridRange(p.StartTime(), p.EndTime(), delta)
	for k := kMin; k <= kMax; k++ {
		t := float64(k) * delta
		_ = out.Insert(t, p.ParametersAt(t))
	}
	return out
}

func hasSourceNear(p *partial.Partial, t, tol float64) bool {
	for _, tb := range p.Breakpoints() {
		if math.Abs(tb.Time-t) <= tol {
			return true
		}
	}
	return false
}

func resampleSparse(p *partial.Partial, delta float64) *partial.Partial {
	out := partial.New()
	out.SetLabel(p.Label())
	kMin, kMax := gridRange(p.StartTime(), p.EndTime(), delta)

	var skipped []int
	for k := kMin; k <= kMax; k++ {
		t := float64(k) * delta
		if !hasSourceNear(p, t, delta/2) {
			skipped = append(skipped, k)
			continue
		}

		if len(skipped) > 0 && out.NumBreakpoints() > 0 {
			last := out.At(out.NumBreakpoints() - 1)
			cur := p.ParametersAt(t)
			for _, sk := range skipped {
				st := float64(sk) * delta
				actual := p.ParametersAt(st)
				frac := (st - last.Time) / (t - last.Time)
				predicted := partial.Breakpoint{
					Frequency: partial.Lerp(last.Frequency, cur.Frequency, frac),
					Amplitude: partial.Lerp(last.Amplitude, cur.Amplitude, frac),
					Bandwidth: partial.Lerp(last.Bandwidth, cur.Bandwidth, frac),
				}
				if exceedsTolerance(actual, predicted) {
					_ = out.Insert(st, actual)
				}
			}
		}
		skipped = nil
		_ = out.Insert(t, p.ParametersAt(t))
	}
	return out
}

func exceedsTolerance(actual, predicted partial.Breakpoint) bool {
	return relErr(actual.Amplitude, predicted.Amplitude) > AmpErrorFraction ||
		relErr(actual.Frequency, predicted.Frequency) > FreqErrorFraction ||
		relErr(actual.Bandwidth, predicted.Bandwidth) > BwErrorFraction
}

func relErr(actual, predicted float64) float64 {
	denom := math.Abs(actual)
	if denom < 1e-12 {
		denom = 1e-12
	}
	return math.Abs(actual-predicted) / denom
}
