// Package morph implements cross-collection partial interpolation with
// optional reference-partial fabrication for one-sided labels (spec
// §4.5 Morpher), the hardest transform in the pipeline.
package morph

import (
	"math"
	"sort"

	"github.com/lorisynth/loris/envelope"
	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// DefaultAmpShape is the amplitude/bandwidth log-morph shape parameter
// epsilon; smaller values morph more nonlinearly, >= 1 approximates a
// linear morph (spec §4.5).
const DefaultAmpShape = 1e-5

// DefaultMinBreakpointGap is the minimum spacing, in seconds, enforced
// between output breakpoints drawn from the union of both sources'
// breakpoint times.
const DefaultMinBreakpointGap = 0.0001

// MaxFixPct bounds the near-boundary phase-travel frequency correction
// to a fraction of the breakpoint's own frequency (spec §4.5).
const MaxFixPct = 0.002

// boundaryThreshold is how far f_w must sit from 0.5 before the
// phase-travel fix engages (spec §4.5: "|0.5 - f_w| > 0.3").
const boundaryThreshold = 0.3

// machineEpsilon is the "both sources silent" amplitude floor below
// which log-morphed amplitude is forced to exactly zero.
const machineEpsilon = 2.220446049250313e-16

// Morpher holds the three morph-weight envelopes and optional
// reference partials used to fabricate surrogates for one-sided
// labels.
type Morpher struct {
	FreqWeight envelope.Envelope
	AmpWeight  envelope.Envelope
	BwWeight   envelope.Envelope

	AmpShape         float64
	MinBreakpointGap float64

	RefA *partial.Partial
	RefB *partial.Partial
}

// New builds a Morpher with the default amplitude shape and minimum
// breakpoint gap.
func New(freqWeight, ampWeight, bwWeight envelope.Envelope) *Morpher {
	return &Morpher{
		FreqWeight:       freqWeight,
		AmpWeight:        ampWeight,
		BwWeight:         bwWeight,
		AmpShape:         DefaultAmpShape,
		MinBreakpointGap: DefaultMinBreakpointGap,
	}
}

// Morph produces a single morphed PartialList from a and b. Both lists
// must be distilled (at most one partial per non-zero label). Label-0
// partials from each source are crossfaded rather than interpolated;
// labels present in both sources are morphed breakpoint-by-breakpoint;
// labels present in only one source are either fabricated against the
// matching reference partial or faded out.
func (m *Morpher) Morph(a, b *partial.List) (*partial.List, error) {
	if m.AmpShape <= 0 {
		return nil, loriserr.New(loriserr.InvalidArgument, "Morph", "amplitude shape must be positive")
	}
	if m.MinBreakpointGap <= 0 {
		return nil, loriserr.New(loriserr.InvalidArgument, "Morph", "minimum breakpoint gap must be positive")
	}
	if !isDistilled(a) {
		return nil, loriserr.New(loriserr.InvalidArgument, "Morph", "source A is not distilled (duplicate non-zero labels)")
	}
	if !isDistilled(b) {
		return nil, loriserr.New(loriserr.InvalidArgument, "Morph", "source B is not distilled (duplicate non-zero labels)")
	}

	out := partial.NewList()

	for _, p := range a.All() {
		if p.Label() != 0 {
			continue
		}
		c := p.Clone()
		fadeAmplitude(c, func(t float64) float64 { return 1 - m.AmpWeight.ValueAt(t) })
		out.Append(c)
	}
	for _, p := range b.All() {
		if p.Label() != 0 {
			continue
		}
		c := p.Clone()
		fadeAmplitude(c, m.AmpWeight.ValueAt)
		out.Append(c)
	}

	labelsA := indexByLabel(a)
	labelsB := indexByLabel(b)

	for _, label := range unionLabels(labelsA, labelsB) {
		pa, okA := labelsA[label]
		pb, okB := labelsB[label]

		var merged *partial.Partial
		var err error
		switch {
		case okA && okB:
			if pa.IsDummy() && pb.IsDummy() {
				return nil, loriserr.New(loriserr.InvalidArgument, "Morph", "both operands for label %d are dummy", label)
			}
			merged, err = m.morphPair(pa, pb, label)
		case okA:
			merged, err = m.morphSingleSided(pa, label, m.RefB, true)
		default:
			merged, err = m.morphSingleSided(pb, label, m.RefA, false)
		}
		if err != nil {
			return nil, err
		}
		out.Append(merged)
	}
	return out, nil
}

// morphSingleSided handles a label present in only one source. If ref
// is available, a surrogate partial is fabricated for the missing
// side and the two are morphed as usual. Otherwise the present
// partial is faded by (1 - weight) if it came from source A, or by
// weight if it came from source B.
func (m *Morpher) morphSingleSided(p *partial.Partial, label int, ref *partial.Partial, fromA bool) (*partial.Partial, error) {
	if ref != nil {
		surrogate, err := fabricateFromReference(ref, label)
		if err != nil {
			return nil, err
		}
		if fromA {
			return m.morphPair(p, surrogate, label)
		}
		return m.morphPair(surrogate, p, label)
	}

	c := p.Clone()
	if fromA {
		fadeAmplitude(c, func(t float64) float64 { return 1 - m.AmpWeight.ValueAt(t) })
	} else {
		fadeAmplitude(c, m.AmpWeight.ValueAt)
	}
	c.SetLabel(label)
	return c, nil
}

// morphPair morphs two same-label partials into one, per spec §4.5:
// null-padding, union breakpoint grid filtered by minBreakpointGap,
// log-amplitude/bandwidth morph, branch-matched phase interpolation,
// and the near-boundary phase-travel fix.
func (m *Morpher) morphPair(pa, pb *partial.Partial, label int) (*partial.Partial, error) {
	pa = padForMorph(pa, m.MinBreakpointGap)
	pb = padForMorph(pb, m.MinBreakpointGap)

	times := unionTimes(pa, pb, m.MinBreakpointGap)
	out := partial.New()
	out.SetLabel(label)

	var havePrev bool
	var prevBp partial.Breakpoint
	var prevTime float64

	for _, t := range times {
		bpA := pa.ParametersAt(t)
		bpB := pb.ParametersAt(t)

		fw := m.FreqWeight.ValueAt(t)
		aw := m.AmpWeight.ValueAt(t)
		bwW := m.BwWeight.ValueAt(t)

		freq := (1-fw)*bpA.Frequency + fw*bpB.Frequency
		amp := logMorph(bpA.Amplitude, bpB.Amplitude, aw, m.AmpShape)
		bw := clamp01(logMorph(bpA.Bandwidth, bpB.Bandwidth, bwW, m.AmpShape))

		matchedA, matchedB := matchBranch(bpA.Phase, bpB.Phase)
		interpPhase := mod2pi(partial.Lerp(matchedA, matchedB, fw))

		bp := partial.Breakpoint{Frequency: freq, Amplitude: amp, Bandwidth: bw, Phase: interpPhase}

		if havePrev {
			dt := t - prevTime
			if math.Abs(0.5-fw) > boundaryThreshold {
				travelPhase := partial.WrapPhase(prevBp.Phase + partial.PhaseTravel(prevBp.Frequency, freq, dt))
				errPhase := partial.WrapPhase(interpPhase - travelPhase)
				maxDelta := MaxFixPct * freq
				deltaF := (errPhase / (2 * math.Pi * dt))
				if dt <= 0 {
					deltaF = 0
				}
				if deltaF > maxDelta {
					deltaF = maxDelta
				} else if deltaF < -maxDelta {
					deltaF = -maxDelta
				}
				freq += deltaF
				bp.Frequency = freq
			}
			bp.Phase = partial.WrapPhase(prevBp.Phase + partial.PhaseTravel(prevBp.Frequency, freq, dt))
		}

		_ = out.Insert(t, bp)
		prevBp = bp
		prevTime = t
		havePrev = true
	}
	return out, nil
}

// fabricateFromReference builds a zero-amplitude surrogate for a
// one-sided label, scaling the reference's frequencies by
// label/ref.Label() and recomputing phase by forward integration from
// zero (spec §4.5).
func fabricateFromReference(ref *partial.Partial, label int) (*partial.Partial, error) {
	if ref.IsDummy() {
		return nil, loriserr.New(loriserr.InvalidArgument, "Morph", "reference partial has no breakpoints")
	}
	if ref.Label() == 0 {
		return nil, loriserr.New(loriserr.InvalidArgument, "Morph", "reference partial has no label")
	}
	ratio := float64(label) / float64(ref.Label())

	s := partial.New()
	s.SetLabel(label)
	var prevFreq, prevPhase float64
	var prevTime float64
	for i := 0; i < ref.NumBreakpoints(); i++ {
		tb := ref.At(i)
		freq := tb.Frequency * ratio
		var phase float64
		if i == 0 {
			phase = 0
		} else {
			phase = partial.WrapPhase(prevPhase + partial.PhaseTravel(prevFreq, freq, tb.Time-prevTime))
		}
		_ = s.Insert(tb.Time, partial.Breakpoint{Frequency: freq, Amplitude: 0, Bandwidth: tb.Bandwidth, Phase: phase})
		prevFreq, prevPhase, prevTime = freq, phase, tb.Time
	}
	return s, nil
}

// padForMorph clones p and inserts a null breakpoint one gap before
// its first breakpoint and/or one gap after its last, whenever that
// endpoint has non-zero amplitude, to prevent the morphed partial from
// carrying a spurious non-zero segment at its extreme.
func padForMorph(p *partial.Partial, gap float64) *partial.Partial {
	if p.IsDummy() {
		return p
	}
	c := p.Clone()
	first := c.At(0)
	last := c.At(c.NumBreakpoints() - 1)

	if last.Amplitude != 0 {
		bp := last.Breakpoint
		bp.Amplitude = 0
		_ = c.Insert(last.Time+gap, bp)
	}
	if first.Amplitude != 0 {
		bp := first.Breakpoint
		bp.Amplitude = 0
		_ = c.Insert(first.Time-gap, bp)
	}
	return c
}

// unionTimes merges pa's and pb's breakpoint times, deduplicated and
// filtered so that no two survivors are closer than minGap.
func unionTimes(pa, pb *partial.Partial, minGap float64) []float64 {
	all := make([]float64, 0, pa.NumBreakpoints()+pb.NumBreakpoints())
	for _, tb := range pa.Breakpoints() {
		all = append(all, tb.Time)
	}
	for _, tb := range pb.Breakpoints() {
		all = append(all, tb.Time)
	}
	sort.Float64s(all)

	var out []float64
	for _, t := range all {
		if len(out) == 0 || t-out[len(out)-1] >= minGap {
			out = append(out, t)
		}
	}
	return out
}

// fadeAmplitude multiplies every breakpoint's amplitude in p by
// factor(time), clamped to stay non-negative.
func fadeAmplitude(p *partial.Partial, factor func(float64) float64) {
	for i := 0; i < p.NumBreakpoints(); i++ {
		tb := p.At(i)
		bp := tb.Breakpoint
		bp.Amplitude *= factor(tb.Time)
		if bp.Amplitude < 0 {
			bp.Amplitude = 0
		}
		p.SetAt(i, bp)
	}
}

// logMorph computes pow(a+eps,1-w)*pow(b+eps,w)-eps, clamped to >= 0,
// collapsing to exactly 0 when both operands are silent.
func logMorph(a, b, w, eps float64) float64 {
	if a <= machineEpsilon && b <= machineEpsilon {
		return 0
	}
	v := math.Pow(a+eps, 1-w)*math.Pow(b+eps, w) - eps
	if v < 0 {
		v = 0
	}
	return v
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

// matchBranch adds 2*pi to whichever phase is smaller until the two
// differ by at most pi, so the pair can be linearly interpolated
// without crossing a spurious branch cut.
func matchBranch(a, b float64) (float64, float64) {
	for {
		diff := b - a
		if diff > -math.Pi && diff <= math.Pi {
			return a, b
		}
		if a < b {
			a += 2 * math.Pi
		} else {
			b += 2 * math.Pi
		}
	}
}

func mod2pi(x float64) float64 {
	m := math.Mod(x, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m
}

func isDistilled(list *partial.List) bool {
	seen := make(map[int]bool)
	for _, p := range list.All() {
		l := p.Label()
		if l == 0 {
			continue
		}
		if seen[l] {
			return false
		}
		seen[l] = true
	}
	return true
}

func indexByLabel(list *partial.List) map[int]*partial.Partial {
	m := make(map[int]*partial.Partial)
	for _, p := range list.All() {
		if p.Label() != 0 {
			m[p.Label()] = p
		}
	}
	return m
}

func unionLabels(a, b map[int]*partial.Partial) []int {
	seen := make(map[int]bool, len(a)+len(b))
	var labels []int
	for l := range a {
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	for l := range b {
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	sort.Ints(labels)
	return labels
}
