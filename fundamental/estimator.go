package fundamental

import (
	"math"

	"github.com/lorisynth/loris/collate"
	"github.com/lorisynth/loris/envelope"
	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// DefaultThresholdDB excludes partials whose amplitude at the sample
// time falls below this level from the likelihood sum (spec §4.7:
// "-60 dB is a reasonable default").
const DefaultThresholdDB = -60

// Estimator estimates a time-varying fundamental frequency from a
// PartialList by running Estimate over the sinusoidal energy of
// partials collated onto a common unlabeled reservoir, so that
// multiple instantaneous partials contribute distinct peaks instead of
// competing at one label (spec §4.7 FundamentalEstimator).
type Estimator struct {
	partials    *partial.List
	fmin, fmax  float64
	resolution  float64
	thresholdDB float64
}

// NewEstimator builds an Estimator searching f0 in [fmin,fmax] with
// the given resolution (Hz; DefaultResolution if <= 0) over list.
// list is cloned and re-collated with every label cleared, so that
// overlapping partials present independent peaks rather than being
// merged by a pre-existing label assignment. Returns
// loriserr.InvalidArgument if the range is empty or non-positive.
func NewEstimator(list *partial.List, fmin, fmax, resolution float64) (*Estimator, error) {
	if fmin <= 0 || fmax <= fmin {
		return nil, loriserr.New(loriserr.InvalidArgument, "NewEstimator", "search range [%g,%g] is empty or non-positive", fmin, fmax)
	}
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	clone := list.Clone()
	for _, p := range clone.All() {
		p.SetLabel(0)
	}
	collated, err := collate.Collate(clone, collate.DefaultFadeTime, collate.DefaultSilentTime)
	if err != nil {
		return nil, err
	}

	return &Estimator{
		partials:    collated,
		fmin:        fmin,
		fmax:        fmax,
		resolution:  resolution,
		thresholdDB: DefaultThresholdDB,
	}, nil
}

// SetThresholdDB overrides DefaultThresholdDB.
func (e *Estimator) SetThresholdDB(db float64) { e.thresholdDB = db }

// peaksAt collects one Peak per partial with energy at t above
// thresholdDB, weighting amplitude by sqrt(1-bandwidth) so that noisy
// breakpoints contribute less of their energy to the harmonic
// likelihood (spec §4.7: "sinusoidal energy only").
func (e *Estimator) peaksAt(t float64) []Peak {
	threshold := math.Pow(10, e.thresholdDB/20)
	var peaks []Peak
	for _, p := range e.partials.All() {
		if t < p.StartTime() || t > p.EndTime() {
			continue
		}
		amp := p.AmplitudeAt(t)
		if amp <= threshold {
			continue
		}
		bw := p.BandwidthAt(t)
		peaks = append(peaks, Peak{
			Amplitude: amp * math.Sqrt(1-bw),
			Frequency: p.FrequencyAt(t),
		})
	}
	return peaks
}

// EstimateAt returns the (f0, Q) maximum-likelihood estimate at time
// t. Returns loriserr.InvalidArgument if no partial has energy above
// threshold at t, or loriserr.InvalidObject if no likely f0 is found
// in the search range.
func (e *Estimator) EstimateAt(t float64) (float64, float64, error) {
	peaks := e.peaksAt(t)
	if len(peaks) == 0 {
		return 0, 0, loriserr.New(loriserr.InvalidArgument, "EstimateAt", "no partial has energy at t=%g", t)
	}
	return Estimate(peaks, e.fmin, e.fmax, e.resolution)
}

// ConstructEnvelope samples EstimateAt at uniform steps of interval
// over [t1,t2], building a LinearEnvelope of the accepted f0 samples.
// Samples landing exactly on fmin or fmax (a saturated search,
// indicating no genuine peak was found near that boundary) are
// skipped rather than inserted. Returns loriserr.InvalidArgument if no
// sample in the range yields an estimate.
func (e *Estimator) ConstructEnvelope(t1, t2, interval float64) (*envelope.LinearEnvelope, error) {
	if interval <= 0 {
		return nil, loriserr.New(loriserr.InvalidArgument, "ConstructEnvelope", "interval must be positive")
	}
	if t2 < t1 {
		return nil, loriserr.New(loriserr.InvalidArgument, "ConstructEnvelope", "t2 must be >= t1")
	}

	env := envelope.NewLinearEnvelope()
	for t := t1; t <= t2; t += interval {
		f0, _, err := e.EstimateAt(t)
		if err != nil {
			continue
		}
		if f0 == e.fmin || f0 == e.fmax {
			continue
		}
		env.Insert(t, f0)
	}
	if env.NumPoints() == 0 {
		return nil, loriserr.New(loriserr.InvalidArgument, "ConstructEnvelope", "no likely f0 estimate found in [%g,%g]", t1, t2)
	}
	return env, nil
}
