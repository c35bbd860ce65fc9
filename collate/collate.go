// Package collate collapses unlabeled partials into the smallest
// number of non-overlapping partials by interval-graph coloring (spec
// §4.2 Collator).
package collate

import (
	"sort"

	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// DefaultFadeTime is the minimum gap, in seconds, required between two
// fused segments before they are considered non-overlapping.
const DefaultFadeTime = 0.001

// DefaultSilentTime is the minimum silent duration inserted at a fused
// boundary.
const DefaultSilentTime = 0.0001

// Collate fuses every mutually non-overlapping run of unlabeled
// (label == 0) partials in list into a single new partial, using the
// classic "first fit by earliest-available slot" greedy interval
// coloring: partials are sorted by onset and placed on the
// lowest-indexed open bucket whose last breakpoint ended (plus gap)
// before the current partial's onset, opening a new bucket only when
// none fits. This produces the minimum possible number of output
// partials. New partials receive labels strictly greater than any
// label already present, and are appended after the untouched
// already-labeled partials. The postcondition is that every partial in
// the result is uniquely labeled.
func Collate(list *partial.List, fadeTime, silentTime float64) (*partial.List, error) {
	if fadeTime < 0 || silentTime < 0 {
		return nil, loriserr.New(loriserr.InvalidArgument, "Collate", "fade/silent time must be non-negative")
	}

	var labeled, unlabeled []*partial.Partial
	for _, p := range list.All() {
		if p.Label() == 0 {
			unlabeled = append(unlabeled, p)
		} else {
			labeled = append(labeled, p)
		}
	}
	sort.Slice(unlabeled, func(i, j int) bool { return unlabeled[i].StartTime() < unlabeled[j].StartTime() })

	var buckets []*partial.Partial
	for _, p := range unlabeled {
		if p.IsDummy() {
			buckets = append(buckets, p.Clone())
			continue
		}
		placed := -1
		for i, b := range buckets {
			if b.IsDummy() || b.EndTime()+fadeTime <= p.StartTime() {
				placed = i
				break
			}
		}
		if placed < 0 {
			buckets = append(buckets, partial.New())
			placed = len(buckets) - 1
		}
		fuse(buckets[placed], p, fadeTime, silentTime)
	}

	nextLabel := list.MaxLabel() + 1
	out := partial.NewList()
	for _, p := range labeled {
		out.Append(p)
	}
	for _, b := range buckets {
		b.SetLabel(nextLabel)
		nextLabel++
		out.Append(b)
	}
	return out, nil
}

// fuse appends p's breakpoints onto bucket, inserting a null gap if
// there is a silent span between bucket's current end and p's onset.
func fuse(bucket, p *partial.Partial, fadeTime, silentTime float64) {
	bps := p.Breakpoints()
	if bucket.IsDummy() {
		for _, tb := range bps {
			_ = bucket.Insert(tb.Time, tb.Breakpoint)
		}
		return
	}
	lastEnd := bucket.EndTime()
	start := bps[0].Time
	if start > lastEnd+fadeTime {
		last := bucket.At(bucket.NumBreakpoints() - 1).Breakpoint
		silenceAt := lastEnd + fadeTime
		if silenceAt > start-silentTime {
			silenceAt = start - silentTime
		}
		if silenceAt > lastEnd {
			_ = bucket.Insert(silenceAt, partial.Breakpoint{Frequency: last.Frequency, Amplitude: 0, Bandwidth: last.Bandwidth})
		}
	}
	for _, tb := range bps {
		if tb.Time > lastEnd {
			_ = bucket.Insert(tb.Time, tb.Breakpoint)
		}
	}
}
