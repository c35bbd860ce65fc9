// Package distill collapses a channelized PartialList down to at most
// one partial per non-zero label (spec §4.2 Distiller).
package distill

import (
	"sort"

	"github.com/lorisynth/loris/loriserr"
	"github.com/lorisynth/loris/partial"
)

// DefaultFadeTime is the default minimum gap inserted between absorbed
// segments, 1 ms.
const DefaultFadeTime = 0.001

// DefaultSilentTime is the default minimum silent duration inserted
// between absorbed segments, 0.1 ms.
const DefaultSilentTime = 0.0001

// Distill absorbs all same-labeled partials in list into one
// representative partial per label. Where two same-label partials
// overlap, their amplitudes are compared once, at the midpoint of the
// overlap, and the louder one is used for the whole overlapped span;
// the quieter one contributes nothing inside that span. A null gap at
// least fadeTime/silentTime wide is inserted between stitched
// segments that do not overlap. Unlabeled (label 0) partials are
// preserved, in their original relative order, at the end of the
// returned list. Fails with loriserr.InvalidArgument if fadeTime or
// silentTime is negative.
func Distill(list *partial.List, fadeTime, silentTime float64) (*partial.List, error) {
	if fadeTime < 0 || silentTime < 0 {
		return nil, loriserr.New(loriserr.InvalidArgument, "Distill", "fade/silent time must be non-negative")
	}

	groups := map[int][]*partial.Partial{}
	var unlabeled []*partial.Partial
	for _, p := range list.All() {
		if p.Label() == 0 {
			unlabeled = append(unlabeled, p)
			continue
		}
		groups[p.Label()] = append(groups[p.Label()], p)
	}

	labels := make([]int, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	out := partial.NewList()
	for _, lbl := range labels {
		merged := distillGroup(groups[lbl], fadeTime, silentTime)
		merged.SetLabel(lbl)
		out.Append(merged)
	}
	for _, p := range unlabeled {
		out.Append(p)
	}
	return out, nil
}

// distillGroup merges all same-label partials in group, sorted by
// onset, into a single Partial.
func distillGroup(group []*partial.Partial, fadeTime, silentTime float64) *partial.Partial {
	sorted := make([]*partial.Partial, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime() < sorted[j].StartTime() })

	out := partial.New()
	for _, p := range sorted {
		if p.IsDummy() {
			continue
		}
		bps := p.Breakpoints()
		if out.IsDummy() {
			for _, tb := range bps {
				_ = out.Insert(tb.Time, tb.Breakpoint)
			}
			continue
		}

		lastEnd := out.EndTime()
		start := bps[0].Time
		switch {
		case start > lastEnd:
			insertGap(out, lastEnd, start, fadeTime, silentTime)
			for _, tb := range bps {
				_ = out.Insert(tb.Time, tb.Breakpoint)
			}
		default:
			overlapEnd := lastEnd
			if p.EndTime() < overlapEnd {
				overlapEnd = p.EndTime()
			}
			mid := (start + overlapEnd) / 2
			if p.AmplitudeAt(mid) > out.AmplitudeAt(mid) {
				var tail []partial.TimedBreakpoint
				for _, tb := range out.Breakpoints() {
					if tb.Time > p.EndTime() {
						tail = append(tail, tb)
					}
				}
				out.DropFrom(start)
				for _, tb := range bps {
					_ = out.Insert(tb.Time, tb.Breakpoint)
				}
				for _, tb := range tail {
					_ = out.Insert(tb.Time, tb.Breakpoint)
				}
			} else {
				for _, tb := range bps {
					if tb.Time > lastEnd {
						_ = out.Insert(tb.Time, tb.Breakpoint)
					}
				}
			}
		}
	}
	return out
}

// insertGap inserts a null breakpoint between two absorbed segments
// when the gap between them is wider than fadeTime, silencing the
// tail of the previous segment for silentTime before the next one
// begins.
func insertGap(out *partial.Partial, lastEnd, nextStart, fadeTime, silentTime float64) {
	gap := nextStart - lastEnd
	if gap <= fadeTime {
		return
	}
	last := out.At(out.NumBreakpoints() - 1).Breakpoint
	silenceAt := lastEnd + fadeTime
	if silenceAt >= nextStart-silentTime {
		silenceAt = nextStart - silentTime
	}
	if silenceAt <= lastEnd {
		return
	}
	_ = out.Insert(silenceAt, partial.Breakpoint{Frequency: last.Frequency, Amplitude: 0, Bandwidth: last.Bandwidth})
}
