package envelope

import "sort"

// point is one (time, value) control point of a LinearEnvelope.
type point struct {
	time  float64
	value float64
}

// LinearEnvelope is a mapping from time to scalar, linearly interpolated
// between its breakpoints and held constant beyond the extreme points
// (spec §3 Envelope: "no extrapolation").
type LinearEnvelope struct {
	pts []point
}

// NewLinearEnvelope builds an empty envelope. Use Insert to add control
// points; an envelope with no points evaluates to zero everywhere.
func NewLinearEnvelope() *LinearEnvelope {
	return &LinearEnvelope{}
}

// Insert adds or replaces the control point at time t.
func (e *LinearEnvelope) Insert(t, value float64) {
	i := sort.Search(len(e.pts), func(i int) bool { return e.pts[i].time >= t })
	if i < len(e.pts) && e.pts[i].time == t {
		e.pts[i].value = value
		return
	}
	e.pts = append(e.pts, point{})
	copy(e.pts[i+1:], e.pts[i:])
	e.pts[i] = point{time: t, value: value}
}

// NumPoints returns the number of control points.
func (e *LinearEnvelope) NumPoints() int { return len(e.pts) }

// ValueAt implements Envelope.
func (e *LinearEnvelope) ValueAt(t float64) float64 {
	n := len(e.pts)
	if n == 0 {
		return 0
	}
	if t <= e.pts[0].time {
		return e.pts[0].value
	}
	if t >= e.pts[n-1].time {
		return e.pts[n-1].value
	}
	i := sort.Search(n, func(i int) bool { return e.pts[i].time >= t })
	if e.pts[i].time == t {
		return e.pts[i].value
	}
	lo, hi := e.pts[i-1], e.pts[i]
	frac := (t - lo.time) / (hi.time - lo.time)
	return lo.value + frac*(hi.value-lo.value)
}

// Clone implements Envelope.
func (e *LinearEnvelope) Clone() Envelope {
	c := &LinearEnvelope{pts: make([]point, len(e.pts))}
	copy(c.pts, e.pts)
	return c
}

// BreakpointEnvelope is functionally identical to LinearEnvelope —
// spec §3 calls out that the two are "distinguished by history" only,
// both being piecewise-linear time-varying scalars. It is kept as its
// own named type so that callers coming from the breakpoint-editing
// side of the pipeline (as opposed to a programmatically constructed
// LinearEnvelope) can be told apart in signatures and logs.
type BreakpointEnvelope struct {
	LinearEnvelope
}

// NewBreakpointEnvelope builds an empty BreakpointEnvelope.
func NewBreakpointEnvelope() *BreakpointEnvelope {
	return &BreakpointEnvelope{}
}

// Clone implements Envelope.
func (e *BreakpointEnvelope) Clone() Envelope {
	c := &BreakpointEnvelope{}
	c.pts = make([]point, len(e.pts))
	copy(c.pts, e.pts)
	return c
}
