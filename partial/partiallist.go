package partial

// List is an unordered collection of Partials with value-ish copy
// semantics: List is a struct wrapping a slice, so assigning or passing
// it by value shares the underlying Partial pointers until a caller
// calls Clone. This mirrors the reference-counted-copy-on-write
// PartialList of the original implementation (spec §9) without needing
// an explicit refcount: Go's slice header already gives cheap sharing,
// and Clone is the explicit deep-copy escape hatch.
type List struct {
	partials []*Partial
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// FromSlice wraps an existing slice of Partials as a List without
// copying them.
func FromSlice(ps []*Partial) *List {
	return &List{partials: ps}
}

// Len returns the number of partials in the list.
func (l *List) Len() int { return len(l.partials) }

// At returns the i'th partial.
func (l *List) At(i int) *Partial { return l.partials[i] }

// All returns the list's partials. The returned slice aliases the
// list's storage and must not be mutated by the caller (use Append /
// RemoveAt / Splice / Extract instead).
func (l *List) All() []*Partial { return l.partials }

// Append adds p to the end of the list.
func (l *List) Append(p *Partial) { l.partials = append(l.partials, p) }

// RemoveAt deletes the i'th partial from the list.
func (l *List) RemoveAt(i int) {
	l.partials = append(l.partials[:i], l.partials[i+1:]...)
}

// Clone returns a list containing deep copies of every partial.
func (l *List) Clone() *List {
	c := &List{partials: make([]*Partial, len(l.partials))}
	for i, p := range l.partials {
		c.partials[i] = p.Clone()
	}
	return c
}

// Extract removes every partial matching pred from l and returns them,
// in original order, as a new list — an O(n) partition that avoids
// copying the matched Partials (spec §3: "avoids copying in
// pipelines").
func (l *List) Extract(pred func(*Partial) bool) *List {
	var kept, extracted []*Partial
	for _, p := range l.partials {
		if pred(p) {
			extracted = append(extracted, p)
		} else {
			kept = append(kept, p)
		}
	}
	l.partials = kept
	return &List{partials: extracted}
}

// Splice adopts the contents of other, appending them to l and leaving
// other empty (spec §3: "avoids copying in pipelines").
func (l *List) Splice(other *List) {
	l.partials = append(l.partials, other.partials...)
	other.partials = nil
}

// Filter returns a new list, sharing Partial pointers with l, containing
// only the partials for which pred returns true. Unlike Extract, l is
// left unmodified.
func (l *List) Filter(pred func(*Partial) bool) *List {
	out := &List{}
	for _, p := range l.partials {
		if pred(p) {
			out.partials = append(out.partials, p)
		}
	}
	return out
}

// MaxLabel returns the largest label present in the list, or 0 if the
// list is empty or every partial is unlabeled.
func (l *List) MaxLabel() int {
	max := 0
	for _, p := range l.partials {
		if p.Label() > max {
			max = p.Label()
		}
	}
	return max
}
