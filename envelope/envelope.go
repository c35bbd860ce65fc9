// Package envelope provides time-varying scalar functions consumed by
// the PartialUtils transforms, the Morpher, and the Harmonifier (spec
// §3 Envelope, §9 design note on polymorphic envelopes).
package envelope

// Envelope is a time-varying scalar function. Implementations are
// cloned by value with Clone so that a caller (the Morpher in
// particular) can keep a private snapshot of envelopes it was handed.
type Envelope interface {
	ValueAt(time float64) float64
	Clone() Envelope
}

// Const is the trivial Envelope, constant for all time. It grounds the
// "ad-hoc-callable" variant mentioned in spec §9 without needing a
// function-valued envelope type.
type Const float64

// ValueAt implements Envelope.
func (c Const) ValueAt(float64) float64 { return float64(c) }

// Clone implements Envelope. Const is a value type, so Clone is trivial.
func (c Const) Clone() Envelope { return c }
