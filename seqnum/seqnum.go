// Package seqnum defines the types and methods for TCP sequence numbers so
// that comparisons and arithmetic on them can be done safely
package seqnum

// Value represents the value of a sequence number
type Value uint32

// Size represents the size of a sequence number window
type Size uint32

// SizeFromValue converts v to a Size without any range check
func SizeFromValue(v Value) Size {
	return Size(v)
}

// LessThan checks if v is before w, i.e. if v is before w in the sequence
// space
//
//	v < w iff v - w < 0, using signed 32-bit arithmetic, per RFC 1982
func (v Value) LessThan(w Value) bool {
	return int32(v-w) < 0
}

// LessThanEq returns true if v is equal to w or comes before w in the
// sequence space
func (v Value) LessThanEq(w Value) bool {
	return v == w || v.LessThan(w)
}

// InWindow checks if v is in the seqnum window of [first, first+size)
func (v Value) InWindow(first Value, size Size) bool {
	return first.Size(v) < size
}

// InRange checks if v is in the range [a, b), i.e. a <= v < b
func (v Value) InRange(a, b Value) bool {
	return a.LessThanEq(v) && v.LessThan(b)
}

// Add adds the given number to the value and returns the result
func (v Value) Add(delta Size) Value {
	return v + Value(delta)
}

// Size calculates the size of the window defined by [v, w), i.e. how many
// sequence numbers are in the modular range starting at v, up to but not
// including w
func (v Value) Size(w Value) Size {
	return Size(w - v)
}

// UpdateForward returns the value that results from advancing v by delta,
// saturating at nothing because the sequence space always wraps
func (v Value) UpdateForward(delta Size) Value {
	return v + Value(delta)
}
