// Package buffer provides a cheap, allocation-free view over a byte slice
// used as the body of an outstanding TCP segment (see transport/tcp).
package buffer

// View is a slice of a buffer, with convenience methods. Trimming a View
// never copies: it reslices the backing array, so dropping an acknowledged
// prefix from a Segment's body is O(1) pointer arithmetic, not a copy.
type View []byte

// NewView allocates a new buffer and returns an initialized view that covers
// the whole buffer.
func NewView(size int) View {
	return make(View, size)
}

// CapLength irreversibly reduces the length of the visible section of the
// buffer to the value specified.
func (v *View) CapLength(length int) {
	// We also set the slice cap because if we don't, one would be able to
	// expand the view back to include the region just excluded. We want to
	// prevent that to avoid potential data leak if we have uninitialized
	// data in the excluded region.
	*v = (*v)[:length:length]
}

// TrimFront removes the first "count" bytes from the visible section of the
// buffer.
func (v *View) TrimFront(count int) {
	*v = (*v)[count:]
}

// Take returns the first n bytes of v as a new View sharing v's backing
// array (no copy), clamping n to len(v). Used by queueSegment to cut a
// caller's payload down to the currently available window.
func Take(n int, v View) View {
	if n > len(v) {
		n = len(v)
	}
	return v[:n:n]
}
