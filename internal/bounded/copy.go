// Package bounded provides the bounded copy primitive used everywhere
// caller-controlled data flows into a fixed-capacity buffer.
//
// The design trade-off is explicit: when a source exceeds the destination
// capacity it is silently truncated. Data loss is preferred over writing
// past the destination. Truncation is therefore not an error and no error
// is ever returned.
package bounded

// Terminator marks the end of the written bytes in a destination buffer,
// mirroring the C NUL convention of the record layouts this package models.
const Terminator byte = 0x00

// Copy writes at most size-1 bytes of src into dst followed by a
// terminator byte. size must be the true capacity of dst; the function
// trusts it completely and callers must never pass a value exceeding the
// actual allocation. A size of zero performs no write at all.
//
// After Copy returns, dst holds min(len(src), size-1) bytes of src and a
// terminator at the first unused position. Copy never fails and never
// writes beyond size bytes, regardless of the length of src.
func Copy(dst []byte, size int, src string) {
	if size == 0 {
		return
	}
	n := len(src)
	if n > size-1 {
		n = size - 1
	}
	copy(dst[:n], src[:n])
	dst[n] = Terminator
}

// Length returns the number of bytes in buf before the first terminator.
// A buffer that was never written through Copy reports its full length.
func Length(buf []byte) int {
	for i, b := range buf {
		if b == Terminator {
			return i
		}
	}
	return len(buf)
}
