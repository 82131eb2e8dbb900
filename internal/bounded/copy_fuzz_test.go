package bounded_test

import (
	"testing"

	"github.com/codeforesight/foresight/internal/bounded"
)

// FuzzCopy checks the bound invariant for arbitrary sources and
// capacities: the stored length never reaches the capacity, the
// terminator always follows the stored bytes, and the stored bytes are a
// prefix of the source.
func FuzzCopy(f *testing.F) {
	f.Add("", 1)
	f.Add("Alice", 64)
	f.Add("AAAAAAAAAAAA", 8)
	f.Add("short", 1)
	f.Add("exact", 6)

	f.Fuzz(func(t *testing.T, src string, size int) {
		if size < 1 || size > 4096 {
			t.Skip()
		}
		dst := make([]byte, size)
		bounded.Copy(dst, size, src)

		n := bounded.Length(dst)
		if n > size-1 {
			t.Fatalf("stored %d bytes into a buffer of size %d", n, size)
		}
		if dst[n] != bounded.Terminator {
			t.Fatalf("byte after content is %#x, want terminator", dst[n])
		}
		want := len(src)
		if want > size-1 {
			want = size - 1
		}
		// Length can report short when src itself contains a terminator
		// byte; the stored prefix must still match the source.
		if n > want {
			t.Fatalf("stored %d bytes, want at most %d", n, want)
		}
		if string(dst[:want]) != src[:want] {
			t.Fatalf("stored bytes %q are not a prefix of source %q", dst[:want], src[:want])
		}
	})
}
