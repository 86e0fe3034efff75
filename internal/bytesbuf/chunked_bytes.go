// Package bytesbuf implements ChunkedBytes, the byte-level substrate for the
// format engine: an ordered queue of immutable byte slices that supports
// cheap append and cheap prefix extraction without linearising the content.
package bytesbuf

import "fmt"

// Underflow is returned by SplitPrefix when the buffer holds fewer than the
// requested number of bytes. Need is how many additional bytes are missing.
type Underflow struct {
	Need int
}

func (e *Underflow) Error() string {
	return fmt.Sprintf("bytesbuf: underflow, need %d more byte(s)", e.Need)
}

// ChunkedBytes is an ordered sequence of immutable byte slices plus a cached
// total length. The zero value is an empty buffer, ready to use.
type ChunkedBytes struct {
	chunks [][]byte
	length int
}

// New returns an empty ChunkedBytes.
func New() ChunkedBytes {
	return ChunkedBytes{}
}

// FromBytes wraps a single slice as a ChunkedBytes. The slice is retained,
// not copied; callers must not mutate it afterwards.
func FromBytes(p []byte) ChunkedBytes {
	if len(p) == 0 {
		return ChunkedBytes{}
	}
	return ChunkedBytes{chunks: [][]byte{p}, length: len(p)}
}

// ZeroFill returns a ChunkedBytes holding n zero bytes.
func ZeroFill(n int) ChunkedBytes {
	if n <= 0 {
		return ChunkedBytes{}
	}
	return ChunkedBytes{chunks: [][]byte{make([]byte, n)}, length: n}
}

// Append adds p as a new chunk. O(1) amortised; p is retained, not copied.
func (c *ChunkedBytes) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	c.chunks = append(c.chunks, p)
	c.length += len(p)
}

// AppendChunked concatenates other onto c in O(1) amortised time, sharing
// other's underlying chunks rather than copying them.
func (c *ChunkedBytes) AppendChunked(other ChunkedBytes) {
	if other.length == 0 {
		return
	}
	c.chunks = append(c.chunks, other.chunks...)
	c.length += other.length
}

// Len returns the total number of bytes held, in O(1).
func (c ChunkedBytes) Len() int {
	return c.length
}

// IsEmpty reports whether the buffer holds no bytes.
func (c ChunkedBytes) IsEmpty() bool {
	return c.length == 0
}

// SplitPrefix removes and returns the first n bytes as a distinct
// ChunkedBytes value, leaving c holding the remainder. If c holds fewer than
// n bytes, it returns an *Underflow describing the shortfall and leaves c
// entirely unchanged.
func (c *ChunkedBytes) SplitPrefix(n int) (ChunkedBytes, error) {
	if n <= 0 {
		return ChunkedBytes{}, nil
	}
	if c.length < n {
		return ChunkedBytes{}, &Underflow{Need: n - c.length}
	}

	var prefixChunks [][]byte
	remaining := n
	idx := 0
	for ; idx < len(c.chunks); idx++ {
		chunk := c.chunks[idx]
		if remaining < len(chunk) {
			break
		}
		prefixChunks = append(prefixChunks, chunk)
		remaining -= len(chunk)
		if remaining == 0 {
			idx++
			break
		}
	}

	var suffixChunks [][]byte
	if remaining > 0 && idx < len(c.chunks) {
		split := c.chunks[idx]
		prefixChunks = append(prefixChunks, split[:remaining])
		suffixChunks = append(suffixChunks, split[remaining:])
		idx++
	}
	suffixChunks = append(suffixChunks, c.chunks[idx:]...)

	prefix := ChunkedBytes{chunks: prefixChunks, length: n}
	*c = ChunkedBytes{chunks: suffixChunks, length: c.length - n}
	return prefix, nil
}

// Resize returns a ChunkedBytes of exactly n bytes: c's content truncated if
// longer, or zero-padded on the right if shorter.
func (c ChunkedBytes) Resize(n int) ChunkedBytes {
	if n <= 0 {
		return ChunkedBytes{}
	}
	if c.length >= n {
		out := c
		prefix, _ := out.SplitPrefix(n)
		return prefix
	}
	out := ChunkedBytes{chunks: append([][]byte(nil), c.chunks...), length: c.length}
	out.Append(make([]byte, n-c.length))
	return out
}

// Bytes flattens the buffer into a single contiguous slice. Use sparingly —
// it is the one O(n)-copy operation in the type.
func (c ChunkedBytes) Bytes() []byte {
	out := make([]byte, 0, c.length)
	for _, chunk := range c.chunks {
		out = append(out, chunk...)
	}
	return out
}

// Equal reports whether c and other hold identical concatenated byte
// sequences, regardless of how each is chunked.
func (c ChunkedBytes) Equal(other ChunkedBytes) bool {
	if c.length != other.length {
		return false
	}
	ai, bi := 0, 0
	aOff, bOff := 0, 0
	for ai < len(c.chunks) && bi < len(other.chunks) {
		a := c.chunks[ai][aOff:]
		b := other.chunks[bi][bOff:]
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		for i := 0; i < n; i++ {
			if a[i] != b[i] {
				return false
			}
		}
		aOff += n
		bOff += n
		if aOff == len(c.chunks[ai]) {
			ai++
			aOff = 0
		}
		if bOff == len(other.chunks[bi]) {
			bi++
			bOff = 0
		}
	}
	return true
}
