// Package intspec defines IntSpec, the (length, endianness) value type used
// to encode and decode the fixed-width integers that appear throughout a
// binary format spec.
package intspec

import (
	"fmt"

	"github.com/LeJamon/binform/internal/bytesbuf"
)

// Endian selects byte order for an IntSpec.
type Endian int

const (
	BigEndian Endian = iota
	LittleEndian
)

// IntSpec is an immutable (length, endian) pair. Length must be in [1, 8].
type IntSpec struct {
	Length int
	Endian Endian
}

// Byte is the native-width, single-byte IntSpec; endianness is irrelevant at
// width 1 so either value of Endian decodes identically.
var Byte = IntSpec{Length: 1, Endian: BigEndian}

// New validates and constructs an IntSpec. It panics on an out-of-range
// length — an invalid IntSpec is a programmer error, not a stream anomaly.
func New(length int, endian Endian) IntSpec {
	if length < 1 || length > 8 {
		panic(fmt.Sprintf("intspec: length %d out of range [1, 8]", length))
	}
	return IntSpec{Length: length, Endian: endian}
}

// Encode emits exactly Length bytes representing the low Length*8 bits of v
// in the declared byte order. Bits above that width are silently discarded.
func (s IntSpec) Encode(v uint64) bytesbuf.ChunkedBytes {
	buf := make([]byte, s.Length)
	switch s.Endian {
	case LittleEndian:
		for i := 0; i < s.Length; i++ {
			buf[i] = byte(v >> (8 * uint(i)))
		}
	default: // BigEndian
		for i := 0; i < s.Length; i++ {
			buf[s.Length-1-i] = byte(v >> (8 * uint(i)))
		}
	}
	return bytesbuf.FromBytes(buf)
}

// Decode consumes exactly Length bytes from buf and returns the zero-extended
// 64-bit value they represent, removing those bytes from buf. It returns the
// same *bytesbuf.Underflow as ChunkedBytes.SplitPrefix if buf is short.
func (s IntSpec) Decode(buf *bytesbuf.ChunkedBytes) (uint64, error) {
	prefix, err := buf.SplitPrefix(s.Length)
	if err != nil {
		return 0, err
	}
	raw := prefix.Bytes()

	var v uint64
	switch s.Endian {
	case LittleEndian:
		for i := s.Length - 1; i >= 0; i-- {
			v = v<<8 | uint64(raw[i])
		}
	default: // BigEndian
		for i := 0; i < s.Length; i++ {
			v = v<<8 | uint64(raw[i])
		}
	}
	return v, nil
}

// Equal reports structural equality on (Length, Endian).
func (s IntSpec) Equal(other IntSpec) bool {
	return s.Length == other.Length && s.Endian == other.Endian
}
