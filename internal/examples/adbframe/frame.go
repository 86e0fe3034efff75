// Package adbframe is a worked example built on the format engine: a
// length-prefixed, optionally LZ4-compressed frame, in the spirit of the
// peer protocol's message header. It shows a Switch node picking between
// two shapes (a bare length field, or a length plus an original-size
// field) and a Bytes payload whose decompression happens after parsing,
// the same split the header/compression code keeps separate.
package adbframe

import (
	"fmt"

	"github.com/LeJamon/binform/internal/bytesbuf"
	"github.com/LeJamon/binform/internal/format"
	"github.com/LeJamon/binform/internal/intspec"
	"github.com/pierrec/lz4"
)

// Algorithm identifies how Payload is compressed on the wire.
type Algorithm uint8

const (
	AlgorithmNone Algorithm = 0
	AlgorithmLZ4  Algorithm = 1
)

// MinCompressibleSize mirrors the threshold below which compression isn't
// attempted, since LZ4's own framing overhead would outweigh the saving.
const MinCompressibleSize = 70

// Frame is the decoded shape of one adbframe message.
type Frame struct {
	Algorithm        Algorithm
	UncompressedSize uint32 // meaningful only when Algorithm != AlgorithmNone
	Payload          []byte // wire bytes: compressed if Algorithm != AlgorithmNone
}

var be1 = intspec.New(1, intspec.BigEndian)
var be4 = intspec.New(4, intspec.BigEndian)

// Spec is the wire format:
//
//	flag:  u8   (0 = none, 1 = lz4)
//	len:   u32  (byte length of Payload as it appears on the wire)
//	       if flag == 1: ulen u32 (original, uncompressed length)
//	payload: len bytes
func Spec() *format.Spec {
	cases := map[uint64]*format.Spec{
		uint64(AlgorithmNone): format.SeqOf(),
		uint64(AlgorithmLZ4):  format.Variable(be4, "ulen"),
	}
	return format.SeqOf(
		format.Variable(be1, "flag"),
		format.Variable(be4, "len"),
		format.SwitchOf("flag", cases, format.StopSpec()),
		format.Bytes("len"),
	)
}

// ValueOf converts a decoded Value (as produced by stream.Parser against
// Spec()) into a Frame. Panics if value does not have Spec()'s shape,
// mirroring the encoder's own shape-mismatch panics.
func ValueOf(v format.Value) Frame {
	top := v.AsSeq()
	if len(top) != 4 {
		panic(fmt.Sprintf("adbframe: expected 4 top-level fields, got %d", len(top)))
	}
	f := Frame{
		Algorithm: Algorithm(top[0].AsInteger()),
		Payload:   top[3].AsBytes().Bytes(),
	}
	if f.Algorithm == AlgorithmLZ4 {
		f.UncompressedSize = uint32(top[2].AsInteger())
	}
	return f
}

// ToValue builds the format.Value tree Spec() expects to encode f.
func (f Frame) ToValue() format.Value {
	var switchBranch format.Value
	if f.Algorithm == AlgorithmLZ4 {
		switchBranch = format.IntegerValue(uint64(f.UncompressedSize))
	} else {
		switchBranch = format.SeqValue(nil)
	}
	return format.SeqValue([]format.Value{
		format.IntegerValue(uint64(f.Algorithm)),
		format.IntegerValue(uint64(len(f.Payload))),
		switchBranch,
		format.BytesValue(bytesbuf.FromBytes(f.Payload)),
	})
}

// Pack compresses data with LZ4 when it is large enough to be worth it and
// returns the Frame ready for encoding. Compression is skipped (Algorithm
// stays AlgorithmNone) when data is short or doesn't actually shrink.
func Pack(data []byte) (Frame, error) {
	if len(data) < MinCompressibleSize {
		return Frame{Algorithm: AlgorithmNone, Payload: data}, nil
	}

	bound := lz4.CompressBlockBound(len(data))
	compressed := make([]byte, bound)
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return Frame{}, fmt.Errorf("adbframe: lz4 compress: %w", err)
	}
	if n == 0 || n >= len(data) {
		return Frame{Algorithm: AlgorithmNone, Payload: data}, nil
	}
	return Frame{Algorithm: AlgorithmLZ4, UncompressedSize: uint32(len(data)), Payload: compressed[:n]}, nil
}

// Unpack returns data's original bytes, decompressing if necessary.
func (f Frame) Unpack() ([]byte, error) {
	if f.Algorithm == AlgorithmNone {
		return f.Payload, nil
	}
	out := make([]byte, f.UncompressedSize)
	n, err := lz4.UncompressBlock(f.Payload, out)
	if err != nil {
		return nil, fmt.Errorf("adbframe: lz4 decompress: %w", err)
	}
	if uint32(n) != f.UncompressedSize {
		return nil, fmt.Errorf("adbframe: decompressed %d bytes, expected %d", n, f.UncompressedSize)
	}
	return out, nil
}
