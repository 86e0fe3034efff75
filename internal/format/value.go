package format

import (
	"fmt"

	"github.com/LeJamon/binform/internal/bytesbuf"
)

// ValueKind tags the variant of a decoded Value.
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueInteger
	ValueBytes
	ValueSeq
	ValueStop
)

// Value is the tagged tree produced by parsing, and accepted by encoding.
// Integers are unsigned, always widened to 64 bits. A Stop value carries the
// Switch spec that rejected the selector and the offending selector value,
// or, for a bare Stop node, that Stop spec and selector 0.
type Value struct {
	Kind ValueKind

	Int uint64

	Buf bytesbuf.ChunkedBytes

	Items []Value

	StopSpec     *Spec
	StopSelector uint64
}

// EmptyValue is the result of Skip.
func EmptyValue() Value { return Value{Kind: ValueEmpty} }

// IntegerValue wraps a decoded integer.
func IntegerValue(v uint64) Value { return Value{Kind: ValueInteger, Int: v} }

// BytesValue wraps a decoded byte run.
func BytesValue(b bytesbuf.ChunkedBytes) Value { return Value{Kind: ValueBytes, Buf: b} }

// SeqValue wraps an ordered list of child values.
func SeqValue(items []Value) Value { return Value{Kind: ValueSeq, Items: items} }

// StopValue records a stream-level rejection.
func StopValue(spec *Spec, selector uint64) Value {
	return Value{Kind: ValueStop, StopSpec: spec, StopSelector: selector}
}

// IsStop reports whether v is the Stop variant.
func (v Value) IsStop() bool { return v.Kind == ValueStop }

// At returns the i-th child of a Seq value. It panics if v is not a Seq —
// indexing a non-Seq is a programmer error.
func (v Value) At(i int) Value {
	if v.Kind != ValueSeq {
		panic(fmt.Sprintf("format: At called on non-Seq value (%v)", v.Kind))
	}
	return v.Items[i]
}

// Len returns the number of children of a Seq value, and panics otherwise.
func (v Value) Len() int {
	if v.Kind != ValueSeq {
		panic(fmt.Sprintf("format: Len called on non-Seq value (%v)", v.Kind))
	}
	return len(v.Items)
}

// AsInteger returns the decoded integer, panicking if v is not Integer.
func (v Value) AsInteger() uint64 {
	if v.Kind != ValueInteger {
		panic(fmt.Sprintf("format: AsInteger called on non-Integer value (%v)", v.Kind))
	}
	return v.Int
}

// AsBytes returns the decoded byte run, panicking if v is not Bytes.
func (v Value) AsBytes() bytesbuf.ChunkedBytes {
	if v.Kind != ValueBytes {
		panic(fmt.Sprintf("format: AsBytes called on non-Bytes value (%v)", v.Kind))
	}
	return v.Buf
}

// AsSeq returns the child list, panicking if v is not Seq.
func (v Value) AsSeq() []Value {
	if v.Kind != ValueSeq {
		panic(fmt.Sprintf("format: AsSeq called on non-Seq value (%v)", v.Kind))
	}
	return v.Items
}

// Equal reports structural equality; Bytes equality compares the underlying
// byte content rather than chunk shape.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueEmpty:
		return true
	case ValueInteger:
		return v.Int == other.Int
	case ValueBytes:
		return v.Buf.Equal(other.Buf)
	case ValueSeq:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	case ValueStop:
		return v.StopSpec == other.StopSpec && v.StopSelector == other.StopSelector
	default:
		return false
	}
}
