package stream

import (
	"testing"

	"github.com/LeJamon/binform/internal/bytesbuf"
	"github.com/LeJamon/binform/internal/format"
	"github.com/LeJamon/binform/internal/intspec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func le(n int) intspec.IntSpec { return intspec.New(n, intspec.LittleEndian) }
func be(n int) intspec.IntSpec { return intspec.New(n, intspec.BigEndian) }

// TestIdempotentSuspension: repeated Next() calls with no new input after
// Incomplete(k) must return the same Incomplete(k).
func TestIdempotentSuspension(t *testing.T) {
	p := New(format.Skip(4))
	p.Supply([]byte{1, 2})

	out1 := p.Next()
	require.False(t, out1.Done)
	assert.Equal(t, 2, out1.NeedMore)

	out2 := p.Next()
	assert.Equal(t, out1, out2)

	p.Supply([]byte{3, 4})
	out3 := p.Next()
	require.True(t, out3.Done)
	assert.Equal(t, format.EmptyValue(), out3.Value)
}

// TestIncrementalityEquivalence: feeding a byte sequence as one chunk or as
// any split into ordered chunks produces identical results and residual
// buffers.
func TestIncrementalityEquivalence(t *testing.T) {
	spec := format.SeqOf(
		format.Variable(le(4), "n"),
		format.Bytes("n"),
	)
	payload := []byte("hello, binform")
	full := append(le(4).Encode(uint64(len(payload))).Bytes(), payload...)
	full = append(full, 0xAA, 0xBB) // trailing residual bytes

	oneChunk := New(spec)
	oneChunk.Supply(full)
	outOne := oneChunk.Next()
	require.True(t, outOne.Done)

	splits := [][]int{{1, 3, len(full) - 4}, {len(full)}, {2, 2, 2, 2, len(full) - 8}}
	for _, split := range splits {
		p := New(spec)
		offset := 0
		for _, sz := range split {
			p.Supply(full[offset : offset+sz])
			offset += sz
		}
		out := p.Next()
		require.True(t, out.Done)
		assert.True(t, out.Value.Equal(outOne.Value))
		assert.True(t, p.Remaining().Equal(oneChunk.Remaining()))
	}
}

// TestResetSemantics: after reset, consuming the same residual buffer twice
// is impossible — a second parse proceeds against the remaining bytes only.
func TestResetSemantics(t *testing.T) {
	spec := format.Integer(be(2))
	p := New(spec)
	p.Supply([]byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03})

	first := p.Next()
	require.True(t, first.Done)
	assert.Equal(t, uint64(1), first.Value.AsInteger())

	p.Reset()
	second := p.Next()
	require.True(t, second.Done)
	assert.Equal(t, uint64(2), second.Value.AsInteger())
	assert.Equal(t, 2, p.Remaining().Len())
}

func TestRepeatCountZeroYieldsEmptySeqNoBytesConsumed(t *testing.T) {
	spec := format.SeqOf(
		format.Variable(be(1), "n"),
		format.Repeat("n", format.Integer(be(1))),
	)
	p := New(spec)
	p.Supply([]byte{0})
	out := p.Next()
	require.True(t, out.Done)
	assert.Equal(t, 0, out.Value.At(1).Len())
	assert.True(t, p.Remaining().IsEmpty())
}

func TestRepeatAppliesInnerExactlyNTimes(t *testing.T) {
	spec := format.SeqOf(
		format.Variable(be(1), "n"),
		format.Repeat("n", format.Integer(be(1))),
	)
	p := New(spec)
	p.Supply([]byte{3, 10, 20, 30})
	out := p.Next()
	require.True(t, out.Done)
	items := out.Value.At(1).AsSeq()
	require.Len(t, items, 3)
	assert.Equal(t, []uint64{10, 20, 30}, []uint64{items[0].AsInteger(), items[1].AsInteger(), items[2].AsInteger()})
}

func TestEmptySeqYieldsSeqEmpty(t *testing.T) {
	p := New(format.SeqOf())
	out := p.Next()
	require.True(t, out.Done)
	assert.Equal(t, 0, out.Value.Len())
}

func TestUntilLengthZeroYieldsSeqEmpty(t *testing.T) {
	spec := format.SeqOf(
		format.Variable(be(1), "n"),
		format.Until("n", format.Integer(be(1))),
	)
	p := New(spec)
	p.Supply([]byte{0})
	out := p.Next()
	require.True(t, out.Done)
	assert.Equal(t, 0, out.Value.At(1).Len())
}

// TestADBLikeFrame is scenario S4: `<3I%I2Is`.
func TestADBLikeFrame(t *testing.T) {
	spec := format.SeqOf(
		format.Integer(le(4)), format.Integer(le(4)), format.Integer(le(4)),
		format.Variable(le(4), "len"),
		format.Integer(le(4)), format.Integer(le(4)),
		format.Bytes("len"),
	)

	payload := []byte("payload!")
	var raw []byte
	for _, v := range []uint64{111, 222, 333} {
		raw = append(raw, le(4).Encode(v).Bytes()...)
	}
	raw = append(raw, le(4).Encode(uint64(len(payload))).Bytes()...)
	raw = append(raw, le(4).Encode(444).Bytes()...)
	raw = append(raw, le(4).Encode(555).Bytes()...)
	raw = append(raw, payload...)
	require.Equal(t, 24+len(payload), len(raw))

	p := New(spec)
	p.Supply(raw)
	out := p.Next()
	require.True(t, out.Done)

	seq := out.Value.AsSeq()
	require.Len(t, seq, 7)
	assert.Equal(t, uint64(111), seq[0].AsInteger())
	assert.Equal(t, uint64(222), seq[1].AsInteger())
	assert.Equal(t, uint64(333), seq[2].AsInteger())
	assert.Equal(t, uint64(len(payload)), seq[3].AsInteger())
	assert.Equal(t, uint64(444), seq[4].AsInteger())
	assert.Equal(t, uint64(555), seq[5].AsInteger())
	assert.Equal(t, payload, seq[6].AsBytes().Bytes())
	assert.True(t, p.Remaining().IsEmpty())
}

// TestBigEndianLengthPrefixedBlock is scenario S5: `>%TBBIs`.
func TestBigEndianLengthPrefixedBlock(t *testing.T) {
	spec := format.SeqOf(
		format.Variable(be(3), "len"),
		format.Integer(be(1)), format.Integer(be(1)),
		format.Integer(be(4)),
		format.Bytes("len"),
	)

	p := New(spec)
	var raw []byte
	raw = append(raw, be(3).Encode(6).Bytes()...)
	raw = append(raw, 0xAA, 0xBB)
	raw = append(raw, be(4).Encode(99).Bytes()...)
	raw = append(raw, []byte("abc")...) // only 3 of the declared 6 payload bytes
	p.Supply(raw)

	out := p.Next()
	require.False(t, out.Done)
	assert.Equal(t, 3, out.NeedMore)

	p.Supply([]byte("def"))
	out2 := p.Next()
	require.True(t, out2.Done)
	seq := out2.Value.AsSeq()
	assert.Equal(t, uint64(6), seq[0].AsInteger())
	assert.Equal(t, "abcdef", string(seq[4].AsBytes().Bytes()))
}

// TestSwitchWithStopDefault is scenario S6.
func TestSwitchWithStopDefault(t *testing.T) {
	cases := map[uint64]*format.Spec{
		1: format.Integer(be(2)),
		2: format.Skip(4),
	}
	spec := format.SeqOf(
		format.Variable(be(1), "sel"),
		format.SwitchOf("sel", cases, format.StopSpec()),
	)

	t.Run("selector 1 decodes normally", func(t *testing.T) {
		p := New(spec)
		p.Supply([]byte{1, 0x00, 0x09})
		out := p.Next()
		require.True(t, out.Done)
		require.False(t, out.Value.IsStop())
		assert.Equal(t, uint64(9), out.Value.At(1).AsInteger())
	})

	t.Run("selector 2 decodes normally", func(t *testing.T) {
		p := New(spec)
		p.Supply([]byte{2, 0, 0, 0, 0})
		out := p.Next()
		require.True(t, out.Done)
		require.False(t, out.Value.IsStop())
		assert.Equal(t, format.EmptyValue(), out.Value.At(1))
	})

	t.Run("selector 3 yields top-level Stop", func(t *testing.T) {
		p := New(spec)
		p.Supply([]byte{3})
		out := p.Next()
		require.True(t, out.Done)
		require.True(t, out.Value.IsStop())
		assert.Equal(t, uint64(3), out.Value.StopSelector)
	})
}

// TestUntilAbsorbsStop verifies that a Stop produced inside an Until's inner
// spec surfaces as a trailing Stop element in the Until's Seq, rather than
// propagating out of the enclosing parser.
func TestUntilAbsorbsStop(t *testing.T) {
	cases := map[uint64]*format.Spec{
		1: format.Integer(be(2)),
		2: format.Skip(4),
	}
	inner := format.SeqOf(
		format.Variable(be(1), "sel"),
		format.SwitchOf("sel", cases, format.StopSpec()),
	)
	outer := format.SeqOf(
		format.Variable(be(4), "ulen"),
		format.Until("ulen", inner),
	)

	var sub []byte
	sub = append(sub, 1, 0x00, 0x09) // iteration 1: selector 1, 2-byte payload -> 3 bytes
	sub = append(sub, 2, 0, 0, 0, 0) // iteration 2: selector 2, skip 4        -> 5 bytes
	sub = append(sub, 3)             // iteration 3: selector 3 -> Stop        -> 1 byte
	require.Equal(t, 9, len(sub))

	raw := append(be(4).Encode(uint64(len(sub))).Bytes(), sub...)
	p := New(outer)
	p.Supply(raw)

	out := p.Next()
	require.True(t, out.Done)

	results := out.Value.At(1).AsSeq()
	require.Len(t, results, 3)
	assert.False(t, results[0].IsStop())
	assert.False(t, results[1].IsStop())
	assert.True(t, results[2].IsStop())
	assert.Equal(t, uint64(3), results[2].StopSelector)
	assert.True(t, p.Remaining().IsEmpty())
}

func TestBareStopSpecAbortsImmediately(t *testing.T) {
	p := New(format.StopSpec())
	out := p.Next()
	require.True(t, out.Done)
	assert.True(t, out.Value.IsStop())
	assert.Equal(t, uint64(0), out.Value.StopSelector)
}

func TestParseAllExcludesStopAndStopsBatch(t *testing.T) {
	cases := map[uint64]*format.Spec{1: format.Integer(be(1))}
	spec := format.SeqOf(format.Variable(be(1), "sel"), format.SwitchOf("sel", cases, format.StopSpec()))

	p := New(spec)
	p.Supply([]byte{1, 0xFF, 1, 0xEE, 9})
	values := p.ParseAll()
	require.Len(t, values, 2)
	assert.Equal(t, uint64(0xFF), values[0].At(1).AsInteger())
	assert.Equal(t, uint64(0xEE), values[1].At(1).AsInteger())
}

func TestUnboundVariablePanics(t *testing.T) {
	p := New(format.Bytes("missing"))
	p.Supply([]byte{1, 2, 3})
	assert.Panics(t, func() { p.Next() })
}

func TestChunkedBytesFlowsThroughBytesValue(t *testing.T) {
	spec := format.SeqOf(format.Variable(be(1), "n"), format.Bytes("n"))
	p := New(spec)
	p.Supply([]byte{3})
	p.Supply([]byte{1})
	p.Supply([]byte{2, 3})
	out := p.Next()
	require.True(t, out.Done)
	assert.True(t, out.Value.At(1).AsBytes().Equal(bytesbuf.FromBytes([]byte{1, 2, 3})))
}
