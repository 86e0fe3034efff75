package intspec

import (
	"testing"

	"github.com/LeJamon/binform/internal/bytesbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		spec   IntSpec
		value  uint64
		wire   []byte
	}{
		{"be-length-1-min", New(1, BigEndian), 0, []byte{0x00}},
		{"be-length-1-max", New(1, BigEndian), 0xff, []byte{0xff}},
		{"le-length-2", New(2, LittleEndian), 0x1234, []byte{0x34, 0x12}},
		{"be-length-2", New(2, BigEndian), 0x1234, []byte{0x12, 0x34}},
		{"be-length-3", New(3, BigEndian), 0x010203, []byte{0x01, 0x02, 0x03}},
		{"le-length-4", New(4, LittleEndian), 0xdeadbeef, []byte{0xef, 0xbe, 0xad, 0xde}},
		{"be-length-8-max", New(8, BigEndian), 0xffffffffffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"le-length-8", New(8, LittleEndian), 0x0102030405060708, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.spec.Encode(tt.value)
			assert.Equal(t, tt.wire, encoded.Bytes())

			buf := bytesbuf.FromBytes(append([]byte(nil), tt.wire...))
			decoded, err := tt.spec.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.value, decoded)
			assert.True(t, buf.IsEmpty())
		})
	}
}

func TestEncodeTruncatesOverlongValue(t *testing.T) {
	s := New(1, BigEndian)
	encoded := s.Encode(0x1FF) // only the low byte (0xFF) should survive
	assert.Equal(t, []byte{0xFF}, encoded.Bytes())
}

func TestDecodeUnderflow(t *testing.T) {
	s := New(4, BigEndian)
	buf := bytesbuf.FromBytes([]byte{1, 2})
	_, err := s.Decode(&buf)
	require.Error(t, err)
	assert.Equal(t, 2, buf.Len(), "short buffer must be left untouched")
}

func TestNewPanicsOnInvalidLength(t *testing.T) {
	assert.Panics(t, func() { New(0, BigEndian) })
	assert.Panics(t, func() { New(9, BigEndian) })
}

func TestByteAliasIsWidthOne(t *testing.T) {
	assert.Equal(t, 1, Byte.Length)
}
