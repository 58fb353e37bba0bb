package sl651

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHead(dir Direction) Head {
	h := NewHead(dir)
	h.Addr = AddrPair{CenterAddr: 0x01, StationAddr: DecodeAddress([5]byte{0x00, 0x12, 0x34, 0x56, 0x78})}
	h.Password = 0x1234
	h.FuncCode = FuncHour
	h.Len = 0x0020
	return h
}

func TestHead_RoundTripSTX(t *testing.T) {
	h := sampleHead(Up)
	b := NewBuffer(HeadSTXLen)
	require.NoError(t, EncodeHead(b, &h))
	require.Equal(t, HeadSTXLen, b.Len())

	r := NewReader(b.Bytes())
	got, err := DecodeHead(r, Up)
	require.NoError(t, err)
	assert.Equal(t, HeadSTXLen, r.Pos())
	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("head mismatch (-want +got):\n%s", diff)
	}
}

func TestHead_RoundTripSYN(t *testing.T) {
	h := sampleHead(Down)
	h.StxFlag = SYN
	h.Seq = Sequence{Count: 3, Index: 2}
	b := NewBuffer(HeadSYNLen)
	require.NoError(t, EncodeHead(b, &h))
	require.Equal(t, HeadSYNLen, b.Len())
	assert.Equal(t, HeadSYNLen, h.Size())

	r := NewReader(b.Bytes())
	got, err := DecodeHead(r, Down)
	require.NoError(t, err)
	assert.Equal(t, HeadSYNLen, r.Pos())
	assert.Equal(t, Sequence{Count: 3, Index: 2}, got.Seq)
	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("head mismatch (-want +got):\n%s", diff)
	}
}

func TestHead_WireLayout(t *testing.T) {
	h := sampleHead(Up)
	b := NewBuffer(HeadSTXLen)
	require.NoError(t, EncodeHead(b, &h))
	assert.Equal(t, "7E7E010012345678123434002002", BytesToHex(b.Bytes()))
}

func TestDecodeHead_Malformed(t *testing.T) {
	valid := func() []byte {
		h := sampleHead(Up)
		b := NewBuffer(HeadSTXLen)
		require.NoError(t, EncodeHead(b, &h))
		return b.Bytes()
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"长度不足", func(p []byte) []byte { return p[:HeadSTXLen-1] }},
		{"非法起始符", func(p []byte) []byte {
			p[0] = 0x68
			return p
		}},
		{"非法STX标志", func(p []byte) []byte {
			p[HeadSTXLen-1] = 0x05
			return p
		}},
		{"SYN缺少包序列", func(p []byte) []byte {
			p[HeadSTXLen-1] = SYN
			return p
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeHead(NewReader(tt.mutate(valid())), Up)
			assert.ErrorIs(t, err, ErrMalformedHead)
		})
	}
}

func TestEncodeHead_InvalidFlag(t *testing.T) {
	h := sampleHead(Up)
	h.StxFlag = ETX
	assert.ErrorIs(t, EncodeHead(NewBuffer(0), &h), ErrMalformedHead)
}

func TestTail_RoundTripAndMismatch(t *testing.T) {
	span := []byte("7E7E body bytes")
	b := NewBuffer(TailLen)
	tail := Tail{EtxFlag: ETB}
	EncodeTail(b, &tail, span, nil)
	require.Equal(t, TailLen, b.Len())
	assert.Equal(t, CRC16(span), tail.CRC)

	got, err := DecodeTail(NewReader(b.Bytes()), span, CRC16)
	require.NoError(t, err)
	assert.Equal(t, tail, got)
	assert.True(t, got.HasMore())

	for i := range span {
		flipped := append([]byte(nil), span...)
		flipped[i] ^= 0xFF
		_, err := DecodeTail(NewReader(b.Bytes()), flipped, CRC16)
		assert.ErrorIs(t, err, ErrChecksumMismatch, "flip byte %d", i)
	}
}
