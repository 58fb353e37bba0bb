package sl651

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_WriteRead(t *testing.T) {
	b := NewBuffer(16)
	b.WriteUint8(0x7E)
	b.WriteUint16(0x1234)
	b.WriteUint24(0xABCDEF)
	b.WriteUint32(0x01020304)
	b.WriteBytes([]byte{0xAA, 0xBB})
	require.Equal(t, 12, b.Len())

	r := NewReader(b.Bytes())
	v8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7E), v8)
	v16, _ := r.ReadUint16()
	assert.Equal(t, uint16(0x1234), v16)
	v24, _ := r.ReadUint24()
	assert.Equal(t, uint32(0xABCDEF), v24)
	v32, _ := r.ReadUint32()
	assert.Equal(t, uint32(0x01020304), v32)
	assert.Equal(t, 2, r.Remaining())
	assert.Equal(t, []byte{0xAA, 0xBB}, r.ReadRest())
	assert.Equal(t, 0, r.Remaining())
}

func TestBuffer_Short(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.ReadUint16()
	assert.True(t, errors.Is(err, ErrShortBuffer))
	// 失败不移动游标
	assert.Equal(t, 0, r.Pos())

	_, err = r.Sub(2)
	assert.True(t, errors.Is(err, ErrShortBuffer))
}

func TestBuffer_Sub(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	_, _ = r.ReadUint8()
	sub, err := r.Sub(3)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Pos())
	assert.Equal(t, []byte{2, 3, 4}, sub.ReadRest())
	assert.Equal(t, []byte{1, 2}, r.Span(0, 2))
}

func TestBuffer_Truncate(t *testing.T) {
	b := NewBuffer(0)
	b.WriteBytes([]byte{1, 2, 3, 4})
	_, err := b.ReadBytes(3)
	require.NoError(t, err)

	b.Truncate(2)
	assert.Equal(t, []byte{1, 2}, b.Bytes())
	assert.Equal(t, 2, b.Pos())

	b.Truncate(10)
	assert.Equal(t, 2, b.Len())
}
