package sl651

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberElement_Precision3Example(t *testing.T) {
	el := NewNumberElement(0x10, 0x03, false)
	el.SetRaw(12345)

	b := NewBuffer(el.Size())
	require.NoError(t, el.Encode(b))
	// 高 5 位为 0，使用默认 4 字节宽度
	assert.Equal(t, "1003"+"00012345", BytesToHex(b.Bytes()))

	got, err := DecodeElement(NewReader(b.Bytes()))
	require.NoError(t, err)
	num, ok := got.(*NumberElement)
	require.True(t, ok)
	assert.Equal(t, 12.345, num.Float())
	assert.Equal(t, int64(12345), num.Raw())
}

func TestNumberElement_PrecisionProperty(t *testing.T) {
	magnitudes := []int64{0, 1, 7, 99, 12345, 98765432}
	for p := 0; p <= 7; p++ {
		for _, m := range magnitudes {
			dataDef := uint8(5<<NumberWidthShift | p) // 5 字节 10 位 BCD
			el := NewNumberElement(0x20, dataDef, false)
			el.SetRaw(m)

			b := NewBuffer(el.Size())
			require.NoError(t, el.Encode(b))
			got, err := DecodeElement(NewReader(b.Bytes()))
			require.NoError(t, err)
			num := got.(*NumberElement)

			assert.Equal(t, p, num.Precision())
			assert.Equal(t, float64(m)/math.Pow10(p), num.Float(), "p=%d m=%d", p, m)
			if p == 0 {
				assert.Equal(t, m, num.Integer())
			}
		}
	}
}

func TestNumberElement_AccessorMismatchPanics(t *testing.T) {
	fixed := NewNumberElement(0x20, 0x22, false)
	assert.Panics(t, func() { fixed.SetInteger(1) })
	assert.Panics(t, func() { _ = fixed.Integer() })

	integer := NewNumberElement(0x20, 0x20, false)
	assert.Panics(t, func() { integer.SetFloat(1.5) })
	assert.NotPanics(t, func() { _ = integer.Float() })
}

func TestNumberElement_EncodeErrors(t *testing.T) {
	unsigned := NewNumberElement(0x20, 0x10, false) // 2 字节
	unsigned.SetRaw(-1)
	assert.ErrorIs(t, unsigned.Encode(NewBuffer(0)), ErrValueOutOfRange)

	unsigned.SetRaw(10000)
	assert.ErrorIs(t, unsigned.Encode(NewBuffer(0)), ErrValueOutOfRange)

	signed := NewNumberElement(0x20, 0x10, true)
	signed.SetRaw(-99)
	b := NewBuffer(0)
	require.NoError(t, signed.Encode(b))
	assert.Equal(t, "2010FF99", BytesToHex(b.Bytes()))

	signed.SetRaw(-100)
	assert.ErrorIs(t, signed.Encode(NewBuffer(0)), ErrValueOutOfRange)
}

func TestNumberElement_DecodeOverflow(t *testing.T) {
	// 10 字节 20 位 BCD 超出 int64
	frame := append([]byte{0x10, 0x50}, bytes.Repeat([]byte{0x99}, 10)...)
	_, err := DecodeElement(NewReader(frame))
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	// 19 位但大于 MaxInt64
	frame = []byte{0x10, 0x50, 0x09, 0x99, 0x99, 0x99, 0x99, 0x99, 0x99, 0x99, 0x99, 0x99}
	_, err = DecodeElement(NewReader(frame))
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestNumberElement_SignedFlagOnDecode(t *testing.T) {
	tests := []struct {
		name       string
		raw        int64
		wantSigned bool
	}{
		{"正值", 125, false},
		{"负值", -125, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := NewNumberElement(0x39, 0x23, true)
			el.SetRaw(tt.raw)
			b := NewBuffer(0)
			require.NoError(t, el.Encode(b))

			got, err := DecodeElement(NewReader(b.Bytes()))
			require.NoError(t, err)
			num := got.(*NumberElement)
			assert.Equal(t, tt.raw, num.Raw())
			assert.Equal(t, tt.wantSigned, num.Signed)
		})
	}
}

func TestNumberElement_InvalidBCD(t *testing.T) {
	_, err := DecodeElement(NewReader([]byte{0x20, 0x10, 0x1A, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidBCD)
}

func TestNumberWidth(t *testing.T) {
	assert.Equal(t, 4, NumberWidth(0x30, 0x22))
	assert.Equal(t, DefaultNumberWidth, NumberWidth(0x30, 0x02))

	RegisterNumberWidth(0x30, 2)
	t.Cleanup(func() { RegisterNumberWidth(0x30, 0) })
	assert.Equal(t, 2, NumberWidth(0x30, 0x02))
	assert.Equal(t, 4, NumberWidth(0x30, 0x22), "dataDef width wins over the table")
}
