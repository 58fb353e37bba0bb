package sl651

import (
	"fmt"
	"math"
)

// ToBCD 将 0-99 的十进制数转为单字节 BCD
func ToBCD(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

// FromBCD 单字节 BCD 转十进制，不校验非法半字节
func FromBCD(b uint8) uint8 {
	return (b>>4)*10 + b&0x0F
}

// EncodeBCD 将 v 编码为 width 字节的压缩 BCD，高位在前
func EncodeBCD(v uint64, width int) ([]byte, error) {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		lo := v % 10
		v /= 10
		hi := v % 10
		v /= 10
		out[i] = byte(hi<<4 | lo)
	}
	if v != 0 {
		return nil, fmt.Errorf("%w: needs more than %d BCD digits", ErrValueOutOfRange, width*2)
	}
	return out, nil
}

// DecodeBCD 解码压缩 BCD，遇到 A-F 半字节返回 ErrInvalidBCD，超出 int64 返回 ErrValueOutOfRange
func DecodeBCD(p []byte) (uint64, error) {
	var v uint64
	for _, b := range p {
		hi, lo := b>>4, b&0x0F
		if hi > 9 || lo > 9 {
			return 0, fmt.Errorf("%w: 0x%02X", ErrInvalidBCD, b)
		}
		d := uint64(hi)*10 + uint64(lo)
		if v > (math.MaxInt64-d)/100 {
			return 0, fmt.Errorf("%w: %d BCD digits exceed int64", ErrValueOutOfRange, len(p)*2)
		}
		v = v*100 + d
	}
	return v, nil
}

// decodeBCDLoose 不校验地按半字节累加，用于地址等“永不失败”的字段
func decodeBCDLoose(p []byte) uint64 {
	var v uint64
	for _, b := range p {
		v = v*100 + uint64(FromBCD(b))
	}
	return v
}
