package sl651

import (
	"encoding/binary"
	"fmt"
)

// Buffer 顺序读写的字节缓冲区
// 写入总是追加到末尾；读取从 pos 游标开始，读写互不影响
type Buffer struct {
	data []byte
	pos  int
}

// NewBuffer 创建用于编码的空缓冲区
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// NewReader 创建用于解码的缓冲区，不复制 b
func NewReader(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes 返回缓冲区全部内容
func (b *Buffer) Bytes() []byte { return b.data }

// Len 缓冲区总长度
func (b *Buffer) Len() int { return len(b.data) }

// Pos 当前读游标位置
func (b *Buffer) Pos() int { return b.pos }

// Remaining 剩余可读字节数
func (b *Buffer) Remaining() int { return len(b.data) - b.pos }

// Span 返回 [from, to) 区间，用于计算校验
func (b *Buffer) Span(from, to int) []byte {
	return b.data[from:to]
}

// Truncate 丢弃 n 之后写入的内容，n 超出长度时不变
func (b *Buffer) Truncate(n int) {
	if n < 0 || n >= len(b.data) {
		return
	}
	b.data = b.data[:n]
	if b.pos > n {
		b.pos = n
	}
}

func (b *Buffer) WriteUint8(v uint8) {
	b.data = append(b.data, v)
}

func (b *Buffer) WriteUint16(v uint16) {
	b.data = binary.BigEndian.AppendUint16(b.data, v)
}

func (b *Buffer) WriteUint24(v uint32) {
	b.data = append(b.data, byte(v>>16), byte(v>>8), byte(v))
}

func (b *Buffer) WriteUint32(v uint32) {
	b.data = binary.BigEndian.AppendUint32(b.data, v)
}

func (b *Buffer) WriteBytes(p []byte) {
	b.data = append(b.data, p...)
}

func (b *Buffer) need(n int) error {
	if n < 0 || b.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, %d remaining", ErrShortBuffer, n, b.Remaining())
	}
	return nil
}

// PeekUint8 读取但不移动游标
func (b *Buffer) PeekUint8() (uint8, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	return b.data[b.pos], nil
}

func (b *Buffer) ReadUint8() (uint8, error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.data[b.pos]
	b.pos++
	return v, nil
}

func (b *Buffer) ReadUint16() (uint16, error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(b.data[b.pos:])
	b.pos += 2
	return v, nil
}

func (b *Buffer) ReadUint24() (uint32, error) {
	if err := b.need(3); err != nil {
		return 0, err
	}
	p := b.data[b.pos:]
	b.pos += 3
	return uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2]), nil
}

func (b *Buffer) ReadUint32() (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(b.data[b.pos:])
	b.pos += 4
	return v, nil
}

// ReadBytes 读取 n 字节并返回副本
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if err := b.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.data[b.pos:b.pos+n])
	b.pos += n
	return out, nil
}

// ReadRest 读取剩余全部字节
func (b *Buffer) ReadRest() []byte {
	out, _ := b.ReadBytes(b.Remaining())
	return out
}

// Sub 截取后续 n 字节作为独立的读缓冲区，并移动游标
func (b *Buffer) Sub(n int) (*Buffer, error) {
	if err := b.need(n); err != nil {
		return nil, err
	}
	sub := NewReader(b.data[b.pos : b.pos+n])
	b.pos += n
	return sub, nil
}
