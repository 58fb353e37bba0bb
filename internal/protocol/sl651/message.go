package sl651

import "fmt"

// Package 完整报文：帧头 + 正文 + 帧尾
type Package interface {
	Head() *Head
	Tail() *Tail
	Direction() Direction
	// Encode 编码整帧，自动填写正文长度与校验
	Encode(b *Buffer) error
	// Decode 解码整帧，失败时报文内容保持不变
	Decode(b *Buffer) error
	// Size 编码后的整帧字节数
	Size() int
}

// Message 带要素序列的报文，上下行报文均实现
type Message interface {
	Package
	ElementCount() int
	Elements() []Element
	GetElement(index int) (Element, error)
	PutElement(index int, el Element) error
	PushElement(el Element) error
}

// LinkMessage 链路报文：固定容量的有序要素序列
type LinkMessage struct {
	head     Head
	tail     Tail
	elements []Element
	cursor   int

	// Checksum 为空时使用 CRC16
	Checksum ChecksumFunc
}

func newLinkMessage(dir Direction, capacity int) LinkMessage {
	if capacity < 0 {
		capacity = 0
	}
	return LinkMessage{
		head:     NewHead(dir),
		tail:     Tail{EtxFlag: ETX},
		elements: make([]Element, capacity),
	}
}

func (m *LinkMessage) Head() *Head { return &m.head }

func (m *LinkMessage) Tail() *Tail { return &m.tail }

func (m *LinkMessage) Direction() Direction { return m.head.Direction }

// ElementCount 要素容量，即报文应包含的要素个数
func (m *LinkMessage) ElementCount() int { return len(m.elements) }

// Elements 返回要素序列的副本
func (m *LinkMessage) Elements() []Element {
	out := make([]Element, len(m.elements))
	copy(out, m.elements)
	return out
}

// Rewind 重置追加游标
func (m *LinkMessage) Rewind() { m.cursor = 0 }

// PutElement 直接设置第 index 个要素
func (m *LinkMessage) PutElement(index int, el Element) error {
	if index < 0 || index >= len(m.elements) {
		return fmt.Errorf("%w: element %d of %d", ErrIndexOutOfRange, index, len(m.elements))
	}
	m.elements[index] = el
	return nil
}

// GetElement 读取第 index 个要素，未设置时返回 nil
func (m *LinkMessage) GetElement(index int) (Element, error) {
	if index < 0 || index >= len(m.elements) {
		return nil, fmt.Errorf("%w: element %d of %d", ErrIndexOutOfRange, index, len(m.elements))
	}
	return m.elements[index], nil
}

// PushElement 按顺序追加要素，超出容量返回 ErrCapacityExceeded
func (m *LinkMessage) PushElement(el Element) error {
	if m.cursor >= len(m.elements) {
		return fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, len(m.elements))
	}
	m.elements[m.cursor] = el
	m.cursor++
	return nil
}

// ElementsSize 全部要素编码后的字节数
func (m *LinkMessage) ElementsSize() int {
	n := 0
	for _, el := range m.elements {
		if el != nil {
			n += el.Size()
		}
	}
	return n
}

// EncodeElements 按声明顺序编码要素，存在空位时失败
func (m *LinkMessage) EncodeElements(b *Buffer) error {
	for i, el := range m.elements {
		if el == nil {
			return fmt.Errorf("%w: element %d not set", ErrIncompleteMessage, i)
		}
		if err := el.Encode(b); err != nil {
			return fmt.Errorf("encode element %d: %w", i, err)
		}
	}
	return nil
}

// DecodeElements 依次解码直到达到要素容量或数据耗尽
func (m *LinkMessage) DecodeElements(b *Buffer) error {
	decoded, err := decodeElements(b, len(m.elements))
	if err != nil {
		return err
	}
	copy(m.elements, decoded)
	m.cursor = len(decoded)
	return nil
}

func decodeElements(b *Buffer, count int) ([]Element, error) {
	out := make([]Element, 0, count)
	for len(out) < count {
		if b.Remaining() == 0 {
			return nil, fmt.Errorf("%w: got %d of %d elements", ErrIncompleteMessage, len(out), count)
		}
		el, err := DecodeElement(b)
		if err != nil {
			return nil, fmt.Errorf("decode element %d: %w", len(out), err)
		}
		out = append(out, el)
	}
	return out, nil
}

func (m *LinkMessage) checksum() ChecksumFunc {
	if m.Checksum != nil {
		return m.Checksum
	}
	return CRC16
}

// subHead 上下行报文正文中位于要素之前的报文头
type subHead interface {
	size() int
	encode(b *Buffer) error
	decode(b *Buffer) error
}

func (m *LinkMessage) frameSize(sh subHead) int {
	return m.head.Size() + sh.size() + m.ElementsSize() + TailLen
}

func (m *LinkMessage) encodeFrame(b *Buffer, sh subHead) error {
	bodyLen := sh.size() + m.ElementsSize()
	if bodyLen > MaxBodyLen {
		return fmt.Errorf("%w: body %d bytes", ErrValueOutOfRange, bodyLen)
	}
	start, prevLen := b.Len(), m.head.Len
	// 失败时回退已写入的字节与长度字段
	fail := func(err error) error {
		b.Truncate(start)
		m.head.Len = prevLen
		return err
	}
	m.head.Len = uint16(bodyLen)
	if err := EncodeHead(b, &m.head); err != nil {
		return fail(err)
	}
	if err := sh.encode(b); err != nil {
		return fail(fmt.Errorf("encode message head: %w", err))
	}
	if err := m.EncodeElements(b); err != nil {
		return fail(err)
	}
	EncodeTail(b, &m.tail, b.Span(start, b.Len()), m.checksum())
	return nil
}

// decodeFrame 先校验 CRC 再解析正文；任何失败都不修改 m
func (m *LinkMessage) decodeFrame(b *Buffer, sh subHead) error {
	start := b.Pos()
	head, err := DecodeHead(b, m.head.Direction)
	if err != nil {
		return err
	}
	body, err := b.Sub(int(head.Len))
	if err != nil {
		return fmt.Errorf("%w: body %d bytes: %v", ErrIncompleteMessage, head.Len, err)
	}
	tail, err := DecodeTail(b, b.Span(start, b.Pos()), m.checksum())
	if err != nil {
		return err
	}
	if err := sh.decode(body); err != nil {
		return fmt.Errorf("decode message head: %w", err)
	}
	elements, err := decodeElements(body, len(m.elements))
	if err != nil {
		return err
	}
	if body.Remaining() > 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, body.Remaining())
	}
	m.head, m.tail = head, tail
	copy(m.elements, elements)
	m.cursor = len(elements)
	return nil
}
