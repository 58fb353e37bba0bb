package sl651

import (
	"fmt"
	"math"
)

// DefaultNumberWidth 数据定义高 5 位为 0 且引导符未登记宽度时使用的字节数
const DefaultNumberWidth = 4

const negativeMarker = 0xFF

// numberWidths 按引导符登记的数值宽度，仅在数据定义未给出字节数时使用
var numberWidths = map[uint8]int{}

// RegisterNumberWidth 登记某个引导符的默认字节数，应在初始化阶段调用
func RegisterNumberWidth(identifierLeader uint8, width int) {
	if width <= 0 {
		delete(numberWidths, identifierLeader)
		return
	}
	numberWidths[identifierLeader] = width
}

// NumberWidth 计算数值要素的字节数：高 5 位优先，其次登记表，最后默认值
func NumberWidth(identifierLeader, dataDef uint8) int {
	if w := int(dataDef >> NumberWidthShift); w > 0 {
		return w
	}
	if w, ok := numberWidths[identifierLeader]; ok {
		return w
	}
	return DefaultNumberWidth
}

// NumberPrecision 数据定义低 3 位表示的小数位数
func NumberPrecision(dataDef uint8) int {
	return int(dataDef & NumberPrecisionMask)
}

// number 数值要素的公共部分：压缩 BCD，负数首字节为 0xFF
type number struct {
	// Signed 只约束编码是否允许负值。线路上不携带该标志，
	// 解码得到的要素仅在读到负值时为 true，比较往返结果时应比较 Raw。
	Signed bool
	raw    int64
}

func (n *number) encodeValue(b *Buffer, leader, dataDef uint8) error {
	width := NumberWidth(leader, dataDef)
	v := n.raw
	if v < 0 {
		if !n.Signed {
			return fmt.Errorf("%w: negative value %d for unsigned element 0x%02X", ErrValueOutOfRange, v, leader)
		}
		if width < 2 {
			return fmt.Errorf("%w: element 0x%02X too narrow for sign", ErrValueOutOfRange, leader)
		}
		p, err := EncodeBCD(uint64(-v), width-1)
		if err != nil {
			return fmt.Errorf("element 0x%02X: %w", leader, err)
		}
		b.WriteUint8(negativeMarker)
		b.WriteBytes(p)
		return nil
	}
	p, err := EncodeBCD(uint64(v), width)
	if err != nil {
		return fmt.Errorf("element 0x%02X: %w", leader, err)
	}
	b.WriteBytes(p)
	return nil
}

func (n *number) decodeValue(b *Buffer, h *elementHeader) error {
	width := NumberWidth(h.identifierLeader, h.dataDef)
	p, err := h.readPayload(b, width)
	if err != nil {
		return err
	}
	negative := p[0] == negativeMarker
	if negative {
		p = p[1:]
	}
	v, err := DecodeBCD(p)
	if err != nil {
		return fmt.Errorf("element 0x%02X: %w", h.identifierLeader, err)
	}
	n.raw = int64(v)
	if negative {
		n.raw = -n.raw
		n.Signed = true
	}
	return nil
}

// NumberElement 通用数值要素 0x01-0x75（04、05、45 除外）
// 数据定义高 5 位为字节数，低 3 位为小数位数；小数位为 0 时是整数，否则为定点数
type NumberElement struct {
	elementHeader
	number
}

// NewNumberElement 创建数值要素
func NewNumberElement(identifierLeader, dataDef uint8, signed bool) *NumberElement {
	return &NumberElement{
		elementHeader: elementHeader{identifierLeader, dataDef},
		number:        number{Signed: signed},
	}
}

// Precision 小数位数
func (e *NumberElement) Precision() int { return NumberPrecision(e.dataDef) }

// Width 数据区字节数
func (e *NumberElement) Width() int { return NumberWidth(e.identifierLeader, e.dataDef) }

// IsInteger 小数位为 0 时为整数要素
func (e *NumberElement) IsInteger() bool { return e.Precision() == 0 }

// Raw 未缩放的整数值 m，真实值为 m / 10^precision
func (e *NumberElement) Raw() int64 { return e.raw }

// SetRaw 直接设置未缩放的整数值
func (e *NumberElement) SetRaw(m int64) { e.raw = m }

// Integer 读取整数值，仅适用于小数位为 0 的要素
func (e *NumberElement) Integer() int64 {
	if !e.IsInteger() {
		panic(fmt.Sprintf("sl651: Integer on element 0x%02X with precision %d", e.identifierLeader, e.Precision()))
	}
	return e.raw
}

// SetInteger 写入整数值，仅适用于小数位为 0 的要素
func (e *NumberElement) SetInteger(v int64) {
	if !e.IsInteger() {
		panic(fmt.Sprintf("sl651: SetInteger on element 0x%02X with precision %d", e.identifierLeader, e.Precision()))
	}
	e.raw = v
}

// Float 按小数位缩放后的值
func (e *NumberElement) Float() float64 {
	return float64(e.raw) / math.Pow10(e.Precision())
}

// SetFloat 写入定点值，按小数位四舍五入；仅适用于小数位非 0 的要素
func (e *NumberElement) SetFloat(v float64) {
	if e.IsInteger() {
		panic(fmt.Sprintf("sl651: SetFloat on integer element 0x%02X", e.identifierLeader))
	}
	e.raw = int64(math.Round(v * math.Pow10(e.Precision())))
}

func (e *NumberElement) Size() int { return ElementIdentifierLen + e.Width() }

func (e *NumberElement) Encode(b *Buffer) error {
	e.encodeHeader(b)
	return e.encodeValue(b, e.identifierLeader, e.dataDef)
}

func (e *NumberElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	return e.decodeValue(b, &e.elementHeader)
}

// ExtendNumberElement 扩展标识符数值要素：FF + 扩展字节 + 数据定义 + 数值
// 通用分派不识别 FF，需由了解上下文的调用方直接解码
type ExtendNumberElement struct {
	NumberElement
	ExtIdentifier uint8
}

// NewExtendNumberElement 创建扩展数值要素
func NewExtendNumberElement(extIdentifier, dataDef uint8, signed bool) *ExtendNumberElement {
	return &ExtendNumberElement{
		NumberElement: *NewNumberElement(LeaderCustom, dataDef, signed),
		ExtIdentifier: extIdentifier,
	}
}

func (e *ExtendNumberElement) Size() int { return ElementIdentifierLen + 1 + e.Width() }

func (e *ExtendNumberElement) Encode(b *Buffer) error {
	b.WriteUint8(e.identifierLeader)
	b.WriteUint8(e.ExtIdentifier)
	b.WriteUint8(e.dataDef)
	return e.encodeValue(b, e.identifierLeader, e.dataDef)
}

func (e *ExtendNumberElement) Decode(b *Buffer) error {
	if b.Remaining() < ElementIdentifierLen+1 {
		return truncated(e.identifierLeader, ElementIdentifierLen+1, b)
	}
	e.identifierLeader, _ = b.ReadUint8()
	if e.identifierLeader != LeaderCustom {
		return fmt.Errorf("%w: 0x%02X is not an extended identifier", ErrUnknownIdentifier, e.identifierLeader)
	}
	e.ExtIdentifier, _ = b.ReadUint8()
	e.dataDef, _ = b.ReadUint8()
	return e.decodeValue(b, &e.elementHeader)
}
