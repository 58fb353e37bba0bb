package sl651

import "fmt"

// Element 报文正文中的要素：标识符引导符 + 数据定义 + 数据
type Element interface {
	IdentifierLeader() uint8
	DataDef() uint8
	// Encode 写入完整要素（含标识符）
	Encode(b *Buffer) error
	// Decode 读取完整要素（含标识符）
	Decode(b *Buffer) error
	// Size 编码后的字节数
	Size() int
}

type elementHeader struct {
	identifierLeader uint8
	dataDef          uint8
}

func (h *elementHeader) IdentifierLeader() uint8 { return h.identifierLeader }

func (h *elementHeader) DataDef() uint8 { return h.dataDef }

func (h *elementHeader) encodeHeader(b *Buffer) {
	b.WriteUint8(h.identifierLeader)
	b.WriteUint8(h.dataDef)
}

func (h *elementHeader) decodeHeader(b *Buffer) error {
	if b.Remaining() < ElementIdentifierLen {
		return truncated(h.identifierLeader, ElementIdentifierLen, b)
	}
	h.identifierLeader, _ = b.ReadUint8()
	h.dataDef, _ = b.ReadUint8()
	return nil
}

// readPayload 读取定长数据区，不足时返回 ErrTruncatedElement
func (h *elementHeader) readPayload(b *Buffer, n int) ([]byte, error) {
	if b.Remaining() < n {
		return nil, truncated(h.identifierLeader, n, b)
	}
	return b.ReadBytes(n)
}

func truncated(leader uint8, need int, b *Buffer) error {
	return fmt.Errorf("%w: leader 0x%02X needs %d bytes, %d remaining", ErrTruncatedElement, leader, need, b.Remaining())
}

// specialElements 特殊标识符到要素构造函数的映射
var specialElements = map[uint8]func(leader uint8) Element{
	LeaderDateTime:      func(uint8) Element { return NewObserveTimeElement() },
	LeaderAddress:       func(uint8) Element { return NewRemoteStationAddrElement() },
	LeaderArtificial:    func(uint8) Element { return NewArtificialElement() },
	LeaderPicture:       func(uint8) Element { return NewPictureElement() },
	LeaderDRP5MIN:       func(uint8) Element { return NewDRP5MINElement() },
	LeaderFlowRateData:  func(uint8) Element { return NewFlowRateDataElement() },
	LeaderTimeStepCode:  func(uint8) Element { return NewTimeStepCodeElement() },
	LeaderDuration:      func(uint8) Element { return NewDurationElement() },
	LeaderStationStatus: func(uint8) Element { return NewStationStatusElement() },
}

func init() {
	for l := LeaderRelWaterLevel1; l <= LeaderRelWaterLevel8; l++ {
		specialElements[uint8(l)] = func(leader uint8) Element { return NewRelativeWaterLevelElement(leader) }
	}
}

// NewElement 按引导符创建空要素，用于解码
func NewElement(identifierLeader uint8) (Element, error) {
	if ctor, ok := specialElements[identifierLeader]; ok {
		return ctor(identifierLeader), nil
	}
	if IsNumberElement(identifierLeader) {
		// 数值要素的数据定义在解码时读取
		return &NumberElement{elementHeader: elementHeader{identifierLeader: identifierLeader}}, nil
	}
	return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownIdentifier, identifierLeader)
}

// DecodeElement 根据引导符分派解码下一个要素
func DecodeElement(b *Buffer) (Element, error) {
	leader, err := b.PeekUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: no identifier leader", ErrTruncatedElement)
	}
	el, err := NewElement(leader)
	if err != nil {
		return nil, err
	}
	if err := el.Decode(b); err != nil {
		return nil, err
	}
	return el, nil
}
