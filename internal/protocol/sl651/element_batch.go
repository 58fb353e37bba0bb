package sl651

import (
	"fmt"
	"math"
)

const (
	drpInvalid = 0xFF
	rwlInvalid = 0xFFFFFF
	rwlSample  = RelWaterLevelLen / RelWaterLevelSamples
)

// DRP5MINElement 1 小时内每 5 分钟时段雨量 F460 + 12 字节
// 每字节一个时段，单位 0.1mm，0xFF 表示无效
type DRP5MINElement struct {
	elementHeader
	Data [DRP5MINLen]byte
}

func NewDRP5MINElement() *DRP5MINElement {
	e := &DRP5MINElement{elementHeader: elementHeader{LeaderDRP5MIN, DataDefDRP5MIN}}
	for i := range e.Data {
		e.Data[i] = drpInvalid
	}
	return e
}

func (e *DRP5MINElement) Size() int { return ElementIdentifierLen + DRP5MINLen }

func (e *DRP5MINElement) Encode(b *Buffer) error {
	e.encodeHeader(b)
	b.WriteBytes(e.Data[:])
	return nil
}

func (e *DRP5MINElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	p, err := e.readPayload(b, DRP5MINLen)
	if err != nil {
		return err
	}
	copy(e.Data[:], p)
	return nil
}

// ValueAt 返回第 index 个时段的雨量(mm)及其有效性
func (e *DRP5MINElement) ValueAt(index int) (float64, bool, error) {
	if index < 0 || index >= DRP5MINSamples {
		return 0, false, fmt.Errorf("%w: DRP5MIN sample %d", ErrIndexOutOfRange, index)
	}
	raw := e.Data[index]
	if raw == drpInvalid {
		return 0, false, nil
	}
	return float64(raw) / 10, true, nil
}

// SetValueAt 设置第 index 个时段的雨量(mm)，负值表示无效
func (e *DRP5MINElement) SetValueAt(index int, mm float64) error {
	if index < 0 || index >= DRP5MINSamples {
		return fmt.Errorf("%w: DRP5MIN sample %d", ErrIndexOutOfRange, index)
	}
	if mm < 0 {
		e.Data[index] = drpInvalid
		return nil
	}
	// 换算前拦截 NaN 与超过 25.4mm 的值
	scaled := mm*10 + 0.5
	if math.IsNaN(mm) || scaled >= drpInvalid {
		return fmt.Errorf("%w: rainfall %.1fmm", ErrValueOutOfRange, mm)
	}
	e.Data[index] = byte(scaled)
	return nil
}

// RelativeWaterLevelElement 1 小时内每 5 分钟间隔相对水位 F5C0-FCC0 + 24 字节
// 共 8 组，每组 3 字节 HEX，单位 0.01m，0xFFFFFF 表示无效；引导符区分水位 1-8
type RelativeWaterLevelElement struct {
	elementHeader
	Data [RelWaterLevelLen]byte
}

// NewRelativeWaterLevelElement identifierLeader 必须在 F5-FC 之间，否则按 F5 处理
func NewRelativeWaterLevelElement(identifierLeader uint8) *RelativeWaterLevelElement {
	if !IsRelativeWaterLevel(identifierLeader) {
		identifierLeader = LeaderRelWaterLevel1
	}
	e := &RelativeWaterLevelElement{elementHeader: elementHeader{identifierLeader, DataDefRelWaterLevel}}
	for i := range e.Data {
		e.Data[i] = 0xFF
	}
	return e
}

// Slot 水位序号 1-8
func (e *RelativeWaterLevelElement) Slot() int {
	return int(e.identifierLeader-LeaderRelWaterLevel1) + 1
}

func (e *RelativeWaterLevelElement) Size() int { return ElementIdentifierLen + RelWaterLevelLen }

func (e *RelativeWaterLevelElement) Encode(b *Buffer) error {
	e.encodeHeader(b)
	b.WriteBytes(e.Data[:])
	return nil
}

func (e *RelativeWaterLevelElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	p, err := e.readPayload(b, RelWaterLevelLen)
	if err != nil {
		return err
	}
	copy(e.Data[:], p)
	return nil
}

// ValueAt 返回第 index 组相对水位(m)及其有效性
func (e *RelativeWaterLevelElement) ValueAt(index int) (float64, bool, error) {
	if index < 0 || index >= RelWaterLevelSamples {
		return 0, false, fmt.Errorf("%w: water level sample %d", ErrIndexOutOfRange, index)
	}
	p := e.Data[index*rwlSample:]
	raw := uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
	if raw == rwlInvalid {
		return 0, false, nil
	}
	return float64(raw) / 100, true, nil
}

// SetValueAt 设置第 index 组相对水位(m)，负值表示无效
func (e *RelativeWaterLevelElement) SetValueAt(index int, meters float64) error {
	if index < 0 || index >= RelWaterLevelSamples {
		return fmt.Errorf("%w: water level sample %d", ErrIndexOutOfRange, index)
	}
	if math.IsNaN(meters) {
		return fmt.Errorf("%w: water level NaN", ErrValueOutOfRange)
	}
	raw := uint32(rwlInvalid)
	if meters >= 0 {
		scaled := meters*100 + 0.5
		if scaled >= rwlInvalid {
			return fmt.Errorf("%w: water level %.2fm", ErrValueOutOfRange, meters)
		}
		raw = uint32(scaled)
	}
	p := e.Data[index*rwlSample:]
	p[0], p[1], p[2] = byte(raw>>16), byte(raw>>8), byte(raw)
	return nil
}

// FlowRateDataElement 流速批量数据 FDF6，数据长度由数据定义高 5 位给出
type FlowRateDataElement struct {
	elementHeader
	Data []byte
}

func NewFlowRateDataElement() *FlowRateDataElement {
	e := &FlowRateDataElement{elementHeader: elementHeader{LeaderFlowRateData, DataDefFlowRateData}}
	e.Data = make([]byte, e.width())
	return e
}

func (e *FlowRateDataElement) width() int { return int(e.dataDef >> NumberWidthShift) }

func (e *FlowRateDataElement) Size() int { return ElementIdentifierLen + e.width() }

func (e *FlowRateDataElement) Encode(b *Buffer) error {
	if len(e.Data) != e.width() {
		return fmt.Errorf("%w: flow rate data %d bytes, expected %d", ErrValueOutOfRange, len(e.Data), e.width())
	}
	e.encodeHeader(b)
	b.WriteBytes(e.Data)
	return nil
}

func (e *FlowRateDataElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	p, err := e.readPayload(b, e.width())
	if err != nil {
		return err
	}
	e.Data = p
	return nil
}

// restElement 数据区占用正文剩余全部字节的要素（人工置数、图片）
type restElement struct {
	elementHeader
	Data []byte
}

func (e *restElement) Size() int { return ElementIdentifierLen + len(e.Data) }

func (e *restElement) Encode(b *Buffer) error {
	e.encodeHeader(b)
	b.WriteBytes(e.Data)
	return nil
}

func (e *restElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	e.Data = b.ReadRest()
	return nil
}

// ArtificialElement 人工置数 F2F2 + ASCII 文本，必须是正文最后一个要素
type ArtificialElement struct {
	restElement
}

func NewArtificialElement() *ArtificialElement {
	return &ArtificialElement{restElement{elementHeader: elementHeader{LeaderArtificial, DataDefArtificial}}}
}

// Text 人工置数文本
func (e *ArtificialElement) Text() string { return string(e.Data) }

// PictureElement 图片信息 F3F3 + 图片数据，必须是正文最后一个要素
type PictureElement struct {
	restElement
}

func NewPictureElement() *PictureElement {
	return &PictureElement{restElement{elementHeader: elementHeader{LeaderPicture, DataDefPicture}}}
}
