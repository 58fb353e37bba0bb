package sl651

// UplinkHead 上行报文头：流水号 + 发报时间 + 遥测站地址 + 分类码 + 观测时间
type UplinkHead struct {
	Seq             uint16
	SendTime        DateTime
	StationAddr     RemoteStationAddrElement
	StationCategory StationCategory
	ObserveTime     ObserveTimeElement
}

// NewUplinkHead 创建带固定标识符的上行报文头
func NewUplinkHead() UplinkHead {
	return UplinkHead{
		StationAddr: *NewRemoteStationAddrElement(),
		ObserveTime: *NewObserveTimeElement(),
	}
}

func (h *UplinkHead) size() int {
	return 2 + DateTimeLen + h.StationAddr.Size() + 1 + h.ObserveTime.Size()
}

func (h *UplinkHead) encode(b *Buffer) error {
	b.WriteUint16(h.Seq)
	h.SendTime.encode(b, true)
	if err := h.StationAddr.Encode(b); err != nil {
		return err
	}
	b.WriteUint8(uint8(h.StationCategory))
	return h.ObserveTime.Encode(b)
}

func (h *UplinkHead) decode(b *Buffer) error {
	var err error
	if h.Seq, err = b.ReadUint16(); err != nil {
		return err
	}
	if h.SendTime, err = decodeDateTime(b, true); err != nil {
		return err
	}
	if err = h.StationAddr.Decode(b); err != nil {
		return err
	}
	category, err := b.ReadUint8()
	if err != nil {
		return err
	}
	h.StationCategory = StationCategory(category)
	return h.ObserveTime.Decode(b)
}

// UplinkMessage 上行报文（遥测站 -> 中心站）
type UplinkMessage struct {
	LinkMessage
	MessageHead UplinkHead
}

// NewUplinkMessage 创建容量为 elementCount 的上行报文
func NewUplinkMessage(elementCount int) *UplinkMessage {
	return &UplinkMessage{
		LinkMessage: newLinkMessage(Up, elementCount),
		MessageHead: NewUplinkHead(),
	}
}

func (m *UplinkMessage) Size() int { return m.frameSize(&m.MessageHead) }

func (m *UplinkMessage) Encode(b *Buffer) error {
	return m.encodeFrame(b, &m.MessageHead)
}

func (m *UplinkMessage) Decode(b *Buffer) error {
	mh := NewUplinkHead()
	if err := m.decodeFrame(b, &mh); err != nil {
		return err
	}
	m.MessageHead = mh
	return nil
}
