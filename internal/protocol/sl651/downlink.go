package sl651

// DownlinkHead 下行报文头：流水号 + 发报时间 + 遥测站地址
type DownlinkHead struct {
	Seq         uint16
	SendTime    DateTime
	StationAddr RemoteStationAddrElement
}

// NewDownlinkHead 创建带固定标识符的下行报文头
func NewDownlinkHead() DownlinkHead {
	return DownlinkHead{StationAddr: *NewRemoteStationAddrElement()}
}

func (h *DownlinkHead) size() int {
	return 2 + DateTimeLen + h.StationAddr.Size()
}

func (h *DownlinkHead) encode(b *Buffer) error {
	b.WriteUint16(h.Seq)
	h.SendTime.encode(b, true)
	return h.StationAddr.Encode(b)
}

func (h *DownlinkHead) decode(b *Buffer) error {
	var err error
	if h.Seq, err = b.ReadUint16(); err != nil {
		return err
	}
	if h.SendTime, err = decodeDateTime(b, true); err != nil {
		return err
	}
	return h.StationAddr.Decode(b)
}

// DownlinkMessage 下行报文（中心站 -> 遥测站）
type DownlinkMessage struct {
	LinkMessage
	MessageHead DownlinkHead
}

// NewDownlinkMessage 创建容量为 elementCount 的下行报文
func NewDownlinkMessage(elementCount int) *DownlinkMessage {
	return &DownlinkMessage{
		LinkMessage: newLinkMessage(Down, elementCount),
		MessageHead: NewDownlinkHead(),
	}
}

func (m *DownlinkMessage) Size() int { return m.frameSize(&m.MessageHead) }

func (m *DownlinkMessage) Encode(b *Buffer) error {
	return m.encodeFrame(b, &m.MessageHead)
}

func (m *DownlinkMessage) Decode(b *Buffer) error {
	mh := NewDownlinkHead()
	if err := m.decodeFrame(b, &mh); err != nil {
		return err
	}
	m.MessageHead = mh
	return nil
}

// NewMessage 按方向创建报文
func NewMessage(dir Direction, elementCount int) Message {
	if dir == Down {
		return NewDownlinkMessage(elementCount)
	}
	return NewUplinkMessage(elementCount)
}

var (
	_ Message = (*UplinkMessage)(nil)
	_ Message = (*DownlinkMessage)(nil)
)
