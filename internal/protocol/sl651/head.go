package sl651

import "fmt"

// Sequence 多包传输时的包总数及序列号，仅在 StxFlag == SYN 时出现
type Sequence struct {
	Count uint16
	Index uint8
}

// Head 报文帧头
// 格式：SOH(2) + 中心站地址(1) + 遥测站地址(5) + 密码(2) + 功能码(1) + 正文长度(2) + STX/SYN(1) [+ 包总数(2) + 序列号(1)]
type Head struct {
	Direction Direction // 不在线路上传输
	SOH       uint16
	Addr      AddrPair
	Password  uint16
	FuncCode  FunctionCode
	Len       uint16 // 正文字节数，不含帧头帧尾
	StxFlag   uint8
	Seq       Sequence
}

// NewHead 创建单包帧头
func NewHead(dir Direction) Head {
	return Head{Direction: dir, SOH: SOHHex, StxFlag: STX}
}

// IsMultiPacket 是否为多包传输
func (h *Head) IsMultiPacket() bool {
	return h.StxFlag == SYN
}

// Size 帧头长度，由 StxFlag 决定
func (h *Head) Size() int {
	if h.IsMultiPacket() {
		return HeadSYNLen
	}
	return HeadSTXLen
}

// UpAddr 按上行语义返回地址组合
func (h *Head) UpAddr() (UpAddr, bool) {
	return h.Addr.Up(), h.Direction == Up
}

// DownAddr 按下行语义返回地址组合
func (h *Head) DownAddr() (DownAddr, bool) {
	return h.Addr.Down(), h.Direction == Down
}

// EncodeHead 编码帧头
func EncodeHead(b *Buffer, h *Head) error {
	if h.SOH != SOHHex {
		return fmt.Errorf("%w: start marker 0x%04X", ErrMalformedHead, h.SOH)
	}
	if h.StxFlag != STX && h.StxFlag != SYN {
		return fmt.Errorf("%w: stx flag 0x%02X", ErrMalformedHead, h.StxFlag)
	}
	b.WriteUint16(h.SOH)
	b.WriteUint8(h.Addr.CenterAddr)
	encodeAddrTo(b, h.Addr.StationAddr)
	b.WriteUint16(h.Password)
	b.WriteUint8(uint8(h.FuncCode))
	b.WriteUint16(h.Len)
	b.WriteUint8(h.StxFlag)
	if h.IsMultiPacket() {
		b.WriteUint16(h.Seq.Count)
		b.WriteUint8(h.Seq.Index)
	}
	return nil
}

// DecodeHead 解码帧头，dir 由调用方根据上下文提供
func DecodeHead(b *Buffer, dir Direction) (Head, error) {
	if b.Remaining() < HeadSTXLen {
		return Head{}, fmt.Errorf("%w: %d bytes remaining, need %d", ErrMalformedHead, b.Remaining(), HeadSTXLen)
	}
	h := Head{Direction: dir}
	h.SOH, _ = b.ReadUint16()
	if h.SOH != SOHHex {
		return Head{}, fmt.Errorf("%w: start marker 0x%04X", ErrMalformedHead, h.SOH)
	}
	h.Addr.CenterAddr, _ = b.ReadUint8()
	h.Addr.StationAddr, _ = decodeAddrFrom(b)
	h.Password, _ = b.ReadUint16()
	fc, _ := b.ReadUint8()
	h.FuncCode = FunctionCode(fc)
	h.Len, _ = b.ReadUint16()
	h.StxFlag, _ = b.ReadUint8()
	switch h.StxFlag {
	case STX:
	case SYN:
		if b.Remaining() < SequenceLen {
			return Head{}, fmt.Errorf("%w: missing packet sequence", ErrMalformedHead)
		}
		h.Seq.Count, _ = b.ReadUint16()
		h.Seq.Index, _ = b.ReadUint8()
	default:
		return Head{}, fmt.Errorf("%w: stx flag 0x%02X", ErrMalformedHead, h.StxFlag)
	}
	return h, nil
}

// Tail 报文帧尾：结束符 + CRC
type Tail struct {
	EtxFlag uint8 // ETX 后续无报文，ETB 后续有报文，由外部多包逻辑解释
	CRC     uint16
}

// HasMore 后续是否还有报文
func (t *Tail) HasMore() bool {
	return t.EtxFlag == ETB
}

// EncodeTail 计算 span 的校验并写入帧尾，span 为帧头至正文末尾
func EncodeTail(b *Buffer, t *Tail, span []byte, sum ChecksumFunc) {
	if sum == nil {
		sum = CRC16
	}
	t.CRC = sum(span)
	b.WriteUint8(t.EtxFlag)
	b.WriteUint16(t.CRC)
}

// DecodeTail 读取帧尾并校验 span
func DecodeTail(b *Buffer, span []byte, sum ChecksumFunc) (Tail, error) {
	if sum == nil {
		sum = CRC16
	}
	if b.Remaining() < TailLen {
		return Tail{}, fmt.Errorf("%w: tail needs %d bytes, %d remaining", ErrIncompleteMessage, TailLen, b.Remaining())
	}
	var t Tail
	t.EtxFlag, _ = b.ReadUint8()
	t.CRC, _ = b.ReadUint16()
	if expected := sum(span); expected != t.CRC {
		return Tail{}, fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrChecksumMismatch, expected, t.CRC)
	}
	return t, nil
}
