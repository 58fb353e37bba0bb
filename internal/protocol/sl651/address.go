package sl651

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// RemoteStationAddr 遥测站地址
//
// A5 == 0 时，A4-A1 为 BCD 码，组成水文遥测站地址，A0 不使用；
// A5 != 0 时，A5-A3 为 BCD 码行政区划，A2A1 为 HEX 编码的 short 值，
// 解码后 A2 A1 A0 保存由该 short 值转换得到的 BCD 码（同值不同编码）。
type RemoteStationAddr struct {
	A5 uint8
	A4 uint8
	A3 uint8
	A2 uint8
	A1 uint8
	A0 uint8
}

// UpAddr 上行报文地址组合：中心站地址 + 遥测站地址
type UpAddr struct {
	CenterAddr  uint8
	StationAddr RemoteStationAddr
}

// DownAddr 下行报文地址组合，字节布局与上行一致，仅角色不同
type DownAddr struct {
	CenterAddr  uint8
	StationAddr RemoteStationAddr
}

// AddrPair 中心站地址/遥测站地址组合
type AddrPair struct {
	CenterAddr  uint8
	StationAddr RemoteStationAddr
}

// Up 按上行语义查看地址组合
func (p AddrPair) Up() UpAddr { return UpAddr(p) }

// Down 按下行语义查看地址组合
func (p AddrPair) Down() DownAddr { return DownAddr(p) }

// DecodeAddress 解码 5 字节遥测站地址，任意输入均合法
func DecodeAddress(b [RemoteStationAddrLen]byte) RemoteStationAddr {
	addr := RemoteStationAddr{A5: b[0], A4: b[1], A3: b[2], A2: b[3], A1: b[4]}
	if FromBCD(addr.A5) == 0 {
		return addr
	}
	rawID := uint64(b[3])<<8 | uint64(b[4])
	// 6 位 BCD 足以容纳 0-65535
	norm, _ := EncodeBCD(rawID, 3)
	addr.A2, addr.A1, addr.A0 = norm[0], norm[1], norm[2]
	return addr
}

// EncodeAddress 还原线路上的 5 字节地址
func EncodeAddress(a RemoteStationAddr) [RemoteStationAddrLen]byte {
	if !a.IsDivision() {
		return [RemoteStationAddrLen]byte{a.A5, a.A4, a.A3, a.A2, a.A1}
	}
	rawID := uint16(decodeBCDLoose([]byte{a.A2, a.A1, a.A0}))
	return [RemoteStationAddrLen]byte{a.A5, a.A4, a.A3, byte(rawID >> 8), byte(rawID)}
}

// IsDivision 是否为“行政区划 + 自定义编号”形式的地址
func (a RemoteStationAddr) IsDivision() bool {
	return FromBCD(a.A5) != hydrologicalA5
}

// Number 水文遥测站地址（A4-A1 的 8 位十进制数）
func (a RemoteStationAddr) Number() uint32 {
	return uint32(decodeBCDLoose([]byte{a.A4, a.A3, a.A2, a.A1}))
}

// Division 行政区划码（A5-A3 的 6 位十进制数）
func (a RemoteStationAddr) Division() uint32 {
	return uint32(decodeBCDLoose([]byte{a.A5, a.A4, a.A3}))
}

// CustomID 行政区划地址中的自定义编号（A2A1 原始 short 值）
func (a RemoteStationAddr) CustomID() uint16 {
	return uint16(decodeBCDLoose([]byte{a.A2, a.A1, a.A0}))
}

// String 返回线路字节的十六进制表示
func (a RemoteStationAddr) String() string {
	b := EncodeAddress(a)
	return strings.ToUpper(hex.EncodeToString(b[:]))
}

// NewHydrologicalAddr 由 8 位十进制编号构造 A5 == 0 的地址
func NewHydrologicalAddr(number uint32) (RemoteStationAddr, error) {
	p, err := EncodeBCD(uint64(number), 4)
	if err != nil {
		return RemoteStationAddr{}, err
	}
	return DecodeAddress([RemoteStationAddrLen]byte{0, p[0], p[1], p[2], p[3]}), nil
}

// NewDivisionAddr 由行政区划码与自定义编号构造地址，division 不能为 0
func NewDivisionAddr(division uint32, id uint16) (RemoteStationAddr, error) {
	p, err := EncodeBCD(uint64(division), 3)
	if err != nil {
		return RemoteStationAddr{}, err
	}
	if p[0] == 0 {
		return RemoteStationAddr{}, fmt.Errorf("%w: division %06d has zero A5", ErrValueOutOfRange, division)
	}
	return DecodeAddress([RemoteStationAddrLen]byte{p[0], p[1], p[2], byte(id >> 8), byte(id)}), nil
}

// ParseAddress 解析 10 位十六进制字符串形式的线路地址
func ParseAddress(s string) (RemoteStationAddr, error) {
	raw, err := HexToBytes(s)
	if err != nil {
		return RemoteStationAddr{}, err
	}
	if len(raw) != RemoteStationAddrLen {
		return RemoteStationAddr{}, fmt.Errorf("station address must be %d bytes, got %d", RemoteStationAddrLen, len(raw))
	}
	var b [RemoteStationAddrLen]byte
	copy(b[:], raw)
	return DecodeAddress(b), nil
}

func encodeAddrTo(b *Buffer, a RemoteStationAddr) {
	raw := EncodeAddress(a)
	b.WriteBytes(raw[:])
}

func decodeAddrFrom(b *Buffer) (RemoteStationAddr, error) {
	raw, err := b.ReadBytes(RemoteStationAddrLen)
	if err != nil {
		return RemoteStationAddr{}, err
	}
	var arr [RemoteStationAddrLen]byte
	copy(arr[:], raw)
	return DecodeAddress(arr), nil
}
