package sl651

import (
	"fmt"
	"strconv"
)

// ObserveTimeElement 观测时间要素 F0F0 + YYMMDDhhmm
type ObserveTimeElement struct {
	elementHeader
	ObserveTime DateTime // Second 不参与编码
}

func NewObserveTimeElement() *ObserveTimeElement {
	return &ObserveTimeElement{elementHeader: elementHeader{LeaderDateTime, DataDefDateTime}}
}

func (e *ObserveTimeElement) Size() int { return ElementIdentifierLen + ObserveTimeLen }

func (e *ObserveTimeElement) Encode(b *Buffer) error {
	e.encodeHeader(b)
	e.ObserveTime.encode(b, false)
	return nil
}

func (e *ObserveTimeElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	if b.Remaining() < ObserveTimeLen {
		return truncated(e.identifierLeader, ObserveTimeLen, b)
	}
	t, err := decodeDateTime(b, false)
	if err != nil {
		return err
	}
	e.ObserveTime = t
	return nil
}

// RemoteStationAddrElement 遥测站地址要素 F1F1 + 5 字节地址
type RemoteStationAddrElement struct {
	elementHeader
	StationAddr RemoteStationAddr
}

func NewRemoteStationAddrElement() *RemoteStationAddrElement {
	return &RemoteStationAddrElement{elementHeader: elementHeader{LeaderAddress, DataDefAddress}}
}

func (e *RemoteStationAddrElement) Size() int { return ElementIdentifierLen + RemoteStationAddrLen }

func (e *RemoteStationAddrElement) Encode(b *Buffer) error {
	e.encodeHeader(b)
	encodeAddrTo(b, e.StationAddr)
	return nil
}

func (e *RemoteStationAddrElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	if b.Remaining() < RemoteStationAddrLen {
		return truncated(e.identifierLeader, RemoteStationAddrLen, b)
	}
	addr, err := decodeAddrFrom(b)
	if err != nil {
		return err
	}
	e.StationAddr = addr
	return nil
}

// TimeStepCodeElement 时间步长码要素 0418 + DDhhmm
type TimeStepCodeElement struct {
	elementHeader
	TimeStepCode TimeStepCode
}

func NewTimeStepCodeElement() *TimeStepCodeElement {
	return &TimeStepCodeElement{elementHeader: elementHeader{LeaderTimeStepCode, DataDefTimeStepCode}}
}

func (e *TimeStepCodeElement) Size() int { return ElementIdentifierLen + TimeStepCodeLen }

func (e *TimeStepCodeElement) Encode(b *Buffer) error {
	e.encodeHeader(b)
	c := e.TimeStepCode
	b.WriteBytes([]byte{ToBCD(c.Day), ToBCD(c.Hour), ToBCD(c.Minute)})
	return nil
}

func (e *TimeStepCodeElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	p, err := e.readPayload(b, TimeStepCodeLen)
	if err != nil {
		return err
	}
	e.TimeStepCode = TimeStepCode{Day: FromBCD(p[0]), Hour: FromBCD(p[1]), Minute: FromBCD(p[2])}
	return nil
}

// DurationElement 时段长要素 0528 + ASCII "HH.mm"
type DurationElement struct {
	elementHeader
	Hour   uint8
	Minute uint8
}

func NewDurationElement() *DurationElement {
	return &DurationElement{elementHeader: elementHeader{LeaderDuration, DataDefDuration}}
}

func (e *DurationElement) Size() int { return ElementIdentifierLen + DurationLen }

func (e *DurationElement) Encode(b *Buffer) error {
	if e.Hour > 99 || e.Minute > 59 {
		return fmt.Errorf("%w: duration %d:%d", ErrValueOutOfRange, e.Hour, e.Minute)
	}
	e.encodeHeader(b)
	b.WriteBytes([]byte(fmt.Sprintf("%02d.%02d", e.Hour, e.Minute)))
	return nil
}

func (e *DurationElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	p, err := e.readPayload(b, DurationLen)
	if err != nil {
		return err
	}
	if p[2] != '.' {
		return fmt.Errorf("%w: duration %q", ErrValueOutOfRange, p)
	}
	h, errH := strconv.ParseUint(string(p[:2]), 10, 8)
	m, errM := strconv.ParseUint(string(p[3:]), 10, 8)
	if errH != nil || errM != nil {
		return fmt.Errorf("%w: duration %q", ErrValueOutOfRange, p)
	}
	e.Hour, e.Minute = uint8(h), uint8(m)
	return nil
}

// StationStatusElement 遥测站状态及报警信息 4520 + 4 字节状态位
type StationStatusElement struct {
	elementHeader
	Status uint32
}

func NewStationStatusElement() *StationStatusElement {
	return &StationStatusElement{elementHeader: elementHeader{LeaderStationStatus, DataDefStationStatus}}
}

func (e *StationStatusElement) Size() int { return ElementIdentifierLen + StationStatusLen }

func (e *StationStatusElement) Encode(b *Buffer) error {
	e.encodeHeader(b)
	b.WriteUint32(e.Status)
	return nil
}

func (e *StationStatusElement) Decode(b *Buffer) error {
	if err := e.decodeHeader(b); err != nil {
		return err
	}
	if b.Remaining() < StationStatusLen {
		return truncated(e.identifierLeader, StationStatusLen, b)
	}
	e.Status, _ = b.ReadUint32()
	return nil
}

// StatusAt 返回第 index 位（最低位为 0）的状态
func (e *StationStatusElement) StatusAt(index int) (uint8, error) {
	if index < 0 || index >= StationStatusLen*8 {
		return 0, fmt.Errorf("%w: status bit %d", ErrIndexOutOfRange, index)
	}
	return uint8(e.Status>>uint(index)) & 0x01, nil
}
