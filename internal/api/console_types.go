package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/novrain/SL-651/internal/protocol/sl651"
)

// SchemaInfo 模板概要
type SchemaInfo struct {
	Name         string `json:"name"`
	FunctionCode string `json:"function_code"`
	FunctionName string `json:"function_name"`
	Direction    string `json:"direction"`
	Elements     int    `json:"elements"`
}

// SequenceJSON 多包传输的包总数与序号
type SequenceJSON struct {
	Count uint16 `json:"count"`
	Index uint8  `json:"index"`
}

// FrameHead 生成报文时由调用方补齐的帧头与报文头字段
type FrameHead struct {
	CenterAddr      uint8         `json:"center_addr"`
	StationAddr     string        `json:"station_addr"`     // 10 位十六进制
	Password        string        `json:"password"`         // 4 位十六进制
	Seq             uint16        `json:"seq"`              // 报文流水号
	SendTime        *time.Time    `json:"send_time"`        // 缺省为当前时间
	ObserveTime     *time.Time    `json:"observe_time"`     // 缺省同发报时间，仅上行
	StationCategory string        `json:"station_category"` // 2 位十六进制，仅上行
	Sequence        *SequenceJSON `json:"sequence"`
	More            bool          `json:"more"` // 后续还有报文，帧尾使用 ETB
}

// CreateFrameRequest 按模板生成报文
type CreateFrameRequest struct {
	Data map[string]float64 `json:"data"`
	Head FrameHead          `json:"head"`
}

// FrameView 编码结果
type FrameView struct {
	Schema       string `json:"schema"`
	FunctionCode string `json:"function_code"`
	Direction    string `json:"direction"`
	Size         int    `json:"size"`
	Hex          string `json:"hex"`
}

// DecodeFrameRequest 解码报文；elements 为报文应包含的要素个数
type DecodeFrameRequest struct {
	Hex       string `json:"hex" binding:"required"`
	Direction string `json:"direction"`
	Elements  *int   `json:"elements" binding:"required"`
}

// HeadView 帧头与帧尾
type HeadView struct {
	Direction    string        `json:"direction"`
	CenterAddr   uint8         `json:"center_addr"`
	StationAddr  string        `json:"station_addr"`
	Password     string        `json:"password"`
	FunctionCode string        `json:"function_code"`
	FunctionName string        `json:"function_name"`
	BodyLen      uint16        `json:"body_len"`
	Sequence     *SequenceJSON `json:"sequence,omitempty"`
	More         bool          `json:"more"`
	CRC          string        `json:"crc"`
}

// MessageHeadView 正文报文头
type MessageHeadView struct {
	Seq             uint16 `json:"seq"`
	SendTime        string `json:"send_time"`
	StationAddr     string `json:"station_addr"`
	StationCategory string `json:"station_category,omitempty"`
	ObserveTime     string `json:"observe_time,omitempty"`
}

// ElementView 要素
type ElementView struct {
	Type       string      `json:"type"`
	Identifier string      `json:"identifier"`
	DataDef    string      `json:"data_def"`
	Value      interface{} `json:"value"`
}

// DecodedFrame 解码结果
type DecodedFrame struct {
	Head        HeadView        `json:"head"`
	MessageHead MessageHeadView `json:"message_head"`
	Elements    []ElementView   `json:"elements"`
}

func parseHexUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 16, bits)
}

// apply 写入帧头、帧尾标志与上下行报文头
func (f *FrameHead) apply(msg sl651.Message, now time.Time) error {
	var addr sl651.RemoteStationAddr
	if f.StationAddr != "" {
		a, err := sl651.ParseAddress(f.StationAddr)
		if err != nil {
			return fmt.Errorf("station_addr: %w", err)
		}
		addr = a
	}
	var password uint64
	if f.Password != "" {
		p, err := parseHexUint(f.Password, 16)
		if err != nil {
			return fmt.Errorf("password: %w", err)
		}
		password = p
	}
	var category uint64
	if f.StationCategory != "" {
		v, err := parseHexUint(f.StationCategory, 8)
		if err != nil {
			return fmt.Errorf("station_category: %w", err)
		}
		category = v
	}

	head := msg.Head()
	head.Addr = sl651.AddrPair{CenterAddr: f.CenterAddr, StationAddr: addr}
	head.Password = uint16(password)
	if f.Sequence != nil {
		head.StxFlag = sl651.SYN
		head.Seq = sl651.Sequence{Count: f.Sequence.Count, Index: f.Sequence.Index}
	}
	if f.More {
		msg.Tail().EtxFlag = sl651.ETB
	}

	sendTime := now
	if f.SendTime != nil {
		sendTime = *f.SendTime
	}
	observeTime := sendTime
	if f.ObserveTime != nil {
		observeTime = *f.ObserveTime
	}

	switch m := msg.(type) {
	case *sl651.UplinkMessage:
		m.MessageHead.Seq = f.Seq
		m.MessageHead.SendTime = sl651.DateTimeOf(sendTime)
		m.MessageHead.StationAddr.StationAddr = addr
		m.MessageHead.StationCategory = sl651.StationCategory(category)
		m.MessageHead.ObserveTime.ObserveTime = sl651.DateTimeOf(observeTime)
	case *sl651.DownlinkMessage:
		m.MessageHead.Seq = f.Seq
		m.MessageHead.SendTime = sl651.DateTimeOf(sendTime)
		m.MessageHead.StationAddr.StationAddr = addr
	default:
		return fmt.Errorf("unsupported message %T", msg)
	}
	return nil
}

func describeHead(msg sl651.Message) HeadView {
	h, t := msg.Head(), msg.Tail()
	v := HeadView{
		Direction:    h.Direction.String(),
		CenterAddr:   h.Addr.CenterAddr,
		StationAddr:  h.Addr.StationAddr.String(),
		Password:     fmt.Sprintf("%04X", h.Password),
		FunctionCode: fmt.Sprintf("%02X", uint8(h.FuncCode)),
		FunctionName: h.FuncCode.String(),
		BodyLen:      h.Len,
		More:         t.HasMore(),
		CRC:          fmt.Sprintf("%04X", t.CRC),
	}
	if h.IsMultiPacket() {
		v.Sequence = &SequenceJSON{Count: h.Seq.Count, Index: h.Seq.Index}
	}
	return v
}

func describeMessageHead(msg sl651.Message) MessageHeadView {
	switch m := msg.(type) {
	case *sl651.UplinkMessage:
		return MessageHeadView{
			Seq:             m.MessageHead.Seq,
			SendTime:        m.MessageHead.SendTime.String(),
			StationAddr:     m.MessageHead.StationAddr.StationAddr.String(),
			StationCategory: m.MessageHead.StationCategory.String(),
			ObserveTime:     m.MessageHead.ObserveTime.ObserveTime.String(),
		}
	case *sl651.DownlinkMessage:
		return MessageHeadView{
			Seq:         m.MessageHead.Seq,
			SendTime:    m.MessageHead.SendTime.String(),
			StationAddr: m.MessageHead.StationAddr.StationAddr.String(),
		}
	}
	return MessageHeadView{}
}

type sampler interface {
	ValueAt(index int) (float64, bool, error)
}

// samples 无效值输出为 null
func samples(s sampler, n int) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		v, ok, err := s.ValueAt(i)
		if err == nil && ok {
			out[i] = &v
		}
	}
	return out
}

func describeElement(el sl651.Element) ElementView {
	v := ElementView{
		Identifier: fmt.Sprintf("%02X", el.IdentifierLeader()),
		DataDef:    fmt.Sprintf("%02X", el.DataDef()),
	}
	switch e := el.(type) {
	case *sl651.NumberElement:
		v.Type = "number"
		if e.IsInteger() {
			v.Value = e.Integer()
		} else {
			v.Value = e.Float()
		}
	case *sl651.ObserveTimeElement:
		v.Type = "observe_time"
		v.Value = e.ObserveTime.String()
	case *sl651.RemoteStationAddrElement:
		v.Type = "station_addr"
		v.Value = e.StationAddr.String()
	case *sl651.TimeStepCodeElement:
		v.Type = "time_step_code"
		v.Value = e.TimeStepCode.Duration().String()
	case *sl651.DurationElement:
		v.Type = "duration"
		v.Value = fmt.Sprintf("%02d.%02d", e.Hour, e.Minute)
	case *sl651.StationStatusElement:
		v.Type = "station_status"
		v.Value = fmt.Sprintf("%08X", e.Status)
	case *sl651.DRP5MINElement:
		v.Type = "drp5min"
		v.Value = samples(e, sl651.DRP5MINSamples)
	case *sl651.RelativeWaterLevelElement:
		v.Type = "relative_water_level"
		v.Value = samples(e, sl651.RelWaterLevelSamples)
	case *sl651.FlowRateDataElement:
		v.Type = "flow_rate_data"
		v.Value = sl651.BytesToHex(e.Data)
	case *sl651.ArtificialElement:
		v.Type = "artificial"
		v.Value = e.Text()
	case *sl651.PictureElement:
		v.Type = "picture"
		v.Value = len(e.Data)
	default:
		v.Type = fmt.Sprintf("%T", el)
	}
	return v
}
