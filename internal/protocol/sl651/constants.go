package sl651

import "fmt"

// 报文帧控制字符
const (
	SOHASCII = 0x01   // ASCII 编码报文帧起始
	SOHHex   = 0x7E7E // HEX/BCD 编码报文帧起始

	STX = 0x02 // 传输正文起始
	SYN = 0x16 // 多包传输正文起始
	ETX = 0x03 // 报文结束，后续无报文
	ETB = 0x17 // 报文结束，后续有报文
	ENQ = 0x05 // 询问
	EOT = 0x04 // 传输结束，退出
	ACK = 0x06 // 肯定确认，继续发送
	NAK = 0x15 // 否定应答，反馈重发
	ESC = 0x1B // 传输结束，终端保持在线
)

// 帧长度常量
const (
	HeadSTXLen           = 14 // STX 帧头长度
	HeadSYNLen           = 17 // SYN 帧头长度（含包总数及序列号）
	TailLen              = 3  // 帧尾：结束符(1) + CRC(2)
	SequenceLen          = 3
	RemoteStationAddrLen = 5
	DateTimeLen          = 6 // YYMMDDhhmmss
	ObserveTimeLen       = 5 // YYMMDDhhmm
	MaxBodyLen           = 0xFFFF
	ElementIdentifierLen = 2 // 标识符引导符(1) + 数据定义(1)
	NumberPrecisionMask  = 0x07
	NumberWidthShift     = 3
	hydrologicalA5       = 0
)

// Direction 报文方向，不在线路上传输，由上下文确定
type Direction uint8

const (
	Up   Direction = 0 // 遥测站 -> 中心站
	Down Direction = 1 // 中心站 -> 遥测站
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// FunctionCode 功能码
type FunctionCode uint8

const (
	FuncKeepalive           FunctionCode = 0x2F // 链路维持报
	FuncTest                FunctionCode = 0x30 // 测试报
	FuncEvenTime            FunctionCode = 0x31 // 均匀时段水文信息报
	FuncInterval            FunctionCode = 0x32 // 遥测站定时报
	FuncAdded               FunctionCode = 0x33 // 遥测站加报报
	FuncHour                FunctionCode = 0x34 // 遥测站小时报
	FuncArtificial          FunctionCode = 0x35 // 遥测站人工置数报
	FuncPicture             FunctionCode = 0x36 // 遥测站图片报/中心站查询图片
	FuncQueryRealtime       FunctionCode = 0x37 // 中心站查询遥测站实时数据
	FuncQueryArtificial     FunctionCode = 0x38 // 中心站查询遥测站人工置数
	FuncQueryElement        FunctionCode = 0x39 // 中心站查询遥测站指定要素数据
	FuncModifyBasicConfig   FunctionCode = 0x40 // 中心站修改遥测站基本配置表
	FuncBasicConfig         FunctionCode = 0x41 // 读取/自报基本配置表
	FuncModifyRuntimeConfig FunctionCode = 0x42 // 中心站修改遥测站运行参数配置表
	FuncRuntimeConfig       FunctionCode = 0x43 // 读取/自报运行参数配置表
	FuncQueryPumpRealtime   FunctionCode = 0x44 // 查询水泵电机实时工作数据
	FuncQuerySoftware       FunctionCode = 0x45 // 查询遥测终端软件版本
	FuncQueryStatus         FunctionCode = 0x46 // 查询遥测站状态和报警信息
	FuncInitStorage         FunctionCode = 0x47 // 初始化固态存储数据
	FuncReset               FunctionCode = 0x48 // 恢复终端出厂设置
	FuncChangePassword      FunctionCode = 0x49 // 修改密码
	FuncSetClock            FunctionCode = 0x4A // 设置遥测站时钟
	FuncSetIC               FunctionCode = 0x4B // 设置遥测终端IC卡状态
	FuncPumpSwitch          FunctionCode = 0x4C // 控制水泵开关/水泵状态自报
	FuncValveSwitch         FunctionCode = 0x4D // 控制阀门开关/阀门状态自报
	FuncGateSwitch          FunctionCode = 0x4E // 控制闸门开关/闸门状态自报
	FuncWaterVolumeSetting  FunctionCode = 0x4F // 水量定值控制命令
	FuncQueryLog            FunctionCode = 0x50 // 中心站查询遥测站事件记录
	FuncQueryClock          FunctionCode = 0x51 // 中心站查询遥测站时钟
)

var functionCodeNames = map[FunctionCode]string{
	FuncKeepalive:           "keepalive",
	FuncTest:                "test",
	FuncEvenTime:            "even_time",
	FuncInterval:            "interval",
	FuncAdded:               "added",
	FuncHour:                "hour",
	FuncArtificial:          "artificial",
	FuncPicture:             "picture",
	FuncQueryRealtime:       "query_realtime",
	FuncQueryArtificial:     "query_artificial",
	FuncQueryElement:        "query_element",
	FuncModifyBasicConfig:   "modify_basic_config",
	FuncBasicConfig:         "basic_config",
	FuncModifyRuntimeConfig: "modify_runtime_config",
	FuncRuntimeConfig:       "runtime_config",
	FuncQueryPumpRealtime:   "query_pump_realtime",
	FuncQuerySoftware:       "query_software_version",
	FuncQueryStatus:         "query_status",
	FuncInitStorage:         "init_storage",
	FuncReset:               "reset",
	FuncChangePassword:      "change_password",
	FuncSetClock:            "set_clock",
	FuncSetIC:               "set_ic",
	FuncPumpSwitch:          "pump_switch",
	FuncValveSwitch:         "valve_switch",
	FuncGateSwitch:          "gate_switch",
	FuncWaterVolumeSetting:  "water_volume_setting",
	FuncQueryLog:            "query_log",
	FuncQueryClock:          "query_clock",
}

// String 返回功能码名称，未知功能码返回十六进制表示
func (f FunctionCode) String() string {
	if name, ok := functionCodeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(f))
}

// StationCategory 遥测站分类码（HEX 编码）
type StationCategory uint8

const (
	RainStation         StationCategory = 0x50 // 降水 P
	RiverStation        StationCategory = 0x48 // 河道 H
	ReservoirStation    StationCategory = 0x4B // 水库/湖泊 K
	DamStation          StationCategory = 0x5A // 闸坝 Z
	PumpingStation      StationCategory = 0x44 // 泵站 D
	TideStation         StationCategory = 0x54 // 潮汐 T
	SoilMoistureStation StationCategory = 0x4D // 墒情 M
	GroundwaterStation  StationCategory = 0x47 // 地下水 G
	WaterQualityStation StationCategory = 0x51 // 水质 Q
	WaterIntakeStation  StationCategory = 0x49 // 取水口 I
	DrainStation        StationCategory = 0x4F // 排水口 O
)

// String 返回分类码对应的字母
func (c StationCategory) String() string {
	if c >= 'A' && c <= 'Z' {
		return string(rune(c))
	}
	return fmt.Sprintf("0x%02X", uint8(c))
}

// 标识符引导符
// 特殊标识符 F0-FD 及 04、05、45 单独解析，其余 0x01-0x75 为数值要素
const (
	LeaderDateTime       = 0xF0 // 观测时间引导符
	LeaderAddress        = 0xF1 // 遥测站编码引导符
	LeaderArtificial     = 0xF2 // 人工置数
	LeaderPicture        = 0xF3 // 图片信息
	LeaderDRP5MIN        = 0xF4 // 1小时内每5分钟时段雨量
	LeaderRelWaterLevel1 = 0xF5 // 1小时内每5分钟间隔相对水位1
	LeaderRelWaterLevel2 = 0xF6
	LeaderRelWaterLevel3 = 0xF7
	LeaderRelWaterLevel4 = 0xF8
	LeaderRelWaterLevel5 = 0xF9
	LeaderRelWaterLevel6 = 0xFA
	LeaderRelWaterLevel7 = 0xFB
	LeaderRelWaterLevel8 = 0xFC
	LeaderFlowRateData   = 0xFD // 流速批量数据
	LeaderTimeStepCode   = 0x04 // 时间步长码
	LeaderDuration       = 0x05 // 时段长（降水、引排水、抽水历时）
	LeaderStationStatus  = 0x45 // 遥测站状态及报警信息
	LeaderCustom         = 0xFF // 用户自定义/扩展引导符

	LeaderNumberMin = 0x01
	LeaderNumberMax = 0x75
)

// 特殊要素固定的数据定义字节
const (
	DataDefDateTime      = 0xF0
	DataDefAddress       = 0xF1
	DataDefArtificial    = 0xF2
	DataDefPicture       = 0xF3
	DataDefDRP5MIN       = 0x60
	DataDefRelWaterLevel = 0xC0
	DataDefFlowRateData  = 0xF6
	DataDefTimeStepCode  = 0x18
	DataDefDuration      = 0x28
	DataDefStationStatus = 0x20
)

// 特殊要素数据长度
const (
	DRP5MINLen           = 12
	DRP5MINSamples       = 12
	RelWaterLevelLen     = 24
	RelWaterLevelSamples = 8
	TimeStepCodeLen      = 3
	DurationLen          = 5
	StationStatusLen     = 4
)

// IsNumberElement 判断引导符是否为通用数值要素
func IsNumberElement(identifierLeader uint8) bool {
	return identifierLeader >= LeaderNumberMin && identifierLeader <= LeaderNumberMax &&
		identifierLeader != LeaderTimeStepCode &&
		identifierLeader != LeaderStationStatus &&
		identifierLeader != LeaderDuration
}

// IsRelativeWaterLevel 判断引导符是否属于相对水位(F5-FC)
func IsRelativeWaterLevel(identifierLeader uint8) bool {
	return identifierLeader >= LeaderRelWaterLevel1 && identifierLeader <= LeaderRelWaterLevel8
}
