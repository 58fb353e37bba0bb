package sl651

import (
	"fmt"
	"time"
)

// DateTime 6 字节 BCD 时间 YYMMDDhhmmss，字段保存十进制值
type DateTime struct {
	Year   uint8 // 年份后两位
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
}

// DateTimeOf 由 time.Time 构造，年份取后两位
func DateTimeOf(t time.Time) DateTime {
	return DateTime{
		Year:   uint8(t.Year() % 100),
		Month:  uint8(t.Month()),
		Day:    uint8(t.Day()),
		Hour:   uint8(t.Hour()),
		Minute: uint8(t.Minute()),
		Second: uint8(t.Second()),
	}
}

// Time 转换为 time.Time，年份按 20YY 处理
func (d DateTime) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(2000+int(d.Year), time.Month(d.Month), int(d.Day),
		int(d.Hour), int(d.Minute), int(d.Second), 0, loc)
}

func (d DateTime) String() string {
	return fmt.Sprintf("%02d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

func (d DateTime) encode(b *Buffer, withSecond bool) {
	b.WriteBytes([]byte{ToBCD(d.Year), ToBCD(d.Month), ToBCD(d.Day), ToBCD(d.Hour), ToBCD(d.Minute)})
	if withSecond {
		b.WriteUint8(ToBCD(d.Second))
	}
}

func decodeDateTime(b *Buffer, withSecond bool) (DateTime, error) {
	n := ObserveTimeLen
	if withSecond {
		n = DateTimeLen
	}
	p, err := b.ReadBytes(n)
	if err != nil {
		return DateTime{}, err
	}
	d := DateTime{
		Year:   FromBCD(p[0]),
		Month:  FromBCD(p[1]),
		Day:    FromBCD(p[2]),
		Hour:   FromBCD(p[3]),
		Minute: FromBCD(p[4]),
	}
	if withSecond {
		d.Second = FromBCD(p[5])
	}
	return d, nil
}

// TimeStepCode 时间步长码，3 字节 BCD：日、时、分
type TimeStepCode struct {
	Day    uint8
	Hour   uint8
	Minute uint8
}

// Duration 转换为 time.Duration
func (c TimeStepCode) Duration() time.Duration {
	return time.Duration(c.Day)*24*time.Hour + time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute
}
