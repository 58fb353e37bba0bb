package sl651

import "github.com/sigurn/crc16"

// ChecksumFunc 帧校验算法，输入为帧头至正文末尾（不含帧尾）
type ChecksumFunc func(data []byte) uint16

var modbusTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// CRC16 SL651 使用的 CRC-16/MODBUS（多项式 0x8005 反射，初值 0xFFFF）
func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, modbusTable)
}
